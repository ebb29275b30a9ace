package controllers_test

import (
	"PlayFinder/middleware"
	"PlayFinder/models"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingAndConfig(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cfg struct {
		PollIntervalMs int64 `json:"poll_interval_ms"`
	}
	w.decode(t, &cfg)
	assert.Equal(t, int64(3000), cfg.PollIntervalMs)
}

func TestSignUpAndLogin(t *testing.T) {
	a := newAPI(t)
	_, id := a.signUp("Carla", "carla@example.com")

	w := a.do(http.MethodPost, "/signup", "", gin.H{"email": "CARLA@example.com", "name": "Outra", "password": "segredo123"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email_taken", w.errorCode(t))

	w = a.do(http.MethodPost, "/signup", "", gin.H{"email": "not-an-email", "name": "Outra", "password": "segredo123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/login", "", gin.H{"email": "carla@example.com", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", w.errorCode(t))

	w = a.do(http.MethodPost, "/login", "", gin.H{"email": "carla@example.com", "password": "segredo123"})
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Token string            `json:"token"`
		User  map[string]string `json:"user"`
	}
	w.decode(t, &out)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, id, out.User["id"])
	assert.NotContains(t, w.Body.String(), "password")

	w = a.do(http.MethodGet, "/auth/me", out.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}
	w.decode(t, &me)
	assert.Equal(t, id, me.User.ID)
	assert.Equal(t, "Carla", me.User.Name)

	w = a.do(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionIdentity(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/identify", "", gin.H{"name": "Visitante"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	raw := w.Header().Get("Set-Cookie")
	require.NotEmpty(t, raw)
	cookie := "cookie:" + strings.SplitN(raw, ";", 2)[0]

	w = a.do(http.MethodGet, "/auth/me", cookie, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}
	w.decode(t, &me)
	assert.Equal(t, "Visitante", me.User.Name)
	assert.NotEmpty(t, me.User.ID)

	// name-only users can publish too
	id := a.createInvite(cookie, singlesInvite())
	assert.NotEmpty(t, id)

	w = a.do(http.MethodDelete, "/auth/logout", cookie, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Successfully logged out")
}

func TestTokenWithoutSubjectIsRejected(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/identify", "", gin.H{"name": "Visitante"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := strings.SplitN(w.Header().Get("Set-Cookie"), ";", 2)[0]

	token, err := middleware.IssueToken(testSettings().JWTSecret, models.UserRef{Name: "Sem Id"}, time.Hour)
	require.NoError(t, err)
	_, err = middleware.ParseToken(testSettings().JWTSecret, token)
	assert.ErrorIs(t, err, middleware.ErrNoSubject)

	// the session must not stand in for a broken token
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Cookie", cookie)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", response{rec}.errorCode(t))
}

func TestProfileAndPublicInfo(t *testing.T) {
	a := newAPI(t)
	carla, id := a.signUp("Carla", "carla@example.com")

	w := a.do(http.MethodPut, "/auth/profile", carla, gin.H{
		"name":          "Carla",
		"city":          "Curitiba",
		"neighborhood":  "Batel",
		"class":         4,
		"dominant_hand": "direita",
		"frequency":     "regular",
		"availability":  []gin.H{{"day": "sab", "slots": []string{"manha"}}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPut, "/auth/profile", carla, gin.H{
		"name":          "Carla",
		"city":          "Curitiba",
		"neighborhood":  "Batel",
		"class":         4,
		"dominant_hand": "direita",
		"frequency":     "regular",
		"availability":  []gin.H{{"day": "sabado", "slots": []string{"manha"}}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/users/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info struct {
		Profile struct {
			City  string `json:"city"`
			Class int    `json:"class"`
		} `json:"profile"`
		Rating struct {
			Count int `json:"count"`
		} `json:"rating"`
	}
	w.decode(t, &info)
	assert.Equal(t, "Curitiba", info.Profile.City)
	assert.Equal(t, 4, info.Profile.Class)
	assert.Zero(t, info.Rating.Count)

	w = a.do(http.MethodGet, "/users/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// joinedSingles returns a singles game of carla with ana accepted and bia outside
func joinedSingles(t *testing.T, a *api) (id string, tokens map[string]string, ids map[string]string) {
	tokens, ids = map[string]string{}, map[string]string{}
	for _, u := range []struct{ name, email string }{
		{"Carla", "carla@example.com"},
		{"Ana", "ana@example.com"},
		{"Bia", "bia@example.com"},
	} {
		tokens[u.name], ids[u.name] = a.signUp(u.name, u.email)
	}

	id = a.createInvite(tokens["Carla"], singlesInvite())
	w := a.do(http.MethodPost, "/auth/invites/"+id+"/requests", tokens["Ana"], nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var req struct {
		ID string `json:"id"`
	}
	w.decode(t, &req)
	w = a.do(http.MethodPost, "/auth/requests/"+req.ID+"/accept", tokens["Carla"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	return id, tokens, ids
}

func TestGameChat(t *testing.T) {
	a := newAPI(t)
	id, tokens, ids := joinedSingles(t, a)

	w := a.do(http.MethodPost, "/auth/invites/"+id+"/chat", tokens["Ana"], gin.H{"content": "Levo as bolas"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/auth/invites/"+id+"/chat", tokens["Bia"], gin.H{"content": "Posso ver?"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_participant", w.errorCode(t))

	w = a.do(http.MethodPost, "/auth/invites/"+id+"/chat", tokens["Ana"], gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/auth/invites/"+id+"/chat", tokens["Carla"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msgs []struct {
		SenderID string `json:"sender_id"`
		Content  string `json:"content"`
	}
	w.decode(t, &msgs)
	require.Len(t, msgs, 1)
	assert.Equal(t, ids["Ana"], msgs[0].SenderID)

	w = a.do(http.MethodGet, "/auth/invites/"+id+"/chat?since=bad", tokens["Carla"], nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/auth/invites/"+id+"/chat", tokens["Bia"], nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDirectMessagesWithCreator(t *testing.T) {
	a := newAPI(t)
	id, tokens, ids := joinedSingles(t, a)

	w := a.do(http.MethodPost, "/auth/invites/"+id+"/dm/"+ids["Carla"], tokens["Bia"], gin.H{"content": "Ainda tem vaga?"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/auth/invites/"+id+"/dm/"+ids["Ana"], tokens["Bia"], gin.H{"content": "Oi"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/auth/invites/"+id+"/dm/"+ids["Bia"], tokens["Carla"], gin.H{"content": "Infelizmente não"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodGet, "/auth/invites/"+id+"/dm/"+ids["Carla"], tokens["Bia"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dms []interface{}
	w.decode(t, &dms)
	assert.Len(t, dms, 2)

	w = a.do(http.MethodGet, "/auth/invites/"+id+"/conversations", tokens["Carla"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	var convs []struct {
		UserID      string `json:"user_id"`
		LastMessage string `json:"last_message"`
	}
	w.decode(t, &convs)
	require.Len(t, convs, 1)
	assert.Equal(t, ids["Bia"], convs[0].UserID)

	w = a.do(http.MethodGet, "/auth/invites/"+id+"/conversations", tokens["Ana"], nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRatingsAfterTheGame(t *testing.T) {
	a := newAPI(t)
	id, tokens, ids := joinedSingles(t, a)
	rate := gin.H{"rated_user_id": ids["Carla"], "stars": 4, "comment": "Boa parceira"}

	w := a.do(http.MethodPost, "/auth/invites/"+id+"/ratings", tokens["Ana"], rate)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "game_not_played", w.errorCode(t))

	a.now = time.Date(2025, 6, 13, 9, 0, 0, 0, brt)

	w = a.do(http.MethodPost, "/auth/invites/"+id+"/ratings", tokens["Ana"], rate)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/auth/invites/"+id+"/ratings", tokens["Ana"], rate)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_rated", w.errorCode(t))

	w = a.do(http.MethodPost, "/auth/invites/"+id+"/ratings", tokens["Bia"], rate)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/auth/invites/"+id+"/ratings", tokens["Ana"], gin.H{"rated_user_id": ids["Carla"], "stars": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/auth/my/games-to-rate", tokens["Carla"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []interface{}
	w.decode(t, &pending)
	assert.Len(t, pending, 1)

	w = a.do(http.MethodGet, "/auth/my/games-to-rate", tokens["Ana"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending = nil
	w.decode(t, &pending)
	assert.Empty(t, pending)

	w = a.do(http.MethodGet, "/users/"+ids["Carla"], "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info struct {
		Rating struct {
			Average float64 `json:"average"`
			Count   int     `json:"count"`
		} `json:"rating"`
		Recent []interface{} `json:"recent_ratings"`
	}
	w.decode(t, &info)
	assert.Equal(t, 1, info.Rating.Count)
	assert.InDelta(t, 4.0, info.Rating.Average, 0.001)
	assert.Len(t, info.Recent, 1)
}
