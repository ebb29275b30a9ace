package controllers_test

import (
	"PlayFinder/config"
	"PlayFinder/middleware"
	"PlayFinder/routes"
	"PlayFinder/services/membership"
	"PlayFinder/services/notify"
	"PlayFinder/services/store"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var brt = time.FixedZone("BRT", -3*60*60)

type api struct {
	t      *testing.T
	router *gin.Engine
	stores *store.Set
	inbox  *notify.Recorder
	now    time.Time
}

func testSettings() config.Settings {
	return config.Settings{
		Port:             "8080",
		StoreBackend:     config.BACKEND_MEMORY,
		JWTSecret:        "test-secret",
		SessionKey:       "test-session-key",
		TokenTTL:         time.Hour,
		Location:         brt,
		ChatPollInterval: 3 * time.Second,
		AllowedOrigins:   []string{"*"},
	}
}

func newAPI(t *testing.T) *api {
	return newAPIWithStores(t, store.NewMemorySet())
}

func newAPIWithStores(t *testing.T, stores *store.Set) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a := &api{t: t, stores: stores, inbox: notify.NewRecorder(0), now: time.Date(2025, 6, 10, 10, 0, 0, 0, brt)}
	engine := membership.NewEngine(brt)
	engine.Now = func() time.Time { return a.now }

	logger, _ := test.NewNullLogger()
	s := testSettings()
	svc := routes.NewServices(stores, engine, a.inbox, logger)

	a.router = gin.New()
	middleware.SetUpMiddleware(a.router, s, logger)
	require.NoError(t, routes.SetupRoutes(a.router, s, svc, logger))
	return a
}

type response struct {
	*httptest.ResponseRecorder
}

func (r response) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), v), r.Body.String())
}

func (r response) errorCode(t *testing.T) string {
	var body struct {
		Error string `json:"error"`
	}
	r.decode(t, &body)
	return body.Error
}

// do sends body as JSON. auth is a bearer token, or a cookie header when it starts with "cookie:".
func (a *api) do(method, path, auth string, body interface{}) response {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(auth) > 7 && auth[:7] == "cookie:" {
		req.Header.Set("Cookie", auth[7:])
	} else if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return response{w}
}

// signUp registers a user and returns its token and id
func (a *api) signUp(name, email string) (string, string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/signup", "", gin.H{"email": email, "name": name, "password": "segredo123"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	w.decode(a.t, &out)
	return out.Token, out.User.ID
}

func (a *api) createInvite(token string, body gin.H) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/invites", token, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		ID string `json:"id"`
	}
	w.decode(a.t, &out)
	return out.ID
}

func singlesInvite() gin.H {
	return gin.H{
		"title":        "Simples no Batel",
		"game_type":    "simples",
		"class_min":    3,
		"class_max":    5,
		"city":         "Curitiba",
		"neighborhood": "Batel",
		"date":         "2025-06-12",
		"time":         "18:00",
	}
}
