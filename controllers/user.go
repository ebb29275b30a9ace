package controllers

import (
	"PlayFinder/config"
	"PlayFinder/middleware"
	"PlayFinder/models"
	"PlayFinder/services/ratings"
	"PlayFinder/services/users"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func accountView(acc models.Account) gin.H {
	return gin.H{"id": acc.ID, "name": acc.Name, "email": acc.Email, "member_since": acc.CreatedAt}
}

// login answers with a token and also keeps the identity in the session cookie
func login(c *gin.Context, s config.Settings, status int, acc models.Account) {
	token, err := middleware.IssueToken(s.JWTSecret, acc.Ref(), s.TokenTTL)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := middleware.SaveSessionUser(c, acc.Ref()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, gin.H{"token": token, "user": accountView(acc)})
}

// @Summary Creates an account
// @Tags users
// @Accept json
// @Produce json
// @Param account body models.SignUpForm true "Account"
// @Success 201 {object} object{token=string}
// @Failure 400 {object} object{error=string,message=string}
// @Failure 409 {object} object{error=string,message=string}
// @Router /signup [post]
func SignUp(svc *users.Service, s config.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form models.SignUpForm
		if err := c.ShouldBindJSON(&form); err != nil {
			bindError(c, err)
			return
		}
		acc, err := svc.SignUp(c.Request.Context(), form)
		if err != nil {
			writeError(c, err)
			return
		}
		login(c, s, http.StatusCreated, acc)
	}
}

// @Summary Logs in with email and password
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body models.LoginForm true "Credentials"
// @Success 200 {object} object{token=string}
// @Failure 401 {object} object{error=string,message=string}
// @Router /login [post]
func Login(svc *users.Service, s config.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form models.LoginForm
		if err := c.ShouldBindJSON(&form); err != nil {
			bindError(c, err)
			return
		}
		acc, err := svc.Authenticate(c.Request.Context(), form.Email, form.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		login(c, s, http.StatusOK, acc)
	}
}

// @Summary Identifies with a name only
// @Description Creates a lightweight user kept in the session cookie, no account needed
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.IdentifyForm true "Name"
// @Success 200 {object} models.UserRef
// @Router /identify [post]
func Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form models.IdentifyForm
		if err := c.ShouldBindJSON(&form); err != nil {
			bindError(c, err)
			return
		}

		user, ok := middleware.SessionUser(c)
		if !ok {
			user.ID = uuid.NewString()
		}
		user.Name = form.Name
		if err := middleware.SaveSessionUser(c, user); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// Logout from server, deletes the identity kept in the session
// @Summary Logout
// @Description Deletes the identity kept in the session cookie
// @Tags users
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [delete]
// @Security ApiKeyAuth
func Logout(c *gin.Context) {
	had, err := middleware.ClearSession(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "Failed to save session"})
		return
	}
	if !had {
		// token users just drop their token
		c.JSON(http.StatusOK, gin.H{"message": "No session to close"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// @Summary Information about the caller
// @Tags users
// @Produce json
// @Success 200 {object} object{user=models.UserRef,profile=models.PlayerProfile}
// @Router /auth/me [get]
// @Security ApiKeyAuth
func Me(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		out := gin.H{"user": user}

		if acc, err := svc.Account(c.Request.Context(), user.ID); err == nil {
			out["account"] = accountView(acc)
		} else if !errors.Is(err, users.ErrUserNotFound) {
			writeError(c, err)
			return
		}
		if p, err := svc.Profile(c.Request.Context(), user.ID); err == nil {
			out["profile"] = p
		} else if !errors.Is(err, users.ErrUserNotFound) {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary Creates or replaces the caller's player profile
// @Tags users
// @Accept json
// @Produce json
// @Param profile body models.ProfileUpdate true "Profile"
// @Success 200 {object} models.PlayerProfile
// @Failure 400 {object} object{error=string,message=string}
// @Router /auth/profile [put]
// @Security ApiKeyAuth
func UpdateProfile(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.ProfileUpdate
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return
		}
		p, err := svc.SaveProfile(c.Request.Context(), currentUser(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary Public info of a player
// @Description Profile, rating average and the latest ratings received
// @Tags users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} object{profile=models.PlayerProfile,rating=ratings.Summary,recent_ratings=[]models.PlayerRating}
// @Failure 404 {object} object{error=string,message=string}
// @Router /users/{id} [get]
func GetUserPublicInfo(svc *users.Service, rs *ratings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		p, err := svc.Profile(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		summary, err := rs.Average(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		recent, err := rs.Recent(ctx, id, 0)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": p, "rating": summary, "recent_ratings": recent})
	}
}
