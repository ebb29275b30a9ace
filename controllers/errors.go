package controllers

import (
	"PlayFinder/middleware"
	"PlayFinder/models"
	"PlayFinder/services/membership"
	"PlayFinder/services/store"
	"PlayFinder/services/users"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters: the first match wins
var errorMappings = []errorMapping{
	{store.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
	{membership.ErrNotAuthorized, http.StatusForbidden, "not_authorized"},
	{membership.ErrInviteNotFound, http.StatusNotFound, "invite_not_found"},
	{membership.ErrRequestNotFound, http.StatusNotFound, "request_not_found"},
	{users.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{membership.ErrAlreadyRequested, http.StatusConflict, "already_requested"},
	{membership.ErrAlreadyParticipant, http.StatusConflict, "already_participant"},
	{membership.ErrAlreadyRated, http.StatusConflict, "already_rated"},
	{membership.ErrRequestNotPending, http.StatusConflict, "request_not_pending"},
	{membership.ErrEditLocked, http.StatusConflict, "edit_locked"},
	{membership.ErrInviteCancelled, http.StatusConflict, "invite_cancelled"},
	{membership.ErrGameFull, http.StatusConflict, "game_full"},
	{store.ErrConflict, http.StatusConflict, "concurrent_update"},
	{users.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{membership.ErrGameExpired, http.StatusGone, "game_expired"},
	{membership.ErrNotParticipant, http.StatusForbidden, "not_participant"},
	{membership.ErrGameNotPlayed, http.StatusUnprocessableEntity, "game_not_played"},
	{users.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
}

// writeError answers with the status and code of err. Unknown errors are 500s.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *membership.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": verr.Error(), "fields": verr.Fields})
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": m.code, "message": m.err.Error()})
			return
		}
	}

	logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "internal server error"})
}

// bindError answers a request whose body didn't pass binding
func bindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
}

// currentUser is only called behind AuthRequired
func currentUser(c *gin.Context) models.UserRef {
	user, _ := middleware.CurrentUser(c)
	return user
}
