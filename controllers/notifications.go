package controllers

import (
	"PlayFinder/services/notify"
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Lists the caller's notifications, newest first
// @Tags notifications
// @Produce json
// @Success 200 {array} models.Event
// @Router /auth/notifications [get]
// @Security ApiKeyAuth
func ListNotifications(inbox notify.Inbox) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := inbox.List(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

// @Summary Clears the caller's notifications
// @Tags notifications
// @Success 204
// @Router /auth/notifications [delete]
// @Security ApiKeyAuth
func ClearNotifications(inbox notify.Inbox) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := inbox.Clear(c.Request.Context(), currentUser(c).ID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
