package controllers

import (
	"PlayFinder/models"
	"PlayFinder/services/chat"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// since reads the optional RFC3339 "since" query parameter clients poll with
func since(c *gin.Context) (time.Time, bool) {
	raw := c.Query("since")
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		bindError(c, err)
		return time.Time{}, false
	}
	return t, true
}

// @Summary Reads the game chat
// @Description Participants only. Poll with the created_at of the last line seen.
// @Tags chat
// @Produce json
// @Param id path string true "Invite id"
// @Param since query string false "RFC3339 time, only newer lines are returned"
// @Success 200 {array} models.ChatMessage
// @Failure 403 {object} object{error=string,message=string}
// @Router /auth/invites/{id}/chat [get]
// @Security ApiKeyAuth
func GetChat(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		after, ok := since(c)
		if !ok {
			return
		}
		msgs, err := svc.List(c.Request.Context(), c.Param("id"), currentUser(c).ID, after)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, msgs)
	}
}

// @Summary Writes in the game chat
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "Invite id"
// @Param message body models.MessageCreation true "Message"
// @Success 201 {object} models.ChatMessage
// @Failure 403 {object} object{error=string,message=string}
// @Router /auth/invites/{id}/chat [post]
// @Security ApiKeyAuth
func PostChat(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.MessageCreation
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return
		}
		msg, err := svc.Post(c.Request.Context(), c.Param("id"), currentUser(c), in.Content)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

// @Summary Reads the private conversation with another user about a game
// @Tags chat
// @Produce json
// @Param id path string true "Invite id"
// @Param user path string true "The other user"
// @Success 200 {array} models.DirectMessage
// @Router /auth/invites/{id}/dm/{user} [get]
// @Security ApiKeyAuth
func GetDirect(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		msgs, err := svc.ConversationWith(c.Request.Context(), c.Param("id"), currentUser(c).ID, c.Param("user"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, msgs)
	}
}

// @Summary Writes privately to the creator of a game, or as the creator to a player
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "Invite id"
// @Param user path string true "Receiver"
// @Param message body models.MessageCreation true "Message"
// @Success 201 {object} models.DirectMessage
// @Failure 403 {object} object{error=string,message=string}
// @Router /auth/invites/{id}/dm/{user} [post]
// @Security ApiKeyAuth
func PostDirect(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.MessageCreation
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return
		}
		dm, err := svc.SendDirect(c.Request.Context(), c.Param("id"), currentUser(c), c.Param("user"), in.Content)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dm)
	}
}

// @Summary Lists who wrote privately to the creator about a game
// @Tags chat
// @Produce json
// @Param id path string true "Invite id"
// @Success 200 {array} chat.Conversation
// @Failure 403 {object} object{error=string,message=string}
// @Router /auth/invites/{id}/conversations [get]
// @Security ApiKeyAuth
func ListConversations(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.Conversations(c.Request.Context(), c.Param("id"), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
