package controllers

import (
	"PlayFinder/models"
	"PlayFinder/services/games"
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Requests to join a game
// @Description Files a pending request and notifies the creator
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "Invite id"
// @Param request body models.JoinRequestCreation false "Optional note for the creator"
// @Success 201 {object} models.JoinRequest
// @Failure 409 {object} object{error=string,message=string}
// @Failure 410 {object} object{error=string,message=string}
// @Router /auth/invites/{id}/requests [post]
// @Security ApiKeyAuth
func RequestJoin(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.JoinRequestCreation
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&in); err != nil {
				bindError(c, err)
				return
			}
		}

		req, err := svc.RequestJoin(c.Request.Context(), c.Param("id"), currentUser(c), in.Message)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, req)
	}
}

// @Summary Leaves a game
// @Tags requests
// @Produce json
// @Param id path string true "Invite id"
// @Success 200 {object} models.GameInvite
// @Failure 403 {object} object{error=string,message=string}
// @Router /auth/invites/{id}/leave [post]
// @Security ApiKeyAuth
func LeaveGame(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		invite, err := svc.LeaveGame(c.Request.Context(), c.Param("id"), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, invite)
	}
}

// @Summary Accepts a join request
// @Description Only the creator can accept. Fails with game_full when the last place was taken.
// @Tags requests
// @Produce json
// @Param id path string true "Request id"
// @Success 200 {object} object{request=models.JoinRequest,invite=models.GameInvite}
// @Failure 403 {object} object{error=string,message=string}
// @Failure 409 {object} object{error=string,message=string}
// @Router /auth/requests/{id}/accept [post]
// @Security ApiKeyAuth
func AcceptRequest(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, invite, err := svc.AcceptRequest(c.Request.Context(), c.Param("id"), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req, "invite": invite})
	}
}

// @Summary Rejects a join request
// @Tags requests
// @Produce json
// @Param id path string true "Request id"
// @Success 200 {object} models.JoinRequest
// @Failure 403 {object} object{error=string,message=string}
// @Failure 409 {object} object{error=string,message=string}
// @Router /auth/requests/{id}/reject [post]
// @Security ApiKeyAuth
func RejectRequest(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := svc.RejectRequest(c.Request.Context(), c.Param("id"), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// @Summary Lists the caller's join requests, newest first
// @Tags requests
// @Produce json
// @Success 200 {array} models.JoinRequest
// @Router /auth/my/requests [get]
// @Security ApiKeyAuth
func ListMyRequests(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqs, err := svc.ListRequestsBy(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, reqs)
	}
}

// @Summary Pending requests on the caller's invites
// @Tags requests
// @Produce json
// @Success 200 {array} models.JoinRequest
// @Router /auth/inbox/requests [get]
// @Security ApiKeyAuth
func CreatorInbox(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqs, err := svc.CreatorInbox(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, reqs)
	}
}
