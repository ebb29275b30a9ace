package controllers

import (
	"PlayFinder/middleware"
	"PlayFinder/models"
	"PlayFinder/services/games"
	"PlayFinder/services/membership"
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Lists available game invites
// @Description Open invites in the future with free places, nearest game first
// @Tags invites
// @Produce json
// @Param class query int false "Skill class the invite must accept (1-6)"
// @Param game_type query string false "simples or duplas"
// @Param date query string false "YYYY-MM-DD"
// @Param time_slot query string false "manha, tarde or noite"
// @Param city query string false "City, case insensitive"
// @Success 200 {array} games.Detail
// @Failure 400 {object} object{error=string,message=string}
// @Failure 503 {object} object{error=string,message=string}
// @Router /invites [get]
func ListInvites(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q models.InviteFilter
		if err := c.ShouldBindQuery(&q); err != nil {
			bindError(c, err)
			return
		}

		invites, err := svc.ListAvailable(c.Request.Context(), membership.Filter{
			Class:    q.Class,
			GameType: q.GameType,
			Date:     q.Date,
			TimeSlot: q.TimeSlot,
			City:     q.City,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, svc.Summaries(invites))
	}
}

// @Summary Gives info of a game invite
// @Description The caller's status on the invite is included. The creator also gets the join requests.
// @Tags invites
// @Produce json
// @Param id path string true "Invite id"
// @Success 200 {object} games.Detail
// @Failure 404 {object} object{error=string,message=string}
// @Router /invites/{id} [get]
func GetInvite(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, _ := middleware.CurrentUser(c)
		detail, err := svc.GetInvite(c.Request.Context(), c.Param("id"), viewer.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// @Summary Creates a new game invite
// @Tags invites
// @Accept json
// @Produce json
// @Param invite body models.InviteCreation true "Invite"
// @Success 201 {object} models.GameInvite
// @Failure 400 {object} object{error=string,message=string}
// @Router /auth/invites [post]
// @Security ApiKeyAuth
func CreateInvite(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.InviteCreation
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return
		}

		invite, err := svc.CreateInvite(c.Request.Context(), currentUser(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, invite)
	}
}

// @Summary Edits a game invite
// @Description Only the creator can edit. Schedule, place, type and class are locked once someone joined.
// @Tags invites
// @Accept json
// @Produce json
// @Param id path string true "Invite id"
// @Param changes body models.InviteChanges true "Fields to change"
// @Success 200 {object} models.GameInvite
// @Failure 403 {object} object{error=string,message=string}
// @Failure 409 {object} object{error=string,message=string}
// @Router /auth/invites/{id} [patch]
// @Security ApiKeyAuth
func UpdateInvite(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ch models.InviteChanges
		if err := c.ShouldBindJSON(&ch); err != nil {
			bindError(c, err)
			return
		}

		invite, err := svc.UpdateInvite(c.Request.Context(), c.Param("id"), currentUser(c).ID, ch)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, invite)
	}
}

// @Summary Cancels a game invite
// @Description Pending requests are rejected and every player and requester is notified
// @Tags invites
// @Produce json
// @Param id path string true "Invite id"
// @Success 200 {object} models.GameInvite
// @Failure 403 {object} object{error=string,message=string}
// @Router /auth/invites/{id} [delete]
// @Security ApiKeyAuth
func DeleteInvite(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		invite, err := svc.DeleteInvite(c.Request.Context(), c.Param("id"), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, invite)
	}
}

// @Summary Lists the caller's own invites
// @Tags invites
// @Produce json
// @Success 200 {array} games.Detail
// @Router /auth/my/invites [get]
// @Security ApiKeyAuth
func ListMyInvites(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		invites, err := svc.ListCreatedBy(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, svc.Summaries(invites))
	}
}

// @Summary Lists the games of other creators the caller plays in
// @Tags invites
// @Produce json
// @Success 200 {array} games.Detail
// @Router /auth/my/games [get]
// @Security ApiKeyAuth
func ListMyGames(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		invites, err := svc.ListParticipating(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, svc.Summaries(invites))
	}
}
