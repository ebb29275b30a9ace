package controllers

import (
	"PlayFinder/models"
	"PlayFinder/services/ratings"
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Rates another player of a played game
// @Tags ratings
// @Accept json
// @Produce json
// @Param id path string true "Invite id"
// @Param rating body models.RatingCreation true "Rating"
// @Success 201 {object} models.PlayerRating
// @Failure 409 {object} object{error=string,message=string}
// @Failure 422 {object} object{error=string,message=string}
// @Router /auth/invites/{id}/ratings [post]
// @Security ApiKeyAuth
func RatePlayer(svc *ratings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.RatingCreation
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return
		}
		r, err := svc.Rate(c.Request.Context(), c.Param("id"), currentUser(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

// @Summary Lists the ratings given in a game
// @Tags ratings
// @Produce json
// @Param id path string true "Invite id"
// @Success 200 {array} models.PlayerRating
// @Router /auth/invites/{id}/ratings [get]
// @Security ApiKeyAuth
func GameRatings(svc *ratings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rs, err := svc.ForGame(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rs)
	}
}

// @Summary Played games where the caller still has someone to rate
// @Tags ratings
// @Produce json
// @Success 200 {array} models.GameInvite
// @Router /auth/my/games-to-rate [get]
// @Security ApiKeyAuth
func GamesToRate(svc *ratings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		games, err := svc.GamesToRate(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, games)
	}
}
