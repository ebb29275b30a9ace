package controllers

import (
	"PlayFinder/config"
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Endpoint just pings the server
// @Description Returns a basic message
// @Tags health
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// @Summary Client settings
// @Description How often clients should poll chats and notifications, there's no push channel
// @Tags health
// @Produce json
// @Success 200 {object} object{poll_interval_ms=integer}
// @Router /config [get]
func ClientConfig(s config.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"poll_interval_ms": s.ChatPollInterval.Milliseconds()})
	}
}
