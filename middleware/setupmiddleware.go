package middleware

import (
	"PlayFinder/config"
	"PlayFinder/utils"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func SetUpMiddleware(r *gin.Engine, s config.Settings, log logrus.FieldLogger) {
	r.Use(utils.Logger(log))

	store := cookie.NewStore([]byte(s.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(s.TokenTTL.Seconds()),
		Secure:   s.Prod,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("mysession", store))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.Use(Identify(s.JWTSecret))
}
