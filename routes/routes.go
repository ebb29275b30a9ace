package routes

import (
	"PlayFinder/config"
	"PlayFinder/controllers"
	"PlayFinder/middleware"
	"PlayFinder/services/chat"
	"PlayFinder/services/games"
	"PlayFinder/services/membership"
	"PlayFinder/services/notify"
	"PlayFinder/services/ratings"
	"PlayFinder/services/store"
	"PlayFinder/services/users"
	utils "PlayFinder/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services are what the controllers run on
type Services struct {
	Games   *games.Service
	Chat    *chat.Service
	Ratings *ratings.Service
	Users   *users.Service
	Inbox   notify.Inbox
}

// NewServices builds every service on the same stores and engine. Lifecycle
// events go to the inbox and to the log.
func NewServices(stores *store.Set, engine *membership.Engine, inbox notify.Inbox, log logrus.FieldLogger) Services {
	sink := notify.Multi{Sinks: []notify.Sink{inbox, notify.LogSink{Log: log}}, Log: log}
	return Services{
		Games:   games.NewService(stores, engine, sink, log),
		Chat:    chat.NewService(stores, engine, log),
		Ratings: ratings.NewService(stores, engine, log),
		Users:   users.NewService(stores, log),
		Inbox:   inbox,
	}
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, s config.Settings, svc Services, log logrus.FieldLogger) error {
	if err := utils.RegisterValidators(); err != nil {
		return err
	}

	// utils global
	router.Use(utils.ErrorHandler(log))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.GET("/config", controllers.ClientConfig(s))

	api.POST("/signup", controllers.SignUp(svc.Users, s))

	api.POST("/login", controllers.Login(svc.Users, s))

	api.POST("/identify", controllers.Identify())

	api.GET("/invites", controllers.ListInvites(svc.Games))

	api.GET("/invites/:id", controllers.GetInvite(svc.Games))

	api.GET("/users/:id", controllers.GetUserPublicInfo(svc.Users, svc.Ratings))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.GET("/me", controllers.Me(svc.Users))

		authentication.DELETE("/logout", controllers.Logout)

		authentication.PUT("/profile", controllers.UpdateProfile(svc.Users))

		authentication.POST("/invites", controllers.CreateInvite(svc.Games))

		authentication.PATCH("/invites/:id", controllers.UpdateInvite(svc.Games))

		authentication.DELETE("/invites/:id", controllers.DeleteInvite(svc.Games))

		authentication.POST("/invites/:id/requests", controllers.RequestJoin(svc.Games))

		authentication.POST("/invites/:id/leave", controllers.LeaveGame(svc.Games))

		authentication.POST("/requests/:id/accept", controllers.AcceptRequest(svc.Games))

		authentication.POST("/requests/:id/reject", controllers.RejectRequest(svc.Games))

		authentication.GET("/my/invites", controllers.ListMyInvites(svc.Games))

		authentication.GET("/my/games", controllers.ListMyGames(svc.Games))

		authentication.GET("/my/requests", controllers.ListMyRequests(svc.Games))

		authentication.GET("/inbox/requests", controllers.CreatorInbox(svc.Games))

		authentication.GET("/notifications", controllers.ListNotifications(svc.Inbox))

		authentication.DELETE("/notifications", controllers.ClearNotifications(svc.Inbox))

		authentication.GET("/invites/:id/chat", controllers.GetChat(svc.Chat))

		authentication.POST("/invites/:id/chat", controllers.PostChat(svc.Chat))

		authentication.GET("/invites/:id/dm/:user", controllers.GetDirect(svc.Chat))

		authentication.POST("/invites/:id/dm/:user", controllers.PostDirect(svc.Chat))

		authentication.GET("/invites/:id/conversations", controllers.ListConversations(svc.Chat))

		authentication.POST("/invites/:id/ratings", controllers.RatePlayer(svc.Ratings))

		authentication.GET("/invites/:id/ratings", controllers.GameRatings(svc.Ratings))

		authentication.GET("/my/games-to-rate", controllers.GamesToRate(svc.Ratings))
	}
	return nil
}
