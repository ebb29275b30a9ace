package main

import (
	"PlayFinder/config"
	pgconfig "PlayFinder/config/postgres"
	_ "PlayFinder/config/swagger"
	game_constants "PlayFinder/constants/game"
	"PlayFinder/middleware"
	"PlayFinder/routes"
	"PlayFinder/services/membership"
	"PlayFinder/services/notify"
	"PlayFinder/services/redis"
	"PlayFinder/services/store"
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// openStores picks the persistence backend. The returned closer releases its connections.
func openStores(s config.Settings) (*store.Set, *redis.RedisClient, io.Closer, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch s.StoreBackend {
	case config.BACKEND_MEMORY:
		logrus.Warn("Using in-memory stores, data is lost on restart")
		return store.NewMemorySet(), nil, nil, nil

	case config.BACKEND_REDIS:
		rc, err := config.Connect_redis(s)
		if err != nil {
			return nil, nil, nil, err
		}
		return redis.NewSet(rc), rc, rc.Client, nil

	case config.BACKEND_SQLITE:
		db, err = pgconfig.OpenSQLite(s.SQLitePath, s.Postgres.Verbose)
		if err != nil {
			return nil, nil, nil, err
		}
		// the embedded database is always migrated
		if err := pgconfig.MigrateDatabase(db); err != nil {
			return nil, nil, nil, err
		}

	case config.BACKEND_POSTGRES:
		db, err = pgconfig.ConnectGORM(s)
		if err != nil {
			return nil, nil, nil, err
		}
		logrus.Info("GORM Connected")

		// Only migrate in development or during deployment
		if s.Postgres.Migrate {
			logrus.Info("Migrating PostgreSQL database...")
			if err := pgconfig.MigrateDatabase(db); err != nil {
				logrus.WithError(err).Warn("Database migration failed")
				// Continue execution even if migration fails
			}
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, nil, err
	}
	return store.NewGormSet(db), nil, sqlDB, nil
}

// @title PlayFinder API
// @version 1.0
// @description Gin-Gonic server for the PlayFinder tennis game invites
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	godotenv.Load()

	settings, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	log := config.SetupLogging(settings)
	log.Info("Setting up server...")

	if settings.Prod {
		gin.SetMode(gin.ReleaseMode)
	}

	stores, redisClient, closer, err := openStores(settings)
	if err != nil {
		log.Fatalf("Error opening %s stores: %v", settings.StoreBackend, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	// Events are kept in redis when there is one, in memory otherwise
	var inbox notify.Inbox = notify.NewRecorder(game_constants.InboxLimit)
	if redisClient != nil {
		inbox = redis.NewInbox(redisClient)
	}

	engine := membership.NewEngine(settings.Location)
	svc := routes.NewServices(stores, engine, inbox, log)

	if n, err := svc.Games.NormalizeLegacy(context.Background()); err != nil {
		log.WithError(err).Warn("Could not normalize legacy invites")
	} else if n > 0 {
		log.Infof("Normalized %d legacy invites", n)
	}

	r := gin.New()

	middleware.SetUpMiddleware(r, settings, log)

	if err := routes.SetupRoutes(r, settings, svc, log); err != nil {
		log.Fatalf("Error setting up routes: %v", err)
	}

	log.Infof("Server starting on port %s", settings.Port)
	if err := r.Run(":" + settings.Port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
