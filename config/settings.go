package config

import (
	game_constants "PlayFinder/constants/game"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Store backends selectable with STORE_BACKEND
const (
	BACKEND_MEMORY   = "memory"
	BACKEND_SQLITE   = "sqlite"
	BACKEND_POSTGRES = "postgres"
	BACKEND_REDIS    = "redis"
)

type PostgresSettings struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
	Verbose  bool
	Migrate  bool
}

// Settings is everything the server reads from the environment
type Settings struct {
	Port             string
	Prod             bool
	StoreBackend     string
	Postgres         PostgresSettings
	SQLitePath       string
	RedisURL         string
	JWTSecret        string
	SessionKey       string
	TokenTTL         time.Duration
	Location         *time.Location
	ChatPollInterval time.Duration
	LogLevel         logrus.Level
	AllowedOrigins   []string
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Load reads the settings. Values that are set but can't be parsed are errors.
func Load() (Settings, error) {
	s := Settings{
		Port:         getenv("PORT", "8080"),
		Prod:         os.Getenv("PROD") == "true",
		StoreBackend: getenv("STORE_BACKEND", BACKEND_MEMORY),
		Postgres: PostgresSettings{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Host:     getenv("POSTGRES_HOST", "localhost"),
			Port:     getenv("POSTGRES_PORT", "5432"),
			Database: os.Getenv("POSTGRES_DATABASE"),
			Verbose:  os.Getenv("VERBOSE_POSTGRES") == "true",
			Migrate:  os.Getenv("MIGRATE_POSTGRES") == "true",
		},
		SQLitePath: getenv("SQLITE_PATH", "playfinder.db"),
		RedisURL:   getenv("REDIS_URL", "localhost:6379"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionKey: os.Getenv("KEY"),
	}

	switch s.StoreBackend {
	case BACKEND_MEMORY, BACKEND_SQLITE, BACKEND_POSTGRES, BACKEND_REDIS:
	default:
		return s, fmt.Errorf("STORE_BACKEND: unknown backend %q", s.StoreBackend)
	}

	if _, err := strconv.Atoi(s.Port); err != nil {
		return s, fmt.Errorf("PORT: %w", err)
	}

	var err error
	if s.TokenTTL, err = time.ParseDuration(getenv("TOKEN_TTL", "72h")); err != nil {
		return s, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if s.ChatPollInterval, err = time.ParseDuration(getenv("CHAT_POLL_INTERVAL", game_constants.DefaultPollInterval.String())); err != nil {
		return s, fmt.Errorf("CHAT_POLL_INTERVAL: %w", err)
	}
	if s.Location, err = time.LoadLocation(getenv("TZ_NAME", "America/Sao_Paulo")); err != nil {
		return s, fmt.Errorf("TZ_NAME: %w", err)
	}
	if s.LogLevel, err = logrus.ParseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return s, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	for _, origin := range strings.Split(getenv("ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			s.AllowedOrigins = append(s.AllowedOrigins, origin)
		}
	}

	// Without secrets sessions and tokens still work, but don't survive a restart
	if s.SessionKey == "" || s.JWTSecret == "" {
		if s.Prod {
			return s, fmt.Errorf("KEY and JWT_SECRET are required when PROD=true")
		}
		if s.SessionKey == "" {
			s.SessionKey = "dev-session-key"
		}
		if s.JWTSecret == "" {
			s.JWTSecret = "dev-jwt-secret"
		}
	}
	return s, nil
}

// SetupLogging applies the level and formatter to the standard logrus logger
func SetupLogging(s Settings) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetLevel(s.LogLevel)
	if s.Prod {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
