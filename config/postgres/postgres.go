package postgres

import (
	"PlayFinder/config"
	"PlayFinder/models"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func gormConfig(verbose bool) *gorm.Config {
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	if verbose {
		gormConfig.Logger = logger.New(
			logrus.StandardLogger(), // io writer
			logger.Config{
				SlowThreshold:             time.Second, // Slow SQL threshold
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
	}
	return gormConfig
}

// ConnectGORM returns a GORM DB instance connected to PostgreSQL
func ConnectGORM(s config.Settings) (*gorm.DB, error) {
	pg := s.Postgres
	// NOTE: See https://github.com/go-gorm/gorm/issues/5409
	dsn := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		pg.User, pg.Password, pg.Host, pg.Port, pg.Database)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to PostgreSQL")
		return nil, err
	}

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), gormConfig(pg.Verbose))
	if err != nil {
		logrus.WithError(err).Error("Error connecting to PostgreSQL with GORM")
		return nil, err
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		logrus.WithError(err).Error("Error pinging PostgreSQL")
		return nil, err
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logrus.Info("Successfully connected to PostgreSQL with GORM")
	return db, nil
}

// OpenSQLite opens an embedded database at path (a file or a "file:...?mode=memory" DSN).
// sqlite allows a single writer, so the pool keeps one connection.
func OpenSQLite(path string, verbose bool) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(verbose))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// MigrateDatabase migrates the GORM models to the database
func MigrateDatabase(db *gorm.DB) error {
	// NOTE: for more info, execute db.Debug().AutoMigrate(...)
	err := db.AutoMigrate(
		&models.GameInvite{},
		&models.JoinRequest{},
		&models.ChatMessage{},
		&models.DirectMessage{},
		&models.PlayerRating{},
		&models.Account{},
		&models.PlayerProfile{})

	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	logrus.Info("Database migrated successfully")
	return nil
}
