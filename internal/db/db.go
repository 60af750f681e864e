package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dooh/internal/config"
	console "dooh/internal/utils/logger"
)

var DB *gorm.DB
var log = console.New("DB")

// Connect opens the gorm connection, retrying while the database comes up,
// and applies the embedded SQL migrations when POSTGRES_RUN_MIGRATIONS is set.
func Connect(cfg *config.Config) error {
	dsn := cfg.Database.DSN()

	gormLogLevel := logger.Warn
	if console.ParseLevel(cfg.Log.Level) == console.LevelDebug {
		gormLogLevel = logger.Info
	}

	log.Info("Connecting to database %s@%s:%d/%s...", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	maxRetries := 5
	var err error
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                 logger.Default.LogMode(gormLogLevel),
			PrepareStmt:            true,
			AllowGlobalUpdate:      false,
			SkipDefaultTransaction: true,
			TranslateError:         true,
		})
		if err == nil {
			log.Success("Connected to database")

			sqlDB, err := DB.DB()
			if err != nil {
				return log.Error("Failed to get underlying *sql.DB instance", err)
			}

			sqlDB.SetMaxOpenConns(100)
			sqlDB.SetMaxIdleConns(10)
			sqlDB.SetConnMaxLifetime(time.Hour)
			sqlDB.SetConnMaxIdleTime(time.Minute * 30)

			if cfg.Database.RunMigrations {
				log.Info("Running migrations...")
				if err := Migrate(cfg.Database.URL()); err != nil {
					return log.Error("Failed to run migrations", err)
				}
				log.Success("Migrations completed")
			}

			return nil
		}
		log.Warn("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(time.Second * 5)
	}
	return log.Error("Failed to connect to database", fmt.Errorf("gave up after %d attempts: %w", maxRetries, err))
}

func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
