package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dsa_arena/internal/platform/config"
	"dsa_arena/internal/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

var DB *sql.DB

// Connect opens the pool and verifies it with a ping.
func Connect(ctx context.Context, log *logger.Logger) error {
	var err error
	DB, err = sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = DB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	log.Info("connected to PostgreSQL", "host", config.AppConfig.DBHost, "db", config.AppConfig.DBName)
	return nil
}

func Close(log *logger.Logger) {
	if DB != nil {
		if err := DB.Close(); err != nil {
			log.Warn("database close failed", "error", err)
			return
		}
		log.Info("database connection closed")
	}
}
