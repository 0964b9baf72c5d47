package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"todolist/internal/config"
)

// Connect opens the Postgres connection pool described by cfg.
func Connect(cfg *config.Config) (*sql.DB, error) {
	logrus.WithFields(logrus.Fields{
		"host":    cfg.DBHost,
		"port":    cfg.DBPort,
		"user":    cfg.DBUser,
		"db":      cfg.DBName,
		"sslmode": cfg.DBSSLMode,
	}).Info("Connecting to database")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleMinutes) * time.Minute)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifeMinutes) * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logrus.Info("Connected to database successfully")
	return db, nil
}
