package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseConfig describes one MySQL connection. The handle it opens is owned
// by the process entry point and passed explicitly to the engine; there is no
// package-level database singleton.
type DatabaseConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DatabaseConfigFromEnv reads DB_* environment variables.
func DatabaseConfigFromEnv() DatabaseConfig {
	return DatabaseConfig{
		User:            os.Getenv("DB_USER"),
		Password:        os.Getenv("DB_PASSWORD"),
		Host:            os.Getenv("DB_HOST"),
		Port:            os.Getenv("DB_PORT"),
		Name:            os.Getenv("DB_NAME"),
		MaxOpenConns:    intFromEnv("DB_MAX_OPEN_CONNS", 50),
		MaxIdleConns:    intFromEnv("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
		ConnMaxIdleTime: time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second,
	}
}

// OpenDatabase opens a pooled GORM handle and installs the otelgorm plugin.
func OpenDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	network := "tcp"
	address := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	// Cloud SQL Auth Proxy exposes a unix socket under /cloudsql/<CONNECTION_NAME>.
	if strings.HasPrefix(cfg.Host, "/cloudsql/") {
		network = "unix"
		address = cfg.Host
	}

	dsn := fmt.Sprintf("%s:%s@%s(%s)/%s?multiStatements=true&parseTime=true",
		cfg.User,
		cfg.Password,
		network,
		address,
		cfg.Name,
	)

	db, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}

	if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns >= 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
		if cfg.ConnMaxIdleTime > 0 {
			sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
		}
	}

	if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
		log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
	}
	return db, nil
}

// OpenDatabaseWithRetry keeps retrying with capped exponential backoff.
// Call this from main() after the HTTP server is listening so container
// platforms see the port open quickly.
func OpenDatabaseWithRetry(cfg DatabaseConfig) *gorm.DB {
	var attempt int
	for {
		attempt++
		db, err := OpenDatabase(cfg)
		if err == nil {
			log.Printf("connected to database (attempt=%d)", attempt)
			return db
		}
		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

func gormConfig() *gorm.Config {
	logLevel := logger.Warn
	if strings.EqualFold(os.Getenv("DB_LOG_LEVEL"), "info") {
		logLevel = logger.Info
	}
	return &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
