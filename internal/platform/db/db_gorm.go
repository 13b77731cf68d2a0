// Package db opens the gorm connection backing the Snapshot Store.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultPath is the sqlite file used when DB_PATH is unset.
	DefaultPath = "holdings.db"

	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Config selects the store backend. Postgres settings are ignored for sqlite.
type Config struct {
	Driver       string
	Path         string // sqlite file
	DSN          string // explicit postgres DSN, overrides the fields below
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	InstanceName string // Cloud SQL instance, connected through its unix socket
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv reads the database settings from the environment.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:       strings.ToLower(os.Getenv("DB_DRIVER")),
		Path:         os.Getenv("DB_PATH"),
		DSN:          os.Getenv("DB_DSN"),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	return cfg
}

// BuildDSN returns the postgres DSN for cfg. A Cloud SQL instance takes
// precedence over host and port.
func BuildDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// Location describes where snapshots are stored, without credentials.
func (c Config) Location() string {
	if c.Driver == DriverPostgres {
		switch {
		case c.InstanceName != "":
			return "postgres://cloudsql/" + c.InstanceName + "/" + c.Name
		case c.Host != "":
			return "postgres://" + c.Host + ":" + c.Port + "/" + c.Name
		default:
			return "postgres"
		}
	}
	return c.Path
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB opens the configured backend.
func OpenDB(cfg Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch cfg.Driver {
	case DriverPostgres:
		dsn := BuildDSN(cfg)
		// malformed DSNs fail fast
		pcfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		return ConnectWithRetry(dsn, connectTimeout, func(string) (*gorm.DB, error) {
			sqlDB := stdlib.OpenDB(*pcfg)
			gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gcfg)
			if err != nil {
				_ = sqlDB.Close()
				return nil, err
			}
			return gdb, nil
		})
	case DriverSQLite, "":
		path := cfg.Path
		if path == "" {
			path = DefaultPath
		}
		db, err := gorm.Open(sqlite.Open(path), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}
