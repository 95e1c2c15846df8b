package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver
	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type Config struct {
	Driver          string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

const defaultSQLiteDSN = "file:omnipos_inventory.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// Open connects to the configured relational store and verifies the connection.
func Open(ctx context.Context, cfg *Config) (*sqlx.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = buildDSN(cfg)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite has a single writer; one connection keeps transactions serialized.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}

func buildDSN(cfg *Config) string {
	switch cfg.Driver {
	case "pgx":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     cfg.Host + ":" + cfg.Port,
			Path:     "/" + cfg.DBName,
			RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
		}
		return u.String()
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	default:
		return defaultSQLiteDSN
	}
}
