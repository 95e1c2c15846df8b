package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Selection  SelectionConfig
	Bulk       BulkConfig
	Pagination PaginationConfig
	Import     ImportConfig
}

type ServerConfig struct {
	AppEnv       string
	HTTPPort     string
	GRPCPort     string
	ReadTimeout  int
	WriteTimeout int
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type DatabaseConfig struct {
	Driver          string // pgx, postgres or sqlite
	DSN             string // overrides the discrete fields when set
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SelectionConfig struct {
	Store          string // memory or redis
	TTLSeconds     int
	SelectAllLimit int
}

type BulkConfig struct {
	MaxIDs int
}

type PaginationConfig struct {
	DefaultLimit int
	MaxPageSize  int
}

type ImportConfig struct {
	MaxUploadBytes int64
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:       getEnv("APP_ENV", "dev"),
			HTTPPort:     getEnv("HTTP_PORT", ":8080"),
			GRPCPort:     getEnv("GRPC_PORT", ":8082"),
			ReadTimeout:  getEnvInt("HTTP_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("HTTP_WRITE_TIMEOUT", 60),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "pgx"),
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_inventory"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("DB_CONN_MAX_IDLE_TIME", 60),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Selection: SelectionConfig{
			Store:          getEnv("SELECTION_STORE", "memory"),
			TTLSeconds:     getEnvInt("SELECTION_TTL_SECONDS", 86400),
			SelectAllLimit: getEnvInt("SELECTION_SELECT_ALL_LIMIT", 10000),
		},
		Bulk: BulkConfig{
			MaxIDs: getEnvInt("BULK_MAX_IDS", 100),
		},
		Pagination: PaginationConfig{
			DefaultLimit: getEnvInt("PAGINATION_DEFAULT_LIMIT", 20),
			MaxPageSize:  getEnvInt("PAGINATION_MAX_PAGE_SIZE", 100),
		},
		Import: ImportConfig{
			MaxUploadBytes: int64(getEnvInt("IMPORT_MAX_UPLOAD_BYTES", 10<<20)),
		},
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Selection.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported SELECTION_STORE %q", c.Selection.Store)
	}
	if c.Bulk.MaxIDs <= 0 {
		return fmt.Errorf("BULK_MAX_IDS must be positive")
	}
	if c.Pagination.MaxPageSize <= 0 || c.Pagination.DefaultLimit <= 0 {
		return fmt.Errorf("pagination limits must be positive")
	}
	if c.Pagination.DefaultLimit > c.Pagination.MaxPageSize {
		return fmt.Errorf("PAGINATION_DEFAULT_LIMIT exceeds PAGINATION_MAX_PAGE_SIZE")
	}
	if c.Selection.SelectAllLimit <= 0 {
		return fmt.Errorf("SELECTION_SELECT_ALL_LIMIT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
