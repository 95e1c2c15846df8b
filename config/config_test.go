package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, 100, cfg.Bulk.MaxIDs)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, 20, cfg.Pagination.DefaultLimit)
	assert.Equal(t, "memory", cfg.Selection.Store)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("BULK_MAX_IDS", "50")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("PAGINATION_MAX_PAGE_SIZE", "not-a-number")

	cfg := LoadEnv()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, 50, cfg.Bulk.MaxIDs)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize, "unparseable ints fall back to the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"unknown selection store", func(c *Config) { c.Selection.Store = "cookie" }},
		{"zero bulk limit", func(c *Config) { c.Bulk.MaxIDs = 0 }},
		{"default above max", func(c *Config) { c.Pagination.DefaultLimit = 500 }},
		{"zero select-all cap", func(c *Config) { c.Selection.SelectAllLimit = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadEnv()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
