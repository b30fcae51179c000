package config

import (
	"testing"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EnvironmentWithDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "8288")
	t.Setenv("DB_HOST", "")

	config, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8288, config.ServerPort)
	assert.Equal(t, "v1", config.OfflineCacheVersion)
	assert.True(t, config.OfflineServiceWorker)
	assert.True(t, config.OfflinePush)
	assert.Equal(t, -1, config.DatabaseCacheReset)
	assert.Equal(t, 24*7, config.AuthTokenTTLHours)
	assert.Equal(t, 32, config.OfflineMemoryCacheMB)
	assert.Empty(t, config.OfflineAdminSecret)
	assert.False(t, config.DatabaseConfigured())
	assert.False(t, config.CacheConfigured())
	assert.Equal(t, config, GetConfig())
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_HOST", "postgres")
	t.Setenv("DB_NAME", "zappygames")
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("DB_CACHE_ADDRESS", "valkey")
	t.Setenv("DB_CACHE_PORT", "6379")
	t.Setenv("OFFLINE_PUSH", "false")
	t.Setenv("OFFLINE_CACHE_VERSION", "v7")
	t.Setenv("OFFLINE_ADMIN_SECRET", "operator")

	config, err := New()
	require.NoError(t, err)

	assert.True(t, config.DatabaseConfigured())
	assert.True(t, config.CacheConfigured())
	assert.False(t, config.OfflinePush)
	assert.Equal(t, "v7", config.OfflineCacheVersion)
	assert.Equal(t, "operator", config.OfflineAdminSecret)
}

func TestValidateConfig(t *testing.T) {
	valid := Config{ServerPort: 8288, OfflineCacheVersion: "v1", OfflineMemoryCacheMB: 32, AuthTokenTTLHours: 1}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{name: "valid preview config", mutate: func(c *Config) {}},
		{name: "invalid port", mutate: func(c *Config) { c.ServerPort = 0 }, wantError: true},
		{
			name:      "database without secret",
			mutate:    func(c *Config) { c.DatabaseHost = "db"; c.DatabaseName = "z" },
			wantError: true,
		},
		{
			name: "database with secret",
			mutate: func(c *Config) {
				c.DatabaseHost = "db"
				c.DatabaseName = "z"
				c.AuthJWTSecret = "s"
			},
		},
		{name: "empty cache version", mutate: func(c *Config) { c.OfflineCacheVersion = "" }, wantError: true},
		{name: "zero memory cache", mutate: func(c *Config) { c.OfflineMemoryCacheMB = 0 }, wantError: true},
		{name: "zero token ttl", mutate: func(c *Config) { c.AuthTokenTTLHours = 0 }, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)

			err := validateConfig(config, logger.New("test"))
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
