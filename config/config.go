package config

import (
	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	PublicURL            string `mapstructure:"PUBLIC_URL"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset   int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	AuthJWTSecret        string `mapstructure:"AUTH_JWT_SECRET"`
	AuthTokenTTLHours    int    `mapstructure:"AUTH_TOKEN_TTL_HOURS"`
	OfflineOriginURL     string `mapstructure:"OFFLINE_ORIGIN_URL"`
	OfflineCacheVersion  string `mapstructure:"OFFLINE_CACHE_VERSION"`
	OfflineServiceWorker bool   `mapstructure:"OFFLINE_SERVICE_WORKER"`
	OfflinePush          bool   `mapstructure:"OFFLINE_PUSH"`
	OfflineSkipWaiting   bool   `mapstructure:"OFFLINE_SKIP_WAITING"`
	OfflineMemoryCacheMB int    `mapstructure:"OFFLINE_MEMORY_CACHE_MB"`
	OfflineAdminSecret   string `mapstructure:"OFFLINE_ADMIN_SECRET"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
	SchedulerTimezone    string `mapstructure:"SCHEDULER_TIMEZONE"`
	MetricsEnabled       bool   `mapstructure:"METRICS_ENABLED"`
}

var ConfigInstance Config

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT", "PUBLIC_URL",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
	"CORS_ALLOW_ORIGINS",
	"AUTH_JWT_SECRET", "AUTH_TOKEN_TTL_HOURS",
	"OFFLINE_ORIGIN_URL", "OFFLINE_CACHE_VERSION", "OFFLINE_SERVICE_WORKER", "OFFLINE_PUSH",
	"OFFLINE_SKIP_WAITING", "OFFLINE_MEMORY_CACHE_MB", "OFFLINE_ADMIN_SECRET",
	"SCHEDULER_ENABLED", "SCHEDULER_TIMEZONE", "METRICS_ENABLED",
}

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.Reset()
	setDefaults()

	// Enable automatic environment variable reading first
	viper.AutomaticEnv()

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	// SERVER_PORT has no default, so IsSet only reports a real environment value
	if viper.IsSet("SERVER_PORT") {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"databaseConfigured", config.DatabaseConfigured(),
		"cacheConfigured", config.CacheConfigured(),
	)

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "production")
	viper.SetDefault("GENERAL_VERSION", "1.0.0")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_CACHE_RESET", -1)
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")
	viper.SetDefault("AUTH_TOKEN_TTL_HOURS", 24*7)
	viper.SetDefault("OFFLINE_CACHE_VERSION", "v1")
	viper.SetDefault("OFFLINE_SERVICE_WORKER", true)
	viper.SetDefault("OFFLINE_PUSH", true)
	viper.SetDefault("OFFLINE_MEMORY_CACHE_MB", 32)
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	viper.SetDefault("METRICS_ENABLED", true)
}

// DatabaseConfigured reports whether the relational store should be used.
// An empty host selects preview mode.
func (c Config) DatabaseConfigured() bool {
	return c.DatabaseHost != ""
}

func (c Config) CacheConfigured() bool {
	return c.DatabaseCacheAddress != "" && c.DatabaseCachePort != 0
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.DatabaseConfigured() && config.AuthJWTSecret == "" {
		return log.ErrMsg("Fatal error: AUTH_JWT_SECRET required when DB_HOST is set")
	}

	if config.DatabaseConfigured() && config.DatabaseName == "" {
		return log.ErrMsg("Fatal error: DB_NAME required when DB_HOST is set")
	}

	if config.OfflineCacheVersion == "" {
		return log.ErrMsg("Fatal error: OFFLINE_CACHE_VERSION must not be empty")
	}

	if config.OfflineMemoryCacheMB <= 0 {
		return log.Error(
			"Fatal error: invalid offline memory cache size",
			"megabytes", config.OfflineMemoryCacheMB,
		)
	}

	if config.AuthTokenTTLHours <= 0 {
		return log.Error(
			"Fatal error: invalid token ttl",
			"hours", config.AuthTokenTTLHours,
		)
	}

	ConfigInstance = config
	return nil
}
