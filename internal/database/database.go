package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"zappygames/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/valkey-io/valkey-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type CacheClient valkey.Client

type Cache struct {
	General CacheClient
	Session CacheClient
	User    CacheClient
	Events  CacheClient
	Offline CacheClient
}

// DB holds the optional relational store and cache clients. Either side may
// be nil, which puts the dependent components in preview mode.
type DB struct {
	SQL   *gorm.DB
	Cache Cache
	log   logger.Logger
}

func New(config config.Config) (DB, error) {
	log := logger.New("database").Function("New")

	log.Info("Initializing database")
	db := &DB{log: log}

	if config.DatabaseConfigured() {
		if err := db.initializeDB(config); err != nil {
			return DB{}, log.Err("failed to initialize database", err)
		}
	} else {
		log.Warn("DB_HOST not set, running without a relational store")
	}

	if config.CacheConfigured() {
		if err := db.initializeCacheDB(config); err != nil {
			return DB{}, log.Err("failed to initialize cache database", err)
		}
	} else {
		log.Warn("cache address not set, falling back to in-process caches")
	}

	return *db, nil
}

// NewWithClients wraps already opened connections.
func NewWithClients(sql *gorm.DB, cache Cache) DB {
	return DB{SQL: sql, Cache: cache, log: logger.New("database")}
}

func (s *DB) HasSQL() bool {
	return s.SQL != nil
}

func (s *DB) HasCache() bool {
	return s.Cache.General != nil
}

func TXDefer(tx *gorm.DB, log logger.Logger) {
	if tx.Error != nil {
		log.Er("failed to commit transaction", tx.Error)
		tx.Rollback()
	} else {
		err := tx.Commit().Error
		if err != nil {
			log.Er("failed to commit transaction", err)
		}
	}
}

func GormConfig() *gorm.Config {
	gormLogger := gormLogger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
		gormLogger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  gormLogger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	return &gorm.Config{
		Logger:                 gormLogger,
		PrepareStmt:            true,
		TranslateError:         true,
		SkipDefaultTransaction: true,
	}
}

func (s *DB) initializeDB(config config.Config) error {
	return s.initializePostgresDB(GormConfig(), config)
}

func (s *DB) initializePostgresDB(gormConfig *gorm.Config, config config.Config) error {
	log := s.log.Function("initializePostgresDB")

	if config.DatabaseName == "" {
		return log.Error("database name is empty")
	}
	if config.DatabaseUser == "" {
		return log.Error("database user is empty")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseName,
	)

	log.Info(
		"Connecting to PostgreSQL",
		"host", config.DatabaseHost,
		"port", config.DatabasePort,
		"database", config.DatabaseName,
	)
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return log.Err("failed to open PostgreSQL database with GORM", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return log.Err("failed to ping PostgreSQL database through GORM", err)
	}

	log.Info("Successfully connected to PostgreSQL with GORM")
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s.SQL = db

	return nil
}

func (s *DB) Close() (err error) {
	if s.SQL != nil {
		sqlDB, dbErr := s.SQL.DB()
		if dbErr == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				err = s.log.Err("failed to close database", closeErr)
			}
		}
	}

	for _, client := range s.cacheClients() {
		if client.client != nil {
			client.client.Close()
		}
	}

	return err
}

func (s *DB) SQLWithContext(ctx context.Context) *gorm.DB {
	return s.SQL.WithContext(ctx)
}

type namedClient struct {
	client CacheClient
	name   string
}

func (s *DB) cacheClients() []namedClient {
	return []namedClient{
		{s.Cache.General, "General"},
		{s.Cache.Session, "Session"},
		{s.Cache.User, "User"},
		{s.Cache.Events, "Events"},
		{s.Cache.Offline, "Offline"},
	}
}

func (s *DB) FlushAllCaches() error {
	log := s.log.Function("FlushAllCaches")
	log.Info("Flushing all cache databases")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cache := range s.cacheClients() {
		if cache.client == nil {
			continue
		}
		if err := cache.client.Do(ctx, cache.client.B().Flushdb().Build()).Error(); err != nil {
			return log.Err("Failed to flush cache database", err, "cache", cache.name)
		}
		log.Info("Successfully flushed cache database", "cache", cache.name)
	}

	log.Info("All cache databases flushed successfully")
	return nil
}
