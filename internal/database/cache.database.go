package database

import (
	"context"
	"fmt"
	"time"
	"zappygames/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/valkey-io/valkey-go"
)

// Valkey Database Index Organization
// Each database index provides logical separation for different cache categories
const (
	// GENERAL_CACHE_INDEX (DB 0) - Client state flags and catalog snapshots
	GENERAL_CACHE_INDEX = iota

	// SESSION_CACHE_INDEX (DB 1) - Auth sessions issued by the gateway
	SESSION_CACHE_INDEX

	// USER_CACHE_INDEX (DB 2) - Likes, recent plays and profiles per user
	USER_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 3) - Pub/sub fan-out for pushes across instances
	EVENTS_CACHE_INDEX

	// OFFLINE_CACHE_INDEX (DB 4) - Versioned cache generations of the offline worker
	OFFLINE_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := fmt.Sprintf("%s:%d", config.DatabaseCacheAddress, config.DatabaseCachePort)

	cacheDB, err := NewCache(address)
	if err != nil {
		return log.Err("failed to create valkey clients", err, "address", address)
	}

	s.Cache = cacheDB

	if config.DatabaseCacheReset != -1 {
		go clearCacheDB(config.DatabaseCacheReset, cacheDB)
	}

	return nil
}

// NewCache opens one client per logical database on the given address.
func NewCache(address string, options ...func(*valkey.ClientOption)) (Cache, error) {
	var cacheDB Cache

	open := func(index int) (CacheClient, error) {
		option := valkey.ClientOption{
			InitAddress: []string{address},
			SelectDB:    index,
		}
		for _, apply := range options {
			apply(&option)
		}
		return valkey.NewClient(option)
	}

	var err error
	if cacheDB.General, err = open(GENERAL_CACHE_INDEX); err != nil {
		return Cache{}, fmt.Errorf("general client: %w", err)
	}
	if cacheDB.Session, err = open(SESSION_CACHE_INDEX); err != nil {
		return Cache{}, fmt.Errorf("session client: %w", err)
	}
	if cacheDB.User, err = open(USER_CACHE_INDEX); err != nil {
		return Cache{}, fmt.Errorf("user client: %w", err)
	}
	if cacheDB.Events, err = open(EVENTS_CACHE_INDEX); err != nil {
		return Cache{}, fmt.Errorf("events client: %w", err)
	}
	if cacheDB.Offline, err = open(OFFLINE_CACHE_INDEX); err != nil {
		return Cache{}, fmt.Errorf("offline client: %w", err)
	}

	return cacheDB, nil
}

func clearCacheDB(index int, cacheDB Cache) {
	log := logger.New("database").File("cache.database").Function("clearCacheDB")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var client CacheClient
	var dbName string

	switch index {
	case GENERAL_CACHE_INDEX:
		client = cacheDB.General
		dbName = "General"
	case SESSION_CACHE_INDEX:
		client = cacheDB.Session
		dbName = "Session"
	case USER_CACHE_INDEX:
		client = cacheDB.User
		dbName = "User"
	case EVENTS_CACHE_INDEX:
		client = cacheDB.Events
		dbName = "Events"
	case OFFLINE_CACHE_INDEX:
		client = cacheDB.Offline
		dbName = "Offline"
	default:
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "index", index, "dbName", dbName)
		return
	}

	log.Info("Successfully cleared cache database", "index", index, "dbName", dbName)
}

// WithoutClientCache disables client side caching, for servers that do not
// support CLIENT TRACKING.
func WithoutClientCache(option *valkey.ClientOption) {
	option.DisableCache = true
}
