package gateway

import (
	"context"
	"time"
	"zappygames/internal/database"

	"github.com/coocood/freecache"
)

const (
	SESSION_CACHE_PREFIX   = "auth_session"
	MemorySessionStoreSize = 8 * 1024 * 1024
)

// SessionStore tracks live session ids so that sign out can revoke a token
// before it expires.
type SessionStore interface {
	Name() string
	Save(ctx context.Context, sessionID string, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type valkeySessionStore struct {
	client database.CacheClient
}

func NewValkeySessionStore(client database.CacheClient) SessionStore {
	return &valkeySessionStore{client: client}
}

func (s *valkeySessionStore) Name() string { return "valkey" }

func (s *valkeySessionStore) Save(ctx context.Context, sessionID string, ttl time.Duration) error {
	return database.NewCacheBuilder(s.client, sessionID).
		WithContext(ctx).
		WithHash(SESSION_CACHE_PREFIX).
		WithStruct(time.Now().UTC()).
		WithTTL(ttl).
		Set()
}

func (s *valkeySessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	var createdAt time.Time
	return database.NewCacheBuilder(s.client, sessionID).
		WithContext(ctx).
		WithHash(SESSION_CACHE_PREFIX).
		Get(&createdAt)
}

func (s *valkeySessionStore) Delete(ctx context.Context, sessionID string) error {
	return database.NewCacheBuilder(s.client, sessionID).
		WithContext(ctx).
		WithHash(SESSION_CACHE_PREFIX).
		Delete()
}

type memorySessionStore struct {
	cache *freecache.Cache
}

// NewMemorySessionStore keeps sessions in process. Sessions do not survive
// a restart and are not shared between instances.
func NewMemorySessionStore(size int) SessionStore {
	return &memorySessionStore{cache: freecache.NewCache(size)}
}

func (s *memorySessionStore) Name() string { return "memory" }

func (s *memorySessionStore) Save(_ context.Context, sessionID string, ttl time.Duration) error {
	return s.cache.Set([]byte(sessionID), []byte{1}, int(ttl.Seconds()))
}

func (s *memorySessionStore) Exists(_ context.Context, sessionID string) (bool, error) {
	_, err := s.cache.Get([]byte(sessionID))
	if err == freecache.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *memorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.cache.Del([]byte(sessionID))
	return nil
}
