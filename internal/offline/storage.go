package offline

import (
	"context"
	"slices"
	"sync"
	"zappygames/internal/database"

	"github.com/goccy/go-json"
)

const (
	GENERATIONS_REGISTRY_KEY = "offline:generations"
	GENERATION_CACHE_PREFIX  = "offline:generation"
)

// Storage holds named cache generations, each a map from request key to
// stored response.
type Storage interface {
	Name() string
	Open(ctx context.Context, generation string) error
	Names(ctx context.Context) ([]string, error)
	Put(ctx context.Context, generation, key string, response Response) error
	Match(ctx context.Context, generation, key string) (Response, bool, error)
	Delete(ctx context.Context, generation string) error
}

type valkeyStorage struct {
	client database.CacheClient
}

// NewValkeyStorage keeps a registry set of generation names and one hash
// per generation.
func NewValkeyStorage(client database.CacheClient) Storage {
	return &valkeyStorage{client: client}
}

func (s *valkeyStorage) Name() string { return "valkey" }

func (s *valkeyStorage) Open(ctx context.Context, generation string) error {
	return database.NewCacheBuilder(s.client, GENERATIONS_REGISTRY_KEY).
		WithContext(ctx).
		WithMember(generation).
		AddSetMember()
}

func (s *valkeyStorage) Names(ctx context.Context) ([]string, error) {
	names, err := database.NewCacheBuilder(s.client, GENERATIONS_REGISTRY_KEY).
		WithContext(ctx).
		GetSetMembers()
	if err != nil {
		return nil, err
	}

	slices.Sort(names)
	return names, nil
}

func (s *valkeyStorage) Put(ctx context.Context, generation, key string, response Response) error {
	if err := s.Open(ctx, generation); err != nil {
		return err
	}

	return database.NewCacheBuilder(s.client, generation).
		WithContext(ctx).
		WithHash(GENERATION_CACHE_PREFIX).
		WithField(key).
		WithStruct(response).
		HSet()
}

func (s *valkeyStorage) Match(
	ctx context.Context,
	generation, key string,
) (Response, bool, error) {
	var response Response
	found, err := database.NewCacheBuilder(s.client, generation).
		WithContext(ctx).
		WithHash(GENERATION_CACHE_PREFIX).
		WithField(key).
		HGet(&response)
	return response, found, err
}

func (s *valkeyStorage) Delete(ctx context.Context, generation string) error {
	if err := database.NewCacheBuilder(s.client, generation).
		WithContext(ctx).
		WithHash(GENERATION_CACHE_PREFIX).
		Delete(); err != nil {
		return err
	}

	return database.NewCacheBuilder(s.client, GENERATIONS_REGISTRY_KEY).
		WithContext(ctx).
		WithMember(generation).
		RemoveSetMember()
}

// memoryStorage keeps responses in a chunked freecache. Entries may be
// evicted under memory pressure, which reads as a cache miss.
type memoryStorage struct {
	mu          sync.Mutex
	cache       *database.MemoryCache
	generations map[string]map[string]struct{}
}

func NewMemoryStorage(sizeBytes int) Storage {
	return &memoryStorage{
		cache:       database.NewMemoryCache(sizeBytes),
		generations: make(map[string]map[string]struct{}),
	}
}

func (s *memoryStorage) Name() string { return "memory" }

func (s *memoryStorage) Open(_ context.Context, generation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open(generation)
	return nil
}

func (s *memoryStorage) open(generation string) map[string]struct{} {
	keys, ok := s.generations[generation]
	if !ok {
		keys = make(map[string]struct{})
		s.generations[generation] = keys
	}
	return keys
}

func (s *memoryStorage) Names(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.generations))
	for name := range s.generations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *memoryStorage) Put(_ context.Context, generation, key string, response Response) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.open(generation)
	if err := s.cache.Set(entryKey(generation, key), data, 0); err != nil {
		return err
	}
	keys[key] = struct{}{}
	return nil
}

func (s *memoryStorage) Match(_ context.Context, generation, key string) (Response, bool, error) {
	s.mu.Lock()
	_, known := s.generations[generation][key]
	s.mu.Unlock()

	if !known {
		return Response{}, false, nil
	}

	data, found, err := s.cache.Get(entryKey(generation, key))
	if err != nil || !found {
		return Response{}, false, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, false, err
	}
	return response, true, nil
}

func (s *memoryStorage) Delete(_ context.Context, generation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.generations[generation] {
		s.cache.Del(entryKey(generation, key))
	}
	delete(s.generations, generation)
	return nil
}

func entryKey(generation, key string) string {
	return generation + "\x00" + key
}
