// Package clientstate persists the small per-client values a browser would
// keep in local storage: dismissed prompts and the offline catalog
// snapshot.
package clientstate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
	"zappygames/internal/catalog"
	"zappygames/internal/database"
	"zappygames/internal/offline"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/goccy/go-json"
)

const (
	FlagInstallPromptDismissed      = "install-prompt-dismissed"
	FlagNotificationPromptDismissed = "notification-prompt-dismissed"

	CLIENT_STATE_PREFIX = "client_state"
	SNAPSHOT_PREFIX     = "snapshot"
	CLIENT_STATE_EXPIRY = 90 * 24 * time.Hour
)

var (
	ErrUnknownFlag     = errors.New("unknown client flag")
	ErrInvalidClientID = errors.New("invalid client id")
)

var knownFlags = []string{FlagInstallPromptDismissed, FlagNotificationPromptDismissed}

func IsKnownFlag(flag string) bool {
	return slices.Contains(knownFlags, flag)
}

// Snapshot is the timestamped catalog copy a client falls back to offline.
type Snapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	Games     []catalog.Game `json:"games"`
}

type State struct {
	ClientID string          `json:"clientId"`
	Flags    map[string]bool `json:"flags"`
	Snapshot *Snapshot       `json:"snapshot,omitempty"`
}

// Backend is the raw key/value store behind the client state.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Store struct {
	backend Backend
	log     logger.Logger
}

func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		log:     logger.New("clientstate"),
	}
}

func (s *Store) Backend() string {
	return s.backend.Name()
}

// Get returns every known flag, false when never set, and the latest
// snapshot if one was stored.
func (s *Store) Get(ctx context.Context, clientID string) (State, error) {
	log := s.log.TraceFromContext(ctx).Function("Get")

	if err := validateClientID(clientID); err != nil {
		return State{}, err
	}

	state := State{ClientID: clientID, Flags: make(map[string]bool, len(knownFlags))}
	for _, flag := range knownFlags {
		state.Flags[flag] = false
	}

	var flags map[string]bool
	if _, err := s.backend.Get(ctx, flagsKey(clientID), &flags); err != nil {
		return State{}, log.Err("failed to load client flags", err, "clientID", clientID)
	}
	for flag, value := range flags {
		if IsKnownFlag(flag) {
			state.Flags[flag] = value
		}
	}

	snapshot, err := s.GetSnapshot(ctx, clientID)
	if err != nil {
		return State{}, err
	}
	state.Snapshot = snapshot

	return state, nil
}

func (s *Store) SetFlag(ctx context.Context, clientID, flag string, value bool) (State, error) {
	log := s.log.TraceFromContext(ctx).Function("SetFlag")

	if err := validateClientID(clientID); err != nil {
		return State{}, err
	}
	if !IsKnownFlag(flag) {
		return State{}, fmt.Errorf("%w: %s", ErrUnknownFlag, flag)
	}

	flags := make(map[string]bool)
	if _, err := s.backend.Get(ctx, flagsKey(clientID), &flags); err != nil {
		return State{}, log.Err("failed to load client flags", err, "clientID", clientID)
	}
	if flags == nil {
		flags = make(map[string]bool)
	}
	flags[flag] = value

	if err := s.backend.Set(ctx, flagsKey(clientID), flags, CLIENT_STATE_EXPIRY); err != nil {
		return State{}, log.Err("failed to store client flag", err, "clientID", clientID, "flag", flag)
	}

	return s.Get(ctx, clientID)
}

// SaveSnapshot stores games as the client's offline snapshot, stamped with
// now.
func (s *Store) SaveSnapshot(
	ctx context.Context,
	clientID string,
	games []catalog.Game,
	now time.Time,
) (Snapshot, error) {
	log := s.log.TraceFromContext(ctx).Function("SaveSnapshot")

	if err := validateClientID(clientID); err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{Timestamp: now.UTC(), Games: games}
	if snapshot.Games == nil {
		snapshot.Games = []catalog.Game{}
	}

	if err := s.backend.Set(ctx, snapshotKey(clientID), snapshot, CLIENT_STATE_EXPIRY); err != nil {
		return Snapshot{}, log.Err("failed to store snapshot", err, "clientID", clientID)
	}

	return snapshot, nil
}

func (s *Store) GetSnapshot(ctx context.Context, clientID string) (*Snapshot, error) {
	return s.loadSnapshot(ctx, snapshotKey(clientID))
}

// SaveSharedSnapshot refreshes the snapshot served to clients running the
// foreground fallback.
func (s *Store) SaveSharedSnapshot(
	ctx context.Context,
	games []catalog.Game,
	now time.Time,
) (Snapshot, error) {
	log := s.log.TraceFromContext(ctx).Function("SaveSharedSnapshot")

	snapshot := Snapshot{Timestamp: now.UTC(), Games: games}
	if err := s.backend.Set(ctx, offline.SNAPSHOT_KEY, snapshot, CLIENT_STATE_EXPIRY); err != nil {
		return Snapshot{}, log.Err("failed to store shared snapshot", err)
	}
	return snapshot, nil
}

func (s *Store) GetSharedSnapshot(ctx context.Context) (*Snapshot, error) {
	return s.loadSnapshot(ctx, offline.SNAPSHOT_KEY)
}

func (s *Store) loadSnapshot(ctx context.Context, key string) (*Snapshot, error) {
	log := s.log.TraceFromContext(ctx).Function("loadSnapshot")

	var snapshot Snapshot
	found, err := s.backend.Get(ctx, key, &snapshot)
	if err != nil {
		return nil, log.Err("failed to load snapshot", err, "key", key)
	}
	if !found {
		return nil, nil
	}
	return &snapshot, nil
}

func validateClientID(clientID string) error {
	if clientID == "" || len(clientID) > 128 {
		return fmt.Errorf("%w: %q", ErrInvalidClientID, clientID)
	}
	return nil
}

func flagsKey(clientID string) string {
	return CLIENT_STATE_PREFIX + ":" + clientID
}

func snapshotKey(clientID string) string {
	return SNAPSHOT_PREFIX + ":" + clientID
}

type valkeyBackend struct {
	client database.CacheClient
}

func NewValkeyBackend(client database.CacheClient) Backend {
	return &valkeyBackend{client: client}
}

func (b *valkeyBackend) Name() string { return "valkey" }

func (b *valkeyBackend) Get(ctx context.Context, key string, out any) (bool, error) {
	return database.NewCacheBuilder(b.client, key).WithContext(ctx).Get(out)
}

func (b *valkeyBackend) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return database.NewCacheBuilder(b.client, key).
		WithContext(ctx).
		WithStruct(value).
		WithTTL(ttl).
		Set()
}

type memoryBackend struct {
	cache *database.MemoryCache
}

func NewMemoryBackend(sizeBytes int) Backend {
	return &memoryBackend{cache: database.NewMemoryCache(sizeBytes)}
}

func (b *memoryBackend) Name() string { return "memory" }

func (b *memoryBackend) Get(_ context.Context, key string, out any) (bool, error) {
	data, found, err := b.cache.Get(key)
	if err != nil || !found {
		return false, err
	}
	return true, json.Unmarshal(data, out)
}

func (b *memoryBackend) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.cache.Set(key, data, ttl)
}
