package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

var ErrCacheUnavailable = errors.New("cache client is not configured")

type KeyType interface {
	string | []string | uuid.UUID
}

type CacheBuilder struct {
	cache      valkey.Client
	key        string
	keys       []string
	value      string
	field      string
	ttl        time.Duration
	ctx        context.Context
	ctxTimeout time.Duration
	member     string
	err        error
}

func NewCacheBuilder[K KeyType](cache valkey.Client, key K) *CacheBuilder {
	cacheBuilder := CacheBuilder{
		cache:      cache,
		ttl:        1 * time.Hour,
		ctxTimeout: 5 * time.Second,
		ctx:        context.Background(),
	}

	switch k := any(key).(type) {
	case string:
		cacheBuilder.key = k
	case uuid.UUID:
		cacheBuilder.key = k.String()
	case []string:
		cacheBuilder.keys = k
	}

	if cache == nil {
		cacheBuilder.err = ErrCacheUnavailable
	}

	return &cacheBuilder
}

func (cb *CacheBuilder) WithValue(value string) *CacheBuilder {
	cb.value = value
	return cb
}

func (cb *CacheBuilder) WithStruct(value any) *CacheBuilder {
	bytes, err := json.Marshal(value)
	if err != nil {
		cb.err = fmt.Errorf("failed to marshal value to json: %w", err)
		return cb
	}

	cb.value = string(bytes)
	return cb
}

func (cb *CacheBuilder) WithHash(hash string) *CacheBuilder {
	if hash != "" {
		cb.key = fmt.Sprintf("%s:%s", hash, cb.key)
	}

	return cb
}

func (cb *CacheBuilder) WithField(field string) *CacheBuilder {
	cb.field = field
	return cb
}

func (cb *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	cb.ttl = ttl
	return cb
}

func (cb *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	cb.ctx = ctx
	return cb
}

func (cb *CacheBuilder) WithTimeout(timeout time.Duration) *CacheBuilder {
	cb.ctxTimeout = timeout
	return cb
}

func (cb *CacheBuilder) Set() error {
	if cb.err != nil {
		return cb.err
	}

	if cb.key == "" {
		return fmt.Errorf("key is required")
	}

	if cb.value == "" {
		return fmt.Errorf("value is required")
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx, cb.cache.B().Set().Key(cb.key).Value(cb.value).Ex(cb.ttl).Build()).
		Error()
}

func (cb *CacheBuilder) Get(result any) (bool, error) {
	if cb.err != nil {
		return false, cb.err
	}

	if cb.key == "" {
		return false, fmt.Errorf("key is required")
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	data, err := cb.cache.Do(ctx, cb.cache.B().Get().Key(cb.key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}

	if data == "" {
		return false, nil
	}

	if err := json.Unmarshal([]byte(data), result); err != nil {
		return false, err
	}

	return true, nil
}

func (cb *CacheBuilder) Delete() error {
	if cb.err != nil {
		return cb.err
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx, cb.cache.B().Del().Key(cb.key).Build()).Error()
}

// Hashes

func (cb *CacheBuilder) HSet() error {
	if cb.err != nil {
		return cb.err
	}

	if cb.field == "" {
		return fmt.Errorf("field is required")
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx,
		cb.cache.B().Hset().Key(cb.key).FieldValue().FieldValue(cb.field, cb.value).Build(),
	).Error()
}

func (cb *CacheBuilder) HGet(result any) (bool, error) {
	if cb.err != nil {
		return false, cb.err
	}

	if cb.field == "" {
		return false, fmt.Errorf("field is required")
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	data, err := cb.cache.Do(ctx, cb.cache.B().Hget().Key(cb.key).Field(cb.field).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal([]byte(data), result); err != nil {
		return false, err
	}

	return true, nil
}

func (cb *CacheBuilder) HKeys() ([]string, error) {
	if cb.err != nil {
		return nil, cb.err
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx, cb.cache.B().Hkeys().Key(cb.key).Build()).AsStrSlice()
}

func (cb *CacheBuilder) HDel() error {
	if cb.err != nil {
		return cb.err
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx, cb.cache.B().Hdel().Key(cb.key).Field(cb.field).Build()).Error()
}

// Sets

func (cb *CacheBuilder) WithMember(id string) *CacheBuilder {
	cb.member = id
	return cb
}

func (cb *CacheBuilder) WithMemberUUID(id uuid.UUID) *CacheBuilder {
	cb.member = id.String()
	return cb
}

func (cb *CacheBuilder) AddSetMember() error {
	if cb.err != nil {
		return cb.err
	}

	if cb.member == "" {
		return fmt.Errorf("member is required")
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx,
		cb.cache.B().Sadd().
			Key(cb.key).
			Member(cb.member).
			Build()).Error()
}

func (cb *CacheBuilder) RemoveSetMember() error {
	if cb.err != nil {
		return cb.err
	}

	if cb.member == "" {
		return fmt.Errorf("member is required")
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx,
		cb.cache.B().Srem().
			Key(cb.key).
			Member(cb.member).
			Build()).Error()
}

func (cb *CacheBuilder) GetSetMembers() ([]string, error) {
	if cb.err != nil {
		return nil, cb.err
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx, cb.cache.B().Smembers().Key(cb.key).Build()).AsStrSlice()
}

// Pub/sub

func (cb *CacheBuilder) Publish() error {
	if cb.err != nil {
		return cb.err
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx, cb.cache.B().Publish().Channel(cb.key).Message(cb.value).Build()).
		Error()
}

func (cb *CacheBuilder) createTimeoutContext() (context.Context, context.CancelFunc) {
	if deadline, ok := cb.ctx.Deadline(); ok {
		if time.Until(deadline) < cb.ctxTimeout {
			return context.WithCancel(cb.ctx)
		}
	}
	return context.WithTimeout(cb.ctx, cb.ctxTimeout)
}
