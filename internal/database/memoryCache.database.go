package database

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/coocood/freecache"
)

const (
	// freecache raises smaller sizes to this.
	freecacheMinSize = 512 * 1024
	// freecache refuses entries over a quarter of one of its 256 segments,
	// header included.
	freecacheEntryHeader = 24
	chunkSuffixLen       = 12
)

var ErrEntryTooLarge = errors.New("entry too large for memory cache")

// MemoryCache is the in-process byte cache used when no valkey cache is
// configured. freecache limits a single entry to 1/1024 of its size, so a
// value is split into chunk entries behind a head entry holding the chunk
// count. A value with an evicted chunk reads as missing.
type MemoryCache struct {
	mu        sync.Mutex
	cache     *freecache.Cache
	capacity  int
	entrySize int
}

func NewMemoryCache(sizeBytes int) *MemoryCache {
	sizeBytes = max(sizeBytes, freecacheMinSize)
	return &MemoryCache{
		cache:     freecache.NewCache(sizeBytes),
		capacity:  sizeBytes,
		entrySize: sizeBytes/1024 - freecacheEntryHeader,
	}
}

// MaxValueSize is the largest value Set accepts. Anything bigger would
// evict a large share of the cache on every write.
func (m *MemoryCache) MaxValueSize() int {
	return m.capacity / 4
}

func (m *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if len(value) > m.MaxValueSize() {
		return fmt.Errorf("%w: %d bytes, max %d", ErrEntryTooLarge, len(value), m.MaxValueSize())
	}

	// Small chunks spread a value over many segments, so one value does not
	// evict its own chunks from a crowded segment.
	chunkSize := min(m.entrySize/4, m.entrySize-len(key)-chunkSuffixLen)
	if chunkSize <= 0 {
		return fmt.Errorf("%w: key of %d bytes", ErrEntryTooLarge, len(key))
	}

	count := (len(value) + chunkSize - 1) / chunkSize
	expire := int(ttl.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.chunkCount(key)
	for i := range count {
		end := min((i+1)*chunkSize, len(value))
		if err := m.cache.Set(chunkKey(key, i), value[i*chunkSize:end], expire); err != nil {
			m.remove(key, max(count, previous))
			return err
		}
	}
	for i := count; i < previous; i++ {
		m.cache.Del(chunkKey(key, i))
	}

	head := binary.BigEndian.AppendUint32(nil, uint32(count))
	return m.cache.Set([]byte(key), head, expire)
}

// Get returns the value and whether every chunk of it was still present.
func (m *MemoryCache) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := m.chunkCount(key)
	if count < 0 {
		return nil, false, nil
	}

	value := make([]byte, 0, count*(m.entrySize/4))
	for i := range count {
		chunk, err := m.cache.Get(chunkKey(key, i))
		if errors.Is(err, freecache.ErrNotFound) {
			m.remove(key, count)
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		value = append(value, chunk...)
	}
	return value, true, nil
}

func (m *MemoryCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.remove(key, m.chunkCount(key))
}

// chunkCount is -1 when the head entry is missing.
func (m *MemoryCache) chunkCount(key string) int {
	head, err := m.cache.Get([]byte(key))
	if err != nil || len(head) != 4 {
		return -1
	}
	return int(binary.BigEndian.Uint32(head))
}

func (m *MemoryCache) remove(key string, count int) {
	m.cache.Del([]byte(key))
	for i := range count {
		m.cache.Del(chunkKey(key, i))
	}
}

func chunkKey(key string, index int) []byte {
	return []byte(key + "\x00#" + strconv.Itoa(index))
}
