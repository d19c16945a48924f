package repositories

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultSessionTTL      = 30 * time.Minute
	defaultCleanupInterval = 1 * time.Minute
)

// SessionRepository keeps per-browser state in memory with a sliding TTL.
type SessionRepository[T any] interface {
	Get(id string) (T, bool)
	GetOrCreate(id string, create func() T) T
	Delete(id string)
	Len() int
	CleanExpired()
}

type sessionRepository[T any] struct {
	// mu serializes lookups that refresh or replace an entry.
	mu    sync.Mutex
	cache *cache.Cache
}

// NewSessionRepository creates the store and its janitor. onEvict runs for expired,
// replaced and deleted sessions, outside the cache lock.
func NewSessionRepository[T any](ttl, cleanupInterval time.Duration, onEvict func(id string, value T)) SessionRepository[T] {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	c := cache.New(ttl, cleanupInterval)
	if onEvict != nil {
		c.OnEvicted(func(id string, value interface{}) {
			if v, ok := value.(T); ok {
				onEvict(id, v)
			}
		})
	}

	return &sessionRepository[T]{cache: c}
}

// Get returns a live session and pushes its expiry forward.
func (r *sessionRepository[T]) Get(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.touch(id)
}

func (r *sessionRepository[T]) GetOrCreate(id string, create func() T) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.touch(id); ok {
		return v
	}

	// an expired entry the janitor has not collected yet still gets its evict hook
	r.cache.Delete(id)

	value := create()
	r.cache.SetDefault(id, value)
	return value
}

func (r *sessionRepository[T]) Delete(id string) {
	r.cache.Delete(id)
}

func (r *sessionRepository[T]) Len() int {
	return r.cache.ItemCount()
}

// CleanExpired evicts expired sessions now instead of waiting for the janitor.
func (r *sessionRepository[T]) CleanExpired() {
	r.cache.DeleteExpired()
}

// touch fails when the entry expired or was collected between the read and the refresh.
func (r *sessionRepository[T]) touch(id string) (T, bool) {
	var zero T

	raw, ok := r.cache.Get(id)
	if !ok {
		return zero, false
	}
	if err := r.cache.Replace(id, raw, cache.DefaultExpiration); err != nil {
		return zero, false
	}

	v, ok := raw.(T)
	return v, ok
}
