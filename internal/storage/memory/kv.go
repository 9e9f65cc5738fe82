package memory

import (
	"context"
	"sync"
	"time"
)

type kvEntry struct {
	value     []byte
	expiresAt time.Time
}

// KV stands in for Redis keys: the token deny-list and the report cache.
type KV struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]kvEntry
}

func NewKV() *KV {
	return &KV{now: time.Now, entries: make(map[string]kvEntry)}
}

func (k *KV) get(key string) ([]byte, bool) {
	e, ok := k.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !k.now().Before(e.expiresAt) {
		delete(k.entries, key)
		return nil, false
	}
	return e.value, true
}

func (k *KV) set(key string, value []byte, ttl time.Duration) {
	e := kvEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = k.now().Add(ttl)
	}
	k.entries[key] = e
}

func (k *KV) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.set("revoked_token:"+jti, []byte("1"), ttl)
	return nil
}

func (k *KV) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.get("revoked_token:" + jti)
	return ok, nil
}

func (k *KV) CacheGet(_ context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (k *KV) CacheSet(_ context.Context, key string, value []byte, ttl time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.set(key, value, ttl)
	return nil
}

func (k *KV) CacheDelete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.entries, key)
	return nil
}
