package session

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rgcouk/biglittle/redis"
)

// Blacklist revokes JWTs before their natural expiry so that sign-out is
// meaningful despite stateless tokens.
type Blacklist interface {
	Revoke(token string, ttl time.Duration) error
	IsRevoked(token string) bool
}

// Tokens is the process-wide blacklist, set up in main. Defaults to the
// in-memory store so tests and redis-less deployments work unchanged.
var Tokens Blacklist = NewMemoryBlacklist()

// Init picks the redis-backed store when a redis connection is available.
func Init() {
	if redis.Available() {
		Tokens = NewRedisBlacklist(redis.Client)
	}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked:" + hex.EncodeToString(sum[:])
}

// MemoryBlacklist keeps revocations in a map with lazy expiry. Suitable for
// single-process deployments only.
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time)}
}

func (m *MemoryBlacklist) Revoke(token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to revoke
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[tokenKey(token)] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryBlacklist) IsRevoked(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tokenKey(token)
	expiry, ok := m.entries[key]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(m.entries, key)
		return false
	}
	return true
}

// RedisBlacklist shares revocations across processes, keyed by token hash
// with TTL equal to the token's remaining life.
type RedisBlacklist struct {
	client *goredis.Client
}

func NewRedisBlacklist(client *goredis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (r *RedisBlacklist) Revoke(token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(redis.Ctx, tokenKey(token), "1", ttl).Err()
}

func (r *RedisBlacklist) IsRevoked(token string) bool {
	n, err := r.client.Exists(redis.Ctx, tokenKey(token)).Result()
	if err != nil {
		// Fail open: a dead redis must not lock every user out.
		return false
	}
	return n > 0
}
