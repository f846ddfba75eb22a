package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/ppiankov/slangspace/internal/model"
)

// Cache stores opaque values by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives the cache key of a search term. Terms that normalize to
// the same string share a key.
func CacheKey(term string) string {
	hash := sha256.Sum256([]byte(model.NormalizeTerm(term)))
	return "slangspace:v1:" + hex.EncodeToString(hash[:])
}

// Results caches finished searches as JSON
type Results struct {
	backend Cache
	ttl     time.Duration
}

// NewResults wraps backend. A zero ttl uses the backend default.
func NewResults(backend Cache, ttl time.Duration) *Results {
	return &Results{backend: backend, ttl: ttl}
}

// Get returns the cached search for term. Undecodable entries are dropped
// and reported as a miss.
func (r *Results) Get(term string) (*model.SlangTerm, bool) {
	key := CacheKey(term)
	raw, ok := r.backend.Get(key)
	if !ok {
		return nil, false
	}
	var st model.SlangTerm
	if err := json.Unmarshal(raw, &st); err != nil {
		_ = r.backend.Delete(key)
		return nil, false
	}
	return &st, true
}

// Put caches st under its own term
func (r *Results) Put(st *model.SlangTerm) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return r.backend.Set(CacheKey(st.Term), raw, r.ttl)
}

// Forget drops the cached search for term
func (r *Results) Forget(term string) error {
	return r.backend.Delete(CacheKey(term))
}
