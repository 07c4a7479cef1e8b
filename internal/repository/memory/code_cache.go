package memory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// CodeCache memoizes the session-code -> session-id mapping, which is
// immutable once a session exists. Write-once session fields (summary,
// report) are deliberately never cached here: concurrent client
// instances do not share process memory, so those must always go
// through the store's conditional writes.
type CodeCache struct {
	cache *cache.Cache
}

func NewCodeCache() *CodeCache {
	// 1 hour default expiration, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &CodeCache{
		cache: c,
	}
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *CodeCache) Save(code string, sessionID uuid.UUID) {
	r.cache.Set(normalize(code), sessionID, cache.DefaultExpiration)
}

func (r *CodeCache) Get(code string) (uuid.UUID, bool) {
	if x, found := r.cache.Get(normalize(code)); found {
		return x.(uuid.UUID), true
	}
	return uuid.Nil, false
}
