package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	ckJournal = "journal_user_%s"
	ckSummary = "summary_user_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// NewJournalCache creates the cache shared by the upload and journal services.
func NewJournalCache(expiration, cleanup time.Duration) *cache.Cache {
	if expiration <= 0 {
		expiration = DefaultCacheExpiration
	}
	if cleanup <= 0 {
		cleanup = CacheCleanupInterval
	}
	return cache.New(expiration, cleanup)
}

func invalidateUserCache(c *cache.Cache, userID string) {
	c.Delete(fmt.Sprintf(ckJournal, userID))
	c.Delete(fmt.Sprintf(ckSummary, userID))
}

// ownerLocks serializes writes per user so concurrent uploads keep file and row order.
type ownerLocks struct {
	locks sync.Map // userID -> *sync.Mutex
}

func (o *ownerLocks) lockFor(userID string) *sync.Mutex {
	mu, _ := o.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
