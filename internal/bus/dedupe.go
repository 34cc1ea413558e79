package bus

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DedupeCache remembers recently seen inbound messages so a channel that
// redelivers an update (reconnects, webhook retries) does not trigger a
// second round of replies.
type DedupeCache struct {
	seen *expirable.LRU[string, struct{}]
}

// NewDedupeCache keeps up to maxSize keys for ttl each.
func NewDedupeCache(ttl time.Duration, maxSize int) *DedupeCache {
	return &DedupeCache{
		seen: expirable.NewLRU[string, struct{}](maxSize, nil, ttl),
	}
}

// IsDuplicate reports whether msg was already seen within the TTL window and
// records it otherwise. Messages without an ID are never duplicates.
func (d *DedupeCache) IsDuplicate(msg InboundMessage) bool {
	if msg.ID == "" {
		return false
	}
	key := msg.Channel + ":" + msg.ChatID + ":" + msg.ID
	if d.seen.Contains(key) {
		return true
	}
	d.seen.Add(key, struct{}{})
	return false
}
