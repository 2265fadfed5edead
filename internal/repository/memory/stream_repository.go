package memory

import (
	"time"

	"ai-chat-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// StreamRepository holds active stream state per session. Entries expire
// on their own so a crashed stream cannot poison a session forever.
type StreamRepository struct {
	cache *cache.Cache
}

func NewStreamRepository() *StreamRepository {
	c := cache.New(10*time.Minute, 5*time.Minute)
	return &StreamRepository{
		cache: c,
	}
}

// Claim registers the stream only when its session has no active one.
// Add is a single step under the cache lock, so two concurrent claims on
// the same session cannot both win.
func (r *StreamRepository) Claim(state *store.StreamState) bool {
	return r.cache.Add(state.SessionID, state, cache.DefaultExpiration) == nil
}

func (r *StreamRepository) Save(state *store.StreamState) {
	r.cache.Set(state.SessionID, state, cache.DefaultExpiration)
}

func (r *StreamRepository) Get(sessionID string) (*store.StreamState, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.StreamState), true
	}
	return nil, false
}

func (r *StreamRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
