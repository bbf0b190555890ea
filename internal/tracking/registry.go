package tracking

import (
	"sync"

	"github.com/google/uuid"
)

// Registry owns the single active tracker per user. Only one session may
// be open per account at a time; a second start is rejected until the
// first is ended or discarded.
type Registry struct {
	mu       sync.RWMutex
	trackers map[uuid.UUID]*Tracker
	opts     []Option
}

func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		trackers: map[uuid.UUID]*Tracker{},
		opts:     opts,
	}
}

// Acquire returns the user's tracker, creating an idle one if absent.
func (r *Registry) Acquire(userID uuid.UUID) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.trackers[userID]
	if t == nil {
		t = NewTracker(r.opts...)
		r.trackers[userID] = t
	}
	return t
}

// Get returns the user's tracker without creating one.
func (r *Registry) Get(userID uuid.UUID) (*Tracker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trackers[userID]
	return t, ok
}

// Range calls fn for every registered tracker. fn runs under the
// registry read lock; keep it short.
func (r *Registry) Range(fn func(userID uuid.UUID, t *Tracker)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, t := range r.trackers {
		fn(id, t)
	}
}

// Discard drops the user's tracker. Cancellation of an open session is
// exactly this: stop feeding it and throw the instance away.
func (r *Registry) Discard(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, userID)
}
