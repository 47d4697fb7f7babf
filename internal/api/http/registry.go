package http

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/corector/internal/auth"
	"github.com/mind-engage/corector/internal/correction"
)

// DefaultWorkflowTTL is how long an untouched workflow is kept.
const DefaultWorkflowTTL = 2 * time.Hour

// Registry holds in-progress workflows. Each one has its own lock so a
// session is never driven by two requests at once. Workflows idle for
// longer than the TTL are dropped; finished sessions live on in the store.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory func(auth.Context) *correction.Workflow
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	mu      sync.Mutex
	owner   string
	wf      *correction.Workflow
	touched time.Time
}

func NewRegistry(factory func(auth.Context) *correction.Workflow, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultWorkflowTTL
	}
	return &Registry{entries: map[string]*entry{}, factory: factory, ttl: ttl, now: time.Now}
}

// Create starts a workflow and returns its handle id.
func (r *Registry) Create(ac auth.Context) string {
	id := uuid.NewString()
	e := &entry{owner: ac.OwnerID(), wf: r.factory(ac)}
	r.mu.Lock()
	now := r.now()
	r.evictLocked(now)
	e.touched = now
	r.entries[id] = e
	r.mu.Unlock()
	return id
}

// With runs fn with the workflow locked. It reports false when the id is
// unknown, expired or belongs to someone else.
func (r *Registry) With(id, owner string, fn func(*correction.Workflow)) bool {
	r.mu.Lock()
	now := r.now()
	e, ok := r.entries[id]
	if ok && now.Sub(e.touched) > r.ttl {
		delete(r.entries, id)
		ok = false
	}
	if ok && e.owner == owner {
		e.touched = now
	}
	r.mu.Unlock()
	if !ok || e.owner != owner {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.wf)
	return true
}

// Delete abandons a workflow. Anything already uploaded or stored stays.
func (r *Registry) Delete(id, owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.owner != owner {
		return false
	}
	delete(r.entries, id)
	return true
}

// Len reports how many workflows are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) evictLocked(now time.Time) {
	for id, e := range r.entries {
		if now.Sub(e.touched) > r.ttl {
			delete(r.entries, id)
		}
	}
}
