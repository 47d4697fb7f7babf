package correction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/corector/internal/grading"
)

type ListOpts struct {
	OwnerID     string // empty lists every owner
	StudentName string // matched with grading.SameName
	Limit       int
	Offset      int
}

// Store persists finished sessions and named rubrics. Lists are newest first.
type Store interface {
	PutSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, opts ListOpts) ([]Session, error)
	DeleteSession(ctx context.Context, ownerID, id string) error

	// PutRubric assigns an id when the rubric has none. An id owned by
	// someone else returns ErrNotFound and leaves the stored rubric alone.
	PutRubric(ctx context.Context, rb grading.Rubric) (grading.Rubric, error)
	GetRubric(ctx context.Context, ownerID, id string) (grading.Rubric, error)
	ListRubrics(ctx context.Context, ownerID string) ([]grading.Rubric, error)
	DeleteRubric(ctx context.Context, ownerID, id string) error
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	rubrics  map[string]grading.Rubric
	seq      map[string]int // insertion order, breaks created_at ties
	next     int
}

func NewInMemoryStore() Store {
	return &memoryStore{
		sessions: map[string]Session{},
		rubrics:  map[string]grading.Rubric{},
		seq:      map[string]int{},
	}
}

func (m *memoryStore) PutSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if _, ok := m.seq[s.ID]; !ok {
		m.next++
		m.seq[s.ID] = m.next
	}
	m.sessions[s.ID] = s.clone()
	return nil
}

func (m *memoryStore) GetSession(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s.clone(), nil
}

func (m *memoryStore) ListSessions(_ context.Context, opts ListOpts) ([]Session, error) {
	m.mu.RLock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if opts.OwnerID != "" && s.OwnerID != opts.OwnerID {
			continue
		}
		out = append(out, s.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.seq[out[i].ID] > m.seq[out[j].ID]
	})
	m.mu.RUnlock()
	return filterSessions(out, opts), nil
}

func (m *memoryStore) DeleteSession(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || (ownerID != "" && s.OwnerID != ownerID) {
		return ErrNotFound
	}
	delete(m.sessions, id)
	delete(m.seq, id)
	return nil
}

func (m *memoryStore) PutRubric(_ context.Context, rb grading.Rubric) (grading.Rubric, error) {
	if err := rb.Validate(); err != nil {
		return grading.Rubric{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rb.ID == "" {
		rb.ID = uuid.NewString()
	}
	if prev, ok := m.rubrics[rb.ID]; ok && prev.OwnerID != rb.OwnerID {
		return grading.Rubric{}, ErrNotFound
	}
	rb.Stamp(rb.OwnerID, time.Now())
	if _, ok := m.seq[rb.ID]; !ok {
		m.next++
		m.seq[rb.ID] = m.next
	}
	rb.Items = append([]grading.Item{}, rb.Items...)
	m.rubrics[rb.ID] = rb
	return rb, nil
}

func (m *memoryStore) GetRubric(_ context.Context, ownerID, id string) (grading.Rubric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rb, ok := m.rubrics[id]
	if !ok || rb.OwnerID != ownerID {
		return grading.Rubric{}, ErrNotFound
	}
	rb.Items = append([]grading.Item{}, rb.Items...)
	return rb, nil
}

func (m *memoryStore) ListRubrics(_ context.Context, ownerID string) ([]grading.Rubric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []grading.Rubric{}
	for _, rb := range m.rubrics {
		if rb.OwnerID != ownerID {
			continue
		}
		rb.Items = append([]grading.Item{}, rb.Items...)
		out = append(out, rb)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return m.seq[out[i].ID] > m.seq[out[j].ID]
	})
	return out, nil
}

func (m *memoryStore) DeleteRubric(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rb, ok := m.rubrics[id]
	if !ok || rb.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.rubrics, id)
	delete(m.seq, id)
	return nil
}

// filterSessions applies the student filter and paging to a sorted list.
func filterSessions(in []Session, opts ListOpts) []Session {
	out := in
	if opts.StudentName != "" {
		out = make([]Session, 0, len(in))
		for _, s := range in {
			if grading.SameName(s.StudentName, opts.StudentName) {
				out = append(out, s)
			}
		}
	}
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []Session{}
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out
}
