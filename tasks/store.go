package tasks

import (
	"sort"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Store is the in-memory task registry. Tasks are stored and returned as
// clones: each task has a single writer (its runner goroutine), and readers
// only ever see snapshots.
type Store struct {
	tasks cmap.ConcurrentMap[string, *Task]
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{tasks: cmap.New[*Task]()}
}

// Put stores a snapshot of the task, replacing any previous one.
func (s *Store) Put(t *Task) {
	s.tasks.Set(t.ID.String(), t.Clone())
}

// Get returns a snapshot of the task.
func (s *Store) Get(id uuid.UUID) (*Task, bool) {
	t, ok := s.tasks.Get(id.String())
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Filter narrows List results.
type Filter struct {
	Status Status // zero value matches all
	Limit  int    // 0 means no limit
}

// List returns task snapshots, newest first.
func (s *Store) List(filter Filter) []*Task {
	out := make([]*Task, 0, s.tasks.Count())
	for item := range s.tasks.IterBuffered() {
		t := item.Val
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

// Count reports the number of stored tasks.
func (s *Store) Count() int { return s.tasks.Count() }
