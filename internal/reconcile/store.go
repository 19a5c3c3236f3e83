package reconcile

import (
	"slices"
	"sync"

	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

// Store is the local task collection every view reads from. Values going in
// and out are deep copies.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]task.Task
	ids   []string
}

func NewStore() *Store {
	return &Store{tasks: make(map[string]task.Task)}
}

func (s *Store) Get(id string) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, false
	}
	return t.Clone(), true
}

// Replace inserts t or overwrites the entry with the same id in place.
func (s *Store) Replace(t task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[t.ID]; !ok {
		s.ids = append(s.ids, t.ID)
	}
	s.tasks[t.ID] = t.Clone()
}

func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false
	}
	delete(s.tasks, id)
	s.ids = slices.DeleteFunc(s.ids, func(v string) bool { return v == id })
	return true
}

// All returns tasks in insertion order.
func (s *Store) All() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]task.Task, 0, len(s.ids))
	for _, id := range s.ids {
		res = append(res, s.tasks[id].Clone())
	}
	return res
}

// Rename puts t where oldID was. If oldID is gone t is appended.
func (s *Store) Rename(oldID string, t task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if oldID != t.ID {
		if _, exists := s.tasks[t.ID]; exists {
			s.ids = slices.DeleteFunc(s.ids, func(v string) bool { return v == t.ID })
		}
	}

	idx := slices.Index(s.ids, oldID)
	delete(s.tasks, oldID)
	switch {
	case idx >= 0:
		s.ids[idx] = t.ID
	default:
		s.ids = append(s.ids, t.ID)
	}
	s.tasks[t.ID] = t.Clone()
}

// Load swaps the persisted tasks for a fresh server listing. Drafts survive.
func (s *Store) Load(tasks []task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]task.Task, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if _, dup := next[t.ID]; dup {
			continue
		}
		next[t.ID] = t.Clone()
		ids = append(ids, t.ID)
	}
	for _, id := range s.ids {
		if task.IsDraftID(id) {
			next[id] = s.tasks[id]
			ids = append(ids, id)
		}
	}
	s.tasks = next
	s.ids = ids
}

// update applies fn to the stored task under the write lock.
func (s *Store) update(id string, fn func(*task.Task)) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, false
	}
	fn(&t)
	s.tasks[id] = t
	return t.Clone(), true
}
