package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	repo "github.com/llalegg/rd-tasks-sub000/internal/repository"
)

// Storage keeps tasks and persons in maps. Everything crossing the boundary
// is copied so callers never share memory with the store.
type Storage struct {
	mtx       *sync.RWMutex
	tasks     map[string]*task.Task
	ids       []string
	persons   map[string]*person.Person
	personIDs []string
}

func NewStorage() *Storage {
	return &Storage{
		mtx:     &sync.RWMutex{},
		tasks:   make(map[string]*task.Task),
		persons: make(map[string]*person.Person),
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: in-memory storage healthy")
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.tasks[taskToCreate.ID]; exists {
		return repo.ErrAlreadyExists
	}
	stored := taskToCreate.Clone()
	s.tasks[stored.ID] = &stored
	s.ids = append(s.ids, stored.ID)
	return nil
}

// Update merges the changed columns into the stored task under the write lock.
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task, changes task.Changes) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}
	stored := existing.Clone()
	stored.ApplyColumns(*taskToUpdate, changes.Columns)
	if changes.Athletes {
		stored.RelatedAthleteIDs = slices.Clone(taskToUpdate.RelatedAthleteIDs)
	}
	stored.UpdatedAt = task.NextUpdatedAt(existing.UpdatedAt, taskToUpdate.UpdatedAt)
	s.tasks[stored.ID] = &stored
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id string) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	found, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := found.Clone()
	return &res, nil
}

// List returns tasks in creation order.
func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.ids))
	for _, id := range s.ids {
		t := s.tasks[id].Clone()
		res = append(res, &t)
	}
	return res, nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.tasks, id)
	s.ids = slices.DeleteFunc(s.ids, func(v string) bool { return v == id })
	return nil
}
