package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	rep "github.com/llalegg/rd-tasks-sub000/internal/repository"
)

type TaskService struct {
	repo    TaskRepository
	persons PersonRepository
	now     func() time.Time
}

type Option func(*TaskService)

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

func NewTaskService(repo TaskRepository, persons PersonRepository, opts ...Option) *TaskService {
	s := &TaskService{
		repo:    repo,
		persons: persons,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

// CreateTask builds a task from defaults plus options and persists it.
// The creator can only be set here.
func (s *TaskService) CreateTask(ctx context.Context, opts ...task.TaskOption) (*task.Task, error) {
	newTask := &task.Task{
		ID:                uuid.NewString(),
		Type:              task.TypeGeneralTodo,
		Status:            task.StatusNew,
		Priority:          task.PriorityMedium,
		RelatedAthleteIDs: []string{},
	}
	task.Apply(newTask, opts...)

	if err := s.validate(ctx, newTask); err != nil {
		return nil, err
	}

	now := s.timestamp()
	newTask.CreatedAt = now
	newTask.UpdatedAt = now

	if err := s.repo.Create(ctx, newTask); err != nil {
		logger.Error("Service: create task", err, zap.String("task_id", newTask.ID))
		return nil, NewInternal("create task", err)
	}

	logger.Info("Service: task created",
		zap.String("task_id", newTask.ID),
		zap.Int("athletes", len(newTask.RelatedAthleteIDs)))
	return newTask, nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		logger.Error("Service: list tasks", err)
		return nil, NewInternal("list tasks", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id string) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("target_id", id))
			return nil, NewNotFound(ResourceTask, id)
		}
		return nil, NewInternal("get task", err)
	}
	return found, nil
}

// UpdateTask applies a sparse update. Only the fields whose value changed are
// written, so fields without an option keep whatever the store holds at write
// time; updatedAt always moves forward.
func (s *TaskService) UpdateTask(ctx context.Context, id string, opts ...task.TaskOption) (*task.Task, error) {
	current, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := current.Clone()
	task.Apply(current, opts...)
	current.ID = before.ID
	current.CreatorID = before.CreatorID
	current.CreatedAt = before.CreatedAt

	if err := s.validate(ctx, current); err != nil {
		return nil, err
	}

	current.UpdatedAt = s.nextUpdatedAt(before.UpdatedAt)
	changes := task.Diff(before, *current)

	if err := s.repo.Update(ctx, current, changes); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(ResourceTask, id)
		}
		logger.Error("Service: update task", err, zap.String("task_id", id))
		return nil, NewInternal("update task", err)
	}

	logger.Info("Service: task updated",
		zap.String("task_id", id),
		zap.Int("columns", len(changes.Columns)),
		zap.Bool("athletes_replaced", changes.Athletes))
	return s.GetTaskByID(ctx, id)
}

// DeleteTask is idempotent: deleting an unknown id succeeds.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, rep.ErrNotFound) {
		logger.Error("Service: delete task", err, zap.String("task_id", id))
		return NewInternal("delete task", err)
	}
	return nil
}

func (s *TaskService) validate(ctx context.Context, t *task.Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", fmt.Sprintf("unknown value %q", t.Status))
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", fmt.Sprintf("unknown value %q", t.Priority))
	}
	if !t.Type.IsValid() {
		return NewValidationError("type", fmt.Sprintf("unknown value %q", t.Type))
	}

	t.RelatedAthleteIDs = task.UniqueIDs(t.RelatedAthleteIDs)

	var lookup []string
	if t.AssigneeID != nil {
		lookup = append(lookup, *t.AssigneeID)
	}
	if t.CreatorID != nil {
		lookup = append(lookup, *t.CreatorID)
	}
	lookup = append(lookup, t.RelatedAthleteIDs...)
	if len(lookup) == 0 {
		return nil
	}

	found, err := s.persons.FindPersons(ctx, task.UniqueIDs(lookup))
	if err != nil {
		return NewInternal("look up persons", err)
	}
	byID := make(map[string]*person.Person, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	if t.AssigneeID != nil && byID[*t.AssigneeID] == nil {
		return NewValidationError("assigneeId", fmt.Sprintf("person %s does not exist", *t.AssigneeID))
	}
	if t.CreatorID != nil && byID[*t.CreatorID] == nil {
		return NewValidationError("creatorId", fmt.Sprintf("person %s does not exist", *t.CreatorID))
	}

	var bad []string
	for _, id := range t.RelatedAthleteIDs {
		if !byID[id].IsAthlete() {
			bad = append(bad, id)
		}
	}
	if len(bad) > 0 {
		return NewBusinessError(CodeValidation,
			"relatedAthleteIds must reference existing athletes",
			ToDetail("field", "relatedAthleteIds"),
			ToDetail("invalid_ids", bad))
	}
	return nil
}

// Stored timestamps keep microseconds, so that is the step used to stay
// strictly after the previous value.
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *TaskService) nextUpdatedAt(prev time.Time) time.Time {
	return task.NextUpdatedAt(prev, s.now())
}
