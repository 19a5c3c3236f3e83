// Package reconcile keeps a local task collection in step with the task API.
//
// Edits are applied to the local Store first and sent afterwards. A failed
// request leaves the optimistic value in place and is reported through the
// Listener; a 404 means the task was deleted elsewhere and it is dropped
// locally. Drafts live only in the Store until their first commit creates them
// on the server, after which their id is swapped for the server id.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/llalegg/rd-tasks-sub000/internal/client"
	"github.com/llalegg/rd-tasks-sub000/internal/handlers/dto"
	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

const DefaultDebounce = time.Second

var (
	ErrUnknownTask  = errors.New("reconcile: unknown task")
	ErrNotTextField = errors.New("reconcile: field is not free text")
)

// API is the part of the task API the reconciler needs. *client.Client implements it.
type API interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	CreateTask(ctx context.Context, req dto.CreateTaskRequest) (task.Task, error)
	UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Listener receives notifications the user should see. Calls may come from
// timer goroutines.
type Listener interface {
	Promoted(draftID, id string)
	Removed(id string)
	Failed(id string, field Field, err error)
}

// ListenerFuncs adapts plain functions to Listener. Nil members are skipped.
type ListenerFuncs struct {
	OnPromoted func(draftID, id string)
	OnRemoved  func(id string)
	OnFailed   func(id string, field Field, err error)
}

func (l ListenerFuncs) Promoted(draftID, id string) {
	if l.OnPromoted != nil {
		l.OnPromoted(draftID, id)
	}
}

func (l ListenerFuncs) Removed(id string) {
	if l.OnRemoved != nil {
		l.OnRemoved(id)
	}
}

func (l ListenerFuncs) Failed(id string, field Field, err error) {
	if l.OnFailed != nil {
		l.OnFailed(id, field, err)
	}
}

type Reconciler struct {
	api              API
	store            *Store
	listener         Listener
	fallbackAssignee string
	debounce         time.Duration
	afterFunc        AfterFunc
	now              func() time.Time

	creates singleflight.Group

	mu       sync.Mutex
	promoted map[string]string
}

type Option func(*Reconciler)

// WithFallbackAssignee is sent as assigneeId when a draft is created unassigned.
func WithFallbackAssignee(id string) Option {
	return func(r *Reconciler) {
		r.fallbackAssignee = id
	}
}

func WithDebounce(d time.Duration) Option {
	return func(r *Reconciler) {
		r.debounce = d
	}
}

func WithListener(l Listener) Option {
	return func(r *Reconciler) {
		r.listener = l
	}
}

// WithAfterFunc replaces the timer source used by editors.
func WithAfterFunc(fn AfterFunc) Option {
	return func(r *Reconciler) {
		r.afterFunc = fn
	}
}

func WithStore(s *Store) Option {
	return func(r *Reconciler) {
		r.store = s
	}
}

func New(api API, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:       api,
		store:     NewStore(),
		listener:  ListenerFuncs{},
		debounce:  DefaultDebounce,
		afterFunc: realAfterFunc,
		now:       time.Now,
		promoted:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) Store() *Store {
	return r.store
}

// Load refreshes the local collection from the server.
func (r *Reconciler) Load(ctx context.Context) error {
	tasks, err := r.api.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	r.store.Load(tasks)
	logger.Debug("Reconciler: tasks loaded", zap.Int("count", len(tasks)))
	return nil
}

func (r *Reconciler) CreateDraft() task.Task {
	now := r.now().UTC()
	t := task.Task{
		ID:                task.DraftPrefix + ulid.Make().String(),
		Type:              task.TypeGeneralTodo,
		Status:            task.StatusNew,
		Priority:          task.PriorityMedium,
		RelatedAthleteIDs: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	r.store.Replace(t)
	return t.Clone()
}

// Resolve maps a promoted draft id to its server id. Other ids pass through.
func (r *Reconciler) Resolve(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if newID, ok := r.promoted[id]; ok {
		return newID
	}
	return id
}

// CommitField applies ch locally and persists it. On error the returned task
// is the local copy still holding the optimistic value.
func (r *Reconciler) CommitField(ctx context.Context, id string, ch Change) (task.Task, error) {
	id = r.Resolve(id)
	if task.IsDraftID(id) {
		return r.commitDraft(ctx, id, ch)
	}
	return r.commitPersisted(ctx, id, ch)
}

func (r *Reconciler) commitPersisted(ctx context.Context, id string, ch Change) (task.Task, error) {
	local, ok := r.applyLocal(id, ch)
	if !ok {
		return task.Task{}, ErrUnknownTask
	}

	updated, err := r.api.UpdateTask(ctx, id, ch.Request())
	if err != nil {
		return r.handleFailure(id, ch.Field, local, fmt.Errorf("update %s of task %s: %w", ch.Field, id, err))
	}
	r.store.Replace(updated)
	return updated.Clone(), nil
}

func (r *Reconciler) commitDraft(ctx context.Context, draftID string, ch Change) (task.Task, error) {
	local, ok := r.applyLocal(draftID, ch)
	if !ok {
		// promoted between Resolve and here
		if newID := r.Resolve(draftID); newID != draftID {
			return r.commitPersisted(ctx, newID, ch)
		}
		return task.Task{}, ErrUnknownTask
	}

	leader := false
	v, err, _ := r.creates.Do(draftID, func() (any, error) {
		// a create that finished just before this call already promoted the draft
		if newID := r.Resolve(draftID); newID != draftID {
			t, _ := r.store.Get(newID)
			return t, nil
		}
		leader = true
		return r.promote(ctx, draftID)
	})
	if err != nil {
		if leader {
			// a failed create keeps the draft so no input is lost
			r.listener.Failed(draftID, ch.Field, err)
			logger.Warn("Reconciler: create failed, draft kept",
				zap.String("draft_id", draftID),
				zap.String("field", string(ch.Field)),
				zap.Error(err))
		}
		return local, err
	}

	created := v.(task.Task)
	if leader {
		return created, nil
	}
	// the shared create may not have carried this caller's edit
	return r.commitPersisted(ctx, created.ID, ch)
}

func (r *Reconciler) promote(ctx context.Context, draftID string) (task.Task, error) {
	draft, ok := r.store.Get(draftID)
	if !ok {
		return task.Task{}, ErrUnknownTask
	}

	created, err := r.api.CreateTask(ctx, createRequest(draft, r.fallbackAssignee))
	if err != nil {
		return task.Task{}, fmt.Errorf("create task from draft %s: %w", draftID, err)
	}

	r.mu.Lock()
	r.store.Rename(draftID, created)
	r.promoted[draftID] = created.ID
	r.mu.Unlock()

	r.listener.Promoted(draftID, created.ID)
	logger.Info("Reconciler: draft promoted",
		zap.String("draft_id", draftID),
		zap.String("task_id", created.ID))
	return created.Clone(), nil
}

// DeleteTask discards drafts locally and deletes persisted tasks on the server.
func (r *Reconciler) DeleteTask(ctx context.Context, id string) error {
	id = r.Resolve(id)
	if task.IsDraftID(id) {
		if !r.store.Remove(id) {
			return ErrUnknownTask
		}
		r.listener.Removed(id)
		return nil
	}

	if err := r.api.DeleteTask(ctx, id); err != nil && !client.IsNotFound(err) {
		err = fmt.Errorf("delete task %s: %w", id, err)
		r.listener.Failed(id, "", err)
		return err
	}
	if r.store.Remove(id) {
		r.listener.Removed(id)
	}
	return nil
}

func (r *Reconciler) applyLocal(id string, ch Change) (task.Task, bool) {
	return r.store.update(id, func(t *task.Task) {
		task.Apply(t, ch.apply)
	})
}

func (r *Reconciler) handleFailure(id string, field Field, local task.Task, err error) (task.Task, error) {
	if client.IsNotFound(err) {
		r.store.Remove(id)
		r.listener.Removed(id)
		r.listener.Failed(id, field, err)
		logger.Warn("Reconciler: task deleted elsewhere", zap.String("task_id", id))
		return task.Task{}, err
	}
	r.listener.Failed(id, field, err)
	logger.Warn("Reconciler: commit failed, optimistic value kept",
		zap.String("task_id", id),
		zap.String("field", string(field)),
		zap.Error(err))
	return local, err
}
