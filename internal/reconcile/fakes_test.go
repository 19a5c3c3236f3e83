package reconcile_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/llalegg/rd-tasks-sub000/internal/client"
	"github.com/llalegg/rd-tasks-sub000/internal/deadline"
	"github.com/llalegg/rd-tasks-sub000/internal/handlers/dto"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	"github.com/llalegg/rd-tasks-sub000/internal/reconcile"
)

// fakeAPI is a tiny in-process task server.
type fakeAPI struct {
	mu         sync.Mutex
	tasks      map[string]task.Task
	order      []string
	nextID     int
	clock      time.Time
	createReqs []dto.CreateTaskRequest
	updateReqs []dto.UpdateTaskRequest
	deletes    []string

	createErr error
	updateErr error
	deleteErr error

	// when set, CreateTask signals createStarted and waits for createGate
	createGate    chan struct{}
	createStarted chan struct{}

	// same for UpdateTask
	updateGate    chan struct{}
	updateStarted chan struct{}
}

func newFakeAPI(seed ...task.Task) *fakeAPI {
	f := &fakeAPI{
		tasks: make(map[string]task.Task),
		clock: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	for _, t := range seed {
		f.tasks[t.ID] = t
		f.order = append(f.order, t.ID)
	}
	return f
}

func (f *fakeAPI) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeAPI) ListTasks(context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]task.Task, 0, len(f.order))
	for _, id := range f.order {
		if t, ok := f.tasks[id]; ok {
			res = append(res, t.Clone())
		}
	}
	return res, nil
}

func (f *fakeAPI) CreateTask(_ context.Context, req dto.CreateTaskRequest) (task.Task, error) {
	if f.createGate != nil {
		f.createStarted <- struct{}{}
		<-f.createGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.createReqs = append(f.createReqs, req)
	if f.createErr != nil {
		return task.Task{}, f.createErr
	}

	f.nextID++
	now := f.tick()
	t := task.Task{
		ID:                fmt.Sprintf("srv-%d", f.nextID),
		Name:              req.Name,
		Description:       req.Description,
		Type:              task.Type(req.Type),
		Status:            task.Status(req.Status),
		Priority:          task.Priority(req.Priority),
		AssigneeID:        req.AssigneeID,
		CreatorID:         req.CreatorID,
		RelatedAthleteIDs: task.UniqueIDs(req.RelatedAthleteIDs),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.Deadline != nil {
		t.Deadline = deadline.ParseLenient(*req.Deadline)
	}
	f.tasks[t.ID] = t
	f.order = append(f.order, t.ID)
	return t.Clone(), nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id string, req dto.UpdateTaskRequest) (task.Task, error) {
	if f.updateGate != nil {
		f.updateStarted <- struct{}{}
		<-f.updateGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateReqs = append(f.updateReqs, req)
	if f.updateErr != nil {
		return task.Task{}, f.updateErr
	}
	t, ok := f.tasks[id]
	if !ok {
		return task.Task{}, &client.APIError{StatusCode: http.StatusNotFound, Code: "NOT_FOUND"}
	}

	var opts []task.TaskOption
	if req.Name.Set {
		opts = append(opts, task.WithName(req.Name.Value))
	}
	if req.Description.Set {
		opts = append(opts, task.WithDescription(req.Description.Value))
	}
	if req.Status.Set {
		opts = append(opts, task.WithStatus(task.Status(req.Status.Value)))
	}
	if req.Priority.Set {
		opts = append(opts, task.WithPriority(task.Priority(req.Priority.Value)))
	}
	if req.Type.Set {
		opts = append(opts, task.WithType(task.Type(req.Type.Value)))
	}
	if req.Deadline.Set {
		var d *time.Time
		if !req.Deadline.Null {
			d = deadline.ParseLenient(req.Deadline.Value)
		}
		opts = append(opts, task.WithDeadline(d))
	}
	if req.AssigneeID.Set {
		opts = append(opts, task.WithAssignee(req.AssigneeID.Ptr()))
	}
	if req.RelatedAthleteIDs.Set {
		opts = append(opts, task.WithRelatedAthletes(req.RelatedAthleteIDs.Value))
	}
	task.Apply(&t, opts...)
	t.UpdatedAt = f.tick()
	f.tasks[id] = t
	return t.Clone(), nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.tasks[id]; !ok {
		return &client.APIError{StatusCode: http.StatusNotFound, Code: "NOT_FOUND"}
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeAPI) server(id string) (task.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	return t, ok
}

func (f *fakeAPI) counts() (creates, updates, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createReqs), len(f.updateReqs), len(f.deletes)
}

func (f *fakeAPI) lastUpdate() dto.UpdateTaskRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateReqs[len(f.updateReqs)-1]
}

// manualClock fires timers only when told to.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	clock *manualClock
	fn    func()
	done  bool
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) reconcile.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Fire runs every live timer and returns how many ran.
func (c *manualClock) Fire() int {
	c.mu.Lock()
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.done {
			t.done = true
			due = append(due, t)
		}
	}
	c.timers = nil
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
	return len(due)
}

type recorder struct {
	mu       sync.Mutex
	promoted [][2]string
	removed  []string
	failed   []reconcile.Field
}

func (r *recorder) listener() reconcile.ListenerFuncs {
	return reconcile.ListenerFuncs{
		OnPromoted: func(draftID, id string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.promoted = append(r.promoted, [2]string{draftID, id})
		},
		OnRemoved: func(id string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.removed = append(r.removed, id)
		},
		OnFailed: func(_ string, field reconcile.Field, _ error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.failed = append(r.failed, field)
		},
	}
}
