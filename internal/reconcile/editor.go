package reconcile

import (
	"context"
	"sync"

	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

// Editor autosaves one free-text field of one task. Keystrokes are shown at
// once and committed after the quiet period; Blur and Confirm commit now.
type Editor struct {
	r         *Reconciler
	id        string
	field     Field
	debouncer *Debouncer

	mu        sync.Mutex
	value     string
	committed string
	seq       uint64
	dirty     bool
}

func (r *Reconciler) Editor(id string, field Field) (*Editor, error) {
	if !field.IsText() {
		return nil, ErrNotTextField
	}
	t, ok := r.store.Get(r.Resolve(id))
	if !ok {
		return nil, ErrUnknownTask
	}
	current := textValue(t, field)
	return &Editor{
		r:         r,
		id:        id,
		field:     field,
		debouncer: NewDebouncer(r.afterFunc),
		value:     current,
		committed: current,
	}, nil
}

func (e *Editor) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Type records a keystroke and restarts the quiet period.
func (e *Editor) Type(value string) {
	e.mu.Lock()
	e.value = value
	e.seq++
	e.dirty = true
	e.mu.Unlock()

	e.r.applyLocal(e.r.Resolve(e.id), textChange(e.field, value))
	// in-flight commits outlive the editor, so timer commits do not use a caller context
	e.debouncer.Schedule(func() {
		_, _ = e.commit(context.Background())
	}, e.r.debounce)
}

func (e *Editor) Blur(ctx context.Context) (task.Task, error) {
	e.debouncer.Cancel()
	return e.commit(ctx)
}

func (e *Editor) Confirm(ctx context.Context) (task.Task, error) {
	return e.Blur(ctx)
}

// Cancel drops pending keystrokes and restores the last committed value.
func (e *Editor) Cancel() {
	e.debouncer.Cancel()

	e.mu.Lock()
	e.value = e.committed
	e.dirty = false
	e.seq++
	committed := e.committed
	e.mu.Unlock()

	e.r.applyLocal(e.r.Resolve(e.id), textChange(e.field, committed))
}

// Close stops a pending autosave. A commit already on the wire still lands.
func (e *Editor) Close() {
	e.debouncer.Cancel()
}

func (e *Editor) commit(ctx context.Context) (task.Task, error) {
	e.mu.Lock()
	if !e.dirty {
		e.mu.Unlock()
		t, _ := e.r.store.Get(e.r.Resolve(e.id))
		return t, nil
	}
	value, seq := e.value, e.seq
	e.mu.Unlock()

	t, err := e.r.CommitField(ctx, e.id, textChange(e.field, value))
	if err != nil {
		return t, err
	}

	e.mu.Lock()
	e.committed = value
	if e.seq == seq || !e.dirty {
		// a Cancel during the save reverts to what the server now holds
		e.value = value
		e.dirty = false
		e.mu.Unlock()
		return t, nil
	}
	// keystrokes arrived while saving; the server response must not hide them
	latest := e.value
	e.mu.Unlock()

	if local, ok := e.r.applyLocal(e.r.Resolve(e.id), textChange(e.field, latest)); ok {
		return local, nil
	}
	return t, nil
}
