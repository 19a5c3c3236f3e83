package reconcile

import (
	"time"

	"github.com/llalegg/rd-tasks-sub000/internal/handlers/dto"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldType        Field = "type"
	FieldDeadline    Field = "deadline"
	FieldAssignee    Field = "assigneeId"
	FieldAthletes    Field = "relatedAthleteIds"
)

// IsText reports whether the field is edited as free text and autosaved.
func (f Field) IsText() bool {
	return f == FieldName || f == FieldDescription
}

// Change is one field edit: how it looks locally and how it goes on the wire.
type Change struct {
	Field Field
	apply task.TaskOption
	patch func(*dto.UpdateTaskRequest)
}

func SetName(v string) Change {
	return Change{
		Field: FieldName,
		apply: task.WithName(v),
		patch: func(r *dto.UpdateTaskRequest) { r.Name = dto.Some(v) },
	}
}

func SetDescription(v string) Change {
	return Change{
		Field: FieldDescription,
		apply: task.WithDescription(v),
		patch: func(r *dto.UpdateTaskRequest) { r.Description = dto.Some(v) },
	}
}

func SetStatus(v task.Status) Change {
	return Change{
		Field: FieldStatus,
		apply: task.WithStatus(v),
		patch: func(r *dto.UpdateTaskRequest) { r.Status = dto.Some(string(v)) },
	}
}

func SetPriority(v task.Priority) Change {
	return Change{
		Field: FieldPriority,
		apply: task.WithPriority(v),
		patch: func(r *dto.UpdateTaskRequest) { r.Priority = dto.Some(string(v)) },
	}
}

func SetType(v task.Type) Change {
	return Change{
		Field: FieldType,
		apply: task.WithType(v),
		patch: func(r *dto.UpdateTaskRequest) { r.Type = dto.Some(string(v)) },
	}
}

// SetDeadline with nil clears the deadline.
func SetDeadline(v *time.Time) Change {
	return Change{
		Field: FieldDeadline,
		apply: task.WithDeadline(v),
		patch: func(r *dto.UpdateTaskRequest) {
			if v == nil || v.IsZero() {
				r.Deadline = dto.Null[string]()
				return
			}
			r.Deadline = dto.Some(v.UTC().Format(time.RFC3339))
		},
	}
}

// SetAssignee with nil or "" unassigns.
func SetAssignee(v *string) Change {
	return Change{
		Field: FieldAssignee,
		apply: task.WithAssignee(v),
		patch: func(r *dto.UpdateTaskRequest) {
			if v == nil || *v == "" {
				r.AssigneeID = dto.Null[string]()
				return
			}
			r.AssigneeID = dto.Some(*v)
		},
	}
}

// SetAthletes replaces the whole related athlete set.
func SetAthletes(ids []string) Change {
	ids = task.UniqueIDs(ids)
	return Change{
		Field: FieldAthletes,
		apply: task.WithRelatedAthletes(ids),
		patch: func(r *dto.UpdateTaskRequest) { r.RelatedAthleteIDs = dto.Some(ids) },
	}
}

func textChange(field Field, v string) Change {
	if field == FieldDescription {
		return SetDescription(v)
	}
	return SetName(v)
}

func textValue(t task.Task, field Field) string {
	if field == FieldDescription {
		return t.Description
	}
	return t.Name
}

// Request is the partial update this change sends.
func (c Change) Request() dto.UpdateTaskRequest {
	var req dto.UpdateTaskRequest
	if c.patch != nil {
		c.patch(&req)
	}
	return req
}

// createRequest carries every field of a draft, filling what the API requires.
func createRequest(t task.Task, fallbackAssignee string) dto.CreateTaskRequest {
	req := dto.CreateTaskRequest{
		Name:              t.Name,
		Description:       t.Description,
		Type:              string(t.Type),
		Status:            string(t.Status),
		Priority:          string(t.Priority),
		AssigneeID:        t.AssigneeID,
		CreatorID:         t.CreatorID,
		RelatedAthleteIDs: t.RelatedAthleteIDs,
	}
	if req.Type == "" {
		req.Type = string(task.TypeGeneralTodo)
	}
	if req.Status == "" {
		req.Status = string(task.StatusNew)
	}
	if req.Priority == "" {
		req.Priority = string(task.PriorityMedium)
	}
	if req.AssigneeID == nil && fallbackAssignee != "" {
		fallback := fallbackAssignee
		req.AssigneeID = &fallback
	}
	if t.Deadline != nil {
		d := t.Deadline.UTC().Format(time.RFC3339)
		req.Deadline = &d
	}
	return req
}
