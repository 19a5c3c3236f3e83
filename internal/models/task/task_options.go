package task

import (
	"strings"
	"time"
)

// TaskOption mutates a single field. A nil option means "leave the field as is".
type TaskOption func(*Task)

func WithName(name string) TaskOption {
	return func(task *Task) {
		task.Name = strings.TrimSpace(name)
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithStatus(status Status) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.Status = status
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithType(taskType Type) TaskOption {
	if taskType == "" {
		return nil
	}
	return func(task *Task) {
		task.Type = taskType
	}
}

// WithDeadline sets or clears (nil) the deadline.
func WithDeadline(deadline *time.Time) TaskOption {
	return func(task *Task) {
		if deadline == nil || deadline.IsZero() {
			task.Deadline = nil
			return
		}
		d := deadline.UTC()
		task.Deadline = &d
	}
}

// WithAssignee sets or clears (nil or empty) the assignee.
func WithAssignee(assigneeID *string) TaskOption {
	return func(task *Task) {
		if assigneeID == nil || strings.TrimSpace(*assigneeID) == "" {
			task.AssigneeID = nil
			return
		}
		id := strings.TrimSpace(*assigneeID)
		task.AssigneeID = &id
	}
}

// WithRelatedAthletes replaces the whole athlete set.
func WithRelatedAthletes(ids []string) TaskOption {
	return func(task *Task) {
		task.RelatedAthleteIDs = UniqueIDs(ids)
	}
}

func Apply(t *Task, options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}

// WithCreator is only honoured on create; updates never touch the creator.
func WithCreator(creatorID *string) TaskOption {
	return func(task *Task) {
		if creatorID == nil || strings.TrimSpace(*creatorID) == "" {
			task.CreatorID = nil
			return
		}
		id := strings.TrimSpace(*creatorID)
		task.CreatorID = &id
	}
}
