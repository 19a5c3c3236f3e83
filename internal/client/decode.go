package client

import (
	"time"

	"github.com/llalegg/rd-tasks-sub000/internal/deadline"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

// wireTask mirrors the response body loosely: deadline stays a string and the
// enums are plain strings, so an older or newer server never fails decoding.
type wireTask struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       *string   `json:"description"`
	Type              string    `json:"type"`
	Status            string    `json:"status"`
	Priority          string    `json:"priority"`
	Deadline          *string   `json:"deadline"`
	AssigneeID        *string   `json:"assigneeId"`
	CreatorID         *string   `json:"creatorId"`
	RelatedAthleteIDs []string  `json:"relatedAthleteIds"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// toTask normalises known spellings and keeps unknown enum values as they are;
// the formatters decide how to show them.
func (w wireTask) toTask() task.Task {
	t := task.Task{
		ID:                w.ID,
		Name:              w.Name,
		Type:              task.NormalizeType(w.Type),
		Status:            task.NormalizeStatus(w.Status),
		Priority:          task.NormalizePriority(w.Priority),
		AssigneeID:        blankToNil(w.AssigneeID),
		CreatorID:         blankToNil(w.CreatorID),
		RelatedAthleteIDs: task.UniqueIDs(w.RelatedAthleteIDs),
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
	if w.Description != nil {
		t.Description = *w.Description
	}
	if w.Deadline != nil {
		t.Deadline = deadline.ParseLenient(*w.Deadline)
	}
	return t
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
