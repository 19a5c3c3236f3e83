package dto

import (
	"time"

	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

type CreateTaskRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Type              string   `json:"type,omitempty"`
	Status            string   `json:"status,omitempty"`
	Priority          string   `json:"priority,omitempty"`
	Deadline          *string  `json:"deadline,omitempty"`
	AssigneeID        *string  `json:"assigneeId,omitempty"`
	CreatorID         *string  `json:"creatorId,omitempty"`
	RelatedAthleteIDs []string `json:"relatedAthleteIds,omitempty"`
}

// UpdateTaskRequest is a sparse update. A field left out means "no change",
// an explicit null clears it where clearing is allowed.
type UpdateTaskRequest struct {
	Name              Nullable[string]   `json:"name,omitzero"`
	Description       Nullable[string]   `json:"description,omitzero"`
	Type              Nullable[string]   `json:"type,omitzero"`
	Status            Nullable[string]   `json:"status,omitzero"`
	Priority          Nullable[string]   `json:"priority,omitzero"`
	Deadline          Nullable[string]   `json:"deadline,omitzero"`
	AssigneeID        Nullable[string]   `json:"assigneeId,omitzero"`
	RelatedAthleteIDs Nullable[[]string] `json:"relatedAthleteIds,omitzero"`
}

func (r UpdateTaskRequest) IsEmpty() bool {
	return !r.Name.Set && !r.Description.Set && !r.Type.Set && !r.Status.Set &&
		!r.Priority.Set && !r.Deadline.Set && !r.AssigneeID.Set && !r.RelatedAthleteIDs.Set
}

type TaskResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	Deadline          *time.Time `json:"deadline"`
	AssigneeID        *string    `json:"assigneeId"`
	CreatorID         *string    `json:"creatorId"`
	RelatedAthleteIDs []string   `json:"relatedAthleteIds"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func FromTask(t *task.Task) TaskResponse {
	athletes := t.RelatedAthleteIDs
	if athletes == nil {
		athletes = []string{}
	}
	return TaskResponse{
		ID:                t.ID,
		Name:              t.Name,
		Description:       t.Description,
		Type:              string(t.Type),
		Status:            string(t.Status),
		Priority:          string(t.Priority),
		Deadline:          t.Deadline,
		AssigneeID:        t.AssigneeID,
		CreatorID:         t.CreatorID,
		RelatedAthleteIDs: athletes,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type CreatePersonRequest struct {
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	Sport    *string `json:"sport,omitempty"`
	Team     *string `json:"team,omitempty"`
	Position *string `json:"position,omitempty"`
}

type PersonResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Sport     *string   `json:"sport"`
	Team      *string   `json:"team"`
	Position  *string   `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromPerson(p *person.Person) PersonResponse {
	return PersonResponse{
		ID:        p.ID,
		Name:      p.Name,
		Role:      string(p.Role),
		Sport:     p.Sport,
		Team:      p.Team,
		Position:  p.Position,
		CreatedAt: p.CreatedAt,
	}
}

func FromPersonList(persons []*person.Person) []PersonResponse {
	result := make([]PersonResponse, len(persons))
	for i, p := range persons {
		result[i] = FromPerson(p)
	}
	return result
}
