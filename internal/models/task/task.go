package task

import (
	"slices"
	"strings"
	"time"
)

type Task struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Type              Type       `json:"type"`
	Status            Status     `json:"status"`
	Priority          Priority   `json:"priority"`
	Deadline          *time.Time `json:"deadline"`
	AssigneeID        *string    `json:"assigneeId"`
	CreatorID         *string    `json:"creatorId"`
	RelatedAthleteIDs []string   `json:"relatedAthleteIds"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type Status string
type Priority string
type Type string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusPending    Status = "pending"
	StatusCompleted  Status = "completed"
)

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	TypeGeneralTodo    Type = "generaltodo"
	TypeInjury         Type = "injury"
	TypeInjuryFollowUp Type = "injuryFollowUp"
	TypeTraining       Type = "training"
	TypeTrainingPlan   Type = "trainingPlan"
	TypeAnalysis       Type = "analysis"
	TypeAssessment     Type = "assessment"
	TypeScheduling     Type = "scheduling"
	TypeAdmin          Type = "admin"
	TypeRecovery       Type = "recovery"
	TypeNutrition      Type = "nutrition"
)

func Statuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusBlocked, StatusPending, StatusCompleted}
}

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

func Types() []Type {
	return []Type{
		TypeGeneralTodo, TypeInjury, TypeInjuryFollowUp, TypeTraining, TypeTrainingPlan,
		TypeAnalysis, TypeAssessment, TypeScheduling, TypeAdmin, TypeRecovery, TypeNutrition,
	}
}

func (s Status) IsValid() bool   { return slices.Contains(Statuses(), s) }
func (p Priority) IsValid() bool { return slices.Contains(Priorities(), p) }
func (t Type) IsValid() bool     { return slices.Contains(Types(), t) }

// NormalizeStatus maps spelling variants seen in older payloads onto the
// canonical value. Unknown values are returned lowercased and untouched.
func NormalizeStatus(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "in progress", "in-progress", "inprogress":
		return StatusInProgress
	case "done", "complete":
		return StatusCompleted
	}
	return Status(s)
}

func NormalizePriority(raw string) Priority {
	return Priority(strings.ToLower(strings.TrimSpace(raw)))
}

// NormalizeType matches case-insensitively against the known identifiers so
// "InjuryFollowUp" and "injuryfollowup" resolve to the same key.
func NormalizeType(raw string) Type {
	s := strings.TrimSpace(raw)
	for _, t := range Types() {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return Type(s)
}

// IsDraftID reports whether id belongs to a client-side task that was never persisted.
func IsDraftID(id string) bool {
	return strings.HasPrefix(id, DraftPrefix)
}

const DraftPrefix = "draft-"

// Clone returns a deep copy so cached tasks never share pointers with callers.
func (t Task) Clone() Task {
	c := t
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	if t.AssigneeID != nil {
		a := *t.AssigneeID
		c.AssigneeID = &a
	}
	if t.CreatorID != nil {
		cr := *t.CreatorID
		c.CreatorID = &cr
	}
	c.RelatedAthleteIDs = append([]string{}, t.RelatedAthleteIDs...)
	return c
}

// UniqueIDs drops empty and repeated ids keeping the first occurrence.
func UniqueIDs(ids []string) []string {
	res := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}
