package sqlite

import (
	"time"

	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

type taskRecord struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	Type        string     `gorm:"not null"`
	Status      string     `gorm:"not null"`
	Priority    string     `gorm:"not null"`
	Deadline    *time.Time `gorm:"index"`
	AssigneeID  *string
	CreatorID   *string
	CreatedAt   time.Time           `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime:false"`
	Athletes    []taskAthleteRecord `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (taskRecord) TableName() string { return "tasks" }

type taskAthleteRecord struct {
	TaskID    string `gorm:"primaryKey"`
	AthleteID string `gorm:"primaryKey;index"`
	Position  int
}

func (taskAthleteRecord) TableName() string { return "task_athletes" }

type personRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Role      string `gorm:"not null;index"`
	Sport     *string
	Team      *string
	Position  *string
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (personRecord) TableName() string { return "persons" }

func toTaskRecord(t *task.Task) taskRecord {
	rec := taskRecord{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Deadline:    t.Deadline,
		AssigneeID:  t.AssigneeID,
		CreatorID:   t.CreatorID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	rec.Athletes = athleteRecords(t.ID, t.RelatedAthleteIDs)
	return rec
}

func athleteRecords(taskID string, ids []string) []taskAthleteRecord {
	res := make([]taskAthleteRecord, 0, len(ids))
	for i, id := range ids {
		res = append(res, taskAthleteRecord{TaskID: taskID, AthleteID: id, Position: i})
	}
	return res
}

func (r taskRecord) toTask() *task.Task {
	t := &task.Task{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		Type:              task.Type(r.Type),
		Status:            task.Status(r.Status),
		Priority:          task.Priority(r.Priority),
		AssigneeID:        r.AssigneeID,
		CreatorID:         r.CreatorID,
		RelatedAthleteIDs: make([]string, 0, len(r.Athletes)),
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
	if r.Deadline != nil {
		d := r.Deadline.UTC()
		t.Deadline = &d
	}
	for _, a := range r.Athletes {
		t.RelatedAthleteIDs = append(t.RelatedAthleteIDs, a.AthleteID)
	}
	return t
}

func toPersonRecord(p *person.Person) personRecord {
	return personRecord{
		ID:        p.ID,
		Name:      p.Name,
		Role:      string(p.Role),
		Sport:     p.Sport,
		Team:      p.Team,
		Position:  p.Position,
		CreatedAt: p.CreatedAt,
	}
}

func (r personRecord) toPerson() *person.Person {
	return &person.Person{
		ID:        r.ID,
		Name:      r.Name,
		Role:      person.Role(r.Role),
		Sport:     r.Sport,
		Team:      r.Team,
		Position:  r.Position,
		CreatedAt: r.CreatedAt.UTC(),
	}
}
