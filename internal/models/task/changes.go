package task

import (
	"slices"
	"time"
)

// Column is a stored scalar field of a task.
type Column string

const (
	ColumnName        Column = "name"
	ColumnDescription Column = "description"
	ColumnType        Column = "type"
	ColumnStatus      Column = "status"
	ColumnPriority    Column = "priority"
	ColumnDeadline    Column = "deadline"
	ColumnAssignee    Column = "assignee_id"
)

// Changes is what an update writes. Columns not listed keep whatever the
// store holds, so concurrent updates of different fields do not undo each other.
type Changes struct {
	Columns  []Column
	Athletes bool
}

func (c Changes) Has(col Column) bool {
	return slices.Contains(c.Columns, col)
}

func (c Changes) IsEmpty() bool {
	return len(c.Columns) == 0 && !c.Athletes
}

// Diff lists the fields that differ between before and after.
func Diff(before, after Task) Changes {
	var c Changes
	if before.Name != after.Name {
		c.Columns = append(c.Columns, ColumnName)
	}
	if before.Description != after.Description {
		c.Columns = append(c.Columns, ColumnDescription)
	}
	if before.Type != after.Type {
		c.Columns = append(c.Columns, ColumnType)
	}
	if before.Status != after.Status {
		c.Columns = append(c.Columns, ColumnStatus)
	}
	if before.Priority != after.Priority {
		c.Columns = append(c.Columns, ColumnPriority)
	}
	if !sameTime(before.Deadline, after.Deadline) {
		c.Columns = append(c.Columns, ColumnDeadline)
	}
	if !sameString(before.AssigneeID, after.AssigneeID) {
		c.Columns = append(c.Columns, ColumnAssignee)
	}
	c.Athletes = !slices.Equal(before.RelatedAthleteIDs, after.RelatedAthleteIDs)
	return c
}

// Value is the storage value of col. Enums are written as plain strings.
func (t Task) Value(col Column) any {
	switch col {
	case ColumnName:
		return t.Name
	case ColumnDescription:
		return t.Description
	case ColumnType:
		return string(t.Type)
	case ColumnStatus:
		return string(t.Status)
	case ColumnPriority:
		return string(t.Priority)
	case ColumnDeadline:
		return t.Deadline
	case ColumnAssignee:
		return t.AssigneeID
	}
	return nil
}

// ApplyColumns copies the listed columns of src into t.
func (t *Task) ApplyColumns(src Task, cols []Column) {
	for _, col := range cols {
		switch col {
		case ColumnName:
			t.Name = src.Name
		case ColumnDescription:
			t.Description = src.Description
		case ColumnType:
			t.Type = src.Type
		case ColumnStatus:
			t.Status = src.Status
		case ColumnPriority:
			t.Priority = src.Priority
		case ColumnDeadline:
			t.Deadline = cloneTime(src.Deadline)
		case ColumnAssignee:
			t.AssigneeID = cloneString(src.AssigneeID)
		}
	}
}

// NextUpdatedAt keeps updatedAt strictly increasing at microsecond precision.
func NextUpdatedAt(stored, proposed time.Time) time.Time {
	proposed = proposed.UTC().Truncate(time.Microsecond)
	if !proposed.After(stored) {
		return stored.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return proposed
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
