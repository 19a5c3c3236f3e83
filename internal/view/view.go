// Package view derives the ordered, filtered task list shown to the user.
package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/llalegg/rd-tasks-sub000/internal/format"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

type SortField string

const (
	SortDeadline SortField = "deadline"
	SortName     SortField = "name"
	SortType     SortField = "type"
	SortStatus   SortField = "status"
	SortPriority SortField = "priority"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Filters are inclusion lists. An empty list does not filter.
type Filters struct {
	Statuses    []task.Status   `yaml:"statuses" json:"statuses"`
	Priorities  []task.Priority `yaml:"priorities" json:"priorities"`
	Types       []task.Type     `yaml:"types" json:"types"`
	AssigneeIDs []string        `yaml:"assignees" json:"assigneeIds"`
	CreatorIDs  []string        `yaml:"creators" json:"creatorIds"`
	AthleteIDs  []string        `yaml:"athletes" json:"athleteIds"`
}

func (f Filters) IsEmpty() bool {
	return len(f.Statuses) == 0 && len(f.Priorities) == 0 && len(f.Types) == 0 &&
		len(f.AssigneeIDs) == 0 && len(f.CreatorIDs) == 0 && len(f.AthleteIDs) == 0
}

type Spec struct {
	SortField     SortField `yaml:"sort" json:"sortField"`
	SortDirection Direction `yaml:"direction" json:"sortDirection"`
	Filters       Filters   `yaml:"filters" json:"filters"`
	HideCompleted bool      `yaml:"hide_completed" json:"hideCompleted"`
	ManualOrder   []string  `yaml:"manual_order" json:"manualOrder"`
}

// Normalized fills defaults for unset or unknown sort settings.
func (s Spec) Normalized() Spec {
	switch s.SortField {
	case SortDeadline, SortName, SortType, SortStatus, SortPriority:
	default:
		s.SortField = SortDeadline
	}
	if s.SortDirection != Desc {
		s.SortDirection = Asc
	}
	return s
}

// Derive filters and orders tasks. The input slice is left untouched.
func Derive(tasks []task.Task, spec Spec) []task.Task {
	spec = spec.Normalized()

	res := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if spec.HideCompleted && format.StatusBucket(t.Status) == task.StatusCompleted {
			continue
		}
		if !spec.Filters.Match(t) {
			continue
		}
		res = append(res, t)
	}

	if len(spec.ManualOrder) > 0 {
		return applyManualOrder(res, spec.ManualOrder)
	}

	compare := comparator(spec.SortField)
	if spec.SortDirection == Desc {
		asc := compare
		compare = func(a, b task.Task) int { return asc(b, a) }
	}
	slices.SortStableFunc(res, compare)
	return res
}

// Match reports whether t passes every non-empty dimension.
func (f Filters) Match(t task.Task) bool {
	if len(f.Statuses) > 0 && !slices.ContainsFunc(f.Statuses, func(s task.Status) bool {
		return filterStatus(s) == filterStatus(t.Status)
	}) {
		return false
	}
	if len(f.Priorities) > 0 && !slices.ContainsFunc(f.Priorities, func(p task.Priority) bool {
		return format.PriorityBucket(p) == format.PriorityBucket(t.Priority)
	}) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, t.Type) {
		return false
	}
	if len(f.AssigneeIDs) > 0 && !slices.Contains(f.AssigneeIDs, deref(t.AssigneeID)) {
		return false
	}
	if len(f.CreatorIDs) > 0 && !slices.Contains(f.CreatorIDs, deref(t.CreatorID)) {
		return false
	}
	if len(f.AthleteIDs) > 0 && !slices.ContainsFunc(t.RelatedAthleteIDs, func(id string) bool {
		return slices.Contains(f.AthleteIDs, id)
	}) {
		return false
	}
	return true
}

// filterStatus keeps blocked and pending apart; only unknown values fold
// into new.
func filterStatus(s task.Status) task.Status {
	n := task.NormalizeStatus(string(s))
	if !n.IsValid() {
		return task.StatusNew
	}
	return n
}

func applyManualOrder(tasks []task.Task, order []string) []task.Task {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}

	used := make([]bool, len(tasks))
	res := make([]task.Task, 0, len(tasks))
	for _, id := range order {
		i, ok := index[id]
		if !ok || used[i] {
			continue
		}
		used[i] = true
		res = append(res, tasks[i])
	}
	for i, t := range tasks {
		if !used[i] {
			res = append(res, t)
		}
	}
	return res
}

func comparator(field SortField) func(a, b task.Task) int {
	switch field {
	case SortName:
		return func(a, b task.Task) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortType:
		return func(a, b task.Task) int {
			return strings.Compare(strings.ToLower(string(a.Type)), strings.ToLower(string(b.Type)))
		}
	case SortStatus:
		return func(a, b task.Task) int {
			return strings.Compare(strings.ToLower(string(a.Status)), strings.ToLower(string(b.Status)))
		}
	case SortPriority:
		return func(a, b task.Task) int {
			return cmp.Compare(format.Priority(a.Priority).Weight, format.Priority(b.Priority).Weight)
		}
	default:
		return func(a, b task.Task) int {
			return cmp.Compare(deadlineMillis(a), deadlineMillis(b))
		}
	}
}

// deadlineMillis puts tasks without a deadline at 0, i.e. first when ascending.
func deadlineMillis(t task.Task) int64 {
	if t.Deadline == nil || t.Deadline.IsZero() {
		return 0
	}
	return t.Deadline.UnixMilli()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
