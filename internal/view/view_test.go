package view_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	"github.com/llalegg/rd-tasks-sub000/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func at(day int) *time.Time {
	t := time.Date(2025, time.March, day, 12, 0, 0, 0, time.UTC)
	return &t
}

func fixture() []task.Task {
	return []task.Task{
		{ID: "t1", Name: "Knee scan", Type: task.TypeInjury, Status: task.StatusNew, Priority: task.PriorityHigh, Deadline: at(12), AssigneeID: strPtr("c1"), RelatedAthleteIDs: []string{"a1"}},
		{ID: "t2", Name: "build block", Type: task.TypeTrainingPlan, Status: task.StatusInProgress, Priority: task.PriorityLow, Deadline: at(5), AssigneeID: strPtr("c2"), CreatorID: strPtr("c1")},
		{ID: "t3", Name: "Assess sprint", Type: task.TypeAssessment, Status: task.StatusCompleted, Priority: task.PriorityMedium, RelatedAthleteIDs: []string{"a2", "a3"}},
		{ID: "t4", Name: "admin paperwork", Type: task.TypeAdmin, Status: task.StatusPending, Priority: "urgent", Deadline: at(20)},
		{ID: "t5", Name: "Video review", Type: task.TypeAnalysis, Status: "frobnicate", Priority: task.PriorityHigh, Deadline: at(5), AssigneeID: strPtr("c1"), RelatedAthleteIDs: []string{"a3"}},
	}
}

func ids(tasks []task.Task) []string {
	res := make([]string, len(tasks))
	for i, t := range tasks {
		res[i] = t.ID
	}
	return res
}

func TestDerive_DefaultsToDeadlineAsc(t *testing.T) {
	got := view.Derive(fixture(), view.Spec{})
	// no deadline first, then ties on Mar 5 keep input order
	assert.Equal(t, []string{"t3", "t2", "t5", "t1", "t4"}, ids(got))
}

func TestDerive_SortFields(t *testing.T) {
	tests := []struct {
		name string
		spec view.Spec
		want []string
	}{
		{"name asc", view.Spec{SortField: view.SortName}, []string{"t4", "t3", "t2", "t1", "t5"}},
		{"name desc", view.Spec{SortField: view.SortName, SortDirection: view.Desc}, []string{"t5", "t1", "t2", "t3", "t4"}},
		{"priority desc keeps ties stable", view.Spec{SortField: view.SortPriority, SortDirection: view.Desc}, []string{"t1", "t5", "t3", "t4", "t2"}},
		{"priority asc", view.Spec{SortField: view.SortPriority}, []string{"t2", "t3", "t4", "t1", "t5"}},
		{"status asc", view.Spec{SortField: view.SortStatus}, []string{"t3", "t5", "t2", "t1", "t4"}},
		{"type asc", view.Spec{SortField: view.SortType}, []string{"t4", "t5", "t3", "t1", "t2"}},
		{"deadline desc", view.Spec{SortField: view.SortDeadline, SortDirection: view.Desc}, []string{"t4", "t1", "t2", "t5", "t3"}},
		{"unknown field falls back to deadline", view.Spec{SortField: "colour"}, []string{"t3", "t2", "t5", "t1", "t4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(view.Derive(fixture(), tt.spec)))
		})
	}
}

func TestDerive_Stability(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Priority: task.PriorityLow},
		{ID: "b", Priority: task.PriorityLow},
		{ID: "c", Priority: task.PriorityLow},
		{ID: "d", Priority: task.PriorityLow},
	}
	for _, dir := range []view.Direction{view.Asc, view.Desc} {
		spec := view.Spec{SortField: view.SortPriority, SortDirection: dir}
		first := view.Derive(tasks, spec)
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(first))
		assert.Equal(t, ids(first), ids(view.Derive(first, spec)))
	}
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	before := ids(in)
	_ = view.Derive(in, view.Spec{SortField: view.SortName})
	assert.Equal(t, before, ids(in))
}

func TestDerive_Filters(t *testing.T) {
	tests := []struct {
		name    string
		filters view.Filters
		want    []string
	}{
		{"status", view.Filters{Statuses: []task.Status{task.StatusNew}}, []string{"t5", "t1"}},
		{"blocked excludes pending", view.Filters{Statuses: []task.Status{task.StatusBlocked}}, []string{}},
		{"pending", view.Filters{Statuses: []task.Status{task.StatusPending}}, []string{"t4"}},
		{"status alias", view.Filters{Statuses: []task.Status{"In Progress"}}, []string{"t2"}},
		{"priority unknown behaves as medium", view.Filters{Priorities: []task.Priority{task.PriorityMedium}}, []string{"t3", "t4"}},
		{"status and priority", view.Filters{Statuses: []task.Status{task.StatusNew, task.StatusInProgress}, Priorities: []task.Priority{task.PriorityHigh}}, []string{"t5", "t1"}},
		{"type", view.Filters{Types: []task.Type{task.TypeAdmin, task.TypeInjury}}, []string{"t1", "t4"}},
		{"assignee", view.Filters{AssigneeIDs: []string{"c1"}}, []string{"t5", "t1"}},
		{"unassigned", view.Filters{AssigneeIDs: []string{""}}, []string{"t3", "t4"}},
		{"creator", view.Filters{CreatorIDs: []string{"c1"}}, []string{"t2"}},
		{"athlete set membership", view.Filters{AthleteIDs: []string{"a3"}}, []string{"t3", "t5"}},
		{"conjunction without match", view.Filters{Types: []task.Type{task.TypeAdmin}, AssigneeIDs: []string{"c1"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := view.Derive(fixture(), view.Spec{Filters: tt.filters})
			assert.Equal(t, tt.want, ids(got))
			for _, tk := range got {
				assert.True(t, tt.filters.Match(tk))
			}
		})
	}
}

func TestDerive_ClearedFiltersReturnAll(t *testing.T) {
	got := view.Derive(fixture(), view.Spec{Filters: view.Filters{}})
	assert.Len(t, got, 5)
	assert.True(t, view.Filters{}.IsEmpty())
}

func TestDerive_HideCompleted(t *testing.T) {
	spec := view.Spec{
		HideCompleted: true,
		Filters:       view.Filters{Statuses: []task.Status{task.StatusCompleted, task.StatusNew}},
	}
	got := view.Derive(fixture(), spec)
	for _, tk := range got {
		assert.NotEqual(t, task.StatusCompleted, tk.Status)
	}
	assert.Equal(t, []string{"t5", "t1"}, ids(got))
}

func TestDerive_ManualOrder(t *testing.T) {
	spec := view.Spec{
		SortField:   view.SortName,
		ManualOrder: []string{"t4", "missing", "t1", "t4"},
	}
	got := view.Derive(fixture(), spec)
	assert.Equal(t, []string{"t4", "t1", "t2", "t3", "t5"}, ids(got))

	spec.SortDirection = view.Desc
	assert.Equal(t, ids(got), ids(view.Derive(fixture(), spec)))
}

func TestDerive_ManualOrderStillFilters(t *testing.T) {
	spec := view.Spec{HideCompleted: true, ManualOrder: []string{"t3", "t5"}}
	assert.Equal(t, []string{"t5", "t1", "t2", "t4"}, ids(view.Derive(fixture(), spec)))
}

func TestDerive_EmptyAndSparseInput(t *testing.T) {
	assert.Empty(t, view.Derive(nil, view.Spec{}))
	got := view.Derive([]task.Task{{ID: "x"}, {ID: "y", Deadline: &time.Time{}}}, view.Spec{SortField: view.SortPriority})
	assert.Equal(t, []string{"x", "y"}, ids(got))
}

func TestOrdering_StateMachine(t *testing.T) {
	tasks := fixture()
	o := view.NewOrdering()
	assert.Equal(t, view.ModeSorted, o.Mode)

	o = o.OnColumnSortClick(view.SortName)
	visible := ids(view.Derive(tasks, o.Apply(view.Spec{})))
	assert.Equal(t, []string{"t4", "t3", "t2", "t1", "t5"}, visible)

	// drag t5 to the top
	o = o.OnDragReorder(visible, 4, 0)
	assert.Equal(t, view.ModeManual, o.Mode)
	assert.Equal(t, []string{"t5", "t4", "t3", "t2", "t1"}, o.ManualOrder)

	spec := o.Apply(view.Spec{SortField: view.SortPriority})
	assert.Equal(t, o.ManualOrder, ids(view.Derive(tasks, spec)))

	// a task created later is appended after the pinned ones
	withNew := append(fixture(), task.Task{ID: "t6", Name: "aaa"})
	assert.Equal(t, append(o.ManualOrder, "t6"), ids(view.Derive(withNew, spec)))

	o = o.OnColumnSortClick(view.SortName)
	assert.Equal(t, view.ModeSorted, o.Mode)
	assert.Nil(t, o.ManualOrder)
	assert.Equal(t, view.Asc, o.Direction)
	assert.Equal(t, []string{"t4", "t3", "t2", "t1", "t5"}, ids(view.Derive(tasks, o.Apply(spec))))

	o = o.OnColumnSortClick(view.SortName)
	assert.Equal(t, view.Desc, o.Direction)
}

func TestOrdering_DragOutOfRange(t *testing.T) {
	o := view.NewOrdering()
	next := o.OnDragReorder([]string{"a", "b"}, 0, 5)
	assert.Equal(t, view.ModeSorted, next.Mode)
	assert.Empty(t, next.ManualOrder)
}

func TestOrdering_DoesNotAlias(t *testing.T) {
	visible := []string{"a", "b", "c"}
	o := view.NewOrdering().OnDragReorder(visible, 0, 2)
	assert.Equal(t, []string{"a", "b", "c"}, visible)

	renamed := o.RenameID("a", "z")
	assert.Equal(t, []string{"b", "c", "a"}, o.ManualOrder)
	assert.Equal(t, []string{"b", "c", "z"}, renamed.ManualOrder)
}

func TestLoadSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.yml")
	err := os.WriteFile(path, []byte(`sort: priority
direction: desc
hide_completed: true
filters:
  statuses: [new, in_progress]
  athletes: [a1]
`), 0o600)
	require.NoError(t, err)

	spec, err := view.LoadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, view.SortPriority, spec.SortField)
	assert.Equal(t, view.Desc, spec.SortDirection)
	assert.True(t, spec.HideCompleted)
	assert.Equal(t, []task.Status{task.StatusNew, task.StatusInProgress}, spec.Filters.Statuses)
	assert.Equal(t, []string{"a1"}, spec.Filters.AthleteIDs)

	_, err = view.LoadSpec(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
