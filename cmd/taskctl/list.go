package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	"github.com/llalegg/rd-tasks-sub000/internal/view"
)

type listOptions struct {
	preset        string
	sort          string
	desc          bool
	statuses      []string
	priorities    []string
	types         []string
	assignees     []string
	creators      []string
	athletes      []string
	hideCompleted bool
	moves         []string
}

func newListCmd(e *env) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show tasks filtered and ordered like the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := opts.spec(cmd)
			if err != nil {
				return err
			}

			tasks, err := e.client.ListTasks(cmd.Context())
			if err != nil {
				return err
			}

			visible := view.Derive(tasks, spec)
			if len(opts.moves) > 0 {
				visible, err = applyMoves(tasks, visible, spec, opts.moves)
				if err != nil {
					return err
				}
			}

			return renderTasks(cmd.OutOrStdout(), visible, e.personNames(cmd), time.Now())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.preset, "view", "", "YAML view preset to start from")
	f.StringVar(&opts.sort, "sort", string(view.SortDeadline), "sort field: deadline, name, type, status, priority")
	f.BoolVar(&opts.desc, "desc", false, "sort descending")
	f.StringSliceVar(&opts.statuses, "status", nil, "only these statuses")
	f.StringSliceVar(&opts.priorities, "priority", nil, "only these priorities")
	f.StringSliceVar(&opts.types, "type", nil, "only these task types")
	f.StringSliceVar(&opts.assignees, "assignee", nil, "only these assignee ids")
	f.StringSliceVar(&opts.creators, "creator", nil, "only these creator ids")
	f.StringSliceVar(&opts.athletes, "athlete", nil, "only tasks mentioning one of these athletes")
	f.BoolVar(&opts.hideCompleted, "hide-completed", false, "drop completed tasks")
	f.StringArrayVar(&opts.moves, "move", nil, "drag a row, FROM:TO with 1-based positions; repeatable")
	return cmd
}

// spec starts from the preset when given; explicitly set flags override it.
func (o listOptions) spec(cmd *cobra.Command) (view.Spec, error) {
	var spec view.Spec
	if o.preset != "" {
		loaded, err := view.LoadSpec(o.preset)
		if err != nil {
			return view.Spec{}, err
		}
		spec = loaded
	}

	changed := cmd.Flags().Changed
	if o.preset == "" || changed("sort") {
		spec.SortField = view.SortField(strings.ToLower(o.sort))
	}
	if o.preset == "" || changed("desc") {
		spec.SortDirection = view.Asc
		if o.desc {
			spec.SortDirection = view.Desc
		}
	}
	if changed("hide-completed") {
		spec.HideCompleted = o.hideCompleted
	}
	if changed("status") {
		spec.Filters.Statuses = mapSlice(o.statuses, task.NormalizeStatus)
	}
	if changed("priority") {
		spec.Filters.Priorities = mapSlice(o.priorities, task.NormalizePriority)
	}
	if changed("type") {
		spec.Filters.Types = mapSlice(o.types, task.NormalizeType)
	}
	if changed("assignee") {
		spec.Filters.AssigneeIDs = o.assignees
	}
	if changed("creator") {
		spec.Filters.CreatorIDs = o.creators
	}
	if changed("athlete") {
		spec.Filters.AthleteIDs = o.athletes
	}
	return spec.Normalized(), nil
}

// applyMoves replays drag gestures on the visible list and derives again
// with the resulting manual order.
func applyMoves(all, visible []task.Task, spec view.Spec, moves []string) ([]task.Task, error) {
	ordering := view.Ordering{Mode: view.ModeSorted, SortField: spec.SortField, Direction: spec.SortDirection}
	if len(spec.ManualOrder) > 0 {
		ordering.Mode = view.ModeManual
		ordering.ManualOrder = spec.ManualOrder
	}

	for _, move := range moves {
		from, to, err := parseMove(move)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(visible))
		for i, t := range visible {
			ids[i] = t.ID
		}
		ordering = ordering.OnDragReorder(ids, from, to)
		visible = view.Derive(all, ordering.Apply(spec))
	}
	return visible, nil
}

func parseMove(raw string) (int, int, error) {
	fromRaw, toRaw, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, 0, fmt.Errorf("move %q: want FROM:TO", raw)
	}
	from, err := strconv.Atoi(strings.TrimSpace(fromRaw))
	if err != nil {
		return 0, 0, fmt.Errorf("move %q: %w", raw, err)
	}
	to, err := strconv.Atoi(strings.TrimSpace(toRaw))
	if err != nil {
		return 0, 0, fmt.Errorf("move %q: %w", raw, err)
	}
	return from - 1, to - 1, nil
}

func mapSlice[T any](in []string, fn func(string) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

// personNames is best effort: without it rows show raw ids.
func (e *env) personNames(cmd *cobra.Command) map[string]string {
	persons, err := e.client.ListPersons(cmd.Context(), "")
	if err != nil {
		return nil
	}
	names := make(map[string]string, len(persons))
	for _, p := range persons {
		names[p.ID] = p.Name
	}
	return names
}
