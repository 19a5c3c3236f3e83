package view

import "slices"

type Mode int

const (
	ModeSorted Mode = iota
	ModeManual
)

func (m Mode) String() string {
	if m == ModeManual {
		return "manually_ordered"
	}
	return "sorted"
}

// Ordering tracks whether the list follows a column sort or a user drag order.
// Transitions return a new value; the receiver is never modified.
type Ordering struct {
	Mode        Mode
	SortField   SortField
	Direction   Direction
	ManualOrder []string
}

func NewOrdering() Ordering {
	return Ordering{Mode: ModeSorted, SortField: SortDeadline, Direction: Asc}
}

// OnColumnSortClick switches back to field sorting. Clicking the column that
// is already active in sorted mode flips the direction.
func (o Ordering) OnColumnSortClick(field SortField) Ordering {
	next := Ordering{Mode: ModeSorted, SortField: field, Direction: Asc}
	if o.Mode == ModeSorted && o.SortField == field && o.Direction == Asc {
		next.Direction = Desc
	}
	return next
}

// OnDragReorder moves visible[from] to position to and pins the resulting order.
func (o Ordering) OnDragReorder(visible []string, from, to int) Ordering {
	if from < 0 || from >= len(visible) || to < 0 || to >= len(visible) {
		return o.clone()
	}
	order := slices.Clone(visible)
	id := order[from]
	order = slices.Delete(order, from, from+1)
	order = slices.Insert(order, to, id)

	next := o.clone()
	next.Mode = ModeManual
	next.ManualOrder = order
	return next
}

// RenameID swaps a draft id for its persisted id inside the manual order.
func (o Ordering) RenameID(oldID, newID string) Ordering {
	next := o.clone()
	for i, id := range next.ManualOrder {
		if id == oldID {
			next.ManualOrder[i] = newID
		}
	}
	return next
}

// Apply writes the ordering into spec, leaving filters untouched.
func (o Ordering) Apply(spec Spec) Spec {
	spec.SortField = o.SortField
	spec.SortDirection = o.Direction
	spec.ManualOrder = nil
	if o.Mode == ModeManual {
		spec.ManualOrder = slices.Clone(o.ManualOrder)
	}
	return spec
}

func (o Ordering) clone() Ordering {
	o.ManualOrder = slices.Clone(o.ManualOrder)
	return o
}
