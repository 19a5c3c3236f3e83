package main

import (
	"fmt"
	"strings"

	"github.com/llalegg/rd-tasks-sub000/internal/deadline"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	"github.com/llalegg/rd-tasks-sub000/internal/reconcile"
)

var fieldAliases = map[string]reconcile.Field{
	"name":              reconcile.FieldName,
	"description":       reconcile.FieldDescription,
	"desc":              reconcile.FieldDescription,
	"status":            reconcile.FieldStatus,
	"priority":          reconcile.FieldPriority,
	"type":              reconcile.FieldType,
	"deadline":          reconcile.FieldDeadline,
	"assignee":          reconcile.FieldAssignee,
	"assigneeid":        reconcile.FieldAssignee,
	"athletes":          reconcile.FieldAthletes,
	"relatedathleteids": reconcile.FieldAthletes,
}

func parseField(raw string) (reconcile.Field, error) {
	f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown field %q", raw)
	}
	return f, nil
}

// isClear reports whether a value asks to empty a nullable field.
func isClear(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none", "null", "-":
		return true
	}
	return false
}

// parseChange turns command-line text into a field change, rejecting values
// the server would refuse.
func parseChange(field reconcile.Field, value string) (reconcile.Change, error) {
	switch field {
	case reconcile.FieldName:
		if strings.TrimSpace(value) == "" {
			return reconcile.Change{}, fmt.Errorf("name must not be empty")
		}
		return reconcile.SetName(value), nil
	case reconcile.FieldDescription:
		return reconcile.SetDescription(value), nil
	case reconcile.FieldStatus:
		s := task.NormalizeStatus(value)
		if !s.IsValid() {
			return reconcile.Change{}, fmt.Errorf("unknown status %q", value)
		}
		return reconcile.SetStatus(s), nil
	case reconcile.FieldPriority:
		p := task.NormalizePriority(value)
		if !p.IsValid() {
			return reconcile.Change{}, fmt.Errorf("unknown priority %q", value)
		}
		return reconcile.SetPriority(p), nil
	case reconcile.FieldType:
		t := task.NormalizeType(value)
		if !t.IsValid() {
			return reconcile.Change{}, fmt.Errorf("unknown type %q", value)
		}
		return reconcile.SetType(t), nil
	case reconcile.FieldDeadline:
		if isClear(value) {
			return reconcile.SetDeadline(nil), nil
		}
		d := deadline.ParseLenient(value)
		if d == nil {
			return reconcile.Change{}, fmt.Errorf("unrecognised date %q", value)
		}
		return reconcile.SetDeadline(d), nil
	case reconcile.FieldAssignee:
		if isClear(value) {
			return reconcile.SetAssignee(nil), nil
		}
		v := strings.TrimSpace(value)
		return reconcile.SetAssignee(&v), nil
	case reconcile.FieldAthletes:
		if isClear(value) {
			return reconcile.SetAthletes(nil), nil
		}
		return reconcile.SetAthletes(strings.Split(value, ",")), nil
	}
	return reconcile.Change{}, fmt.Errorf("unknown field %q", field)
}
