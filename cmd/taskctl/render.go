package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/llalegg/rd-tasks-sub000/internal/deadline"
	"github.com/llalegg/rd-tasks-sub000/internal/format"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

var styleColors = map[string]color.Attribute{
	"red":    color.FgRed,
	"yellow": color.FgYellow,
	"gray":   color.FgHiBlack,
}

func paint(style deadline.Style, text string) string {
	var attrs []color.Attribute
	if a, ok := styleColors[style.Color]; ok {
		attrs = append(attrs, a)
	}
	if style.Bold {
		attrs = append(attrs, color.Bold)
	}
	if len(attrs) == 0 {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// renderTasks writes one row per task. The deadline column is last so its
// color codes never disturb the alignment of the others.
func renderTasks(w io.Writer, tasks []task.Task, names map[string]string, today time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tPRIORITY\tASSIGNEE\tDEADLINE")
	for _, t := range tasks {
		due := deadline.Classify(t.Deadline, today)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Name,
			format.TaskType(t.Type),
			format.Status(t.Status),
			format.Priority(t.Priority).Label,
			displayName(t.AssigneeID, names),
			paint(deadline.StyleOf(due.Bucket), due.Label),
		)
	}
	return tw.Flush()
}

func renderTask(w io.Writer, t task.Task, names map[string]string, today time.Time) error {
	due := deadline.Classify(t.Deadline, today)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", t.ID)
	fmt.Fprintf(tw, "name:\t%s\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(tw, "description:\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "type:\t%s\n", format.TaskType(t.Type))
	fmt.Fprintf(tw, "status:\t%s\n", format.Status(t.Status))
	fmt.Fprintf(tw, "priority:\t%s\n", format.Priority(t.Priority).Label)
	fmt.Fprintf(tw, "assignee:\t%s\n", displayName(t.AssigneeID, names))
	fmt.Fprintf(tw, "deadline:\t%s\n", paint(deadline.StyleOf(due.Bucket), due.Label))
	if len(t.RelatedAthleteIDs) > 0 {
		athletes := make([]string, len(t.RelatedAthleteIDs))
		for i, id := range t.RelatedAthleteIDs {
			athletes[i] = displayName(&id, names)
		}
		fmt.Fprintf(tw, "athletes:\t%v\n", athletes)
	}
	return tw.Flush()
}

func displayName(id *string, names map[string]string) string {
	if id == nil || *id == "" {
		return "-"
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return *id
}
