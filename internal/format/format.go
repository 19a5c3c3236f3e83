// Package format turns raw task enum values into display labels and sort weights.
// Every function is total: unknown input resolves to a documented default.
package format

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

// StatusBucket collapses a raw status into one of the four display classes.
// Blocked and pending share a class; anything unrecognised is treated as new.
func StatusBucket(s task.Status) task.Status {
	switch task.NormalizeStatus(string(s)) {
	case task.StatusInProgress:
		return task.StatusInProgress
	case task.StatusBlocked, task.StatusPending:
		return task.StatusBlocked
	case task.StatusCompleted:
		return task.StatusCompleted
	default:
		return task.StatusNew
	}
}

func Status(s task.Status) string {
	switch task.NormalizeStatus(string(s)) {
	case task.StatusInProgress:
		return "In Progress"
	case task.StatusBlocked:
		return "Blocked"
	case task.StatusPending:
		return "Pending"
	case task.StatusCompleted:
		return "Completed"
	default:
		return "New"
	}
}

type PriorityInfo struct {
	Label  string
	Weight int
}

func Priority(p task.Priority) PriorityInfo {
	switch task.NormalizePriority(string(p)) {
	case task.PriorityHigh:
		return PriorityInfo{Label: "High", Weight: 3}
	case task.PriorityLow:
		return PriorityInfo{Label: "Low", Weight: 1}
	default:
		return PriorityInfo{Label: "Medium", Weight: 2}
	}
}

// PriorityBucket is the canonical priority a raw value sorts and filters as.
func PriorityBucket(p task.Priority) task.Priority {
	switch Priority(p).Weight {
	case 3:
		return task.PriorityHigh
	case 1:
		return task.PriorityLow
	default:
		return task.PriorityMedium
	}
}

var curatedTypes = map[string]string{
	"generaltodo": "General Task",
	"rtp":         "Return To Play",
	"sc":          "Strength & Conditioning",
}

const defaultTypeLabel = "General Task"

// TaskType renders a type key as words: "injuryFollowUp" -> "Injury Follow Up".
// The output is display text and is not meant to be fed back in.
func TaskType(t task.Type) string {
	key := strings.TrimSpace(string(t))
	if key == "" {
		return defaultTypeLabel
	}
	if label, ok := curatedTypes[strings.ToLower(key)]; ok {
		return label
	}

	words := splitWords(key)
	if len(words) == 0 {
		return defaultTypeLabel
	}
	// a Caser keeps state between calls, so each call gets its own
	caser := cases.Title(language.English, cases.NoLower)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// splitWords breaks on separators and case changes; runs of capitals stay
// together so "ACLRehab" gives "ACL", "Rehab".
func splitWords(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if i > 0 && len(cur) > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
