package engine

import (
	"fmt"
	"strings"

	"progressboard/model"
)

// Filter narrows a task list. Zero fields match everything.
type Filter struct {
	Status *model.Status // nil matches all
	Unit   string        // "" matches all
	Search string        // blank matches all
}

// OnlyStatus returns a status criterion for Filter.Status.
func OnlyStatus(st model.Status) *model.Status {
	return &st
}

// ParseStatusFilter reads a status criterion. "" and "all" select every
// status and yield nil.
func ParseStatusFilter(s string) (*model.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return nil, nil
	}
	st, err := model.ParseStatus(s)
	if err != nil {
		return nil, fmt.Errorf("status filter: %w", err)
	}
	return &st, nil
}

// IsZero reports whether the filter matches every task.
func (f Filter) IsZero() bool {
	return f.Status == nil && strings.TrimSpace(f.Unit) == "" && strings.TrimSpace(f.Search) == ""
}

// Match reports whether t satisfies every active criterion.
func (f Filter) Match(t model.TaskRecord) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if unit := strings.TrimSpace(f.Unit); unit != "" && strings.TrimSpace(t.Unit) != unit {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Unit), term) ||
		strings.Contains(strings.ToLower(t.Note), term)
}

// FilterTasks returns the tasks matching f in their original order. The
// result never aliases the input slice.
func FilterTasks(tasks []model.TaskRecord, f Filter) []model.TaskRecord {
	out := make([]model.TaskRecord, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Units returns the distinct units in first-appearance order.
func Units(tasks []model.TaskRecord) []string {
	seen := make(map[string]struct{})
	var units []string
	for _, t := range tasks {
		u := strings.TrimSpace(t.Unit)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		units = append(units, u)
	}
	return units
}
