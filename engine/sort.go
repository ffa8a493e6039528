package engine

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"progressboard/model"
)

// SortField selects the column SortTasks orders by.
type SortField string

const (
	SortByID       SortField = "id"
	SortByName     SortField = "name"
	SortByUnit     SortField = "unit"
	SortByProgress SortField = "progress"
	SortByStatus   SortField = "status"
)

// ParseSortField accepts the field names above, case-insensitively.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SortByID, nil
	case SortByID, SortByName, SortByUnit, SortByProgress, SortByStatus:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// SortTasks returns a sorted copy of tasks. The sort is stable, so equal
// keys keep their relative order in both directions. Text columns use
// Vietnamese collation.
func SortTasks(tasks []model.TaskRecord, field SortField, desc bool) []model.TaskRecord {
	out := make([]model.TaskRecord, len(tasks))
	copy(out, tasks)

	var cmp func(a, b model.TaskRecord) int
	switch field {
	case SortByName:
		c := collate.New(language.Vietnamese)
		cmp = func(a, b model.TaskRecord) int { return c.CompareString(a.Title, b.Title) }
	case SortByUnit:
		c := collate.New(language.Vietnamese)
		cmp = func(a, b model.TaskRecord) int { return c.CompareString(a.Unit, b.Unit) }
	case SortByProgress:
		cmp = func(a, b model.TaskRecord) int { return a.ProgressPercent - b.ProgressPercent }
	case SortByStatus:
		cmp = func(a, b model.TaskRecord) int { return int(a.Status) - int(b.Status) }
	default:
		cmp = func(a, b model.TaskRecord) int { return a.ID - b.ID }
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return cmp(out[i], out[j]) > 0
		}
		return cmp(out[i], out[j]) < 0
	})
	return out
}
