package engine

import (
	"fmt"
	"sort"
	"strings"

	"progressboard/model"
)

// UnitProgress is the average progress of one unit's tasks.
type UnitProgress struct {
	Unit            string `json:"unit"`
	Tasks           int    `json:"tasks"`
	AverageProgress int    `json:"averageProgress"`
}

// ProgressByUnit groups tasks by unit in first-appearance order.
func ProgressByUnit(tasks []model.TaskRecord) []UnitProgress {
	index := make(map[string]int)
	var out []UnitProgress
	sums := []int{}
	for _, t := range tasks {
		u := strings.TrimSpace(t.Unit)
		i, ok := index[u]
		if !ok {
			i = len(out)
			index[u] = i
			out = append(out, UnitProgress{Unit: u})
			sums = append(sums, 0)
		}
		out[i].Tasks++
		sums[i] += t.ProgressPercent
	}
	for i := range out {
		out[i].AverageProgress = roundedMean(sums[i], out[i].Tasks)
	}
	return out
}

// MonthBucket counts tasks whose end date falls in one calendar month.
type MonthBucket struct {
	Month     string `json:"month"` // MM/YYYY
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// Timeline is the per-month view of task end dates.
type Timeline struct {
	Months  []MonthBucket `json:"months"`
	Skipped int           `json:"skipped"` // tasks with an unparseable end date
}

// MonthlyTimeline buckets tasks by end-date month, oldest first.
func MonthlyTimeline(tasks []model.TaskRecord) Timeline {
	type key struct{ year, month int }
	buckets := make(map[key]*MonthBucket)
	var keys []key
	var tl Timeline
	for _, t := range tasks {
		end, err := t.EndTime()
		if err != nil {
			tl.Skipped++
			continue
		}
		k := key{end.Year(), int(end.Month())}
		b, ok := buckets[k]
		if !ok {
			b = &MonthBucket{Month: fmt.Sprintf("%02d/%04d", k.month, k.year)}
			buckets[k] = b
			keys = append(keys, k)
		}
		b.Total++
		if t.Status == model.StatusDone {
			b.Completed++
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	tl.Months = make([]MonthBucket, 0, len(keys))
	for _, k := range keys {
		tl.Months = append(tl.Months, *buckets[k])
	}
	return tl
}
