// Package engine holds the pure derivations over task lists: statistics,
// filtering, sorting and chart breakdowns. Nothing here performs I/O.
package engine

import "progressboard/model"

// ComputeStats counts tasks per status and averages their progress over
// every record. An empty list yields all zeros.
func ComputeStats(tasks []model.TaskRecord) model.DashboardStats {
	s := model.DashboardStats{Total: len(tasks)}
	sum := 0
	for _, t := range tasks {
		sum += t.ProgressPercent
		switch t.Status {
		case model.StatusDone:
			s.Completed++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusNotStarted:
			s.NotStarted++
		case model.StatusPaused:
			s.Paused++
		}
	}
	s.OverallProgress = roundedMean(sum, s.Total)
	return s
}

// roundedMean rounds sum/n half up. n == 0 yields 0.
func roundedMean(sum, n int) int {
	if n == 0 {
		return 0
	}
	return (2*sum + n) / (2 * n)
}

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status model.Status `json:"status"`
	Count  int          `json:"count"`
}

// StatusDistribution returns the per-status counts in display order,
// including statuses with zero tasks.
func StatusDistribution(tasks []model.TaskRecord) []StatusCount {
	stats := ComputeStats(tasks)
	out := make([]StatusCount, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		out = append(out, StatusCount{Status: st, Count: stats.Count(st)})
	}
	return out
}

// Percent returns part as a percentage of total, 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
