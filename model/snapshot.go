package model

import "time"

// SaveTimeLayout formats Snapshot.SaveTime as HH:mm:ss DD/MM/YYYY.
const SaveTimeLayout = "15:04:05 02/01/2006"

// FormatSaveTime renders t in the snapshot layout.
func FormatSaveTime(t time.Time) string {
	return t.Format(SaveTimeLayout)
}

// Snapshot is the relay's cached copy of the task list.
type Snapshot struct {
	SaveTime string // empty for legacy snapshots
	Tasks    []TaskRecord
}

// DashboardStats is derived from a task list and never persisted.
type DashboardStats struct {
	Total           int `json:"total"`
	Completed       int `json:"completed"`
	InProgress      int `json:"inProgress"`
	NotStarted      int `json:"notStarted"`
	Paused          int `json:"paused"`
	OverallProgress int `json:"overallProgress"`
}

// Count returns the number of tasks with status s.
func (s DashboardStats) Count(st Status) int {
	switch st {
	case StatusDone:
		return s.Completed
	case StatusInProgress:
		return s.InProgress
	case StatusNotStarted:
		return s.NotStarted
	case StatusPaused:
		return s.Paused
	default:
		return s.Total
	}
}
