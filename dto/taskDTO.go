package dto

import (
	"encoding/json"

	"progressboard/model"
)

// TasksResponse is returned by GET /api/tasks.
type TasksResponse struct {
	Success  bool              `json:"success"`
	Data     []json.RawMessage `json:"data"`
	Count    int               `json:"count"`
	SaveTime *string           `json:"save_time"`
	Message  string            `json:"message,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// RefreshResponse is returned by POST /api/refresh-data.
type RefreshResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Data      []json.RawMessage `json:"data"`
	SaveTime  string            `json:"save_time,omitempty"`
	Timestamp string            `json:"timestamp"`
	Error     string            `json:"error,omitempty"`
}

// FetchSheetDataRequest is the body of POST /api/fetch-and-save-sheet-data.
type FetchSheetDataRequest struct {
	SheetURL  string `json:"sheet_url" binding:"required"`
	SheetName string `json:"sheet_name" binding:"required"`
}

// FetchSheetDataResponse answers POST /api/fetch-and-save-sheet-data.
type FetchSheetDataResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	FilePath  string      `json:"filePath,omitempty"`
	DataCount int         `json:"dataCount"`
	Error     string      `json:"error,omitempty"`
	Details   *ErrDetails `json:"details,omitempty"`
}

// ErrDetails classifies a failed upstream call.
type ErrDetails struct {
	ErrorType     string `json:"errorType"`
	OriginalError string `json:"originalError"`
}

// SaveSheetDataRequest is the body of POST /api/save-sheet-data.
type SaveSheetDataRequest struct {
	SheetData json.RawMessage `json:"sheetData"`
}

// Config returns the request as a sheet configuration.
func (r FetchSheetDataRequest) Config() model.WebhookConfig {
	return model.WebhookConfig{SheetURL: r.SheetURL, SheetName: r.SheetName}
}
