package dto

import (
	"encoding/json"

	"progressboard/model"
)

// SaveSheetInfoRequest is the body of POST /api/save-sheet-info. AllLogs,
// when present, replaces the config log verbatim.
type SaveSheetInfoRequest struct {
	SheetURL  string            `json:"sheet_url"`
	SheetName string            `json:"sheet_name"`
	AllLogs   []json.RawMessage `json:"allLogs"`
}

// SheetConfigResponse is returned by GET /api/sheet-config.
type SheetConfigResponse struct {
	Success bool                 `json:"success"`
	Config  *model.WebhookConfig `json:"config"`
	Message string               `json:"message,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// FileResponse acknowledges a file write.
type FileResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	FilePath string `json:"filePath,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
