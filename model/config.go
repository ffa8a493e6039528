package model

import (
	"strings"
	"time"
)

// SpreadsheetHost must appear in every accepted sheet URL.
const SpreadsheetHost = "docs.google.com/spreadsheets"

// ActionConfigurationSaved is the action recorded for config log entries.
const ActionConfigurationSaved = "configuration_saved"

// Compiled-in default source.
const (
	DefaultSheetURL  = "https://docs.google.com/spreadsheets/d/1vy0dgWegn6btmYTPfvpPnWa7o897H39QDnZqnKzhi7E/edit?usp=sharing"
	DefaultSheetName = "Trang tính1"
)

// WebhookConfig identifies the spreadsheet the relay pulls from.
type WebhookConfig struct {
	SheetURL  string `json:"sheet_url"`
	SheetName string `json:"sheet_name"`
}

// DefaultConfig returns the compiled-in configuration.
func DefaultConfig() WebhookConfig {
	return WebhookConfig{SheetURL: DefaultSheetURL, SheetName: DefaultSheetName}
}

// IsZero reports whether either field is blank.
func (c WebhookConfig) IsZero() bool {
	return strings.TrimSpace(c.SheetURL) == "" || strings.TrimSpace(c.SheetName) == ""
}

// Validate checks user input before it is accepted.
func (c WebhookConfig) Validate() error {
	if strings.TrimSpace(c.SheetURL) == "" {
		return &ValidationError{Field: "sheet_url", Message: "sheet URL is required"}
	}
	if strings.TrimSpace(c.SheetName) == "" {
		return &ValidationError{Field: "sheet_name", Message: "sheet name is required"}
	}
	if !strings.Contains(c.SheetURL, SpreadsheetHost) {
		return &ValidationError{Field: "sheet_url", Message: "sheet URL must be a Google Sheets link (" + SpreadsheetHost + ")"}
	}
	return nil
}

// SheetLogEntry is one element of the relay's config log file.
type SheetLogEntry struct {
	Timestamp string `json:"timestamp"`
	SheetURL  string `json:"sheet_url"`
	SheetName string `json:"sheet_name"`
	Action    string `json:"action"`
}

// NewSheetLogEntry stamps cfg with the given time.
func NewSheetLogEntry(cfg WebhookConfig, at time.Time) SheetLogEntry {
	return SheetLogEntry{
		Timestamp: at.Format(time.RFC3339),
		SheetURL:  cfg.SheetURL,
		SheetName: cfg.SheetName,
		Action:    ActionConfigurationSaved,
	}
}

// Config returns the entry's sheet settings.
func (e SheetLogEntry) Config() WebhookConfig {
	return WebhookConfig{SheetURL: e.SheetURL, SheetName: e.SheetName}
}
