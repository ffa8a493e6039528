package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cases := []struct {
		name  string
		cfg   WebhookConfig
		field string
	}{
		{"empty url", WebhookConfig{SheetName: "x"}, "sheet_url"},
		{"blank name", WebhookConfig{SheetURL: DefaultSheetURL, SheetName: "  "}, "sheet_name"},
		{"wrong host", WebhookConfig{SheetURL: "https://example.com/not-a-sheet", SheetName: "x"}, "sheet_url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestNewSheetLogEntry(t *testing.T) {
	at := time.Date(2025, 9, 20, 8, 30, 0, 0, time.FixedZone("ICT", 7*3600))
	e := NewSheetLogEntry(DefaultConfig(), at)
	assert.Equal(t, "2025-09-20T08:30:00+07:00", e.Timestamp)
	assert.Equal(t, ActionConfigurationSaved, e.Action)
	assert.Equal(t, DefaultConfig(), e.Config())
}

func TestFormatSaveTime(t *testing.T) {
	at := time.Date(2025, 9, 5, 14, 3, 9, 0, time.UTC)
	assert.Equal(t, "14:03:09 05/09/2025", FormatSaveTime(at))
}
