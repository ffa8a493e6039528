package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressboard/model"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 30*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, 10*time.Second, cfg.WebhookConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.RelayTimeout)
	assert.Equal(t, SourceWebhook, cfg.Source)
	assert.Equal(t, model.DefaultConfig(), cfg.SheetConfig())
	assert.NotEmpty(t, cfg.CacheDir)
	assert.False(t, cfg.FirestoreMirror)
}

func TestOverrides(t *testing.T) {
	vars := map[string]string{
		"PORT":               "8080",
		"HOST":               "127.0.0.1",
		"WEBHOOK_TIMEOUT":    "5s",
		"SOURCE":             " Sheets ",
		"DEFAULT_SHEET_NAME": "Other",
		"TIMEZONE":           "UTC",
	}
	vars["GOOGLE_APPLICATION_CREDENTIALS"] = "/k.json"
	cfg, err := FromMap(vars)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, SourceSheets, cfg.Source)
	assert.Equal(t, "Other", cfg.SheetConfig().SheetName)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestInvalid(t *testing.T) {
	for name, vars := range map[string]map[string]string{
		"bad port":        {"PORT": "0"},
		"not a number":    {"PORT": "abc"},
		"unknown source":  {"SOURCE": "ftp"},
		"sheets no creds": {"SOURCE": "sheets"},
		"mirror no creds": {"FIRESTORE_MIRROR": "true"},
		"bad duration":    {"RELAY_TIMEOUT": "soon"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromMap(vars)
			assert.Error(t, err)
		})
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, cfg.Location()).Zone()
	assert.Equal(t, 7*3600, offset)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATA_DIR=/srv/progress\n"), 0o644))
	t.Setenv("DATA_DIR", "")
	os.Unsetenv("DATA_DIR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/progress", cfg.DataDir)
	os.Unsetenv("DATA_DIR")

	_, err = Load(filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
}
