package sheet

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressboard/services"
)

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	router, _ := setupWithFiles(t)
	return router
}

func setupWithFiles(t *testing.T) (*gin.Engine, afero.Fs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fs := afero.NewMemMapFs()
	relay := services.NewRelayService(services.NewFileStore(fs, "/data"), nil)
	router := gin.New()
	SheetController(router, relay)
	return router, fs
}

func request(router *gin.Engine, method, path, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	return w.Code, m
}

func TestSheetConfigEmpty(t *testing.T) {
	code, m := request(setup(t), http.MethodGet, "/api/sheet-config", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, m["success"])
	assert.Nil(t, m["config"])
	assert.Equal(t, "No sheet configuration found", m["message"])
}

func TestSheetConfigCorruptLog(t *testing.T) {
	router, fs := setupWithFiles(t)
	require.NoError(t, afero.WriteFile(fs, "/data/"+services.ConfigLogFile, []byte("{not json"), 0o644))

	code, m := request(router, http.MethodGet, "/api/sheet-config", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, m["success"])
	assert.Equal(t, "Failed to read sheet configuration", m["message"])
	assert.NotEmpty(t, m["error"])
}

func TestSaveSheetInfoAppendsAndReadsBack(t *testing.T) {
	router := setup(t)
	code, m := request(router, http.MethodPost, "/api/save-sheet-info",
		`{"sheet_url":"https://docs.google.com/spreadsheets/d/a","sheet_name":"A"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Sheet information saved successfully", m["message"])

	_, _ = request(router, http.MethodPost, "/api/save-sheet-info",
		`{"sheet_url":"https://docs.google.com/spreadsheets/d/b","sheet_name":"B"}`)

	code, m = request(router, http.MethodGet, "/api/sheet-config", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, m["success"])
	assert.Equal(t, map[string]any{"sheet_url": "https://docs.google.com/spreadsheets/d/b", "sheet_name": "B"}, m["config"])
}

func TestSaveSheetInfoAllLogsOverwrites(t *testing.T) {
	router := setup(t)
	_, _ = request(router, http.MethodPost, "/api/save-sheet-info",
		`{"sheet_url":"https://docs.google.com/spreadsheets/d/a","sheet_name":"A"}`)

	code, _ := request(router, http.MethodPost, "/api/save-sheet-info",
		`{"allLogs":[{"timestamp":"t","sheet_url":"https://docs.google.com/spreadsheets/d/z","sheet_name":"Z","action":"configuration_saved"}]}`)
	require.Equal(t, http.StatusOK, code)

	_, m := request(router, http.MethodGet, "/api/sheet-config", "")
	cfg := m["config"].(map[string]any)
	assert.Equal(t, "Z", cfg["sheet_name"])
}

func TestSaveSheetInfoRejectsEmpty(t *testing.T) {
	code, m := request(setup(t), http.MethodPost, "/api/save-sheet-info", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, m["success"])

	code, _ = request(setup(t), http.MethodPost, "/api/save-sheet-info", `not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}
