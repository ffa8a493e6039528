package services

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressboard/model"
)

func webhook(t *testing.T, h http.HandlerFunc) *WebhookSource {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewWebhookSource(srv.URL, time.Second, time.Second, nil)
}

func fetchKind(t *testing.T, err error) FetchKind {
	t.Helper()
	var fe *FetchError
	require.True(t, errors.As(err, &fe), "expected *FetchError, got %v", err)
	return fe.Kind
}

func TestWebhookFetch(t *testing.T) {
	cfg := model.WebhookConfig{SheetURL: "https://docs.google.com/spreadsheets/d/abc", SheetName: "S"}
	src := webhook(t, func(w http.ResponseWriter, r *http.Request) {
		var got model.WebhookConfig
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, cfg, got)
		io.WriteString(w, `[{"ID":1},{"ID":2}]`)
	})

	raw, err := src.Fetch(context.Background(), cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"ID":1},{"ID":2}]`, string(raw))
}

func TestWebhookRejectsNonArray(t *testing.T) {
	for name, body := range map[string]string{
		"object": `{"data":[]}`,
		"null":   `null`,
		"text":   `hello`,
	} {
		t.Run(name, func(t *testing.T) {
			src := webhook(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})
			_, err := src.Fetch(context.Background(), model.DefaultConfig())
			assert.Equal(t, FetchMalformed, fetchKind(t, err))
		})
	}
}

func TestWebhookErrorStatus(t *testing.T) {
	src := webhook(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream down")
	})
	_, err := src.Fetch(context.Background(), model.DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, FetchStatus, fetchKind(t, err))
	assert.Equal(t, "Webhook API returned 502: Bad Gateway. Body: upstream down", err.Error())
}

func TestWebhookTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	src := NewWebhookSource(srv.URL, 50*time.Millisecond, time.Second, nil)
	_, err := src.Fetch(context.Background(), model.DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, FetchTimeout, fetchKind(t, err))
	assert.Equal(t, "Request timeout - webhook took too long to respond", err.Error())
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyFetchError(t *testing.T) {
	dial := &url.Error{Op: "Post", URL: "http://x", Err: &net.OpError{Op: "dial", Net: "tcp", Err: timeoutErr{}}}
	assert.Equal(t, FetchConnectTimeout, classifyFetchError(dial).Kind)
	assert.Equal(t, "Connection timeout - unable to connect to webhook server", classifyFetchError(dial).Error())

	read := &url.Error{Op: "Post", URL: "http://x", Err: &net.OpError{Op: "read", Net: "tcp", Err: timeoutErr{}}}
	assert.Equal(t, FetchTimeout, classifyFetchError(read).Kind)

	assert.Equal(t, FetchTimeout, classifyFetchError(context.DeadlineExceeded).Kind)

	refused := &url.Error{Op: "Post", URL: "http://x", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}
	fe := classifyFetchError(refused)
	assert.Equal(t, FetchTransport, fe.Kind)
	assert.Equal(t, "NetworkError", fe.Type())
}

func TestSpreadsheetID(t *testing.T) {
	id, err := SpreadsheetID(model.DefaultSheetURL)
	require.NoError(t, err)
	assert.Equal(t, "1vy0dgWegn6btmYTPfvpPnWa7o897H39QDnZqnKzhi7E", id)

	_, err = SpreadsheetID("https://example.com/sheet")
	assert.Error(t, err)
}

func TestRowsToRecords(t *testing.T) {
	values := [][]interface{}{
		{"ID", "Tên Công việc", "Trạng thái ", "Tiến độ (% hoàn thành)"},
		{"1", "Khảo sát", "Đã xong", "100%"},
		{"", "", ""},
		{"3", "Triển khai", "Tạm dừng"},
		{"x", "Lỗi", "Đã xong", "abc"},
	}
	rows := rowsToRecords(values)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0][model.KeyRowNumber])
	assert.Equal(t, 1, rows[0][model.KeyID])
	assert.Equal(t, 100, rows[0][model.KeyProgress])
	assert.Equal(t, "Đã xong", rows[0][model.KeyStatus])

	assert.Equal(t, 4, rows[1][model.KeyRowNumber])
	assert.Equal(t, "", rows[1][model.KeyProgress])

	assert.Equal(t, "x", rows[2][model.KeyID])
	assert.Equal(t, "abc", rows[2][model.KeyProgress])

	assert.Empty(t, rowsToRecords(nil))
}
