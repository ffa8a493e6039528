package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"progressboard/model"
)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID extracts the document id from a Google Sheets URL.
func SpreadsheetID(sheetURL string) (string, error) {
	m := spreadsheetIDPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return "", errors.Errorf("no spreadsheet id in %q", sheetURL)
	}
	return m[1], nil
}

// SheetsSource reads rows directly through the Sheets API instead of a
// webhook.
type SheetsSource struct {
	srv *sheets.Service
	log *logrus.Entry
}

// NewSheetsSource authenticates with a service account key file.
func NewSheetsSource(ctx context.Context, credentialsFile string, log *logrus.Entry) (*SheetsSource, error) {
	if credentialsFile == "" {
		return nil, errors.New("sheets source needs GOOGLE_APPLICATION_CREDENTIALS")
	}
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to retrieve Sheets client")
	}
	if log == nil {
		log = logrus.WithField("component", "sheets")
	}
	return &SheetsSource{srv: srv, log: log}, nil
}

func (s *SheetsSource) Fetch(ctx context.Context, cfg model.WebhookConfig) (json.RawMessage, error) {
	id, err := SpreadsheetID(cfg.SheetURL)
	if err != nil {
		return nil, &FetchError{Kind: FetchMalformed, Err: err}
	}
	readRange := fmt.Sprintf("'%s'!A:ZZ", cfg.SheetName)
	resp, err := s.srv.Spreadsheets.Values.Get(id, readRange).Context(ctx).Do()
	if err != nil {
		fe := classifyFetchError(err)
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			fe = &FetchError{Kind: FetchStatus, Status: gerr.Code, Body: gerr.Message, Err: err}
		}
		s.log.WithError(err).WithField("spreadsheet", id).Warn("sheets read failed")
		return nil, fe
	}
	rows := rowsToRecords(resp.Values)
	b, err := codec.Marshal(rows)
	if err != nil {
		return nil, errors.Wrap(err, "encode sheet rows")
	}
	s.log.WithFields(logrus.Fields{"spreadsheet": id, "rows": len(rows)}).Debug("sheet read")
	return b, nil
}

// rowsToRecords turns a value grid into row objects keyed by the header row.
// row_number is the 1-based sheet row. Numeric columns are converted when the
// cell text is a number; anything else is left as text for the client to
// reject.
func rowsToRecords(values [][]interface{}) []map[string]any {
	out := make([]map[string]any, 0)
	if len(values) == 0 {
		return out
	}
	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = fmt.Sprint(h)
	}
	for r, row := range values[1:] {
		if blankRow(row) {
			continue
		}
		rec := map[string]any{model.KeyRowNumber: r + 2}
		for c, h := range headers {
			if h == "" {
				continue
			}
			cell := ""
			if c < len(row) {
				cell = fmt.Sprint(row[c])
			}
			rec[h] = cellValue(h, cell)
		}
		out = append(out, rec)
	}
	return out
}

func cellValue(header, cell string) any {
	switch strings.TrimSpace(header) {
	case model.KeyID, strings.TrimSpace(model.KeyProgress):
		text := strings.TrimSuffix(strings.TrimSpace(cell), "%")
		if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
			return n
		}
	}
	return cell
}

func blankRow(row []interface{}) bool {
	for _, v := range row {
		if strings.TrimSpace(fmt.Sprint(v)) != "" {
			return false
		}
	}
	return true
}
