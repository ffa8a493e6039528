package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task row. The zero value is
// StatusNotStarted.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusDone
	StatusPaused
)

// Statuses lists every valid record status in display order.
var Statuses = []Status{StatusDone, StatusInProgress, StatusNotStarted, StatusPaused}

// Labels used by the spreadsheet. Translation happens only in this file.
const (
	labelNotStarted = "Chưa bắt đầu"
	labelInProgress = "Đang thực hiện"
	labelDone       = "Đã xong"
	labelPaused     = "Tạm dừng"
)

// Label returns the spreadsheet text for the status.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return labelNotStarted
	case StatusInProgress:
		return labelInProgress
	case StatusDone:
		return labelDone
	case StatusPaused:
		return labelPaused
	default:
		return ""
	}
}

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusInProgress:
		return "in_progress"
	case StatusDone:
		return "done"
	case StatusPaused:
		return "paused"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Valid reports whether s is one of the four record statuses.
func (s Status) Valid() bool {
	return s >= StatusNotStarted && s <= StatusPaused
}

// ParseStatusLabel maps a spreadsheet label to a Status. Surrounding
// whitespace is ignored.
func ParseStatusLabel(label string) (Status, bool) {
	switch strings.TrimSpace(label) {
	case labelNotStarted:
		return StatusNotStarted, true
	case labelInProgress:
		return StatusInProgress, true
	case labelDone:
		return StatusDone, true
	case labelPaused:
		return StatusPaused, true
	}
	return StatusNotStarted, false
}

// ParseStatus accepts either a spreadsheet label or the short name
// returned by String ("done", "in_progress", ...).
func ParseStatus(s string) (Status, error) {
	if st, ok := ParseStatusLabel(s); ok {
		return st, nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "not_started", "notstarted":
		return StatusNotStarted, nil
	case "in_progress", "inprogress":
		return StatusInProgress, nil
	case "done", "completed":
		return StatusDone, nil
	case "paused":
		return StatusPaused, nil
	}
	return StatusNotStarted, fmt.Errorf("unknown status %q", s)
}

// MarshalJSON writes the spreadsheet label.
func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot encode status %d", int(s))
	}
	return json.Marshal(s.Label())
}

// UnmarshalJSON reads a spreadsheet label.
func (s *Status) UnmarshalJSON(b []byte) error {
	var label string
	if err := json.Unmarshal(b, &label); err != nil {
		return err
	}
	st, ok := ParseStatusLabel(label)
	if !ok {
		return fmt.Errorf("unknown status label %q", label)
	}
	*s = st
	return nil
}

// Wire keys of a task row as produced by the spreadsheet webhook. Two of
// them carry a trailing space upstream; lookups compare trimmed keys.
const (
	KeyRowNumber  = "row_number"
	KeyID         = "ID"
	KeyTitle      = "Tên Công việc"
	KeyUnit       = "Đơn vị thực hiện"
	KeyStartDate  = "Ngày bắt đầu "
	KeyEndDate    = "Ngày kết thúc"
	KeyStatus     = "Trạng thái "
	KeyProgress   = "Tiến độ (% hoàn thành)"
	KeyNote       = "Ghi chú - Mô tả"
	KeyEvaluation = "Đánh giá"
)

// TaskRecord is one row of progress data.
type TaskRecord struct {
	RowNumber       int
	ID              int
	Title           string
	Unit            string
	StartDate       string // D/M/YYYY, kept as text
	EndDate         string // D/M/YYYY, kept as text
	Status          Status
	ProgressPercent int
	Note            string
	Evaluation      string
}

// StartTime parses StartDate.
func (t TaskRecord) StartTime() (time.Time, error) {
	return ParseTaskDate(t.StartDate)
}

// EndTime parses EndDate.
func (t TaskRecord) EndTime() (time.Time, error) {
	return ParseTaskDate(t.EndDate)
}

type wireTask struct {
	RowNumber  int    `json:"row_number"`
	ID         int    `json:"ID"`
	Title      string `json:"Tên Công việc"`
	Unit       string `json:"Đơn vị thực hiện"`
	StartDate  string `json:"Ngày bắt đầu "`
	EndDate    string `json:"Ngày kết thúc"`
	Status     Status `json:"Trạng thái "`
	Progress   int    `json:"Tiến độ (% hoàn thành)"`
	Note       string `json:"Ghi chú - Mô tả"`
	Evaluation string `json:"Đánh giá"`
}

// MarshalJSON encodes the record with the upstream wire keys.
func (t TaskRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireTask{
		RowNumber:  t.RowNumber,
		ID:         t.ID,
		Title:      t.Title,
		Unit:       t.Unit,
		StartDate:  t.StartDate,
		EndDate:    t.EndDate,
		Status:     t.Status,
		Progress:   t.ProgressPercent,
		Note:       t.Note,
		Evaluation: t.Evaluation,
	})
}

// UnmarshalJSON decodes a record strictly; see DecodeTaskRecord.
func (t *TaskRecord) UnmarshalJSON(b []byte) error {
	rec, err := DecodeTaskRecord(b)
	if err != nil {
		return err
	}
	*t = rec
	return nil
}

// DecodeTaskRecord validates and decodes one externally sourced row. Every
// field must be present with the right JSON type; nothing is coerced. The
// returned error is a *FieldError naming the first field that failed.
func DecodeTaskRecord(raw []byte) (TaskRecord, error) {
	var obj map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return TaskRecord{}, &FieldError{Index: -1, Reason: "record is not a JSON object"}
	}
	fields := make(map[string]json.RawMessage, len(obj))
	for k, v := range obj {
		fields[strings.TrimSpace(k)] = v
	}

	var rec TaskRecord
	var err error
	if rec.RowNumber, err = intField(fields, KeyRowNumber); err != nil {
		return TaskRecord{}, err
	}
	if rec.ID, err = intField(fields, KeyID); err != nil {
		return TaskRecord{}, err
	}
	if rec.Title, err = stringField(fields, KeyTitle); err != nil {
		return TaskRecord{}, err
	}
	if rec.Unit, err = stringField(fields, KeyUnit); err != nil {
		return TaskRecord{}, err
	}
	if rec.StartDate, err = stringField(fields, KeyStartDate); err != nil {
		return TaskRecord{}, err
	}
	if rec.EndDate, err = stringField(fields, KeyEndDate); err != nil {
		return TaskRecord{}, err
	}
	label, err := stringField(fields, KeyStatus)
	if err != nil {
		return TaskRecord{}, err
	}
	st, ok := ParseStatusLabel(label)
	if !ok {
		return TaskRecord{}, &FieldError{Index: -1, Field: strings.TrimSpace(KeyStatus), Reason: fmt.Sprintf("unknown status %q", label)}
	}
	rec.Status = st
	if rec.ProgressPercent, err = intField(fields, KeyProgress); err != nil {
		return TaskRecord{}, err
	}
	if rec.ProgressPercent < 0 || rec.ProgressPercent > 100 {
		return TaskRecord{}, &FieldError{Index: -1, Field: KeyProgress, Reason: fmt.Sprintf("%d is outside 0..100", rec.ProgressPercent)}
	}
	if rec.Note, err = stringField(fields, KeyNote); err != nil {
		return TaskRecord{}, err
	}
	if rec.Evaluation, err = stringField(fields, KeyEvaluation); err != nil {
		return TaskRecord{}, err
	}
	return rec, nil
}

// DecodeTaskRecords decodes a list of raw rows. The first invalid row
// aborts decoding; its position is recorded in the FieldError.
func DecodeTaskRecords(raws []json.RawMessage) ([]TaskRecord, error) {
	out := make([]TaskRecord, 0, len(raws))
	for i, raw := range raws {
		rec, err := DecodeTaskRecord(raw)
		if err != nil {
			if fe, ok := err.(*FieldError); ok {
				fe.Index = i
			}
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func lookup(fields map[string]json.RawMessage, key string) (json.RawMessage, error) {
	name := strings.TrimSpace(key)
	v, ok := fields[name]
	if !ok || string(v) == "null" {
		return nil, &FieldError{Index: -1, Field: name, Reason: "missing"}
	}
	return v, nil
}

func intField(fields map[string]json.RawMessage, key string) (int, error) {
	v, err := lookup(fields, key)
	if err != nil {
		return 0, err
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil || len(v) == 0 || v[0] == '"' {
		return 0, &FieldError{Index: -1, Field: strings.TrimSpace(key), Reason: "expected a number"}
	}
	i, err := n.Int64()
	if err != nil {
		return 0, &FieldError{Index: -1, Field: strings.TrimSpace(key), Reason: "expected an integer"}
	}
	return int(i), nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	v, err := lookup(fields, key)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", &FieldError{Index: -1, Field: strings.TrimSpace(key), Reason: "expected a string"}
	}
	return s, nil
}
