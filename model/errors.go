package model

import "fmt"

// FieldError reports why an externally sourced task row was rejected.
type FieldError struct {
	Index  int // position in the source list, -1 when unknown
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	switch {
	case e.Field == "" && e.Index >= 0:
		return fmt.Sprintf("task %d: %s", e.Index, e.Reason)
	case e.Field == "":
		return "task: " + e.Reason
	case e.Index >= 0:
		return fmt.Sprintf("task %d: field %q: %s", e.Index, e.Field, e.Reason)
	default:
		return fmt.Sprintf("task: field %q: %s", e.Field, e.Reason)
	}
}

// ValidationError is returned for bad user input. It is shown inline and
// never sent to the relay.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DateParseError is returned by ParseTaskDate.
type DateParseError struct {
	Value  string
	Reason string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parse date %q: %s", e.Value, e.Reason)
}
