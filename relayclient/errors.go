package relayclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind classifies a failed relay call.
type Kind int

const (
	// KindNetwork covers refused connections, DNS failures and cancellation.
	KindNetwork Kind = iota + 1
	// KindTimeout means the call exceeded the client timeout.
	KindTimeout
	// KindUpstream means the relay answered with a failure status or success=false.
	KindUpstream
	// KindMalformed means the response body did not have the expected shape.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindUpstream:
		return "upstream"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by Client methods.
type Error struct {
	Kind    Kind
	Op      string // e.g. "get tasks"
	Status  int    // HTTP status, 0 when no response was received
	Body    string // raw response body for upstream errors
	Message string // human readable
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind: errors.Is(err, &Error{Kind: KindTimeout}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

func networkError(op, base string, err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Op:      op,
		Message: fmt.Sprintf("%s: cannot connect to relay server at %s", op, base),
		Err:     err,
	}
}

func timeoutError(op string, limit fmt.Stringer, err error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Op:      op,
		Message: fmt.Sprintf("%s: request took too long (limit %s)", op, limit),
		Err:     err,
	}
}

func malformedError(op, reason string, err error) *Error {
	return &Error{
		Kind:    KindMalformed,
		Op:      op,
		Message: fmt.Sprintf("%s: could not read relay response: %s", op, reason),
		Err:     err,
	}
}

// upstreamError builds a message from the relay's {message, error} body
// when it has one, falling back to the raw body.
func upstreamError(op string, status int, body []byte) *Error {
	detail := strings.TrimSpace(string(body))
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil {
		switch {
		case env.Message != "" && env.Error != "":
			detail = env.Message + ": " + env.Error
		case env.Message != "":
			detail = env.Message
		case env.Error != "":
			detail = env.Error
		}
	}
	msg := fmt.Sprintf("%s: relay returned %d", op, status)
	if status == 0 {
		msg = op + ": relay reported failure"
	}
	if detail != "" {
		msg += ": " + detail
	}
	return &Error{
		Kind:    KindUpstream,
		Op:      op,
		Status:  status,
		Body:    string(body),
		Message: msg,
	}
}
