package gateway

import (
	"fmt"
	"strings"
)

// UpstreamError is a business-level failure reported by the gateway itself.
// It is never retried against another candidate.
type UpstreamError struct {
	Method  string
	Code    string
	Message string
	Data    any
}

func (e *UpstreamError) Error() string {
	return e.Code + ":" + e.Message
}

// Attempt records one failed candidate.
type Attempt struct {
	URL      string   `json:"url"`
	Protocol Protocol `json:"protocol"`
	Error    string   `json:"error"`
}

// TransportError means no candidate produced a usable response.
type TransportError struct {
	Op       Operation
	Attempts []Attempt
}

func (e *TransportError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s: no candidates", e.Op)
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("%s: all %d candidates failed, last: %s", e.Op, len(e.Attempts), last.Error)
}

// URLs lists the attempted candidates in order.
func (e *TransportError) URLs() []string {
	urls := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		urls[i] = a.URL
	}
	return urls
}

// ValidationError is a local parameter check that failed before any I/O.
type ValidationError struct {
	Op     Operation
	Reason string   // machine-readable, e.g. invalid_sessions_send_args
	Fields []string // offending parameter names
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s (%s)", e.Reason, strings.Join(e.Fields, ", "))
}
