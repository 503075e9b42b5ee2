// Package errs defines the error shapes returned to API clients.
//
// Every client-visible failure is an *HTTPError: a stable machine code, a
// message, the HTTP status and optional per-field errors. Field names use
// the JSON path of the offending value, e.g. "section.restaurant_id".
package errs

import "strings"

// FieldError is a single field-level validation failure.
//
//	{ "field": "section.name", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType tells the client what to do next.
type ActionType string

const (
	ActionTypeRedirect ActionType = "redirect"
)

// Action is an optional instruction attached to an error.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
