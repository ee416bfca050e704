// Package errs defines the error envelope returned to API clients.
//
// Every failure leaving the HTTP layer is an *HTTPError so clients always see
// the same JSON shape: a machine code, a human message, the status and, for
// storage and gateway failures, the underlying error text.
package errs

import "strings"

// FieldError is a field-level validation error.
//
//	{ "field": "id", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Action is an optional follow-up instruction for the client.
type Action struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// HTTPError is the main error type for API responses.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "PARCEL_NOT_FOUND").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: the message is safe to show as-is.
//   - Errors: per-field validation errors.
//   - Action: client instruction (optional).
//   - Detail: underlying error text, serialized as "error". Stripped in
//     production by the global error handler.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`
	Action *Action      `json:"action"`

	Detail string `json:"error,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError regardless of code or status.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithDetail returns a copy carrying the underlying error text.
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
