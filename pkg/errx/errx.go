// Package errx defines the error model shared by every module: a stable
// machine-readable code, a category that maps to an HTTP status, and
// optional structured details. Modules declare their codes in a Registry
// and hand out *Error values built from them.
package errx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type categorizes an error for mapping to transport-level semantics.
type Type string

const (
	TypeInternal      Type = "INTERNAL"      // storage failures, broken invariants
	TypeValidation    Type = "VALIDATION"    // rejected caller input
	TypeAuthorization Type = "AUTHORIZATION" // missing or invalid credentials
	TypeNotFound      Type = "NOT_FOUND"     // missing resource
	TypeConflict      Type = "CONFLICT"      // state conflict
	TypeBusiness      Type = "BUSINESS"      // domain rule rejection
	TypeExternal      Type = "EXTERNAL"      // upstream service failure
	TypeRateLimit     Type = "RATE_LIMIT"    // quota or budget exhaustion
)

func (t Type) String() string {
	return string(t)
}

// typeStatus holds the default HTTP status per category, used for ad-hoc
// errors created without a registered code.
var typeStatus = map[Type]int{
	TypeValidation:    400,
	TypeAuthorization: 401,
	TypeNotFound:      404,
	TypeConflict:      409,
	TypeBusiness:      422,
	TypeRateLimit:     429,
	TypeExternal:      502,
	TypeInternal:      500,
}

func defaultStatus(t Type) int {
	if s, ok := typeStatus[t]; ok {
		return s
	}
	return 500
}

// Error carries a stable code such as "USAGE.STORAGE_FAILURE", a category,
// and optional structured details alongside the human-readable message.
type Error struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Type       Type                   `json:"type"`
	HTTPStatus int                    `json:"http_status"`
	Details    map[string]interface{} `json:"details,omitempty"`

	// Err is the underlying cause; it stays out of JSON output.
	Err error `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail attaches one key/value pair and returns the error for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// MarshalJSON includes the rendered error string next to the structured
// fields.
func (e *Error) MarshalJSON() ([]byte, error) {
	type plain Error
	return json.Marshal(&struct {
		*plain
		Error string `json:"error,omitempty"`
	}{
		plain: (*plain)(e),
		Error: e.Error(),
	})
}

// New creates an ad-hoc error outside any registry. Its code is the
// category name.
func New(message string, errType Type) *Error {
	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: defaultStatus(errType),
		Details:    make(map[string]interface{}),
	}
}

// Wrap layers a message over an existing error. A wrapped *Error keeps its
// original code, status, and details.
func Wrap(err error, message string, errType Type) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Code:       existing.Code,
			Message:    message,
			Type:       errType,
			HTTPStatus: existing.HTTPStatus,
			Details:    existing.Details,
			Err:        err,
		}
	}

	out := New(message, errType)
	out.Err = err
	return out
}

// As finds the first error in err's chain matching target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
