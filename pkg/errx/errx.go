package errx

import (
	"fmt"
	"net/http"
)

// Type classifies an error for transport mapping and logging.
type Type string

const (
	TypeValidation    Type = "VALIDATION"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeBusiness      Type = "BUSINESS"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeInternal      Type = "INTERNAL"
	TypeUnavailable   Type = "UNAVAILABLE"
)

// Code identifies a registered error, e.g. "RESUME_NOT_FOUND".
type Code string

// Error is the error type returned by services. It carries the HTTP
// status the transport layer should use and optional structured details.
type Error struct {
	Code       Code           `json:"code"`
	Type       Type           `json:"type"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithDetail returns a copy of the error with one detail attached.
func (e *Error) WithDetail(key string, value any) *Error {
	return e.WithDetails(map[string]any{key: value})
}

// WithDetails returns a copy of the error with the given details merged in.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	for k, v := range details {
		clone.Details[k] = v
	}
	return &clone
}

// ToHTTPResponse renders the error body sent to clients.
func (e *Error) ToHTTPResponse() map[string]any {
	resp := map[string]any{
		"error":   true,
		"code":    string(e.Code),
		"type":    string(e.Type),
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		resp["details"] = e.Details
	}
	return resp
}

type registeredError struct {
	errType    Type
	httpStatus int
	message    string
}

// Registry holds the error definitions of one domain package. Codes are
// namespaced by the registry prefix.
type Registry struct {
	prefix string
	codes  map[Code]registeredError
}

// NewRegistry creates a registry whose codes are prefixed with the given
// namespace, e.g. NewRegistry("RESUME").
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		codes:  make(map[Code]registeredError),
	}
}

// Register defines an error code. Called from package-level var blocks, so
// duplicate registration is a programmer error and panics.
func (r *Registry) Register(code string, t Type, httpStatus int, message string) Code {
	full := Code(r.prefix + "_" + code)
	if _, exists := r.codes[full]; exists {
		panic(fmt.Sprintf("errx: duplicate code %s", full))
	}
	r.codes[full] = registeredError{errType: t, httpStatus: httpStatus, message: message}
	return full
}

// New instantiates a registered error.
func (r *Registry) New(code Code) *Error {
	def, ok := r.codes[code]
	if !ok {
		return &Error{
			Code:       code,
			Type:       TypeInternal,
			Message:    "unregistered error code",
			HTTPStatus: http.StatusInternalServerError,
		}
	}
	return &Error{
		Code:       code,
		Type:       def.errType,
		Message:    def.message,
		HTTPStatus: def.httpStatus,
	}
}

// NewWithCause instantiates a registered error wrapping an underlying cause.
func (r *Registry) NewWithCause(code Code, cause error) *Error {
	e := r.New(code)
	e.Cause = cause
	return e
}

// Wrap converts an arbitrary error into an *Error without a registry,
// for infrastructure glue that has no domain code to attach.
func Wrap(err error, message string, t Type) *Error {
	status := http.StatusInternalServerError
	switch t {
	case TypeValidation:
		status = http.StatusBadRequest
	case TypeNotFound:
		status = http.StatusNotFound
	case TypeConflict:
		status = http.StatusConflict
	case TypeAuthorization:
		status = http.StatusUnauthorized
	case TypeUnavailable:
		status = http.StatusServiceUnavailable
	}
	return &Error{
		Code:       Code(string(t) + "_ERROR"),
		Type:       t,
		Message:    message,
		HTTPStatus: status,
		Cause:      err,
	}
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}
