package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError carries a stable code, a human message, the HTTP status it maps to
// and an optional cause. Two AppErrors are equal under errors.Is when their
// codes match.
type AppError struct {
	Code       Code
	Message    string
	StatusCode int
	Context    string
	TraceID    string
	cause      error
}

func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, " (%s)", e.Context)
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Code == t.Code
}

// WithTraceID sets the trace ID reported to API clients.
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// ErrorBody is the JSON error envelope returned by HTTP handlers.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
	TraceID string `json:"traceId,omitempty"`
}

// Response renders e for an HTTP client. The cause is never exposed.
func (e *AppError) Response() ErrorBody {
	return ErrorBody{Error: ErrorDetail{
		Code:    e.Code,
		Message: e.Message,
		Context: e.Context,
		TraceID: e.TraceID,
	}}
}

// LogFields returns key/value pairs for a structured logger.
func (e *AppError) LogFields() []any {
	fields := []any{"code", string(e.Code), "status", e.StatusCode}
	if e.Context != "" {
		fields = append(fields, "context", e.Context)
	}
	if e.cause != nil {
		fields = append(fields, "cause", e.cause.Error())
	}
	return fields
}

// Option is a functional option for AppError
type Option func(*AppError)

func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

func WithStatusCode(statusCode int) Option {
	return func(e *AppError) {
		e.StatusCode = statusCode
	}
}

func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// New creates an AppError with the registered message and default status
// for code.
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:       code,
		Message:    messages[code],
		StatusCode: statusFor(code),
	}

	for _, opt := range opts {
		opt(err)
	}

	if err.Message == "" {
		err.Message = string(code)
	}

	return err
}

func NotFound(code Code, context string) *AppError {
	return New(code, WithContext(context), WithStatusCode(http.StatusNotFound))
}

func Validation(code Code, context string) *AppError {
	return New(code, WithContext(context), WithStatusCode(http.StatusBadRequest))
}

func Internal(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause), WithStatusCode(http.StatusInternalServerError))
}

// Wrap returns err as an AppError. An existing AppError is returned as is,
// gaining context only if it had none.
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}

	return New(code, WithContext(context), WithCause(err))
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode extracts the code from err, or CodeUnknownError.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code Code) bool {
	return GetCode(err) == code
}

func statusFor(code Code) int {
	c := string(code)
	switch {
	case strings.Contains(c, "NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(c, "INVALID"):
		return http.StatusBadRequest
	case strings.Contains(c, "CONNECTION"), strings.Contains(c, "TIMEOUT"), code == CodeCircuitOpen:
		return http.StatusServiceUnavailable
	case strings.HasPrefix(c, "AGGREGATOR"), code == CodeContractCallFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
