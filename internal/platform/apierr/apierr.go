package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code classifies a failure so callers can tell validation, missing-resource and
// state-conflict errors apart without string matching.
type Code string

const (
	CodeValidation   Code = "validation"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeForbidden    Code = "forbidden"
	CodeUnauthorized Code = "unauthorized"
	CodeRetryable    Code = "retryable"
	CodeInternal     Code = "internal"
)

type Error struct {
	Status int
	Code   Code
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && msg != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	case msg != "":
		return msg
	case e.Code != "":
		return string(e.Code)
	case e.Status != 0:
		return fmt.Sprintf("api error (%d)", e.Status)
	default:
		return "api error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code Code, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func build(code Code, op, format string, args ...any) error {
	return &Error{
		Status: statusFor(code),
		Code:   code,
		Op:     strings.TrimSpace(op),
		Err:    fmt.Errorf(format, args...),
	}
}

func Validation(op, format string, args ...any) error {
	return build(CodeValidation, op, format, args...)
}

func NotFound(op, format string, args ...any) error {
	return build(CodeNotFound, op, format, args...)
}

func Conflict(op, format string, args ...any) error {
	return build(CodeConflict, op, format, args...)
}

func Forbidden(op, format string, args ...any) error {
	return build(CodeForbidden, op, format, args...)
}

func Unauthorized(op, format string, args ...any) error {
	return build(CodeUnauthorized, op, format, args...)
}

func Internal(op, format string, args ...any) error {
	return build(CodeInternal, op, format, args...)
}

// Wrap tags err with code unless it already carries one.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Status: statusFor(code), Code: code, Op: strings.TrimSpace(op), Err: err}
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}

// StatusOf returns the HTTP status for err, 500 for untagged errors.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

func statusFor(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
