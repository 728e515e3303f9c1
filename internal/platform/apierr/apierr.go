package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary. Lower layers pick the kind,
// the response package picks the status.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindValidation
	KindConflict
	KindUnauthorized
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Status is the HTTP status that corresponds to the kind.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind   Kind
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func newKind(k Kind, code string, err error) *Error {
	if code == "" {
		code = k.String()
	}
	return &Error{Kind: k, Status: k.Status(), Code: code, Err: err}
}

func NotFound(code string, err error) *Error     { return newKind(KindNotFound, code, err) }
func Forbidden(code string, err error) *Error    { return newKind(KindForbidden, code, err) }
func Validation(code string, err error) *Error   { return newKind(KindValidation, code, err) }
func Conflict(code string, err error) *Error     { return newKind(KindConflict, code, err) }
func Unauthorized(code string, err error) *Error { return newKind(KindUnauthorized, code, err) }
func RateLimited(code string, err error) *Error  { return newKind(KindRateLimited, code, err) }

// NotFoundf and friends are shorthands for the common "message only" case.
func NotFoundf(code, format string, args ...any) *Error {
	return NotFound(code, fmt.Errorf(format, args...))
}

func Forbiddenf(code, format string, args ...any) *Error {
	return Forbidden(code, fmt.Errorf(format, args...))
}

func Validationf(code, format string, args ...any) *Error {
	return Validation(code, fmt.Errorf(format, args...))
}

func Conflictf(code, format string, args ...any) *Error {
	return Conflict(code, fmt.Errorf(format, args...))
}

func Unauthorizedf(code, format string, args ...any) *Error {
	return Unauthorized(code, fmt.Errorf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e != nil {
		if e.Kind != KindUnknown {
			return e.Kind
		}
		return kindFromStatus(e.Status)
	}
	return KindUnknown
}

func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

func kindFromStatus(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindUnknown
	}
}
