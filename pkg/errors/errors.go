package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedPayload  = NewError("MALFORMED_PAYLOAD", "failed to extract json node")
	ErrMissingField      = NewError("MISSING_FIELD", "mandatory field missing")
	ErrSerialization     = NewError("SERIALIZATION_ERROR", "failed to serialize message")
	ErrRemoteRejected    = NewError("REMOTE_REJECTED", "remote service rejected the request")
	ErrRemoteUnavailable = NewError("REMOTE_UNAVAILABLE", "remote service unavailable")
	ErrDispatch          = NewError("DISPATCH_FAILED", "failed to dispatch message")
	ErrPersistence       = NewError("PERSISTENCE_FAILED", "failed to persist audit record")
	ErrInternal          = NewError("INTERNAL_ERROR", "internal error")
)

// RetryableError is implemented by errors that know whether redelivery of
// the message could succeed.
type RetryableError interface {
	error
	IsRetryable() bool
}

type Error struct {
	Code    string
	Message string
	// Context names what was being extracted or called when the failure
	// happened, e.g. "data" or "company-lookup".
	Context   string
	Details   map[string]interface{}
	Cause     error
	retryable *bool
}

func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Context != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Context)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on code so errors.Is(err, ErrMissingField) works on copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) IsRetryable() bool {
	if e.retryable != nil {
		return *e.retryable
	}
	if e.Cause != nil {
		var retryableErr RetryableError
		if errors.As(e.Cause, &retryableErr) {
			return retryableErr.IsRetryable()
		}
	}
	return e.Code == ErrRemoteUnavailable.Code
}

func (e *Error) WithCause(cause error) *Error {
	err := e.clone()
	err.Cause = cause
	return err
}

func (e *Error) WithContext(context string) *Error {
	err := e.clone()
	err.Context = context
	return err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := e.clone()
	err.Details[key] = value
	return err
}

func (e *Error) AsRetryable() *Error {
	err := e.clone()
	retryable := true
	err.retryable = &retryable
	return err
}

func (e *Error) AsFatal() *Error {
	err := e.clone()
	retryable := false
	err.retryable = &retryable
	return err
}

func (e *Error) clone() *Error {
	err := *e
	err.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		err.Details[k] = v
	}
	return &err
}

// NonRetryable classifies err as a defect of the message itself or a
// permanent rejection; the transport must not redeliver it.
func NonRetryable(appErr *Error, context string, cause error) *Error {
	return appErr.WithContext(context).WithCause(cause).AsFatal()
}

// Retryable classifies err as transient; the transport redelivers the
// message with back-off until the attempt limit is reached.
func Retryable(appErr *Error, context string, cause error) *Error {
	return appErr.WithContext(context).WithCause(cause).AsRetryable()
}

// IsRetryable reports whether err, or anything it wraps, asks for
// redelivery. Unclassified errors are not retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryableErr RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.IsRetryable()
	}
	return false
}

func IsNonRetryable(err error) bool {
	return err != nil && !IsRetryable(err)
}

// ContextOf returns the context tag of the outermost classified error.
func ContextOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Context
	}
	return ""
}

func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal.Code
}
