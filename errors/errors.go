package errors

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"strings"
)

// UnknownCode is used when a plain error is converted with FromError.
const UnknownCode = http.StatusInternalServerError

// Status is the client-visible part of an Error.
type Status struct {
	Code     int               `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error is a structured error carrying a status code, a message safe to show
// to callers, optional metadata and an internal cause.
type Error struct {
	Status
	cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("code=")
	b.WriteString(strconv.Itoa(e.Code))
	b.WriteString(", message=")
	b.WriteString(e.Message)

	if len(e.Metadata) > 0 {
		b.WriteString(", metadata={")
		first := true
		for k, v := range e.Metadata {
			if !first {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
			first = false
		}
		b.WriteByte('}')
	}

	if e.cause != nil {
		b.WriteString(", cause=")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Unwrap returns the cause of the error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether err is an *Error with the same code and message.
func (e *Error) Is(err error) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return e.Code == ge.Code && e.Message == ge.Message
	}
	return false
}

// WithMetadata returns a copy of e with m merged into its metadata.
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}
	err := e.clone()
	if err.Metadata == nil {
		err.Metadata = make(map[string]string, len(m))
	}
	maps.Copy(err.Metadata, m)
	return err
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}
	err := e.clone()
	err.cause = cause
	return err
}

func (e *Error) clone() *Error {
	var metadata map[string]string
	if len(e.Metadata) > 0 {
		metadata = maps.Clone(e.Metadata)
	}
	return &Error{
		Status: Status{Code: e.Code, Message: e.Message, Metadata: metadata},
		cause:  e.cause,
	}
}

func (e *Error) GetCode() int {
	return e.Code
}

func (e *Error) GetMessage() string {
	return e.Message
}

func (e *Error) GetCause() error {
	return e.cause
}

// HTTPStatus maps the code onto a valid HTTP status, falling back to 500
// for application-specific codes.
func (e *Error) HTTPStatus() int {
	if e.Code >= 400 && e.Code < 600 && http.StatusText(e.Code) != "" {
		return e.Code
	}
	return http.StatusInternalServerError
}

// New creates an error with the given code and formatted message.
func New(code int, format string, args ...any) *Error {
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}
	return &Error{Status: Status{Code: code, Message: message}}
}

// FromError converts err into an *Error. Errors that already wrap an *Error
// anywhere in their chain return that error; anything else becomes an
// UnknownCode error carrying err as its cause.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return New(UnknownCode, "%v", err).WithCause(err)
}

// Wrap attaches err as the cause of a new error. It returns nil for a nil err.
func Wrap(err error, code int, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return New(code, format, args...).WithCause(err)
}
