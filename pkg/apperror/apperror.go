// Package apperror defines the error kinds returned by services. Handlers map
// a Kind to an HTTP status instead of matching on message text.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind int

const (
	Internal Kind = iota
	NotFound
	AlreadyExists
	InvalidInput
	Unauthorized
	Forbidden
	EmptyBasket
	Conflict
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case AlreadyExists:
		return "already_exists"
	case InvalidInput:
		return "invalid_input"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case EmptyBasket:
		return "empty_basket"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is an expected, user-facing failure. Field names the offending input
// when there is exactly one; Fields carries per-field validation messages.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. An empty target message matches
// any message of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// FieldError reports a single offending field.
func FieldError(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Message: message, Field: field}
}

// Validation builds an InvalidInput error from validator messages.
func Validation(fields map[string]string) *Error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, fields[k]))
	}

	return &Error{
		Kind:    InvalidInput,
		Message: "validation failed: " + strings.Join(msgs, "; "),
		Fields:  fields,
	}
}

// KindOf returns Internal for errors that carry no kind.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
