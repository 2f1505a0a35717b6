// Package httperr tags service errors with the response class the HTTP layer
// should pick for them.
package httperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindConflict
)

type Error struct {
	kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Kind() Kind { return e.kind }

func NewBadRequest(msg string) error { return &Error{kind: KindBadRequest, msg: msg} }

func BadRequestf(format string, args ...any) error {
	return &Error{kind: KindBadRequest, msg: fmt.Sprintf(format, args...)}
}

// NewConflict keeps cause reachable through errors.Is.
func NewConflict(msg string, cause error) error {
	return &Error{kind: KindConflict, msg: msg, cause: cause}
}

func IsBadRequest(err error) bool { return kindOf(err) == KindBadRequest }

func IsConflict(err error) bool { return kindOf(err) == KindConflict }

func kindOf(err error) Kind {
	if e, ok := errors.AsType[*Error](err); ok {
		return e.kind
	}
	return 0
}
