package ledger

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a rejected ledger operation.
type ErrorKind string

const (
	KindUserNotFound      ErrorKind = "UserNotFound"
	KindInsufficientFunds ErrorKind = "InsufficientFunds"
	KindInvalidAmount     ErrorKind = "InvalidAmount"
	KindInvalidOperation  ErrorKind = "InvalidOperation"
	KindSenderNotFound    ErrorKind = "SenderNotFound"
	KindReceiverNotFound  ErrorKind = "ReceiverNotFound"
	KindStatementNotFound ErrorKind = "StatementNotFound"
)

// Error is a validation or precondition failure. It is never transient:
// retrying with the same input yields the same result.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrUserNotFound)
// holds regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrUserNotFound      = &Error{Kind: KindUserNotFound, Message: "user not found"}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds, Message: "insufficient funds"}
	ErrInvalidAmount     = &Error{Kind: KindInvalidAmount, Message: "invalid amount"}
	ErrInvalidOperation  = &Error{Kind: KindInvalidOperation, Message: "invalid operation"}
	ErrSenderNotFound    = &Error{Kind: KindSenderNotFound, Message: "sender not found"}
	ErrReceiverNotFound  = &Error{Kind: KindReceiverNotFound, Message: "receiver not found"}
	ErrStatementNotFound = &Error{Kind: KindStatementNotFound, Message: "statement not found"}
)

// KindOf returns the kind of a ledger error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
