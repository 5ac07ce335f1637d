package domain

import (
	"errors"
	"fmt"
)

// Kind is the stable, client-visible category of an error.
type Kind string

const (
	KindNotFound                Kind = "NotFound"
	KindUserNotFound            Kind = "UserNotFound"
	KindAttemptLimitExceeded    Kind = "AttemptLimitExceeded"
	KindQuestionAlreadyAnswered Kind = "QuestionAlreadyAnswered"
	KindInsufficientFunds       Kind = "InsufficientFunds"
	KindInvalidPowerCardType    Kind = "InvalidPowerCardType"
	KindAlreadyUnlocked         Kind = "AlreadyUnlocked"
	KindUnauthorized            Kind = "Unauthorized"
	KindInvalidRequest          Kind = "InvalidRequest"
	KindInternal                Kind = "Internal"
)

// Error carries a Kind plus a human readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every NotFound regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and message to an underlying error.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var (
	// ErrNotFound matches quiz, question and submission lookups that miss.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "not found"}
	// ErrUserNotFound is returned when a wallet does not exist for the user.
	ErrUserNotFound = &Error{Kind: KindUserNotFound, Message: "user not found"}
	// ErrAttemptLimitExceeded means the lifetime cap of finished attempts was reached.
	ErrAttemptLimitExceeded = &Error{Kind: KindAttemptLimitExceeded, Message: "attempt limit exceeded"}
	// ErrQuestionAlreadyAnswered means the user answered the question in some attempt.
	ErrQuestionAlreadyAnswered = &Error{Kind: KindQuestionAlreadyAnswered, Message: "question already answered"}
	// ErrInsufficientFunds is returned when coins or gems do not cover a debit.
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds, Message: "insufficient funds"}
	// ErrInvalidPowerCardType rejects power-card types outside the catalog.
	ErrInvalidPowerCardType = &Error{Kind: KindInvalidPowerCardType, Message: "invalid power card type"}
	// ErrAlreadyUnlocked is returned when a question unlock is bought twice.
	ErrAlreadyUnlocked = &Error{Kind: KindAlreadyUnlocked, Message: "question already unlocked"}
	// ErrUnauthorized is returned when a request cannot be tied to a user.
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	// ErrInvalidRequest covers malformed input.
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
)

// KindOf reports the kind of err; errors that are not *Error are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
