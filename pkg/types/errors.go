package types

import (
	"errors"
	"fmt"
)

// Repository operation errors.
var (
	ErrNotFound      = errors.New("item not found")
	ErrInvalidID     = errors.New("invalid item ID")
	ErrInvalidData   = errors.New("invalid item data")
	ErrInvalidName   = errors.New("invalid name")
	ErrInvalidFilter = errors.New("invalid filter")
)

// Calendar errors.
var (
	ErrDateOutOfRange = errors.New("date out of range")
)

// ErrorKind groups errors the way they are presented to the user.
type ErrorKind int

// Error kinds.
const (
	KindUnknown ErrorKind = iota
	KindData
	KindNetwork
	KindValidation
)

// String returns the display label of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindData:
		return "Data Error"
	case KindNetwork:
		return "Network Error"
	case KindValidation:
		return "Validation Error"
	default:
		return "Unknown Error"
	}
}

// AppError is an error annotated with a kind and a user-facing message.
// Err, when set, is the underlying cause and is reachable with errors.Is
// and errors.As.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error renders "<Kind label>: <message>".
func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the cause.
func (e *AppError) Unwrap() error { return e.Err }

// NewDataError returns a data-kind AppError.
func NewDataError(message string, err error) *AppError {
	return &AppError{Kind: KindData, Message: message, Err: err}
}

// NewValidationError returns a validation-kind AppError.
func NewValidationError(message string, err error) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Err: err}
}

// validationErrors are caller mistakes; everything storage-related is data.
var validationErrors = []error{
	ErrInvalidID,
	ErrInvalidData,
	ErrInvalidName,
	ErrInvalidFilter,
	ErrDateOutOfRange,
	ErrBackendEmpty,
	ErrBackendUnknown,
	ErrSyncStrategyUnknown,
	ErrBatchSizeInvalid,
	ErrBatchIntervalInvalid,
}

var dataErrors = []error{
	ErrNotFound,
	ErrPantryDetached,
	ErrAlreadyAttached,
}

// Classify returns the kind of err. An AppError anywhere in the chain wins;
// otherwise known sentinels are mapped and the rest are unknown.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return KindValidation
		}
	}
	for _, target := range dataErrors {
		if errors.Is(err, target) {
			return KindData
		}
	}
	return KindUnknown
}
