package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an operation referenced an id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates a workflow whose shape breaks the model
	// contract was handed to a transform or produced by a decoder.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDecode indicates a share token that could not be turned back into a workflow.
	ErrDecode = errors.New("invalid share token")

	// ErrStore indicates the persistence collaborator failed.
	ErrStore = errors.New("store unavailable")
)

// Validation messages surfaced verbatim to the user.
const (
	MsgStateLabelRequired      = "State label is required"
	MsgTransitionLabelRequired = "Transition label is required"
	MsgRoleLabelRequired       = "Role label is required"
	MsgFromStatesRequired      = `At least one "from" state must be selected`
	MsgToStateRequired         = `A "to" state must be selected`
	MsgInvalidID               = "ID must contain only lowercase letters and underscores"
	MsgDuplicateID             = "ID must be unique"
)

// ValidationError reports rejected user input.
type ValidationError struct {
	Field   string // label, id, fromStates, toState
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError wraps ErrNotFound with the kind and id that were looked up.
type NotFoundError struct {
	Kind string // state, transition, role, collection
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// StoreError wraps persistence failures with the operation and key involved.
type StoreError struct {
	Op  string // Load, Save, Delete
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s operation failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match both ErrStore and the wrapped cause.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore || errors.Is(e.Err, target)
}

func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}

// IsValidationError checks if an error is a user input rejection.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound checks if an error indicates an unknown id.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
