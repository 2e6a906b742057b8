package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the inventory domain. Use errors.Is() to check these.
var (
	// ErrValidation indicates a required field is missing or a value is out of range.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate indicates a code or drawing number collides with an existing item.
	ErrDuplicate = errors.New("duplicate value")

	// ErrAuthorization indicates a wrong shared secret or a role without access.
	ErrAuthorization = errors.New("not authorized")

	// ErrTransport indicates the backup upload or the remote authentication failed.
	ErrTransport = errors.New("backup transport failed")

	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrTransactionNotFound indicates the requested transaction does not exist on the item.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrCorruptState indicates persisted state could not be decoded.
	ErrCorruptState = errors.New("persisted state is corrupt")

	// ErrStaleState indicates the stored corpus was changed by another writer
	// since it was loaded.
	ErrStaleState = errors.New("inventory was changed concurrently")
)

// Duplicate field names reported by DuplicateError.
const (
	FieldCode          = "code"
	FieldDrawingNumber = "drawing_number"
	FieldSerialNumber  = "serial_number"
)

// DuplicateError names the field whose value is already registered.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	switch e.Field {
	case FieldCode:
		return fmt.Sprintf("code %q is already registered", e.Value)
	case FieldDrawingNumber:
		return fmt.Sprintf("drawing number %q is already registered", e.Value)
	case FieldSerialNumber:
		return fmt.Sprintf("serial number %q is already in use", e.Value)
	default:
		return fmt.Sprintf("%s %q is already registered", e.Field, e.Value)
	}
}

// Unwrap lets errors.Is(err, ErrDuplicate) match.
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}
