package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSerializationFailure = errors.New("serialization failure")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrValidation           = errors.New("validation failed")
)

// FieldError reports a contract violation on a single input field.
// It unwraps to ErrValidation so callers can classify it without
// inspecting the field name.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// SeatConflictError is returned when the storage layer rejects a ticket
// because the seat coordinate is already taken on that performance.
// It unwraps to ErrConflict.
type SeatConflictError struct {
	PerformanceID int64
	Row           int32
	Seat          int32
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat (row %d, seat %d) is already reserved for performance %d",
		e.Row, e.Seat, e.PerformanceID)
}

func (e *SeatConflictError) Unwrap() error {
	return ErrConflict
}
