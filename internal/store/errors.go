package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by every getter and by inventory
	// operations referencing an identifier that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned on any authentication failure,
	// without revealing whether the login exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMedicineInUse is returned when deleting a medicine that is
	// still referenced by orders or shipment items.
	ErrMedicineInUse = errors.New("medicine is referenced by orders or shipments")
)

// ValidationError reports a missing or semantically invalid field,
// detected before any persistence attempt.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UniquenessError reports a collision on a unique field.
type UniquenessError struct {
	Field string
	Value string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// InsufficientStockError reports an order quantity exceeding the
// available medicine count.
type InsufficientStockError struct {
	MedicineID int64
	Requested  int64
	Available  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for medicine %d: requested %d, available %d",
		e.MedicineID, e.Requested, e.Available)
}
