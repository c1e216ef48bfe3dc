package prescription

import "errors"

var (
	// ErrPrescriptionNotFound is returned when a prescription doesn't exist
	ErrPrescriptionNotFound = errors.New("prescription not found")
)
