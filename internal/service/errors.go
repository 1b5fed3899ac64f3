package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrAllocationNotFound = errors.New("allocation not found")
)

var (
	ErrAlreadyAllocated = errors.New("this resource is already allocated to this event")
	ErrConflictDetected = errors.New("resource conflict detected")
	ErrResourceInUse    = errors.New("resource has active allocations")
)

var (
	ErrInvalidRange          = errors.New("start time must be before end time")
	ErrDurationExceeded      = errors.New("event duration cannot exceed 24 hours")
	ErrValidation            = errors.New("validation error")
	ErrInvalidResourceType   = errors.New("invalid resource_type, must be one of: room, instructor, equipment")
	ErrDuplicateResourceName = errors.New("resource with this name already exists")
)

// ErrStorage marks failures of the persistence layer rather than of the request.
var ErrStorage = errors.New("storage failure")

// ConflictError is returned when one or more resources are already booked for
// an overlapping window. Conflicts is keyed by the resource that was checked.
type ConflictError struct {
	Conflicts map[uint][]ConflictRecord
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) > 1 {
		return "one or more resources have conflicts"
	}
	return ErrConflictDetected.Error()
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflictDetected
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// lookupErr turns a missing row into notFound and anything else into a storage error.
func lookupErr(err, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return storageErr(op, err)
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
