package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateVariable indicates an allocation under a name already in use.
	ErrDuplicateVariable = errors.New("alloc: variable already exists")

	// ErrRegistryFull indicates the maximum number of variables is active.
	ErrRegistryFull = errors.New("alloc: variable limit reached")

	// ErrOutOfMemory indicates no free segment is large enough.
	ErrOutOfMemory = errors.New("alloc: not enough memory")

	// ErrVariableNotFound indicates an operation on an unknown name.
	ErrVariableNotFound = errors.New("alloc: variable does not exist")

	// ErrInvariantViolation indicates internal bookkeeping disagrees with
	// itself, for example a registered variable without a matching segment.
	ErrInvariantViolation = errors.New("alloc: invariant violation")

	// ErrInvalidSize indicates a zero or negative byte count.
	ErrInvalidSize = errors.New("alloc: size must be positive")

	// ErrNameTooLong indicates a name longer than Config.MaxNameLength.
	ErrNameTooLong = errors.New("alloc: variable name too long")

	// ErrClosed indicates use of an allocator after Close.
	ErrClosed = errors.New("alloc: allocator closed")

	// ErrInvalidConfig indicates a Config that fails validation.
	ErrInvalidConfig = errors.New("alloc: invalid config")
)

// OpError records a failed allocator operation.
type OpError struct {
	Op   string // "allocate", "resize" or "release"
	Name string
	Size int // requested size, 0 for release
	Err  error
}

func (e *OpError) Error() string {
	if e.Size > 0 {
		return fmt.Sprintf("%v (%s %q, %d bytes)", e.Err, e.Op, e.Name, e.Size)
	}
	return fmt.Sprintf("%v (%s %q)", e.Err, e.Op, e.Name)
}

func (e *OpError) Unwrap() error { return e.Err }
