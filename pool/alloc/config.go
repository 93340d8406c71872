package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/varpool/pool"
	"github.com/joshuapare/varpool/pool/placement"
)

// Config parameterizes an Allocator.
type Config struct {
	// PoolSize is the pool capacity in bytes.
	PoolSize int

	// MaxVariables bounds the number of simultaneously active variables.
	MaxVariables int

	// MaxNameLength bounds variable names, in bytes.
	MaxNameLength int

	// Strategy picks the free segment for new and relocated variables.
	Strategy placement.Strategy

	// Backing selects heap or mmap memory for the pool.
	Backing pool.Backing

	// Verify runs the full invariant check after every mutating operation.
	Verify bool

	// Logger receives allocator events. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig is a 10000-byte heap pool holding up to 100 variables with
// names of at most 49 bytes, placed first fit.
var DefaultConfig = Config{
	PoolSize:      10000,
	MaxVariables:  100,
	MaxNameLength: 49,
	Strategy:      placement.FirstFit,
	Backing:       pool.BackingHeap,
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.PoolSize <= 0:
		return fmt.Errorf("%w: pool size %d", ErrInvalidConfig, c.PoolSize)
	case c.MaxVariables <= 0:
		return fmt.Errorf("%w: max variables %d", ErrInvalidConfig, c.MaxVariables)
	case c.MaxNameLength <= 0:
		return fmt.Errorf("%w: max name length %d", ErrInvalidConfig, c.MaxNameLength)
	case !c.Strategy.Valid():
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.Strategy)
	}
	return nil
}
