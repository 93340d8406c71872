package pool

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSize indicates a non-positive pool capacity.
	ErrInvalidSize = errors.New("pool: size must be positive")

	// ErrClosed indicates use of a pool after Close.
	ErrClosed = errors.New("pool: closed")

	// ErrOutOfRange indicates an address range outside [0, Size()).
	ErrOutOfRange = errors.New("pool: range out of bounds")
)

// Backing selects where the pool bytes live.
type Backing uint8

const (
	BackingHeap Backing = iota
	BackingMmap
)

func (b Backing) String() string {
	switch b {
	case BackingHeap:
		return "heap"
	case BackingMmap:
		return "mmap"
	default:
		return fmt.Sprintf("Backing(%d)", uint8(b))
	}
}

// ParseBacking maps "heap" or "mmap" (case-insensitive) to a Backing.
func ParseBacking(s string) (Backing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "heap":
		return BackingHeap, nil
	case "mmap":
		return BackingMmap, nil
	default:
		return 0, fmt.Errorf("pool: unknown backing %q (want heap or mmap)", s)
	}
}

// Pool is a single contiguous byte region of fixed capacity.
type Pool struct {
	data    []byte
	backing Backing
	release func([]byte) error
}

// New allocates a pool of exactly size bytes. Fresh pools are zero-filled.
func New(size int, backing Backing) (*Pool, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	if backing == BackingHeap {
		return &Pool{data: make([]byte, size), backing: BackingHeap}, nil
	}

	data, release, err := mapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("pool: map %d bytes: %w", size, err)
	}
	if release == nil {
		// platform without an anonymous mapping primitive
		return &Pool{data: data, backing: BackingHeap}, nil
	}
	return &Pool{data: data, backing: BackingMmap, release: release}, nil
}

func (p *Pool) Bytes() []byte { return p.data }

func (p *Pool) Size() int { return len(p.data) }

// Backing reports the backing actually in use, which may be BackingHeap
// even when BackingMmap was requested.
func (p *Pool) Backing() Backing { return p.backing }

// Slice returns the live bytes [addr, addr+n). Writes through the slice
// mutate the pool.
func (p *Pool) Slice(addr, n int) ([]byte, error) {
	if p.data == nil {
		return nil, ErrClosed
	}
	if addr < 0 || n < 0 || addr+n > len(p.data) {
		return nil, fmt.Errorf("%w: [%d, %d) in pool of %d", ErrOutOfRange, addr, addr+n, len(p.data))
	}
	return p.data[addr : addr+n : addr+n], nil
}

// Move copies n bytes from src to dst. Overlapping ranges are handled.
func (p *Pool) Move(dst, src, n int) error {
	to, err := p.Slice(dst, n)
	if err != nil {
		return err
	}
	from, err := p.Slice(src, n)
	if err != nil {
		return err
	}
	copy(to, from)
	return nil
}

// Close releases the backing memory. Calling Close twice is a no-op.
func (p *Pool) Close() error {
	if p.data == nil {
		return nil
	}
	var err error
	if p.release != nil {
		err = p.release(p.data)
		p.release = nil
	}
	p.data = nil
	return err
}
