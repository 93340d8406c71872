package alloc

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joshuapare/varpool/pool"
	"github.com/joshuapare/varpool/pool/blocks"
	"github.com/joshuapare/varpool/pool/placement"
	"github.com/joshuapare/varpool/pool/registry"
	"github.com/joshuapare/varpool/pool/verify"
)

// Runtime debug flag for allocation logging - controlled by POOL_LOG_ALLOC env var.
var logAlloc = os.Getenv("POOL_LOG_ALLOC") != ""

// ResizeKind tells how a successful Resize was carried out.
type ResizeKind uint8

const (
	Shrunk      ResizeKind = iota // new size <= old size, same address
	GrewInPlace                   // took bytes from the next free segment
	Relocated                     // moved to a new segment
)

func (k ResizeKind) String() string {
	switch k {
	case Shrunk:
		return "shrunk"
	case GrewInPlace:
		return "grew in place"
	case Relocated:
		return "relocated"
	default:
		return fmt.Sprintf("ResizeKind(%d)", uint8(k))
	}
}

// Allocator places named variables in a fixed pool.
type Allocator struct {
	cfg    Config
	pool   *pool.Pool
	blocks *blocks.List
	vars   *registry.Registry
	log    *slog.Logger
	stats  counters
}

// New creates an allocator with a fresh pool covered by one free segment.
func New(cfg Config) (*Allocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p, err := pool.New(cfg.PoolSize, cfg.Backing)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		if logAlloc {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		} else {
			logger = slog.New(slog.DiscardHandler)
		}
	}

	a := &Allocator{
		cfg:    cfg,
		pool:   p,
		blocks: blocks.New(cfg.PoolSize),
		vars:   registry.New(cfg.MaxVariables),
		log:    logger,
	}
	a.log.Debug("allocator ready",
		"pool", cfg.PoolSize,
		"strategy", cfg.Strategy.String(),
		"backing", p.Backing().String())
	return a, nil
}

// Close releases the pool. Further operations fail with ErrClosed.
func (a *Allocator) Close() error {
	if a.pool == nil {
		return nil
	}
	err := a.pool.Close()
	a.pool = nil
	return err
}

// Config returns the configuration the allocator was built with.
func (a *Allocator) Config() Config { return a.cfg }

// Strategy returns the active placement strategy.
func (a *Allocator) Strategy() placement.Strategy { return a.cfg.Strategy }

// Capacity returns the pool size in bytes.
func (a *Allocator) Capacity() int { return a.cfg.PoolSize }

// Allocate creates variable name with size bytes filled with the name
// pattern.
func (a *Allocator) Allocate(name string, size int) error {
	const op = "allocate"
	a.stats.allocs++

	if err := a.checkArgs(name, size); err != nil {
		return a.fail(op, name, size, err)
	}
	if _, ok := a.vars.Lookup(name); ok {
		return a.fail(op, name, size, ErrDuplicateVariable)
	}
	if a.vars.Full() {
		return a.fail(op, name, size, ErrRegistryFull)
	}
	i, ok := placement.Select(a.blocks, a.cfg.Strategy, size)
	if !ok {
		return a.fail(op, name, size, ErrOutOfMemory)
	}

	addr := a.blocks.At(i).Addr
	if err := a.blocks.Occupy(i, name); err != nil {
		return a.fail(op, name, size, a.violation(err))
	}
	if err := a.split(i, size); err != nil {
		return a.fail(op, name, size, a.violation(err))
	}
	if err := a.vars.Insert(registry.Record{Name: name, Addr: addr, Size: size}); err != nil {
		return a.fail(op, name, size, a.violation(err))
	}
	if err := a.fill(addr, 0, size, name); err != nil {
		return a.fail(op, name, size, a.violation(err))
	}

	a.log.Info("allocated", "name", name, "size", size, "addr", addr)
	return a.verifyAfter(op, name, size)
}

// Resize changes the size of variable name. Shrinking and in-place growth
// keep the address; otherwise the variable is relocated and its contents
// copied. When no segment can hold newSize the variable is left untouched
// and ErrOutOfMemory is returned.
func (a *Allocator) Resize(name string, newSize int) (ResizeKind, error) {
	const op = "resize"
	a.stats.resizes++

	if a.pool == nil {
		return 0, a.fail(op, name, newSize, ErrClosed)
	}
	rec, ok := a.vars.Lookup(name)
	if !ok {
		return 0, a.fail(op, name, newSize, ErrVariableNotFound)
	}
	if newSize <= 0 {
		return 0, a.fail(op, name, newSize, ErrInvalidSize)
	}
	i, err := a.locate(rec)
	if err != nil {
		return 0, a.fail(op, name, newSize, err)
	}

	var kind ResizeKind
	switch {
	case newSize <= rec.Size:
		kind, err = Shrunk, a.shrink(i, rec, newSize)
	case a.blocks.CanExtend(i, newSize-rec.Size):
		kind, err = GrewInPlace, a.growInPlace(i, rec, newSize)
	default:
		kind, err = Relocated, a.relocate(i, rec, newSize)
	}
	if err != nil {
		return 0, a.fail(op, name, newSize, err)
	}

	a.log.Info("resized", "name", name, "from", rec.Size, "to", newSize, "how", kind.String())
	return kind, a.verifyAfter(op, name, newSize)
}

func (a *Allocator) shrink(i int, rec registry.Record, newSize int) error {
	if err := a.split(i, newSize); err != nil {
		return a.violation(err)
	}
	a.merge()
	a.vars.Update(rec.Name, rec.Addr, newSize)
	return a.fill(rec.Addr, 0, newSize, rec.Name)
}

func (a *Allocator) growInPlace(i int, rec registry.Record, newSize int) error {
	if err := a.blocks.Extend(i, newSize-rec.Size); err != nil {
		return a.violation(err)
	}
	a.stats.inPlace++
	a.vars.Update(rec.Name, rec.Addr, newSize)
	return a.fill(rec.Addr, rec.Size, newSize, rec.Name)
}

// relocate plans the move on a clone of the block list and only touches the
// pool, the list and the registry once a target segment is known.
func (a *Allocator) relocate(i int, rec registry.Record, newSize int) error {
	plan := a.blocks.Clone()
	if err := plan.Release(i); err != nil {
		return a.violation(err)
	}
	merged := plan.MergeAdjacent()

	j, ok := placement.Select(plan, a.cfg.Strategy, newSize)
	if !ok {
		a.log.Debug("relocation found no segment", "name", rec.Name, "need", newSize,
			"largest", plan.LargestFree())
		return ErrOutOfMemory
	}
	dst := plan.At(j).Addr
	if err := plan.Occupy(j, rec.Name); err != nil {
		return a.violation(err)
	}
	inserted, err := plan.Split(j, newSize)
	if err != nil {
		return a.violation(err)
	}

	if err := a.pool.Move(dst, rec.Addr, min(rec.Size, newSize)); err != nil {
		return a.violation(err)
	}
	a.blocks = plan
	a.stats.merges += merged
	if inserted {
		a.stats.splits++
	}
	a.stats.relocations++
	a.vars.Update(rec.Name, dst, newSize)

	a.log.Debug("relocated", "name", rec.Name, "from", rec.Addr, "to", dst)
	return a.fill(dst, rec.Size, newSize, rec.Name)
}

// Release frees variable name. Its bytes are not cleared.
func (a *Allocator) Release(name string) error {
	const op = "release"
	a.stats.releases++

	if a.pool == nil {
		return a.fail(op, name, 0, ErrClosed)
	}
	rec, ok := a.vars.Lookup(name)
	if !ok {
		return a.fail(op, name, 0, ErrVariableNotFound)
	}
	i, err := a.locate(rec)
	if err != nil {
		return a.fail(op, name, 0, err)
	}
	if err := a.blocks.Release(i); err != nil {
		return a.fail(op, name, 0, a.violation(err))
	}
	a.merge()
	a.vars.Remove(name)

	a.log.Info("released", "name", name, "size", rec.Size, "addr", rec.Addr)
	return a.verifyAfter(op, name, 0)
}

func (a *Allocator) checkArgs(name string, size int) error {
	if a.pool == nil {
		return ErrClosed
	}
	if size <= 0 {
		return ErrInvalidSize
	}
	if len(name) > a.cfg.MaxNameLength {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrNameTooLong, len(name), a.cfg.MaxNameLength)
	}
	return nil
}

// locate finds the occupied segment backing rec.
func (a *Allocator) locate(rec registry.Record) (int, error) {
	i, ok := a.blocks.Find(rec.Addr)
	if !ok {
		return -1, fmt.Errorf("%w: no segment at address %d for %q", ErrInvariantViolation, rec.Addr, rec.Name)
	}
	s := a.blocks.At(i)
	if s.Free || s.Owner != rec.Name || s.Len != rec.Size {
		return -1, fmt.Errorf("%w: variable %q at %d+%d, segment is %s",
			ErrInvariantViolation, rec.Name, rec.Addr, rec.Size, s)
	}
	return i, nil
}

func (a *Allocator) split(i, keep int) error {
	inserted, err := a.blocks.Split(i, keep)
	if err != nil {
		return err
	}
	if inserted {
		a.stats.splits++
		a.log.Debug("split", "addr", a.blocks.At(i).Addr, "keep", keep,
			"remainder", a.blocks.At(i+1).Len)
	}
	return nil
}

func (a *Allocator) merge() {
	if n := a.blocks.MergeAdjacent(); n > 0 {
		a.stats.merges += n
		a.log.Debug("merged free segments", "count", n)
	}
}

// fill writes the name pattern into bytes [from, to) of the variable that
// starts at addr.
func (a *Allocator) fill(addr, from, to int, name string) error {
	buf, err := a.pool.Slice(addr, to)
	if err != nil {
		return err
	}
	FillPattern(buf[from:to], from, name)
	return nil
}

// FillPattern writes name repeated cyclically into dst, as if dst began at
// byte offset phase of the variable. An empty name zero-fills.
func FillPattern(dst []byte, phase int, name string) {
	if name == "" {
		clear(dst)
		return
	}
	n := len(name)
	for i := range dst {
		dst[i] = name[(phase+i)%n]
	}
}

func (a *Allocator) violation(err error) error {
	if errors.Is(err, ErrInvariantViolation) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvariantViolation, err)
}

func (a *Allocator) verifyAfter(op, name string, size int) error {
	if !a.cfg.Verify {
		return nil
	}
	if err := verify.AllInvariants(a.cfg.PoolSize, a.blocks.Segments(), a.vars.All()); err != nil {
		return a.fail(op, name, size, a.violation(err))
	}
	return nil
}

func (a *Allocator) fail(op, name string, size int, err error) error {
	a.stats.failures++
	if errors.Is(err, ErrInvariantViolation) {
		a.log.Error("invariant violation", "op", op, "name", name, "err", err)
	} else {
		a.log.Debug("operation failed", "op", op, "name", name, "size", size, "err", err)
	}
	return &OpError{Op: op, Name: name, Size: size, Err: err}
}
