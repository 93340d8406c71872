package alloc

import (
	"slices"

	"github.com/joshuapare/varpool/pool/blocks"
	"github.com/joshuapare/varpool/pool/registry"
)

// counters holds internal operation counters.
type counters struct {
	allocs      int
	resizes     int
	releases    int
	failures    int
	splits      int
	merges      int
	inPlace     int
	relocations int
}

// Stats is a snapshot of pool usage and operation counters.
type Stats struct {
	PoolSize     int
	FreeBytes    int
	UsedBytes    int
	FreeSegments int // fragmentation proxy
	UsedSegments int
	LargestFree  int
	Variables    int

	AllocCalls   int // Allocate calls, including failures
	ResizeCalls  int // Resize calls, including failures
	ReleaseCalls int // Release calls, including failures
	Failures     int // calls that returned an error
	Splits       int // segments carved off by split
	Merges       int // segments absorbed by merging
	InPlaceGrows int // resizes satisfied by the next free segment
	Relocations  int // resizes that moved the variable
}

// Fragmentation returns 1 - largest/free: 0 when all free space is one
// segment, approaching 1 as free space scatters. A full pool reports 0.
func (s Stats) Fragmentation() float64 {
	if s.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(s.LargestFree)/float64(s.FreeBytes)
}

// Stats returns current usage and counters.
func (a *Allocator) Stats() Stats {
	free := a.blocks.FreeCount()
	return Stats{
		PoolSize:     a.cfg.PoolSize,
		FreeBytes:    a.blocks.FreeBytes(),
		UsedBytes:    a.blocks.UsedBytes(),
		FreeSegments: free,
		UsedSegments: a.blocks.Len() - free,
		LargestFree:  a.blocks.LargestFree(),
		Variables:    a.vars.Len(),

		AllocCalls:   a.stats.allocs,
		ResizeCalls:  a.stats.resizes,
		ReleaseCalls: a.stats.releases,
		Failures:     a.stats.failures,
		Splits:       a.stats.splits,
		Merges:       a.stats.merges,
		InPlaceGrows: a.stats.inPlace,
		Relocations:  a.stats.relocations,
	}
}

// Variables returns every active variable in allocation order. Anything
// still listed when a run ends is a leak.
func (a *Allocator) Variables() []registry.Record { return a.vars.All() }

// Lookup returns the record for name.
func (a *Allocator) Lookup(name string) (registry.Record, bool) { return a.vars.Lookup(name) }

// Segments returns every segment in address order.
func (a *Allocator) Segments() []blocks.Segment { return a.blocks.Segments() }

// Read returns a copy of the bytes of variable name.
func (a *Allocator) Read(name string) ([]byte, error) {
	if a.pool == nil {
		return nil, &OpError{Op: "read", Name: name, Err: ErrClosed}
	}
	rec, ok := a.vars.Lookup(name)
	if !ok {
		return nil, &OpError{Op: "read", Name: name, Err: ErrVariableNotFound}
	}
	buf, err := a.pool.Slice(rec.Addr, rec.Size)
	if err != nil {
		return nil, &OpError{Op: "read", Name: name, Err: a.violation(err)}
	}
	return slices.Clone(buf), nil
}
