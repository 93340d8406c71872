// Package verify checks the structural invariants of an allocator state.
// The allocator runs these checks after every operation when configured to,
// and tests use them after every step of a workload.
package verify

import (
	"fmt"

	"github.com/joshuapare/varpool/pool/blocks"
	"github.com/joshuapare/varpool/pool/registry"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Addr    int // -1 when not tied to an address
}

func (e *ValidationError) Error() string {
	if e.Addr >= 0 {
		return fmt.Sprintf("%s at address %d: %s", e.Type, e.Addr, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates the partition, merge and registry invariants.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(size int, segs []blocks.Segment, recs []registry.Record) error {
	if err := Partition(size, segs); err != nil {
		return err
	}
	if err := NoAdjacentFree(segs); err != nil {
		return err
	}
	return Bijection(segs, recs)
}

// Partition checks that segs tile [0, size) exactly.
func Partition(size int, segs []blocks.Segment) error {
	if len(segs) == 0 {
		return &ValidationError{Type: "Partition", Message: "no segments", Addr: -1}
	}
	next := 0
	for i, s := range segs {
		if s.Addr != next {
			kind := "gap"
			if s.Addr < next {
				kind = "overlap"
			}
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("%s before segment %d (expected address %d)", kind, i, next),
				Addr:    s.Addr,
			}
		}
		if s.Len <= 0 {
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("segment %d has length %d", i, s.Len),
				Addr:    s.Addr,
			}
		}
		if s.Free && s.Owner != "" {
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("free segment %d has owner %q", i, s.Owner),
				Addr:    s.Addr,
			}
		}
		next = s.End()
	}
	if next != size {
		return &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("segments end at %d, pool size is %d", next, size),
			Addr:    next,
		}
	}
	return nil
}

// NoAdjacentFree checks that no two consecutive segments are both free.
func NoAdjacentFree(segs []blocks.Segment) error {
	for i := 1; i < len(segs); i++ {
		if segs[i-1].Free && segs[i].Free {
			return &ValidationError{
				Type:    "NoAdjacentFree",
				Message: fmt.Sprintf("segments %d and %d are both free", i-1, i),
				Addr:    segs[i].Addr,
			}
		}
	}
	return nil
}

// Bijection checks that every record has exactly one occupied segment with
// the same owner, address and length, and that every occupied segment has a
// record.
func Bijection(segs []blocks.Segment, recs []registry.Record) error {
	byName := make(map[string]registry.Record, len(recs))
	for _, r := range recs {
		if _, dup := byName[r.Name]; dup {
			return &ValidationError{
				Type:    "Bijection",
				Message: fmt.Sprintf("variable %q registered twice", r.Name),
				Addr:    r.Addr,
			}
		}
		byName[r.Name] = r
	}

	seen := make(map[string]bool, len(recs))
	for _, s := range segs {
		if s.Free {
			continue
		}
		r, ok := byName[s.Owner]
		if !ok {
			return &ValidationError{
				Type:    "Bijection",
				Message: fmt.Sprintf("occupied segment owned by unregistered %q", s.Owner),
				Addr:    s.Addr,
			}
		}
		if seen[s.Owner] {
			return &ValidationError{
				Type:    "Bijection",
				Message: fmt.Sprintf("variable %q owns more than one segment", s.Owner),
				Addr:    s.Addr,
			}
		}
		if r.Addr != s.Addr || r.Size != s.Len {
			return &ValidationError{
				Type: "Bijection",
				Message: fmt.Sprintf("variable %q recorded at %d+%d, segment is %d+%d",
					s.Owner, r.Addr, r.Size, s.Addr, s.Len),
				Addr: s.Addr,
			}
		}
		seen[s.Owner] = true
	}

	for _, r := range recs {
		if !seen[r.Name] {
			return &ValidationError{
				Type:    "Bijection",
				Message: fmt.Sprintf("variable %q has no occupied segment", r.Name),
				Addr:    r.Addr,
			}
		}
	}
	return nil
}
