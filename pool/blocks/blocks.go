// Package blocks maintains the address-ordered partition of a pool into free
// and occupied segments.
//
// Segments live in one contiguous slice sorted by address (arena + index):
// neighbours are addressed by index, never by pointer. Between public
// allocator operations the list satisfies two invariants:
//
//   - Partition: segments tile [0, Size()) exactly, with no gaps, overlaps or
//     zero-length entries.
//   - No adjacent free: two consecutive segments are never both free.
//
// Split and Release can temporarily break the second invariant; callers run
// MergeAdjacent before handing control back.
//
// Free segments are also indexed in a B-tree ordered by (length, address),
// so the smallest or largest sufficient segment is found without a scan.
package blocks

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/btree"
)

// indexDegree is the B-tree degree of the free index.
const indexDegree = 16

var (
	// ErrBadIndex indicates a segment index outside the list.
	ErrBadIndex = errors.New("blocks: segment index out of range")

	// ErrBadSplit indicates a split length that is zero, negative or larger
	// than the segment.
	ErrBadSplit = errors.New("blocks: split length out of range")

	// ErrNoNeighbor indicates that in-place growth found no physically
	// adjacent free segment large enough.
	ErrNoNeighbor = errors.New("blocks: no adjacent free segment large enough")
)

// Segment is a contiguous run of the pool.
type Segment struct {
	Addr  int    // offset into the pool
	Len   int    // byte count
	Free  bool   // true when unowned
	Owner string // variable name when occupied, empty when free
}

// End returns the first address past the segment.
func (s Segment) End() int { return s.Addr + s.Len }

func (s Segment) String() string {
	if s.Free {
		return fmt.Sprintf("[%d+%d free]", s.Addr, s.Len)
	}
	return fmt.Sprintf("[%d+%d %q]", s.Addr, s.Len, s.Owner)
}

// freeKey orders free segments by length, then address.
type freeKey struct {
	Len  int
	Addr int
}

func lessFree(a, b freeKey) bool {
	if a.Len != b.Len {
		return a.Len < b.Len
	}
	return a.Addr < b.Addr
}

func keyOf(s Segment) freeKey { return freeKey{Len: s.Len, Addr: s.Addr} }

// List is the ordered segment partition of a pool.
type List struct {
	size int
	segs []Segment
	free *btree.BTreeG[freeKey]
}

// New returns a list covering [0, size) with a single free segment.
func New(size int) *List {
	l := &List{
		size: size,
		segs: []Segment{{Addr: 0, Len: size, Free: true}},
	}
	l.reindex()
	return l
}

// reindex rebuilds the free index from the segments.
func (l *List) reindex() {
	l.free = btree.NewG(indexDegree, lessFree)
	for _, s := range l.segs {
		if s.Free {
			l.free.ReplaceOrInsert(keyOf(s))
		}
	}
}

// Size returns the capacity of the partitioned range.
func (l *List) Size() int { return l.size }

// Len returns the number of segments.
func (l *List) Len() int { return len(l.segs) }

// At returns a copy of segment i.
func (l *List) At(i int) Segment { return l.segs[i] }

// Segments returns a copy of all segments in address order.
func (l *List) Segments() []Segment { return slices.Clone(l.segs) }

// Clone returns an independent copy of the list.
func (l *List) Clone() *List {
	return &List{size: l.size, segs: slices.Clone(l.segs), free: l.free.Clone()}
}

// Find returns the index of the segment starting exactly at addr.
func (l *List) Find(addr int) (int, bool) {
	return slices.BinarySearchFunc(l.segs, addr, func(s Segment, a int) int {
		return s.Addr - a
	})
}

// Candidates returns the indices of free segments with Len >= minLen in
// address order.
func (l *List) Candidates(minLen int) []int {
	var out []int
	for i, s := range l.segs {
		if s.Free && s.Len >= minLen {
			out = append(out, i)
		}
	}
	return out
}

// Occupy marks segment i as owned by owner.
func (l *List) Occupy(i int, owner string) error {
	if i < 0 || i >= len(l.segs) {
		return ErrBadIndex
	}
	if l.segs[i].Free {
		l.free.Delete(keyOf(l.segs[i]))
	}
	l.segs[i].Free = false
	l.segs[i].Owner = owner
	return nil
}

// Release marks segment i free. It does not merge.
func (l *List) Release(i int) error {
	if i < 0 || i >= len(l.segs) {
		return ErrBadIndex
	}
	if !l.segs[i].Free {
		l.free.ReplaceOrInsert(keyOf(l.segs[i]))
	}
	l.segs[i].Free = true
	l.segs[i].Owner = ""
	return nil
}

// Split truncates segment i to keep bytes and inserts a free segment with
// the remainder right after it. Equal lengths are a no-op. It reports
// whether a new segment was inserted.
func (l *List) Split(i, keep int) (bool, error) {
	if i < 0 || i >= len(l.segs) {
		return false, ErrBadIndex
	}
	s := l.segs[i]
	if keep <= 0 || keep > s.Len {
		return false, fmt.Errorf("%w: keep %d of %s", ErrBadSplit, keep, s)
	}
	if keep == s.Len {
		return false, nil
	}
	tail := Segment{Addr: s.Addr + keep, Len: s.Len - keep, Free: true}
	if s.Free {
		l.free.Delete(keyOf(s))
		l.free.ReplaceOrInsert(freeKey{Len: keep, Addr: s.Addr})
	}
	l.segs[i].Len = keep
	l.segs = slices.Insert(l.segs, i+1, tail)
	l.free.ReplaceOrInsert(keyOf(tail))
	return true, nil
}

// MergeAdjacent combines every run of consecutive free segments into one and
// returns the number of segments absorbed. A second call returns 0.
func (l *List) MergeAdjacent() int {
	if len(l.segs) < 2 {
		return 0
	}
	merged := 0
	out := l.segs[:1]
	for _, s := range l.segs[1:] {
		last := &out[len(out)-1]
		if last.Free && s.Free && last.End() == s.Addr {
			l.free.Delete(keyOf(*last))
			l.free.Delete(keyOf(s))
			last.Len += s.Len
			l.free.ReplaceOrInsert(keyOf(*last))
			merged++
			continue
		}
		out = append(out, s)
	}
	clear(l.segs[len(out):])
	l.segs = out
	return merged
}

// CanExtend reports whether segment i can grow by extra bytes taken from a
// free segment that starts exactly where i ends.
func (l *List) CanExtend(i, extra int) bool {
	if i < 0 || i+1 >= len(l.segs) {
		return false
	}
	s, next := l.segs[i], l.segs[i+1]
	return next.Free && s.End() == next.Addr && next.Len >= extra
}

// Extend grows segment i by extra bytes, consuming them from the front of the
// following free segment. The neighbour is removed when fully consumed.
func (l *List) Extend(i, extra int) error {
	if i < 0 || i >= len(l.segs) {
		return ErrBadIndex
	}
	if extra == 0 {
		return nil
	}
	if extra < 0 || !l.CanExtend(i, extra) {
		return fmt.Errorf("%w: %s by %d", ErrNoNeighbor, l.segs[i], extra)
	}
	l.segs[i].Len += extra
	next := &l.segs[i+1]
	l.free.Delete(keyOf(*next))
	next.Addr += extra
	next.Len -= extra
	if next.Len == 0 {
		l.segs = slices.Delete(l.segs, i+1, i+2)
		return nil
	}
	l.free.ReplaceOrInsert(keyOf(*next))
	return nil
}

// FreeBytes returns the total length of free segments.
func (l *List) FreeBytes() int {
	n := 0
	for _, s := range l.segs {
		if s.Free {
			n += s.Len
		}
	}
	return n
}

// UsedBytes returns the total length of occupied segments.
func (l *List) UsedBytes() int { return l.size - l.FreeBytes() }

// FreeCount returns the number of free segments, a fragmentation proxy.
func (l *List) FreeCount() int { return l.free.Len() }

// LargestFree returns the length of the largest free segment, or 0.
func (l *List) LargestFree() int {
	k, ok := l.free.Max()
	if !ok {
		return 0
	}
	return k.Len
}

// SmallestFit returns the index of the shortest free segment with
// Len >= n, the lowest address among equals.
func (l *List) SmallestFit(n int) (int, bool) {
	var (
		hit   freeKey
		found bool
	)
	l.free.AscendGreaterOrEqual(freeKey{Len: n}, func(k freeKey) bool {
		hit, found = k, true
		return false
	})
	if !found {
		return -1, false
	}
	return l.Find(hit.Addr)
}

// LargestFit returns the index of the longest free segment, the lowest
// address among equals, provided its Len >= n.
func (l *List) LargestFit(n int) (int, bool) {
	top, ok := l.free.Max()
	if !ok || top.Len < n {
		return -1, false
	}
	return l.SmallestFit(top.Len)
}
