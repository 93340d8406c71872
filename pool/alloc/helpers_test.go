package alloc

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/varpool/pool/blocks"
	"github.com/joshuapare/varpool/pool/placement"
	"github.com/joshuapare/varpool/pool/registry"
	"github.com/joshuapare/varpool/pool/verify"
)

// newTestAllocator returns a heap-backed allocator with default limits.
func newTestAllocator(t testing.TB, size int, s placement.Strategy) *Allocator {
	t.Helper()
	cfg := DefaultConfig
	cfg.PoolSize = size
	cfg.Strategy = s
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// mustAllocate allocates and returns the chosen address.
func mustAllocate(t testing.TB, a *Allocator, name string, size int) int {
	t.Helper()
	require.NoError(t, a.Allocate(name, size))
	rec, ok := a.Lookup(name)
	require.True(t, ok)
	return rec.Addr
}

// assertInvariants checks partition, merge and registry invariants.
func assertInvariants(t testing.TB, a *Allocator) {
	t.Helper()
	err := verify.AllInvariants(a.Capacity(), a.Segments(), a.Variables())
	require.NoError(t, err, "segments: %v", a.Segments())
}

// pattern returns the fill for bytes [from, to) of variable name.
func pattern(name string, from, to int) []byte {
	buf := make([]byte, to-from)
	FillPattern(buf, from, name)
	return buf
}

// assertPattern checks that bytes [from, to) of name hold the fill pattern.
func assertPattern(t testing.TB, a *Allocator, name string, from, to int) {
	t.Helper()
	data, err := a.Read(name)
	require.NoError(t, err)
	require.LessOrEqual(t, to, len(data))
	assert.Equal(t, pattern(name, from, to), data[from:to], "fill of %q [%d,%d)", name, from, to)
}

// state captures everything an operation may change.
type state struct {
	segs  []blocks.Segment
	vars  []registry.Record
	bytes []byte
}

func snapshot(a *Allocator) state {
	return state{
		segs:  a.Segments(),
		vars:  a.Variables(),
		bytes: slices.Clone(a.pool.Bytes()),
	}
}

// assertUnchanged checks that a failed operation left no trace.
func assertUnchanged(t testing.TB, before state, a *Allocator) {
	t.Helper()
	after := snapshot(a)
	assert.Equal(t, before.segs, after.segs, "segments changed")
	assert.Equal(t, before.vars, after.vars, "registry changed")
	assert.True(t, slices.Equal(before.bytes, after.bytes), "pool bytes changed")
}

func addrOf(t testing.TB, a *Allocator, name string) int {
	t.Helper()
	rec, ok := a.Lookup(name)
	require.True(t, ok, "variable %q missing", name)
	return rec.Addr
}

func segString(segs []blocks.Segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}
