package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertLookup(t *testing.T) {
	r := New(4)
	require.NoError(t, r.Insert(Record{Name: "a", Addr: 0, Size: 10}))
	require.NoError(t, r.Insert(Record{Name: "B", Addr: 10, Size: 5}))

	rec, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, Record{Name: "a", Addr: 0, Size: 10}, rec)

	_, ok = r.Lookup("A")
	assert.False(t, ok, "lookup is case-sensitive")
	_, ok = r.Lookup("b")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestInsert_Full(t *testing.T) {
	r := New(2)
	require.NoError(t, r.Insert(Record{Name: "a"}))
	require.NoError(t, r.Insert(Record{Name: "b"}))
	assert.True(t, r.Full())

	require.ErrorIs(t, r.Insert(Record{Name: "c"}), ErrFull)
	assert.Equal(t, 2, r.Len())
}

func TestRemove_Compacts(t *testing.T) {
	r := New(5)
	for _, n := range []string{"a", "b", "c", "d"} {
		require.NoError(t, r.Insert(Record{Name: n}))
	}

	require.True(t, r.Remove("b"))
	require.False(t, r.Remove("b"))

	var names []string
	for _, rec := range r.All() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"a", "c", "d"}, names)

	// The index must follow the shifted positions.
	require.True(t, r.Update("d", 7, 8))
	rec, ok := r.Lookup("d")
	require.True(t, ok)
	assert.Equal(t, Record{Name: "d", Addr: 7, Size: 8}, rec)

	// Freed capacity is reusable.
	require.NoError(t, r.Insert(Record{Name: "b"}))
	assert.Equal(t, 4, r.Len())
}

func TestUpdate_Missing(t *testing.T) {
	r := New(1)
	assert.False(t, r.Update("x", 1, 1))
}

func TestAll_ReturnsCopy(t *testing.T) {
	r := New(1)
	require.NoError(t, r.Insert(Record{Name: "a", Size: 1}))
	all := r.All()
	all[0].Size = 99

	rec, _ := r.Lookup("a")
	assert.Equal(t, 1, rec.Size)
}
