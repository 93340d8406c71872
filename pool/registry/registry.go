// Package registry indexes the active variables by name.
package registry

import (
	"errors"
	"slices"
)

// ErrFull indicates the registry is at capacity.
var ErrFull = errors.New("registry: full")

// Record is one active variable.
type Record struct {
	Name string
	Addr int
	Size int
}

// Registry is a bounded, insertion-ordered table of records. Lookups go
// through a name index; removal compacts the table so iteration order stays
// deterministic.
type Registry struct {
	cap     int
	records []Record
	byName  map[string]int
}

// New returns an empty registry holding at most capacity records.
func New(capacity int) *Registry {
	return &Registry{
		cap:     capacity,
		records: make([]Record, 0, min(capacity, 64)),
		byName:  make(map[string]int),
	}
}

func (r *Registry) Len() int { return len(r.records) }

func (r *Registry) Cap() int { return r.cap }

// Full reports whether another Insert would fail.
func (r *Registry) Full() bool { return len(r.records) >= r.cap }

// Lookup returns the record registered under name (exact, case-sensitive).
func (r *Registry) Lookup(name string) (Record, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Record{}, false
	}
	return r.records[i], true
}

// Insert appends rec. The caller is responsible for name uniqueness.
func (r *Registry) Insert(rec Record) error {
	if r.Full() {
		return ErrFull
	}
	r.byName[rec.Name] = len(r.records)
	r.records = append(r.records, rec)
	return nil
}

// Remove deletes the record for name, shifting later records down.
func (r *Registry) Remove(name string) bool {
	i, ok := r.byName[name]
	if !ok {
		return false
	}
	r.records = slices.Delete(r.records, i, i+1)
	delete(r.byName, name)
	for j := i; j < len(r.records); j++ {
		r.byName[r.records[j].Name] = j
	}
	return true
}

// Update rewrites the address and size of an existing record in place.
func (r *Registry) Update(name string, addr, size int) bool {
	i, ok := r.byName[name]
	if !ok {
		return false
	}
	r.records[i].Addr = addr
	r.records[i].Size = size
	return true
}

// All returns a copy of every record in insertion order.
func (r *Registry) All() []Record { return slices.Clone(r.records) }
