// Package alloc implements the variable allocator: named allocations over a
// fixed pool, placed by a configurable strategy, with splitting on allocation
// and merging of adjacent free segments on release.
//
// # Overview
//
// An Allocator owns one pool.Pool, one blocks.List partitioning it and one
// registry.Registry of active variables. Three operations mutate state:
//
//   - Allocate(name, size): place a new variable
//   - Resize(name, size): shrink in place, grow into the next free segment,
//     or relocate
//   - Release(name): free the variable's segment and merge neighbours
//
// Every operation either completes or leaves the allocator exactly as it was.
// Failures are returned as *OpError values wrapping one of the package
// sentinels, so callers test them with errors.Is:
//
//	a, err := alloc.New(alloc.DefaultConfig)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	if err := a.Allocate("buf", 256); errors.Is(err, alloc.ErrOutOfMemory) {
//	    // pool too fragmented or full
//	}
//
// # Fill Pattern
//
// Bytes written by Allocate, and the bytes added by a growing Resize, hold
// the variable name repeated cyclically from the variable's first byte
// (zeroes for an empty name). A shrinking Resize rewrites the retained bytes.
// Release leaves the bytes as they were.
//
// # Relocation
//
// When a variable cannot grow in place, the allocator plans the move on a
// copy of the block list: the variable's segment is freed and merged there,
// and the strategy picks a target. Only when a target exists are the bytes
// moved and the plan adopted. A failed relocation therefore changes nothing.
//
// # Logging
//
// Config.Logger receives operation and bookkeeping events. Setting
// POOL_LOG_ALLOC in the environment sends debug output to stderr when no
// logger is configured.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must serialize access
// externally.
package alloc
