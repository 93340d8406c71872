// Package pool owns the fixed-capacity byte region that backs every variable
// managed by the allocator.
//
// # Overview
//
// A Pool is allocated exactly once, at construction, and never grows or
// shrinks. Offsets into it (addresses) are plain ints in [0, Size()).
// Bookkeeping about which ranges are free or occupied lives elsewhere (see
// the blocks package); Pool only stores the bytes.
//
// # Backing Memory
//
// Two backings are available:
//
//   - BackingHeap: an ordinary Go byte slice (default, portable)
//   - BackingMmap: an anonymous private mapping obtained from the OS
//     (mmap on unix, VirtualAlloc on windows)
//
// The mmap backing requests one large block from the operating system up
// front. On platforms without either primitive it falls back to the heap.
//
//	p, err := pool.New(10000, pool.BackingMmap)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
// # Thread Safety
//
// Pool is not safe for concurrent use. The allocator that owns it serializes
// all access.
package pool
