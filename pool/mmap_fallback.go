//go:build !unix && !windows

package pool

// mapAnon returns heap memory when no mapping primitive is available.
// A nil release tells New to report BackingHeap.
func mapAnon(size int) ([]byte, func([]byte) error, error) {
	return make([]byte, size), nil, nil
}
