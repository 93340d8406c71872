//go:build windows

package pool

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapAnon commits size bytes of zeroed memory with VirtualAlloc.
func mapAnon(size int) ([]byte, func([]byte) error, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, err
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	release := func(b []byte) error {
		if len(b) == 0 {
			return nil
		}
		return windows.VirtualFree(uintptr(unsafe.Pointer(&b[0])), 0, windows.MEM_RELEASE)
	}
	return data, release, nil
}
