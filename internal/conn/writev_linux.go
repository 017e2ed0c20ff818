//go:build linux

package conn

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// writev issues a single vectored write of up to two non-empty buffers,
// the Go analogue of spec.md §4.7's two-element iovec transmit plan.
// Mirrors the raw-syscall discipline the teacher uses for sendfile(2) in
// shockwave/pkg/shockwave/socket/sendfile_linux.go: build the iovec array,
// make one syscall, let the caller handle EAGAIN/partial progress.
func writev(fd int, a, b []byte) (int, error) {
	var iovs [2]unix.Iovec
	n := 0
	if len(a) > 0 {
		iovs[n].SetLen(len(a))
		iovs[n].Base = &a[0]
		n++
	}
	if len(b) > 0 {
		iovs[n].SetLen(len(b))
		iovs[n].Base = &b[0]
		n++
	}
	if n == 0 {
		return 0, nil
	}

	written, _, errno := unix.Syscall(
		unix.SYS_WRITEV,
		uintptr(fd),
		uintptr(unsafe.Pointer(&iovs[0])),
		uintptr(n),
	)
	if errno != 0 {
		return int(written), errno
	}
	return int(written), nil
}
