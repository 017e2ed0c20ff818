//go:build !linux

package conn

import "golang.org/x/sys/unix"

// writev falls back to two ordinary writes on platforms without a vectored
// write path wired up. The reactor itself (internal/reactor) is
// Linux-only (epoll), so this only exists so the package still type-checks
// when cross-compiled for tooling on other platforms.
func writev(fd int, a, b []byte) (int, error) {
	total := 0
	if len(a) > 0 {
		n, err := unix.Write(fd, a)
		total += n
		if err != nil || n < len(a) {
			return total, err
		}
	}
	if len(b) > 0 {
		n, err := unix.Write(fd, b)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
