//go:build linux || darwin || freebsd || netbsd || openbsd

package scanner

import (
	"context"
	"errors"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// pollSlice caps a single poll so that cancellation is noticed promptly.
const pollSlice = 100 * time.Millisecond

// connectPort performs a non-blocking connect and waits for writability
// with poll(2). The socket is closed on every path.
func connectPort(ctx context.Context, address string, port int, timeout time.Duration) bool {
	ip := net.ParseIP(address).To4()
	if ip == nil || port <= 0 || port > 65535 {
		return false
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		debugLog("%s:%d socket: %v", address, port, err)
		return false
	}
	openSockets.Add(1)
	defer func() {
		unix.Close(fd)
		openSockets.Add(-1)
	}()
	unix.CloseOnExec(fd)

	if err := unix.SetNonblock(fd, true); err != nil {
		return false
	}

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip)

	err = unix.Connect(fd, sa)
	switch {
	case err == nil:
		return true
	case !errors.Is(err, unix.EINPROGRESS) && !errors.Is(err, unix.EINTR):
		return false
	}

	deadline := time.Now().Add(timeout)
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		if ctx.Err() != nil {
			return false
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		if remaining > pollSlice {
			remaining = pollSlice
		}
		ms := int(remaining / time.Millisecond)
		if ms < 1 {
			ms = 1
		}

		n, err := unix.Poll(fds, ms)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return false
		}
		if n == 0 {
			continue
		}

		soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		return err == nil && soErr == 0
	}
}
