//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package scanner

import (
	"context"
	"net"
	"strconv"
	"time"
)

// connectPort falls back to the runtime's dialer where raw sockets with
// poll(2) are not available.
func connectPort(ctx context.Context, address string, port int, timeout time.Duration) bool {
	d := net.Dialer{Timeout: timeout}
	openSockets.Add(1)
	defer openSockets.Add(-1)

	conn, err := d.DialContext(ctx, "tcp4", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
