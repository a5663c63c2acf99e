package netutil

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultRangeWidth bounds the sequential probe when no explicit end is given.
const DefaultRangeWidth = 200

// reuseAddrControl enables SO_REUSEADDR on the probe socket before bind.
func reuseAddrControl(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// FreePort returns a local TCP port that was bindable at probe time.
//
// When preferredStart is positive, ports are probed sequentially from
// preferredStart up to (but excluding) preferredEnd; a zero preferredEnd
// means preferredStart+DefaultRangeWidth. If nothing in the range binds,
// or no range was requested, the OS picks an ephemeral port.
func FreePort(preferredStart, preferredEnd int) (int, error) {
	lc := net.ListenConfig{Control: reuseAddrControl}

	if preferredStart > 0 {
		end := preferredEnd
		if end <= 0 {
			end = preferredStart + DefaultRangeWidth
		}
		for port := preferredStart; port < end; port++ {
			ln, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf("127.0.0.1:%d", port))
			if err != nil {
				continue
			}
			ln.Close()
			return port, nil
		}
	}

	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to allocate ephemeral port: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port, nil
}
