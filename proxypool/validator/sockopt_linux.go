//go:build linux

package validator

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setSocketOptions sets SO_LINGER to zero so a probe abandoned by its guard
// resets the connection on close instead of lingering in FIN_WAIT.
func setSocketOptions(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptLinger(int(fd), unix.SOL_SOCKET, unix.SO_LINGER, &unix.Linger{Onoff: 1, Linger: 0})
	})
	if err != nil {
		return err
	}
	return sockErr
}
