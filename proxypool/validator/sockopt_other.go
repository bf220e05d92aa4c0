//go:build !linux

package validator

import "syscall"

func setSocketOptions(network, address string, c syscall.RawConn) error {
	return nil
}
