package validator

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/net/proxy"
)

// NewDialer returns the dialer every probe connects through. With an empty
// upstreamSocks5 it dials directly; otherwise every connection, baseline
// included, is relayed by the given SOCKS5 server.
func NewDialer(timeout time.Duration, upstreamSocks5 string) (proxy.ContextDialer, error) {
	base := &net.Dialer{
		Timeout: timeout,
		Control: setSocketOptions,
	}
	if upstreamSocks5 == "" {
		return base, nil
	}

	d, err := proxy.SOCKS5("tcp", upstreamSocks5, nil, base)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", upstreamSocks5)
	}
	return cd, nil
}
