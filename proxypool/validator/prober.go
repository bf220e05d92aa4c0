package validator

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"golang.org/x/net/proxy"
)

const (
	httpsPort = "443"
	userAgent = "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/42.0.2311.135 Safari/537.36 Edge/12.10240"

	defaultMaxResponseBytes = 1 << 20
)

var headerTerminator = []byte("\r\n\r\n")

// Endpoint is a proxy reached as a plain TCP address.
type Endpoint struct {
	Address string
	Port    uint16
}

func (e *Endpoint) String() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(int(e.Port)))
}

// Payload is the decoded JSON object returned by the diagnostic endpoint.
type Payload map[string]any

// Prober performs one request to the diagnostic endpoint.
// A nil via means a direct connection to host.
type Prober interface {
	Probe(ctx context.Context, host, path string, via *Endpoint) (Payload, error)
}

// TLSOptions configures a TLSProber.
type TLSOptions struct {
	Fingerprint      string
	RootCAs          *x509.CertPool // nil uses the system pool
	MaxResponseBytes int64
}

// TLSProber speaks HTTP/1.1 over TLS on a raw TCP connection. When probing
// through a proxy, the TCP connection goes to the proxy but the TLS session
// is negotiated with host, so only proxies that forward bytes verbatim to
// the origin can succeed.
type TLSProber struct {
	dialer      proxy.ContextDialer
	handshake   handshakeFunc
	maxResponse int64
}

// NewTLSProber creates a prober that dials through dialer.
func NewTLSProber(dialer proxy.ContextDialer, opts TLSOptions) (*TLSProber, error) {
	hs, err := newHandshaker(opts.Fingerprint, opts.RootCAs)
	if err != nil {
		return nil, err
	}
	maxResponse := opts.MaxResponseBytes
	if maxResponse <= 0 {
		maxResponse = defaultMaxResponseBytes
	}
	return &TLSProber{
		dialer:      dialer,
		handshake:   hs,
		maxResponse: maxResponse,
	}, nil
}

// Probe connects, performs the TLS handshake and request, and decodes the body.
// The connection is closed when Probe returns or as soon as ctx is done,
// whichever happens first.
func (p *TLSProber) Probe(ctx context.Context, host, path string, via *Endpoint) (Payload, error) {
	addr := net.JoinHostPort(host, httpsPort)
	if via != nil {
		addr = via.String()
	}

	raw, err := p.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, p.classify(ctx, ErrConnect, err)
	}
	defer raw.Close()
	stop := context.AfterFunc(ctx, func() { raw.Close() })
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		if err := raw.SetDeadline(deadline); err != nil {
			return nil, p.classify(ctx, ErrIO, err)
		}
	}

	conn, err := p.handshake(ctx, raw, host)
	if err != nil {
		return nil, p.classify(ctx, ErrHandshake, err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, buildRequest(host, path)); err != nil {
		return nil, p.classify(ctx, ErrIO, err)
	}

	response, err := io.ReadAll(io.LimitReader(conn, p.maxResponse+1))
	if err != nil {
		return nil, p.classify(ctx, ErrIO, err)
	}
	if int64(len(response)) > p.maxResponse {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrIO, p.maxResponse)
	}

	return parseResponse(response)
}

// classify wraps err in kind, unless ctx or the connection deadline already
// expired, in which case err is a side effect of the teardown.
func (p *TLSProber) classify(ctx context.Context, kind, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrTimedOut, ctxErr)
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimedOut, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func buildRequest(host, path string) string {
	return "GET " + path + " HTTP/1.1\r\n" +
		"Host: " + host + "\r\n" +
		"User-Agent: " + userAgent + "\r\n" +
		"Connection: close\r\n\r\n"
}

// parseResponse splits a raw HTTP response at the first blank line and
// decodes the trimmed body as a JSON object.
func parseResponse(raw []byte) (Payload, error) {
	idx := bytes.Index(raw, headerTerminator)
	if idx < 0 {
		return nil, ErrMalformedResponse
	}
	body := bytes.TrimSpace(raw[idx+len(headerTerminator):])

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrInvalidBody)
	}
	return payload, nil
}
