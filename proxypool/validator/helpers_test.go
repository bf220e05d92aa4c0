package validator

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// testHost is a name covered by the httptest certificate.
const testHost = "example.com"

// testCert returns the httptest certificate and a pool trusting it.
func testCert(t *testing.T) (tls.Certificate, *x509.CertPool) {
	t.Helper()
	srv := httptest.NewTLSServer(nil)
	cert := srv.TLS.Certificates[0]
	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	srv.Close()
	return cert, pool
}

// newRawTLSServer answers every request with head+"\r\n\r\n"+body written verbatim.
func newRawTLSServer(t *testing.T, cert tls.Certificate, response string) string {
	t.Helper()
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{cert}})
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				r := bufio.NewReader(c)
				var req bytes.Buffer
				for !bytes.HasSuffix(req.Bytes(), []byte("\r\n\r\n")) {
					b, err := r.ReadByte()
					if err != nil {
						return
					}
					req.WriteByte(b)
				}
				_, _ = io.WriteString(c, response)
			}(c)
		}
	}()
	return ln.Addr().String()
}

func jsonResponse(body string) string {
	return "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nConnection: close\r\n\r\n" + body
}

// newForwarder relays raw TCP bytes to target, like a transparent proxy.
func newForwarder(t *testing.T, target string) *Endpoint {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				up, err := net.Dial("tcp", target)
				if err != nil {
					return
				}
				defer up.Close()
				go func() { _, _ = io.Copy(up, c) }()
				_, _ = io.Copy(c, up)
			}(c)
		}
	}()
	return endpointOf(t, ln.Addr())
}

// newBlackhole accepts connections and never writes. It reports on the
// returned channel each time a peer closes its side.
func newBlackhole(t *testing.T) (*Endpoint, <-chan struct{}) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	closed := make(chan struct{}, 64)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				_, _ = io.Copy(io.Discard, c)
				c.Close()
				closed <- struct{}{}
			}(c)
		}
	}()
	return endpointOf(t, ln.Addr()), closed
}

func endpointOf(t *testing.T, addr net.Addr) *Endpoint {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr.String())
	require.NoError(t, err)
	port, err := strconv.ParseUint(portStr, 10, 16)
	require.NoError(t, err)
	return &Endpoint{Address: host, Port: uint16(port)}
}

// routeDialer sends dials for mapped addresses elsewhere, so a direct
// probe of example.com:443 lands on a local server.
type routeDialer struct {
	routes map[string]string
	d      net.Dialer
}

func (r *routeDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if to, ok := r.routes[addr]; ok {
		addr = to
	}
	return r.d.DialContext(ctx, network, addr)
}

func directRoute(to string) *routeDialer {
	return &routeDialer{routes: map[string]string{net.JoinHostPort(testHost, httpsPort): to}}
}
