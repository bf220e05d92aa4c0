package validator

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strings"

	utls "github.com/refraction-networking/utls"
)

// handshakeFunc upgrades raw to TLS, validating the certificate against serverName.
type handshakeFunc func(ctx context.Context, raw net.Conn, serverName string) (net.Conn, error)

var helloIDs = map[string]utls.ClientHelloID{
	"chrome":  utls.HelloChrome_Auto,
	"firefox": utls.HelloFirefox_Auto,
	"safari":  utls.HelloSafari_Auto,
}

// newHandshaker picks the ClientHello implementation for fingerprint.
// "go" (or empty) is crypto/tls without ALPN; browser names use utls presets.
func newHandshaker(fingerprint string, rootCAs *x509.CertPool) (handshakeFunc, error) {
	fingerprint = strings.ToLower(fingerprint)
	if fingerprint == "" || fingerprint == "go" {
		return func(ctx context.Context, raw net.Conn, serverName string) (net.Conn, error) {
			conn := tls.Client(raw, &tls.Config{
				ServerName: serverName,
				RootCAs:    rootCAs,
				MinVersion: tls.VersionTLS12,
			})
			if err := conn.HandshakeContext(ctx); err != nil {
				return nil, err
			}
			return conn, nil
		}, nil
	}

	id, ok := helloIDs[fingerprint]
	if !ok {
		return nil, fmt.Errorf("unknown tls fingerprint %q", fingerprint)
	}
	// Validate the preset once so a broken fingerprint fails at startup.
	if _, err := helloSpec(id); err != nil {
		return nil, err
	}

	return func(ctx context.Context, raw net.Conn, serverName string) (net.Conn, error) {
		spec, err := helloSpec(id)
		if err != nil {
			return nil, err
		}
		conn := utls.UClient(raw, &utls.Config{
			ServerName: serverName,
			RootCAs:    rootCAs,
		}, utls.HelloCustom)
		if err := conn.ApplyPreset(&spec); err != nil {
			return nil, fmt.Errorf("apply %s preset: %w", fingerprint, err)
		}
		if err := conn.HandshakeContext(ctx); err != nil {
			return nil, err
		}
		return conn, nil
	}, nil
}

// helloSpec expands id into a fresh spec whose ALPN only offers http/1.1,
// since the probe writes a raw HTTP/1.1 request after the handshake.
func helloSpec(id utls.ClientHelloID) (utls.ClientHelloSpec, error) {
	spec, err := utls.UTLSIdToSpec(id)
	if err != nil {
		return utls.ClientHelloSpec{}, fmt.Errorf("build %s client hello: %w", id.Str(), err)
	}
	for i, ext := range spec.Extensions {
		if _, ok := ext.(*utls.ALPNExtension); ok {
			spec.Extensions[i] = &utls.ALPNExtension{AlpnProtocols: []string{"http/1.1"}}
		}
	}
	return spec, nil
}
