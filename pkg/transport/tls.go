package transport

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/iyes-games/mpauth/pkg/cert"
	"github.com/iyes-games/mpauth/pkg/version"
)

// Trust configuration errors.
var (
	// ErrCertificate is returned when certificate bytes cannot be parsed or
	// added to a trust pool.
	ErrCertificate = errors.New("invalid certificate")

	// ErrCryptoConfig is returned when a private key cannot be parsed or does
	// not belong to its certificate.
	ErrCryptoConfig = errors.New("crypto configuration failed")
)

// ServerTrust holds the TLS configurations of the two Auth server roles.
// Both present the AuthSrv identity; they differ in which peers they accept.
type ServerTrust struct {
	// Host accepts only peers whose chain leads to HostAuth.
	Host *tls.Config

	// Client accepts only peers whose chain leads to ClientAuth.
	Client *tls.Config
}

// NewServerTrust builds the Host-facing and Client-facing TLS configurations
// from the Auth server material.
func NewServerTrust(c *cert.ServerCertificates) (*ServerTrust, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: server certificates are required", ErrCertificate)
	}

	identity, err := keyPair([][]byte{c.AuthSrvCert, c.Master}, c.AuthSrvKey)
	if err != nil {
		return nil, err
	}

	hostCAs, err := certPool(c.HostAuth)
	if err != nil {
		return nil, fmt.Errorf("host trust: %w", err)
	}
	clientCAs, err := certPool(c.ClientAuth)
	if err != nil {
		return nil, fmt.Errorf("client trust: %w", err)
	}

	return &ServerTrust{
		Host:   serverConfig(identity, hostCAs),
		Client: serverConfig(identity, clientCAs),
	}, nil
}

// NewClientTrust builds the game client TLS configuration. The returned
// config has no ServerName; the connector sets it per dial.
func NewClientTrust(c *cert.ClientCertificates) (*tls.Config, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client certificates are required", ErrCertificate)
	}

	identity, err := keyPair([][]byte{c.Cert, c.ClientAuth, c.Master}, c.Key)
	if err != nil {
		return nil, err
	}

	roots, err := certPool(c.Master)
	if err != nil {
		return nil, fmt.Errorf("server trust: %w", err)
	}

	return &tls.Config{
		// TLS 1.3 only - no fallback
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,

		Certificates: []tls.Certificate{identity},
		RootCAs:      roots,
		NextProtos:   version.SupportedALPNProtocols(),

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		// Session tickets disabled (no resumption)
		SessionTicketsDisabled: true,
	}, nil
}

func serverConfig(identity tls.Certificate, clientCAs *x509.CertPool) *tls.Config {
	return &tls.Config{
		// TLS 1.3 only - no fallback
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,

		// Require client certificate (mutual TLS)
		ClientAuth: tls.RequireAndVerifyClientCert,
		ClientCAs:  clientCAs,

		Certificates: []tls.Certificate{identity},
		NextProtos:   version.SupportedALPNProtocols(),

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		// Session tickets disabled (no resumption)
		SessionTicketsDisabled: true,
	}
}

// keyPair builds a tls.Certificate from a DER chain (leaf first) and a DER
// private key, checking that the key belongs to the leaf.
func keyPair(chain [][]byte, keyDER []byte) (tls.Certificate, error) {
	leaf, err := x509.ParseCertificate(chain[0])
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %v", ErrCertificate, err)
	}
	for _, der := range chain[1:] {
		if _, err := x509.ParseCertificate(der); err != nil {
			return tls.Certificate{}, fmt.Errorf("%w: chain: %v", ErrCertificate, err)
		}
	}

	key, err := cert.ParsePrivateKey(keyDER)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %v", ErrCryptoConfig, err)
	}
	if err := verifyCertKeyPair(leaf, key); err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %v", ErrCryptoConfig, err)
	}

	return tls.Certificate{
		Certificate: chain,
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}

func verifyCertKeyPair(leaf *x509.Certificate, key crypto.Signer) error {
	pub, ok := key.Public().(interface{ Equal(crypto.PublicKey) bool })
	if !ok {
		return fmt.Errorf("unsupported public key type %T", key.Public())
	}
	if !pub.Equal(leaf.PublicKey) {
		return fmt.Errorf("public keys do not match")
	}
	return nil
}

func certPool(ders ...[]byte) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	for _, der := range ders {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCertificate, err)
		}
		pool.AddCert(c)
	}
	return pool, nil
}

// VerifyTLS13 checks that a TLS connection is using TLS 1.3.
func VerifyTLS13(state tls.ConnectionState) error {
	if state.Version != tls.VersionTLS13 {
		return fmt.Errorf("TLS version %x is not TLS 1.3 (0x0304)", state.Version)
	}
	return nil
}

// VerifyALPN checks that the negotiated ALPN protocol is one we speak.
func VerifyALPN(state tls.ConnectionState) error {
	if _, err := version.MajorFromALPN(state.NegotiatedProtocol); err != nil {
		return err
	}
	return nil
}

// VerifyConnection performs the standard post-handshake checks.
func VerifyConnection(state tls.ConnectionState) error {
	if err := VerifyTLS13(state); err != nil {
		return err
	}
	return VerifyALPN(state)
}
