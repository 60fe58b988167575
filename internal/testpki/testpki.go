// Package testpki generates throw-away certificate hierarchies for tests.
//
// The layout mirrors production: a Master root signs the AuthSrv leaf and
// the HostAuth, ClientAuth and SessionAuth intermediates; HostSrv is signed
// by HostAuth and Client by ClientAuth. All keys are ECDSA P-256 in PKCS#8.
package testpki

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iyes-games/mpauth/pkg/cert"
)

// Default DNS names of the generated server leaves.
const (
	AuthServerName = "auth.iyes.games"
	HostServerName = "host.iyes.games"
)

const validity = 24 * time.Hour

// Identity is one certificate with its private key.
type Identity struct {
	Cert    *x509.Certificate
	CertDER []byte
	Key     *ecdsa.PrivateKey
	KeyDER  []byte
}

// Hierarchy is a complete set of certificates.
type Hierarchy struct {
	Master      *Identity
	HostAuth    *Identity
	ClientAuth  *Identity
	SessionAuth *Identity
	AuthSrv     *Identity
	HostSrv     *Identity
	Client      *Identity
}

// New generates a hierarchy or fails the test.
func New(t testing.TB) *Hierarchy {
	t.Helper()

	h, err := Generate()
	if err != nil {
		t.Fatalf("failed to generate test PKI: %v", err)
	}
	return h
}

// Generate builds a fresh hierarchy.
func Generate() (*Hierarchy, error) {
	var (
		h   Hierarchy
		err error
	)

	if h.Master, err = issue(nil, caTemplate("iyes Master", -1)); err != nil {
		return nil, err
	}
	for _, ca := range []struct {
		dst **Identity
		cn  string
	}{
		{&h.HostAuth, "iyes HostAuth"},
		{&h.ClientAuth, "iyes ClientAuth"},
		{&h.SessionAuth, "iyes SessionAuth"},
	} {
		if *ca.dst, err = issue(h.Master, caTemplate(ca.cn, 0)); err != nil {
			return nil, err
		}
	}

	if h.AuthSrv, err = h.Issue(h.Master, "iyes AuthSrv", AuthServerName); err != nil {
		return nil, err
	}
	if h.HostSrv, err = h.Issue(h.HostAuth, "iyes HostSrv", HostServerName); err != nil {
		return nil, err
	}
	if h.Client, err = h.Issue(h.ClientAuth, "iyes Client"); err != nil {
		return nil, err
	}
	return &h, nil
}

// Issue creates a leaf certificate signed by parent.
func (h *Hierarchy) Issue(parent *Identity, cn string, dnsNames ...string) (*Identity, error) {
	tmpl := &x509.Certificate{
		Subject:               pkix.Name{CommonName: cn},
		DNSNames:              dnsNames,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	return issue(parent, tmpl)
}

// ServerCertificates returns the Auth server material.
func (h *Hierarchy) ServerCertificates() *cert.ServerCertificates {
	return &cert.ServerCertificates{
		Master:          h.Master.CertDER,
		ClientAuth:      h.ClientAuth.CertDER,
		HostAuth:        h.HostAuth.CertDER,
		AuthSrvCert:     h.AuthSrv.CertDER,
		AuthSrvKey:      h.AuthSrv.KeyDER,
		SessionAuthCert: h.SessionAuth.CertDER,
		SessionAuthKey:  h.SessionAuth.KeyDER,
	}
}

// ClientCertificates returns the game client material.
func (h *Hierarchy) ClientCertificates() *cert.ClientCertificates {
	return &cert.ClientCertificates{
		Master:     h.Master.CertDER,
		ClientAuth: h.ClientAuth.CertDER,
		Cert:       h.Client.CertDER,
		Key:        h.Client.KeyDER,
	}
}

// HostCertificates returns the HostSrv identity shaped as client material,
// for dialing the Host-facing port.
func (h *Hierarchy) HostCertificates() *cert.ClientCertificates {
	return &cert.ClientCertificates{
		Master:     h.Master.CertDER,
		ClientAuth: h.HostAuth.CertDER,
		Cert:       h.HostSrv.CertDER,
		Key:        h.HostSrv.KeyDER,
	}
}

// WriteDir writes the hierarchy to dir using the loader file names.
func (h *Hierarchy) WriteDir(dir string) error {
	files := map[string][]byte{
		cert.MasterCertFile:      h.Master.CertDER,
		cert.HostAuthCertFile:    h.HostAuth.CertDER,
		cert.ClientAuthCertFile:  h.ClientAuth.CertDER,
		cert.SessionAuthCertFile: h.SessionAuth.CertDER,
		cert.SessionAuthKeyFile:  h.SessionAuth.KeyDER,
		cert.AuthSrvCertFile:     h.AuthSrv.CertDER,
		cert.AuthSrvKeyFile:      h.AuthSrv.KeyDER,
		cert.ClientCertFile:      h.Client.CertDER,
		cert.ClientKeyFile:       h.Client.KeyDER,
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			return err
		}
	}
	return nil
}

// caTemplate returns a CA template. A negative maxPathLen leaves the path
// length unconstrained.
func caTemplate(cn string, maxPathLen int) *x509.Certificate {
	return &x509.Certificate{
		Subject:               pkix.Name{CommonName: cn},
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            maxPathLen,
		MaxPathLenZero:        maxPathLen == 0,
	}
}

// issue fills in serial and validity, generates a key and signs tmpl with
// parent, or self-signs when parent is nil.
func issue(parent *Identity, tmpl *x509.Certificate) (*Identity, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, fmt.Errorf("generate serial: %w", err)
	}
	tmpl.SerialNumber = serial
	tmpl.NotBefore = time.Now().Add(-time.Hour)
	tmpl.NotAfter = time.Now().Add(validity)

	signer, signerKey := tmpl, key
	if parent != nil {
		signer, signerKey = parent.Cert, parent.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, signer, &key.PublicKey, signerKey)
	if err != nil {
		return nil, fmt.Errorf("create certificate %q: %w", tmpl.Subject.CommonName, err)
	}
	c, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}

	return &Identity{Cert: c, CertDER: der, Key: key, KeyDER: keyDER}, nil
}
