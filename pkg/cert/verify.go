package cert

import (
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

// Verification errors.
var (
	ErrInvalidCert  = errors.New("invalid certificate")
	ErrInvalidChain = errors.New("invalid certificate chain")
)

// Verify checks that the Auth server material forms the expected hierarchy:
// ClientAuth, HostAuth, SessionAuth and AuthSrv are all issued by Master and
// currently valid.
func (c *ServerCertificates) Verify() error {
	return verifyAll(c.Master, []issued{
		{"clientauth", c.ClientAuth, nil},
		{"hostauth", c.HostAuth, nil},
		{"sessionauth", c.SessionAuthCert, nil},
		{"authsrv", c.AuthSrvCert, nil},
	})
}

// Verify checks that ClientAuth is issued by Master and Cert by ClientAuth.
func (c *ClientCertificates) Verify() error {
	return verifyAll(c.Master, []issued{
		{"clientauth", c.ClientAuth, nil},
		{"client", c.Cert, [][]byte{c.ClientAuth}},
	})
}

type issued struct {
	name          string
	der           []byte
	intermediates [][]byte
}

func verifyAll(masterDER []byte, certs []issued) error {
	master, err := x509.ParseCertificate(masterDER)
	if err != nil {
		return fmt.Errorf("%w: master: %v", ErrInvalidCert, err)
	}
	roots := x509.NewCertPool()
	roots.AddCert(master)

	for _, c := range certs {
		if err := verifyIssued(roots, c); err != nil {
			return err
		}
	}
	return nil
}

func verifyIssued(roots *x509.CertPool, c issued) error {
	leaf, err := x509.ParseCertificate(c.der)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidCert, c.name, err)
	}

	inter := x509.NewCertPool()
	for _, der := range c.intermediates {
		ic, err := x509.ParseCertificate(der)
		if err != nil {
			return fmt.Errorf("%w: %s issuer: %v", ErrInvalidCert, c.name, err)
		}
		inter.AddCert(ic)
	}

	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: inter,
		CurrentTime:   time.Now(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	if _, err := leaf.Verify(opts); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidChain, c.name, err)
	}
	return nil
}

// Info is a human-readable summary of a certificate.
type Info struct {
	CommonName string
	Issuer     string
	DNSNames   []string
	NotBefore  time.Time
	NotAfter   time.Time
	IsCA       bool
}

// Describe parses a DER certificate and summarizes it.
func Describe(der []byte) (*Info, error) {
	c, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCert, err)
	}
	return &Info{
		CommonName: c.Subject.CommonName,
		Issuer:     c.Issuer.CommonName,
		DNSNames:   c.DNSNames,
		NotBefore:  c.NotBefore,
		NotAfter:   c.NotAfter,
		IsCA:       c.IsCA,
	}, nil
}
