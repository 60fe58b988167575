package cert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrReadFile is returned when a certificate or key file cannot be read.
var ErrReadFile = errors.New("failed to read file")

// LoadServerCertificates reads the Auth server material from dir using the
// fixed file names.
func LoadServerCertificates(dir string) (*ServerCertificates, error) {
	var (
		c   ServerCertificates
		err error
	)
	files := []struct {
		name string
		dst  *[]byte
	}{
		{MasterCertFile, &c.Master},
		{ClientAuthCertFile, &c.ClientAuth},
		{HostAuthCertFile, &c.HostAuth},
		{AuthSrvCertFile, &c.AuthSrvCert},
		{AuthSrvKeyFile, &c.AuthSrvKey},
		{SessionAuthCertFile, &c.SessionAuthCert},
		{SessionAuthKeyFile, &c.SessionAuthKey},
	}
	for _, f := range files {
		if *f.dst, err = readFile(dir, f.name); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// LoadClientCertificates reads the game client material from dir using the
// fixed file names.
func LoadClientCertificates(dir string) (*ClientCertificates, error) {
	var (
		c   ClientCertificates
		err error
	)
	files := []struct {
		name string
		dst  *[]byte
	}{
		{MasterCertFile, &c.Master},
		{ClientAuthCertFile, &c.ClientAuth},
		{ClientCertFile, &c.Cert},
		{ClientKeyFile, &c.Key},
	}
	for _, f := range files {
		if *f.dst, err = readFile(dir, f.name); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func readFile(dir, name string) ([]byte, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrReadFile, path, err)
	}
	return data, nil
}
