package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/iyes-games/mpauth/pkg/version"
)

const (
	// ServiceType is the service type of Auth server client ports.
	ServiceType = "_iyesmp-auth._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultTTL is the default DNS record TTL.
	DefaultTTL = 120 * time.Second

	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyServerName   = "sn"
	TXTKeyProtoVersion = "pv"
	TXTKeyRegion       = "rg"
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
	ErrNotAdvertising      = errors.New("not advertising")
)

// AuthServerInfo describes an Auth server client port to advertise.
type AuthServerInfo struct {
	// InstanceName is the DNS-SD instance name.
	InstanceName string

	// ServerName is the name in the server certificate clients verify.
	ServerName string

	// ProtoVersion is the handshake protocol version spoken on the port.
	ProtoVersion version.Version

	// Port is the UDP port of the client-facing endpoint.
	Port uint16

	// Region is an optional operator-defined location hint.
	Region string
}

// AuthService is an Auth server found by browsing.
type AuthService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	ServerName   string
	ProtoVersion version.Version
	Region       string
}

// Addr returns "address:port" for the first known address, or "" if none is
// known.
func (s *AuthService) Addr() string {
	if len(s.Addresses) == 0 {
		return ""
	}
	return net.JoinHostPort(s.Addresses[0], strconv.Itoa(int(s.Port)))
}
