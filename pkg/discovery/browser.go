package discovery

import (
	"context"
	"time"
)

// Browser finds Auth servers on the local network.
type Browser interface {
	// Browse searches for Auth servers. The channel is closed when the
	// context is cancelled or browsing stops.
	Browse(ctx context.Context) (<-chan *AuthService, error)

	// FindByServerName returns the first Auth server advertising the given
	// TLS server name. Returns when found or when ctx is done.
	FindByServerName(ctx context.Context, serverName string) (*AuthService, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for browse operations.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// FilterFunc is a function that filters browse results.
type FilterFunc func(*AuthService) bool

// FilterByServerName returns a filter matching the given TLS server name.
func FilterByServerName(name string) FilterFunc {
	return func(svc *AuthService) bool {
		return svc.ServerName == name
	}
}

// FilterByMajor returns a filter matching servers speaking the given
// protocol major version.
func FilterByMajor(major uint8) FilterFunc {
	return func(svc *AuthService) bool {
		return svc.ProtoVersion.Major == major
	}
}

// FilterBrowseResults filters a channel of Auth services.
func FilterBrowseResults(in <-chan *AuthService, filter FilterFunc) <-chan *AuthService {
	out := make(chan *AuthService)
	go func() {
		defer close(out)
		for svc := range in {
			if filter(svc) {
				out <- svc
			}
		}
	}()
	return out
}

// ServiceEntry is raw mDNS service entry data.
// This is a helper for Browser implementations.
type ServiceEntry struct {
	Instance string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToAuthService converts a ServiceEntry to an AuthService.
func (e *ServiceEntry) ToAuthService() (*AuthService, error) {
	info, err := DecodeAuthTXT(StringsToTXTRecords(e.Text))
	if err != nil {
		return nil, err
	}

	return &AuthService{
		InstanceName: e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    e.Addrs,
		ServerName:   info.ServerName,
		ProtoVersion: info.ProtoVersion,
		Region:       info.Region,
	}, nil
}
