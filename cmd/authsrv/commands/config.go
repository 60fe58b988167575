package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iyes-games/mpauth/pkg/discovery"
	"github.com/iyes-games/mpauth/pkg/handshake"
	"github.com/iyes-games/mpauth/pkg/version"
)

// Default listen addresses.
const (
	DefaultHostListen   = "[::]:7100"
	DefaultClientListen = "[::]:7101"
)

// Config is the authsrv configuration file.
type Config struct {
	// CertDir holds the Auth server certificate files.
	CertDir string `yaml:"cert_dir"`

	// HostListen and ClientListen list the addresses to bind per role.
	HostListen   []string `yaml:"host_listen"`
	ClientListen []string `yaml:"client_listen"`

	// HandshakeTimeout bounds each client handshake.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`

	// SecretWord is the word accepted from chat clients.
	SecretWord string `yaml:"secret_word"`

	// RefuseNSFW refuses chat clients asking for NSFW content.
	RefuseNSFW bool `yaml:"refuse_nsfw"`

	Log           LogConfig           `yaml:"log"`
	VersionPolicy VersionPolicyConfig `yaml:"version_policy"`
	MDNS          MDNSConfig          `yaml:"mdns"`
}

// LogConfig configures operational and protocol logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`

	// ProtocolFile, if set, receives protocol events in CBOR.
	ProtocolFile string `yaml:"protocol_file"`
}

// VersionPolicyConfig bounds accepted versions. Empty bounds are open.
// With every bound empty no policy is applied.
type VersionPolicyConfig struct {
	ProtocolMin string `yaml:"protocol_min"`
	ProtocolMax string `yaml:"protocol_max"`
	ClientMin   string `yaml:"client_min"`
	ClientMax   string `yaml:"client_max"`
}

// MDNSConfig configures the local network advertisement.
type MDNSConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Instance   string        `yaml:"instance"`
	ServerName string        `yaml:"server_name"`
	Region     string        `yaml:"region"`
	Interface  string        `yaml:"interface"`
	TTL        time.Duration `yaml:"ttl"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		CertDir:          "certs",
		HostListen:       []string{DefaultHostListen},
		ClientListen:     []string{DefaultClientListen},
		HandshakeTimeout: handshake.DefaultTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		MDNS: MDNSConfig{
			Instance:   "iyesmp-auth",
			ServerName: "auth.iyes.games",
			TTL:        discovery.DefaultTTL,
		},
	}
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if c.CertDir == "" {
		errs = append(errs, errors.New("cert_dir is required"))
	}
	if len(c.HostListen) == 0 && len(c.ClientListen) == 0 {
		errs = append(errs, errors.New("at least one listen address is required"))
	}
	if c.HandshakeTimeout < 0 {
		errs = append(errs, fmt.Errorf("handshake_timeout must not be negative, got %s", c.HandshakeTimeout))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format))
	}
	if _, err := c.VersionPolicy.Policy(); err != nil {
		errs = append(errs, err)
	}
	if c.MDNS.Enabled {
		if err := discovery.ValidateInstanceName(c.MDNS.Instance); err != nil {
			errs = append(errs, fmt.Errorf("mdns instance: %w", err))
		}
		if len(c.ClientListen) == 0 {
			errs = append(errs, errors.New("mdns requires a client listen address"))
		}
	}
	return errors.Join(errs...)
}

// Policy builds the version policy, or nil if no bound is set.
func (p VersionPolicyConfig) Policy() (*version.Policy, error) {
	if p == (VersionPolicyConfig{}) {
		return nil, nil
	}

	var policy version.Policy
	bounds := []struct {
		name string
		s    string
		dst  *version.Version
	}{
		{"protocol_min", p.ProtocolMin, &policy.Protocol.Min},
		{"protocol_max", p.ProtocolMax, &policy.Protocol.Max},
		{"client_min", p.ClientMin, &policy.Client.Min},
		{"client_max", p.ClientMax, &policy.Client.Max},
	}
	for _, b := range bounds {
		if b.s == "" {
			continue
		}
		v, err := version.Parse(b.s)
		if err != nil {
			return nil, fmt.Errorf("version_policy %s: %w", b.name, err)
		}
		*b.dst = v
	}
	return &policy, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s)
	}
}

// newLogger builds the operational logger from the log configuration.
func newLogger(c LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s (must be text or json)", c.Format)
	}
}
