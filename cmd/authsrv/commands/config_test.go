package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyes-games/mpauth/pkg/version"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authsrv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultHostListen}, cfg.HostListen)
	assert.Equal(t, []string{DefaultClientListen}, cfg.ClientListen)
	assert.Equal(t, time.Second, cfg.HandshakeTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
cert_dir: /etc/iyesmp/auth
client_listen:
  - "0.0.0.0:7201"
  - "[::]:7201"
handshake_timeout: 2500ms
secret_word: mates
refuse_nsfw: true
log:
  level: debug
  format: json
version_policy:
  protocol_min: "1.0"
  client_max: "0.9"
mdns:
  enabled: true
  instance: lan-auth
  region: eu-west
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/etc/iyesmp/auth", cfg.CertDir)
	assert.Equal(t, []string{DefaultHostListen}, cfg.HostListen, "unset keys keep defaults")
	assert.Equal(t, []string{"0.0.0.0:7201", "[::]:7201"}, cfg.ClientListen)
	assert.Equal(t, 2500*time.Millisecond, cfg.HandshakeTimeout)
	assert.Equal(t, "mates", cfg.SecretWord)
	assert.True(t, cfg.RefuseNSFW)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "auth.iyes.games", cfg.MDNS.ServerName)
	assert.Equal(t, "lan-auth", cfg.MDNS.Instance)

	policy, err := cfg.VersionPolicy.Policy()
	require.NoError(t, err)
	require.NotNil(t, policy)
	assert.Equal(t, version.Version{Major: 1}, policy.Protocol.Min)
	assert.True(t, policy.Protocol.Max.IsZero())
	assert.Equal(t, version.Version{Minor: 9}, policy.Client.Max)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "client_listen: [unterminated"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"no cert dir", func(c *Config) { c.CertDir = "" }, "cert_dir"},
		{"no listeners", func(c *Config) { c.HostListen, c.ClientListen = nil, nil }, "listen address"},
		{"negative timeout", func(c *Config) { c.HandshakeTimeout = -time.Second }, "handshake_timeout"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"bad version", func(c *Config) { c.VersionPolicy.ClientMin = "one" }, "client_min"},
		{"bad mdns instance", func(c *Config) {
			c.MDNS.Enabled = true
			c.MDNS.Instance = strings.Repeat("x", 64)
		}, "mdns instance"},
		{"mdns without client port", func(c *Config) {
			c.MDNS.Enabled = true
			c.ClientListen = nil
		}, "mdns requires"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestEmptyVersionPolicyIsNil(t *testing.T) {
	policy, err := VersionPolicyConfig{}.Policy()
	require.NoError(t, err)
	assert.Nil(t, policy)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestProtocolLoggerSinks(t *testing.T) {
	logger, err := newLogger(LogConfig{}, &bytes.Buffer{})
	require.NoError(t, err)

	pl, closeFn, err := protocolLogger(LogConfig{Level: "info"}, logger)
	require.NoError(t, err)
	assert.Nil(t, pl)
	closeFn()

	path := filepath.Join(t.TempDir(), "auth.mlog")
	pl, closeFn, err = protocolLogger(LogConfig{Level: "debug", ProtocolFile: path}, logger)
	require.NoError(t, err)
	assert.NotNil(t, pl)
	closeFn()
	assert.FileExists(t, path)
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	var f serveFlags
	cmd := newServeCmd(&f)
	require.NoError(t, cmd.Flags().Parse([]string{
		"--certs", "/tmp/certs",
		"--client-listen", "127.0.0.1:9000,127.0.0.1:9001",
		"--handshake-timeout", "3s",
		"--mdns",
	}))

	cfg := DefaultConfig()
	cfg.SecretWord = "from-file"
	f.apply(cmd, cfg)

	assert.Equal(t, "/tmp/certs", cfg.CertDir)
	assert.Equal(t, []string{"127.0.0.1:9000", "127.0.0.1:9001"}, cfg.ClientListen)
	assert.Equal(t, []string{DefaultHostListen}, cfg.HostListen)
	assert.Equal(t, 3*time.Second, cfg.HandshakeTimeout)
	assert.True(t, cfg.MDNS.Enabled)
	assert.Equal(t, "from-file", cfg.SecretWord)
}
