// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validConfigJSON = `{
    "listen_addr": ":9090",
    "base_rpc_url": "https://mainnet.base.org",
    "alchemy_api_key": "alchemy-test-key",
    "moralis_api_key": "moralis-test-key",
    "pinata_jwt": "pinata-test-jwt",
    "allowed_origins": ["https://launchpad.example"],
    "rate_per_min": 60,
    "request_timeout_ms": 5000,
    "moralis_batch_size": 10,
    "default_market_cap_eth": 12.5,
    "debug_logging": true
}`

var invalidConfigJSON = `{
    "base_rpc_url": "ftp://mainnet.base.org",
    "rate_per_min": -1
}`

var invalidNumericJSON = `{
    "moralis_batch_size": 0
}`

var invalidAddressJSON = `{
    "fee_locker_address": "0xnot-an-address"
}`

func writeTestConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name:    "Valid config",
			content: validConfigJSON,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ":9090", cfg.ListenAddr)
				assert.Equal(t, "https://mainnet.base.org", cfg.BaseRPCURL)
				assert.Equal(t, []string{"https://launchpad.example"}, cfg.AllowedOrigins)
				assert.Equal(t, 60, cfg.RatePerMin)
				assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
				assert.Equal(t, 10, cfg.MoralisBatchSize)
				assert.Equal(t, 12.5, cfg.DefaultMarketCapEth)
				assert.True(t, cfg.DebugLogging)
				assert.True(t, cfg.HasRPC())
				assert.True(t, cfg.HasDiscovery())
				assert.True(t, cfg.HasPinata())
			},
		},
		{
			name:    "Defaults fill missing keys",
			content: `{}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
				assert.Equal(t, DefaultFeeLockerAddress, cfg.FeeLockerAddress)
				assert.Equal(t, DefaultWETHAddress, cfg.WETHAddress)
				assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.MaxUploadBytes)
				assert.Equal(t, DefaultMoralisBatchSize, cfg.MoralisBatchSize)
				assert.Equal(t, 250*time.Millisecond, cfg.MoralisBatchDelay())
				assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
				assert.False(t, cfg.TrustProxy)
				assert.False(t, cfg.HasRPC())
				assert.False(t, cfg.HasDiscovery())
				assert.False(t, cfg.HasPinata())
			},
		},
		{
			name:    "Invalid config - bad scheme and rate",
			content: invalidConfigJSON,
			wantErr: true,
		},
		{
			name:    "Invalid config - zero batch size",
			content: invalidNumericJSON,
			wantErr: true,
		},
		{
			name:    "Invalid config - fee locker address",
			content: invalidAddressJSON,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestConfig(t, "config.json", tt.content)

			cfg, err := LoadConfig(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeTestConfig(t, "config.yaml", "listen_addr: \":7070\"\nretries: 5\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.Retries)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("LAUNCHPAD_PINATA_JWT", "env-jwt")
	t.Setenv("LAUNCHPAD_ALCHEMY_API_KEY", "env-alchemy")
	t.Setenv("LAUNCHPAD_RATE_PER_MIN", "30")
	t.Setenv("LAUNCHPAD_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LAUNCHPAD_TRUST_PROXY", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "env-jwt", cfg.PinataJWT)
	assert.Equal(t, "env-alchemy", cfg.AlchemyAPIKey)
	assert.Equal(t, 30, cfg.RatePerMin)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.TrustProxy)
}

func BenchmarkLoadConfig(b *testing.B) {
	path := filepath.Join(b.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(validConfigJSON), 0600); err != nil {
		b.Fatalf("Failed to write config file: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadConfig(path); err != nil {
			b.Fatalf("LoadConfig failed: %v", err)
		}
	}
}
