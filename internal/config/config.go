// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr          string   `mapstructure:"listen_addr"`
	BaseRPCURL          string   `mapstructure:"base_rpc_url"`
	AlchemyAPIKey       string   `mapstructure:"alchemy_api_key"`
	AlchemyURL          string   `mapstructure:"alchemy_url"`
	MoralisAPIKey       string   `mapstructure:"moralis_api_key"`
	MoralisURL          string   `mapstructure:"moralis_url"`
	PinataJWT           string   `mapstructure:"pinata_jwt"`
	PinataURL           string   `mapstructure:"pinata_url"`
	PinataGateway       string   `mapstructure:"pinata_gateway"`
	FeeLockerAddress    string   `mapstructure:"fee_locker_address"`
	WETHAddress         string   `mapstructure:"weth_address"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
	TrustProxy          bool     `mapstructure:"trust_proxy"`
	RatePerMin          int      `mapstructure:"rate_per_min"`
	RateBurst           int      `mapstructure:"rate_burst"`
	RequestTimeoutMS    int      `mapstructure:"request_timeout_ms"`
	MaxUploadBytes      int64    `mapstructure:"max_upload_bytes"`
	MoralisBatchSize    int      `mapstructure:"moralis_batch_size"`
	MoralisBatchDelayMS int      `mapstructure:"moralis_batch_delay_ms"`
	MaxTransferPages    int      `mapstructure:"max_transfer_pages"`
	Retries             int      `mapstructure:"retries"`
	DefaultMarketCapEth float64  `mapstructure:"default_market_cap_eth"`
	DebugLogging        bool     `mapstructure:"debug_logging"`
	LogFile             string   `mapstructure:"log_file"`
}

const (
	DefaultListenAddr          = ":8080"
	DefaultAlchemyURL          = "https://base-mainnet.g.alchemy.com/v2"
	DefaultMoralisURL          = "https://deep-index.moralis.io/api/v2.2"
	DefaultPinataURL           = "https://api.pinata.cloud"
	DefaultPinataGateway       = "https://gateway.pinata.cloud/ipfs"
	DefaultFeeLockerAddress    = "0xF3622742b1E446D92e45E22923Ef11C2fcD55D68"
	DefaultWETHAddress         = "0x4200000000000000000000000000000000000006"
	DefaultRatePerMin          = 120
	DefaultRateBurst           = 30
	DefaultRequestTimeoutMS    = 15000
	DefaultMaxUploadBytes      = 5 << 20
	DefaultMoralisBatchSize    = 25
	DefaultMoralisBatchDelayMS = 250
	DefaultMaxTransferPages    = 10
	DefaultRetries             = 3
	DefaultMarketCapEth        = 10.0
	DefaultLogFile             = "launchpad.log"
)

// LoadConfig reads the config file at path (JSON, YAML or TOML by
// extension), applies defaults and LAUNCHPAD_* environment overrides and
// validates the result. An empty path loads defaults and env only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"listen_addr":            DefaultListenAddr,
		"alchemy_url":            DefaultAlchemyURL,
		"moralis_url":            DefaultMoralisURL,
		"pinata_url":             DefaultPinataURL,
		"pinata_gateway":         DefaultPinataGateway,
		"fee_locker_address":     DefaultFeeLockerAddress,
		"weth_address":           DefaultWETHAddress,
		"allowed_origins":        []string{"*"},
		"trust_proxy":            false,
		"rate_per_min":           DefaultRatePerMin,
		"rate_burst":             DefaultRateBurst,
		"request_timeout_ms":     DefaultRequestTimeoutMS,
		"max_upload_bytes":       DefaultMaxUploadBytes,
		"moralis_batch_size":     DefaultMoralisBatchSize,
		"moralis_batch_delay_ms": DefaultMoralisBatchDelayMS,
		"max_transfer_pages":     DefaultMaxTransferPages,
		"retries":                DefaultRetries,
		"default_market_cap_eth": DefaultMarketCapEth,
		"log_file":               DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	loadEnvironmentVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	return &cfg, validateConfig(&cfg)
}

// RequestTimeout returns the per-request upstream timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// MoralisBatchDelay returns the pause between Moralis batch requests.
func (c *Config) MoralisBatchDelay() time.Duration {
	return time.Duration(c.MoralisBatchDelayMS) * time.Millisecond
}

// HasRPC reports whether fee checks against Base can be served.
func (c *Config) HasRPC() bool { return c.BaseRPCURL != "" }

// HasDiscovery reports whether wallet token discovery can be served.
func (c *Config) HasDiscovery() bool { return c.AlchemyAPIKey != "" && c.MoralisAPIKey != "" }

// HasPinata reports whether image uploads can be served.
func (c *Config) HasPinata() bool { return c.PinataJWT != "" }

func validateConfig(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return errors.New("listen_addr is empty")
	}
	if cfg.BaseRPCURL != "" {
		if err := validateURLWithCache(cfg.BaseRPCURL, "http", "ws"); err != nil {
			return errors.New("base_rpc_url must use http(s) or ws(s)")
		}
	}
	for name, raw := range map[string]string{
		"alchemy_url":    cfg.AlchemyURL,
		"moralis_url":    cfg.MoralisURL,
		"pinata_url":     cfg.PinataURL,
		"pinata_gateway": cfg.PinataGateway,
	} {
		if err := validateURLWithCache(raw, "http"); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if !common.IsHexAddress(cfg.FeeLockerAddress) {
		return errors.New("fee_locker_address is not a hex address")
	}
	if !common.IsHexAddress(cfg.WETHAddress) {
		return errors.New("weth_address is not a hex address")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.RatePerMin <= 0 {
		return errors.New("invalid rate_per_min")
	}
	if cfg.RateBurst <= 0 {
		return errors.New("invalid rate_burst")
	}
	if cfg.RequestTimeoutMS <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.MaxUploadBytes <= 0 {
		return errors.New("invalid max_upload_bytes")
	}
	if cfg.MoralisBatchSize <= 0 {
		return errors.New("invalid moralis_batch_size")
	}
	if cfg.MoralisBatchDelayMS < 0 {
		return errors.New("invalid moralis_batch_delay_ms")
	}
	if cfg.MaxTransferPages <= 0 {
		return errors.New("invalid max_transfer_pages")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.DefaultMarketCapEth <= 0 {
		return errors.New("invalid default_market_cap_eth")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocols ...string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if parsed.Host == "" {
		return errors.New("URL has no host")
	}
	for _, protocol := range protocols {
		if strings.HasPrefix(parsed.Scheme, protocol) {
			urlCache.Store(rawURL, parsed)
			return nil
		}
	}
	return errors.New("invalid URL protocol")
}

func loadEnvironmentVariables(v *viper.Viper) {
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// lists such as LAUNCHPAD_ALLOWED_ORIGINS are split on commas by the
	// default decode hooks
	v.AutomaticEnv()

	// keys without defaults are invisible to Unmarshal unless bound
	for _, key := range []string{"base_rpc_url", "alchemy_api_key", "moralis_api_key", "pinata_jwt", "debug_logging"} {
		_ = v.BindEnv(key)
	}
}
