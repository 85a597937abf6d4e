// =============================
// File: internal/dex/clanker/config.go
// =============================
package clanker

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Base mainnet constants used by the v4 deployer.
const (
	BaseChainID  = 8453
	WETHAddress  = "0x4200000000000000000000000000000000000006"
	DefaultTick  = -230400
	InterfaceTag = "Clanker Launchpad"
)

// Limits enforced by the v4 contracts and extensions.
const (
	MaxNameLength          = 64
	MaxSymbolLength        = 16
	MaxExtensionPercentage = 90
	MinVaultLockupDays     = 7
	MinAirdropLockupDays   = 1
	MaxStaticFeeBps        = 2000
	MinDynamicBaseFeeBps   = 25
	MaxDynamicFeeBps       = 3000
	MaxRewardRecipients    = 7
	BpsTotal               = 10_000

	secondsPerDay = 24 * 60 * 60
)

// FeeType selects the pool hook fee model.
type FeeType string

const (
	FeeTypeStatic  FeeType = "static"
	FeeTypeDynamic FeeType = "dynamic"
)

// RewardToken selects which side of the LP fees a recipient collects.
type RewardToken string

const (
	RewardTokenBoth    RewardToken = "Both"
	RewardTokenPaired  RewardToken = "Paired"
	RewardTokenClanker RewardToken = "Clanker"
)

// SocialLink is a single social media entry in token metadata.
type SocialLink struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

type Metadata struct {
	Description     string       `json:"description,omitempty" yaml:"description,omitempty"`
	SocialMediaURLs []SocialLink `json:"socialMediaUrls,omitempty" yaml:"socialMediaUrls,omitempty"`
	AuditURLs       []string     `json:"auditUrls,omitempty" yaml:"auditUrls,omitempty"`
}

type Context struct {
	Interface string `json:"interface" yaml:"interface"`
	Platform  string `json:"platform,omitempty" yaml:"platform,omitempty"`
	MessageID string `json:"messageId,omitempty" yaml:"messageId,omitempty"`
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
}

type PoolConfig struct {
	PairedToken           string `json:"pairedToken" yaml:"pairedToken"`
	TickIfToken0IsClanker int    `json:"tickIfToken0IsClanker" yaml:"tickIfToken0IsClanker"`
}

// FeeConfig uses basis points. Static fees use ClankerFeeBps/PairedFeeBps,
// dynamic fees use BaseFeeBps/MaxFeeBps.
type FeeConfig struct {
	Type          FeeType `json:"type" yaml:"type"`
	ClankerFeeBps int     `json:"clankerFee,omitempty" yaml:"clankerFee,omitempty"`
	PairedFeeBps  int     `json:"pairedFee,omitempty" yaml:"pairedFee,omitempty"`
	BaseFeeBps    int     `json:"baseFee,omitempty" yaml:"baseFee,omitempty"`
	MaxFeeBps     int     `json:"maxFee,omitempty" yaml:"maxFee,omitempty"`
}

// VaultConfig locks part of the supply for the admin. Durations are seconds.
type VaultConfig struct {
	Percentage      float64 `json:"percentage" yaml:"percentage"`
	LockupDuration  int64   `json:"lockupDuration" yaml:"lockupDuration"`
	VestingDuration int64   `json:"vestingDuration,omitempty" yaml:"vestingDuration,omitempty"`
	Recipient       string  `json:"recipient,omitempty" yaml:"recipient,omitempty"`
}

type AirdropConfig struct {
	MerkleRoot      string  `json:"merkleRoot" yaml:"merkleRoot"`
	Percentage      float64 `json:"percentage" yaml:"percentage"`
	LockupDuration  int64   `json:"lockupDuration" yaml:"lockupDuration"`
	VestingDuration int64   `json:"vestingDuration,omitempty" yaml:"vestingDuration,omitempty"`
}

type DevBuyConfig struct {
	EthAmount float64 `json:"ethAmount" yaml:"ethAmount"`
	Recipient string  `json:"recipient,omitempty" yaml:"recipient,omitempty"`
}

type RewardRecipient struct {
	Recipient string      `json:"recipient" yaml:"recipient"`
	Admin     string      `json:"admin" yaml:"admin"`
	Bps       int         `json:"bps" yaml:"bps"`
	Token     RewardToken `json:"token" yaml:"token"`
}

type RewardsConfig struct {
	Recipients []RewardRecipient `json:"recipients" yaml:"recipients"`
}

// DeployConfig is the token deployment request handed to the Clanker SDK.
// It is built and validated here; encoding and signing stay with the SDK.
type DeployConfig struct {
	Name       string         `json:"name" yaml:"name"`
	Symbol     string         `json:"symbol" yaml:"symbol"`
	Image      string         `json:"image,omitempty" yaml:"image,omitempty"`
	TokenAdmin string         `json:"tokenAdmin" yaml:"tokenAdmin"`
	Metadata   Metadata       `json:"metadata" yaml:"metadata"`
	Context    Context        `json:"context" yaml:"context"`
	Pool       PoolConfig     `json:"pool" yaml:"pool"`
	Fees       FeeConfig      `json:"fees" yaml:"fees"`
	Vault      *VaultConfig   `json:"vault,omitempty" yaml:"vault,omitempty"`
	Airdrop    *AirdropConfig `json:"airdrop,omitempty" yaml:"airdrop,omitempty"`
	DevBuy     *DevBuyConfig  `json:"devBuy,omitempty" yaml:"devBuy,omitempty"`
	Rewards    RewardsConfig  `json:"rewards" yaml:"rewards"`
	Vanity     bool           `json:"vanity" yaml:"vanity"`
}

// NewDeployConfig returns a config with the launchpad defaults: WETH pair,
// standard starting tick, 1% static fees and all rewards to the admin.
func NewDeployConfig(name, symbol, admin string) *DeployConfig {
	cfg := &DeployConfig{
		Name:       strings.TrimSpace(name),
		Symbol:     strings.TrimSpace(symbol),
		TokenAdmin: strings.TrimSpace(admin),
		Vanity:     true,
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset pool, fee, context and reward fields.
func (c *DeployConfig) ApplyDefaults() {
	if c.Context.Interface == "" {
		c.Context.Interface = InterfaceTag
	}
	if c.Pool.PairedToken == "" {
		c.Pool.PairedToken = WETHAddress
	}
	if c.Pool.TickIfToken0IsClanker == 0 {
		c.Pool.TickIfToken0IsClanker = DefaultTick
	}
	if c.Fees.Type == "" {
		c.Fees = FeeConfig{Type: FeeTypeStatic, ClankerFeeBps: 100, PairedFeeBps: 100}
	}
	if len(c.Rewards.Recipients) == 0 && c.TokenAdmin != "" {
		c.Rewards.Recipients = []RewardRecipient{{
			Recipient: c.TokenAdmin,
			Admin:     c.TokenAdmin,
			Bps:       BpsTotal,
			Token:     RewardTokenBoth,
		}}
	}
}

// Days converts a whole number of days into the seconds the SDK expects.
func Days(n int) int64 {
	return int64(n) * secondsPerDay
}

// Validate checks the config against the deployer limits and returns every
// violation as ValidationErrors.
func (c *DeployConfig) Validate() error {
	var errs ValidationErrors

	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		errs.add("name", "is required")
	case utf8.RuneCountInString(name) > MaxNameLength:
		errs.add("name", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}

	symbol := strings.TrimSpace(c.Symbol)
	switch {
	case symbol == "":
		errs.add("symbol", "is required")
	case utf8.RuneCountInString(symbol) > MaxSymbolLength:
		errs.add("symbol", fmt.Sprintf("must be at most %d characters", MaxSymbolLength))
	case strings.ContainsAny(symbol, " \t\n"):
		errs.add("symbol", "must not contain whitespace")
	}

	if c.Image != "" && !strings.HasPrefix(c.Image, "ipfs://") && !strings.HasPrefix(c.Image, "https://") {
		errs.add("image", "must be an ipfs:// or https:// URI")
	}

	checkAddress(&errs, "tokenAdmin", c.TokenAdmin, true)
	checkAddress(&errs, "pool.pairedToken", c.Pool.PairedToken, true)

	c.validateFees(&errs)
	c.validateExtensions(&errs)
	c.validateRewards(&errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *DeployConfig) validateFees(errs *ValidationErrors) {
	f := c.Fees
	switch f.Type {
	case FeeTypeStatic:
		if f.ClankerFeeBps < 0 || f.ClankerFeeBps > MaxStaticFeeBps {
			errs.add("fees.clankerFee", fmt.Sprintf("must be between 0 and %d bps", MaxStaticFeeBps))
		}
		if f.PairedFeeBps < 0 || f.PairedFeeBps > MaxStaticFeeBps {
			errs.add("fees.pairedFee", fmt.Sprintf("must be between 0 and %d bps", MaxStaticFeeBps))
		}
	case FeeTypeDynamic:
		if f.BaseFeeBps < MinDynamicBaseFeeBps {
			errs.add("fees.baseFee", fmt.Sprintf("must be at least %d bps", MinDynamicBaseFeeBps))
		}
		if f.MaxFeeBps > MaxDynamicFeeBps {
			errs.add("fees.maxFee", fmt.Sprintf("must be at most %d bps", MaxDynamicFeeBps))
		}
		if f.BaseFeeBps > f.MaxFeeBps {
			errs.add("fees.baseFee", "must not exceed maxFee")
		}
	default:
		errs.add("fees.type", fmt.Sprintf("unknown fee type %q", f.Type))
	}
}

func (c *DeployConfig) validateExtensions(errs *ValidationErrors) {
	total := 0.0

	if v := c.Vault; v != nil {
		if !validPercentage(v.Percentage) {
			errs.add("vault.percentage", fmt.Sprintf("must be greater than 0 and at most %d", MaxExtensionPercentage))
		}
		if v.LockupDuration < Days(MinVaultLockupDays) {
			errs.add("vault.lockupDuration", fmt.Sprintf("must be at least %d days", MinVaultLockupDays))
		}
		if v.VestingDuration < 0 {
			errs.add("vault.vestingDuration", "must not be negative")
		}
		checkAddress(errs, "vault.recipient", v.Recipient, false)
		total += v.Percentage
	}

	if a := c.Airdrop; a != nil {
		if !validPercentage(a.Percentage) {
			errs.add("airdrop.percentage", fmt.Sprintf("must be greater than 0 and at most %d", MaxExtensionPercentage))
		}
		if a.LockupDuration < Days(MinAirdropLockupDays) {
			errs.add("airdrop.lockupDuration", fmt.Sprintf("must be at least %d day", MinAirdropLockupDays))
		}
		if a.VestingDuration < 0 {
			errs.add("airdrop.vestingDuration", "must not be negative")
		}
		if root, err := hexutil.Decode(a.MerkleRoot); err != nil || len(root) != common.HashLength {
			errs.add("airdrop.merkleRoot", "must be a 32-byte hex string")
		}
		total += a.Percentage
	}

	if total > MaxExtensionPercentage {
		errs.add("extensions", fmt.Sprintf("vault and airdrop together must not exceed %d%%", MaxExtensionPercentage))
	}

	if d := c.DevBuy; d != nil {
		if d.EthAmount < 0 || math.IsNaN(d.EthAmount) || math.IsInf(d.EthAmount, 0) {
			errs.add("devBuy.ethAmount", "must be a non-negative number")
		}
		checkAddress(errs, "devBuy.recipient", d.Recipient, false)
	}
}

func (c *DeployConfig) validateRewards(errs *ValidationErrors) {
	recipients := c.Rewards.Recipients
	if len(recipients) == 0 || len(recipients) > MaxRewardRecipients {
		errs.add("rewards.recipients", fmt.Sprintf("must have between 1 and %d entries", MaxRewardRecipients))
		return
	}

	sum := 0
	for i, r := range recipients {
		prefix := fmt.Sprintf("rewards.recipients[%d]", i)
		checkAddress(errs, prefix+".recipient", r.Recipient, true)
		checkAddress(errs, prefix+".admin", r.Admin, true)
		if r.Bps <= 0 {
			errs.add(prefix+".bps", "must be positive")
		}
		switch r.Token {
		case RewardTokenBoth, RewardTokenPaired, RewardTokenClanker:
		default:
			errs.add(prefix+".token", fmt.Sprintf("unknown reward token %q", r.Token))
		}
		sum += r.Bps
	}
	if sum != BpsTotal {
		errs.add("rewards.recipients", fmt.Sprintf("bps must sum to %d, got %d", BpsTotal, sum))
	}
}

// Distribution maps the configured extensions onto the supply splitter input.
func (c *DeployConfig) Distribution() DistributionConfig {
	var d DistributionConfig
	if c.Vault != nil {
		d.Vault = ExtensionSetting{Enabled: true, Percentage: c.Vault.Percentage}
	}
	if c.Airdrop != nil {
		d.Airdrop = ExtensionSetting{Enabled: true, Percentage: c.Airdrop.Percentage}
	}
	return d
}

// DevBuyEth returns the configured dev buy amount, zero when disabled.
func (c *DeployConfig) DevBuyEth() float64 {
	if c.DevBuy == nil {
		return 0
	}
	return c.DevBuy.EthAmount
}

func validPercentage(p float64) bool {
	return p > 0 && p <= MaxExtensionPercentage
}

func checkAddress(errs *ValidationErrors, field, value string, required bool) {
	if value == "" {
		if required {
			errs.add(field, "is required")
		}
		return
	}
	if !common.IsHexAddress(value) {
		errs.add(field, "must be a 20-byte hex address")
	}
}
