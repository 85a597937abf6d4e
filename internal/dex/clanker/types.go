// internal/dex/clanker/types.go
package clanker

import "math"

// DefaultTotalSupply is the fixed supply every Clanker token is minted with.
const DefaultTotalSupply = 100_000_000_000

// Allocation names, in allocation priority order.
const (
	AllocationVault         = "Vault"
	AllocationAirdrop       = "Airdrop"
	AllocationLiquidityPool = "Liquidity Pool"
)

// DevBuyResult describes a single constant-product buy against a fresh pool.
type DevBuyResult struct {
	TokensReceived float64 `json:"tokensReceived"` // token units received for the ETH input
	PriceImpact    float64 `json:"priceImpact"`    // % change of the implied price
	NewPrice       float64 `json:"newPrice"`       // ETH per token after the trade
	EffectivePrice float64 `json:"effectivePrice"` // average ETH per token actually paid
}

// IsZero reports whether the result is the all-zero sentinel returned for
// invalid input.
func (r DevBuyResult) IsZero() bool {
	return r == DevBuyResult{}
}

// IsFinite reports whether every field is a finite number.
func (r DevBuyResult) IsFinite() bool {
	return finite(r.TokensReceived, r.PriceImpact, r.NewPrice, r.EffectivePrice)
}

// DevBuyEstimate is the linear, low-precision dev buy estimate.
type DevBuyEstimate struct {
	EstimatedTokens float64 `json:"estimatedTokens"`
	PriceImpact     float64 `json:"priceImpact"`
}

// IsFinite reports whether the estimate is finite. A nil estimate is.
func (e *DevBuyEstimate) IsFinite() bool {
	return e == nil || finite(e.EstimatedTokens, e.PriceImpact)
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ExtensionSetting toggles a supply extension and its share of supply (0..100).
type ExtensionSetting struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage"`
}

// DistributionConfig holds the optional supply extensions.
type DistributionConfig struct {
	Vault   ExtensionSetting `json:"vault"`
	Airdrop ExtensionSetting `json:"airdrop"`
}

// Allocation is one row of the token distribution.
type Allocation struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}
