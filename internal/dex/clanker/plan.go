package clanker

import (
	"fmt"
	"time"
)

// DefaultMarketCapEth is the starting pool ETH reserve used when the caller
// does not provide one (10 ETH matches the deployer's default starting tick).
const DefaultMarketCapEth = 10.0

// LaunchPlan bundles a validated deploy config with the numbers shown to the
// deployer before the SDK builds the transaction.
type LaunchPlan struct {
	Config        DeployConfig    `json:"config" yaml:"config"`
	MarketCapEth  float64         `json:"marketCapEth" yaml:"marketCapEth"`
	TotalSupply   float64         `json:"totalSupply" yaml:"totalSupply"`
	InitialPrice  float64         `json:"initialPrice" yaml:"initialPrice"`
	DevBuy        DevBuyResult    `json:"devBuy" yaml:"devBuy"`
	QuickEstimate *DevBuyEstimate `json:"quickEstimate" yaml:"quickEstimate"`
	Distribution  []Allocation    `json:"distribution" yaml:"distribution"`
	CreatedAt     time.Time       `json:"createdAt" yaml:"createdAt"`
}

// Plan validates the config and computes its estimates. marketCapEth <= 0
// selects DefaultMarketCapEth. Inputs whose estimates overflow return
// ErrNonFiniteEstimate.
func (c *DeployConfig) Plan(marketCapEth float64) (*LaunchPlan, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !finite(marketCapEth) {
		return nil, fmt.Errorf("%w: market cap %g", ErrNonFiniteEstimate, marketCapEth)
	}
	if marketCapEth <= 0 {
		marketCapEth = DefaultMarketCapEth
	}

	devBuy := c.DevBuyEth()
	plan := &LaunchPlan{
		Config:        *c,
		MarketCapEth:  marketCapEth,
		TotalSupply:   DefaultTotalSupply,
		InitialPrice:  InitialPrice(marketCapEth, DefaultTotalSupply),
		DevBuy:        CalculateDevBuyTokens(devBuy, marketCapEth, DefaultTotalSupply),
		QuickEstimate: CalculateDevBuyEstimate(devBuy, marketCapEth, DefaultTotalSupply),
		Distribution:  CalculateTokenDistribution(c.Distribution(), DefaultTotalSupply),
		CreatedAt:     time.Now().UTC(),
	}
	if !plan.IsFinite() {
		return nil, fmt.Errorf("%w: dev buy %g ETH at market cap %g ETH", ErrNonFiniteEstimate, devBuy, marketCapEth)
	}
	return plan, nil
}

// IsFinite reports whether every computed number in the plan is finite.
func (p *LaunchPlan) IsFinite() bool {
	if !finite(p.MarketCapEth, p.TotalSupply, p.InitialPrice) || !p.DevBuy.IsFinite() || !p.QuickEstimate.IsFinite() {
		return false
	}
	for _, a := range p.Distribution {
		if !finite(a.Amount, a.Percentage) {
			return false
		}
	}
	return true
}
