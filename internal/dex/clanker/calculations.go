// =============================
// File: internal/dex/clanker/calculations.go
// =============================
package clanker

// CalculateDevBuyTokens simulates a dev buy of devBuyEth against a pool that
// holds the whole token supply and marketCapEth of ETH.
//
// The pool follows the constant product rule x * y = k, where
// x is the ETH reserve and y the token reserve:
//
//	newTokenReserve = k / (ethReserve + devBuyEth)
//	tokensReceived  = tokenReserve - newTokenReserve
//
// A totalSupply <= 0 selects DefaultTotalSupply. Invalid amounts yield the
// all-zero result, never an error.
func CalculateDevBuyTokens(devBuyEth, marketCapEth, totalSupply float64) DevBuyResult {
	if devBuyEth <= 0 || marketCapEth <= 0 {
		return DevBuyResult{}
	}
	if totalSupply <= 0 {
		totalSupply = DefaultTotalSupply
	}

	initialTokenReserve := totalSupply
	initialEthReserve := marketCapEth

	k := initialEthReserve * initialTokenReserve

	newEthReserve := initialEthReserve + devBuyEth
	newTokenReserve := k / newEthReserve

	tokensReceived := initialTokenReserve - newTokenReserve

	initialPrice := initialEthReserve / initialTokenReserve
	newPrice := newEthReserve / newTokenReserve

	priceImpact := (newPrice - initialPrice) / initialPrice * 100
	effectivePrice := devBuyEth / tokensReceived

	return DevBuyResult{
		TokensReceived: tokensReceived,
		PriceImpact:    priceImpact,
		NewPrice:       newPrice,
		EffectivePrice: effectivePrice,
	}
}

// InitialPrice returns the ETH-per-token price of a fresh pool.
func InitialPrice(marketCapEth, totalSupply float64) float64 {
	if marketCapEth <= 0 {
		return 0
	}
	if totalSupply <= 0 {
		totalSupply = DefaultTotalSupply
	}
	return marketCapEth / totalSupply
}

// CalculateDevBuyEstimate is the linear fallback estimator. It returns nil
// when either amount is zero, which callers treat as "cannot estimate".
func CalculateDevBuyEstimate(ethAmount, marketCapEth, totalSupply float64) *DevBuyEstimate {
	if marketCapEth == 0 || ethAmount == 0 {
		return nil
	}
	if totalSupply <= 0 {
		totalSupply = DefaultTotalSupply
	}

	share := ethAmount / marketCapEth
	return &DevBuyEstimate{
		EstimatedTokens: share * totalSupply,
		PriceImpact:     share * 100,
	}
}

// CalculateTokenDistribution splits totalSupply between the enabled
// extensions and the liquidity pool. The pool row is always last and takes
// whatever is left, including a negative remainder when the extensions
// over-allocate.
func CalculateTokenDistribution(cfg DistributionConfig, totalSupply float64) []Allocation {
	if totalSupply <= 0 {
		totalSupply = DefaultTotalSupply
	}

	allocations := make([]Allocation, 0, 3)
	remaining := totalSupply

	if cfg.Vault.Enabled {
		amount := totalSupply * cfg.Vault.Percentage / 100
		allocations = append(allocations, Allocation{
			Name:       AllocationVault,
			Amount:     amount,
			Percentage: cfg.Vault.Percentage,
		})
		remaining -= amount
	}

	if cfg.Airdrop.Enabled {
		amount := totalSupply * cfg.Airdrop.Percentage / 100
		allocations = append(allocations, Allocation{
			Name:       AllocationAirdrop,
			Amount:     amount,
			Percentage: cfg.Airdrop.Percentage,
		})
		remaining -= amount
	}

	allocations = append(allocations, Allocation{
		Name:       AllocationLiquidityPool,
		Amount:     remaining,
		Percentage: remaining / totalSupply * 100,
	})

	return allocations
}
