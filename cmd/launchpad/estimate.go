package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/clanker-launchpad/internal/dex/clanker"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/component"
)

func estimateCmd() *cobra.Command {
	var (
		ethAmount   float64
		marketCap   float64
		totalSupply float64
		quick       bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the tokens a dev buy receives at launch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ethAmount <= 0 {
				return errors.New("--eth must be positive")
			}
			var err error
			if marketCap, err = marketCapOrDefault(cmd, marketCap); err != nil {
				return err
			}
			if marketCap <= 0 {
				marketCap = clanker.DefaultMarketCapEth
			}
			out := cmd.OutOrStdout()

			if quick {
				estimate := clanker.CalculateDevBuyEstimate(ethAmount, marketCap, totalSupply)
				log.Debug("Quick estimate", zap.Float64("eth", ethAmount), zap.Bool("empty", estimate == nil))
				if asJSON {
					return writeJSON(out, map[string]*clanker.DevBuyEstimate{"estimate": estimate})
				}
				if estimate == nil {
					fmt.Fprintln(out, "No estimate: inputs must be non-zero")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Estimated tokens\t%s\n", component.FormatAmount(estimate.EstimatedTokens, 2))
				fmt.Fprintf(tw, "Price impact\t%s\n", component.FormatPercent(estimate.PriceImpact))
				return tw.Flush()
			}

			result := clanker.CalculateDevBuyTokens(ethAmount, marketCap, totalSupply)
			if result.IsZero() {
				return fmt.Errorf("no estimate for eth=%g market cap=%g supply=%g", ethAmount, marketCap, totalSupply)
			}
			if asJSON {
				return writeJSON(out, result)
			}
			supply := totalSupply
			if supply <= 0 {
				supply = clanker.DefaultTotalSupply
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Initial price\t%s\n", component.FormatPrice(clanker.InitialPrice(marketCap, supply)))
			fmt.Fprintf(tw, "Tokens received\t%s\n", component.FormatAmount(result.TokensReceived, 2))
			fmt.Fprintf(tw, "Share of supply\t%s\n", component.FormatPercent(result.TokensReceived/supply*100))
			fmt.Fprintf(tw, "Price impact\t%s\n", component.FormatPercent(result.PriceImpact))
			fmt.Fprintf(tw, "Effective price\t%s\n", component.FormatPrice(result.EffectivePrice))
			fmt.Fprintf(tw, "New price\t%s\n", component.FormatPrice(result.NewPrice))
			return tw.Flush()
		},
	}

	cmd.Flags().Float64Var(&ethAmount, "eth", 0, "dev buy amount in ETH")
	cmd.Flags().Float64Var(&marketCap, "market-cap", clanker.DefaultMarketCapEth, "starting market cap in ETH (default: config default_market_cap_eth)")
	cmd.Flags().Float64Var(&totalSupply, "supply", clanker.DefaultTotalSupply, "total token supply")
	cmd.Flags().BoolVar(&quick, "quick", false, "use the linear estimate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func distributionCmd() *cobra.Command {
	var (
		vault       float64
		airdrop     float64
		totalSupply float64
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Show how the supply splits between vault, airdrop and pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dist := clanker.DistributionConfig{
				Vault:   clanker.ExtensionSetting{Enabled: vault > 0, Percentage: vault},
				Airdrop: clanker.ExtensionSetting{Enabled: airdrop > 0, Percentage: airdrop},
			}
			allocations := clanker.CalculateTokenDistribution(dist, totalSupply)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), allocations)
			}
			return writeAllocations(cmd.OutOrStdout(), allocations)
		},
	}

	cmd.Flags().Float64Var(&vault, "vault", 0, "vault share of supply in percent")
	cmd.Flags().Float64Var(&airdrop, "airdrop", 0, "airdrop share of supply in percent")
	cmd.Flags().Float64Var(&totalSupply, "supply", clanker.DefaultTotalSupply, "total token supply")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeAllocations(w io.Writer, allocations []clanker.Allocation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ALLOCATION\tAMOUNT\tSHARE\t")
	for _, a := range allocations {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", a.Name, component.FormatAmount(a.Amount, 0), component.FormatPercent(a.Percentage))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if n := len(allocations); n > 0 && allocations[n-1].Amount < 0 {
		fmt.Fprintln(w, "warning: extensions exceed total supply")
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
