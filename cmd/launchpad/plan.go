package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rovshanmuradov/clanker-launchpad/internal/dex/clanker"
	"github.com/rovshanmuradov/clanker-launchpad/internal/export"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/component"
)

func planCmd() *cobra.Command {
	var (
		marketCap float64
		exportDir string
		format    string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "plan [deploy-config]",
		Short: "Validate a deploy config and print its launch plan",
		Long: "Reads a deploy config (JSON or YAML by extension), fills the launchpad\n" +
			"defaults, validates it and prints the dev buy and supply estimates.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deployCfg, err := readDeployConfig(args[0])
			if err != nil {
				return err
			}

			if marketCap, err = marketCapOrDefault(cmd, marketCap); err != nil {
				return err
			}
			plan, err := deployCfg.Plan(marketCap)
			if err != nil {
				if verrs, ok := clanker.AsValidationErrors(err); ok {
					for _, v := range verrs {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", v.Field, v.Reason)
					}
				}
				return fmt.Errorf("invalid deploy config: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, plan); err != nil {
					return err
				}
			} else if err := writePlan(out, plan); err != nil {
				return err
			}

			if exportDir == "" {
				return nil
			}
			exportFormat, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			path, err := export.NewPlanExporter(log).Export(plan, export.ExportOptions{
				Format:    exportFormat,
				OutputDir: exportDir,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Plan written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().Float64Var(&marketCap, "market-cap", clanker.DefaultMarketCapEth, "starting market cap in ETH (default: config default_market_cap_eth)")
	cmd.Flags().StringVar(&exportDir, "export", "", "directory to write the plan file to")
	cmd.Flags().StringVar(&format, "format", string(export.FormatJSON), "export format: json, yaml or csv")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}

func readDeployConfig(path string) (*clanker.DeployConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deploy config: %w", err)
	}

	var cfg clanker.DeployConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse deploy config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	log.Debug("Deploy config loaded", zap.String("path", path), zap.String("symbol", cfg.Symbol))
	return &cfg, nil
}

func writePlan(w io.Writer, plan *clanker.LaunchPlan) error {
	c := plan.Config
	summary := export.Summarize(plan)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Token\t%s (%s)\n", c.Name, c.Symbol)
	fmt.Fprintf(tw, "Admin\t%s\n", c.TokenAdmin)
	fmt.Fprintf(tw, "Market cap\t%s ETH\n", component.FormatAmount(plan.MarketCapEth, 2))
	fmt.Fprintf(tw, "Initial price\t%s\n", component.FormatPrice(plan.InitialPrice))
	fmt.Fprintf(tw, "Fees\t%s\n", summary.FeeType)
	fmt.Fprintf(tw, "Reward recipients\t%d\n", summary.RewardRecipients)
	if summary.DevBuyEth > 0 {
		fmt.Fprintf(tw, "Dev buy\t%s ETH\n", component.FormatAmount(summary.DevBuyEth, 4))
		fmt.Fprintf(tw, "Tokens received\t%s (%s)\n",
			component.FormatAmount(plan.DevBuy.TokensReceived, 2), component.FormatPercent(summary.DevBuySupplyPct))
		fmt.Fprintf(tw, "Price impact\t%s\n", component.FormatPercent(plan.DevBuy.PriceImpact))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	return writeAllocations(w, plan.Distribution)
}
