package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/clanker-launchpad/internal/app"
	"github.com/rovshanmuradov/clanker-launchpad/internal/config"
	"github.com/rovshanmuradov/clanker-launchpad/internal/logger"
)

var (
	configPath string
	debug      bool

	// log is the CLI logger; serve and wizard replace it with their own.
	log *zap.Logger = zap.NewNop()
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "launchpad",
		Short:         "Plan, check and serve Clanker token launches on Base",
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			log = logger.CreatePrettyLogger(debug)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (json, yaml or toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(estimateCmd())
	rootCmd.AddCommand(distributionCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(feesCmd())
	rootCmd.AddCommand(tokensCmd())
	rootCmd.AddCommand(wizardCmd())

	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if debug {
		cfg.DebugLogging = true
	}
	return cfg, nil
}

// marketCapOrDefault returns --market-cap when the user set it and the
// configured default_market_cap_eth otherwise.
func marketCapOrDefault(cmd *cobra.Command, flagValue float64) (float64, error) {
	if cmd.Flags().Changed("market-cap") {
		return flagValue, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return 0, err
	}
	return cfg.DefaultMarketCapEth, nil
}

// initRunner loads config and initializes every service it has
// credentials for.
func initRunner(ctx context.Context) (*app.Runner, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	runner := app.NewRunner(cfg, log)
	if err := runner.Initialize(ctx); err != nil {
		return nil, err
	}
	return runner, nil
}
