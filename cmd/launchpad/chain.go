package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func feesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fees [owner] [token]",
		Short: "Show claimable creator fees in the Clanker fee locker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, token := args[0], args[1]
			if !common.IsHexAddress(owner) || !common.IsHexAddress(token) {
				return fmt.Errorf("owner and token must be 20-byte hex addresses")
			}

			runner, err := initRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Shutdown()

			checker, err := runner.FeeChecker()
			if err != nil {
				return err
			}
			report, err := checker.Check(cmd.Context(), common.HexToAddress(owner), common.HexToAddress(token))
			if err != nil {
				log.Error("Fee check failed", zap.String("token", token), zap.Error(err))
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, report)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "WETH\t%s\n", report.WethFormatted)
			fmt.Fprintf(tw, "%s\t%s\n", report.TokenSymbol, report.TokenFormatted)
			if err := tw.Flush(); err != nil {
				return err
			}
			if !report.HasFees() {
				fmt.Fprintln(out, "Nothing to claim")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func tokensCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tokens [wallet]",
		Short: "List tokens a wallet has transferred on Base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := initRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Shutdown()

			svc, err := runner.Discovery()
			if err != nil {
				return err
			}
			tokens, err := svc.Discover(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, tokens)
			}
			if len(tokens) == 0 {
				fmt.Fprintln(out, "No tokens found")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SYMBOL\tNAME\tADDRESS\tTRANSFERS\tVERIFIED")
			for _, t := range tokens {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\n", t.Symbol, t.Name, t.Address, t.TransferCount, t.Verified)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
