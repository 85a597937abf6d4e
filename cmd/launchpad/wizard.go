package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/clanker-launchpad/internal/export"
	"github.com/rovshanmuradov/clanker-launchpad/internal/logger"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/screen"
)

const activityBufferSize = 1000

func wizardCmd() *cobra.Command {
	var (
		outputDir string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Build a launch plan interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			exportFormat, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			// the terminal belongs to the TUI, logs go to the activity screen
			buffer := logger.NewActivityBuffer(activityBufferSize)
			tuiLogger, err := logger.CreateTUILogger(cfg.DebugLogging, buffer)
			if err != nil {
				return err
			}
			defer func() {
				_ = tuiLogger.Sync()
			}()

			status := fmt.Sprintf("Market cap %.2f ETH · plans saved to %s as %s", cfg.DefaultMarketCapEth, outputDir, exportFormat)
			model := screen.NewApp(screen.AppOptions{
				Exporter: export.NewPlanExporter(tuiLogger),
				Wizard: screen.WizardOptions{
					MarketCapEth: cfg.DefaultMarketCapEth,
					OutputDir:    outputDir,
					Format:       exportFormat,
				},
				Activity: buffer,
				Logger:   tuiLogger,
				Status:   status,
			})

			tuiLogger.Info("Wizard started", zap.String("output_dir", outputDir))

			program := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := program.Run(); err != nil {
				log.Error("TUI application failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "out", "o", "plans", "directory saved plans are written to")
	cmd.Flags().StringVar(&format, "format", string(export.FormatJSON), "plan format: json, yaml or csv")
	return cmd
}
