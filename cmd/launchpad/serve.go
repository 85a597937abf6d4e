package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/clanker-launchpad/internal/app"
	"github.com/rovshanmuradov/clanker-launchpad/internal/logger"
)

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the launchpad HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}

			appLogger, err := logger.New(&logger.Config{
				LogFile:     cfg.LogFile,
				MaxSize:     100,
				MaxAge:      7,
				MaxBackups:  3,
				Compress:    true,
				Development: cfg.DebugLogging,
				Console:     true,
				Pretty:      true,
			})
			if err != nil {
				return err
			}
			defer func() {
				_ = appLogger.Sync()
			}()
			log = appLogger.WithComponent("launchpad")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("Starting launchpad API", zap.String("listen", cfg.ListenAddr))

			runner := app.NewRunner(cfg, log)
			endInit := appLogger.TrackPerformance("initialize")
			err = runner.Initialize(ctx)
			endInit()
			if err != nil {
				appLogger.LogError("Failed to initialize services", err, zap.Bool("rpc", cfg.HasRPC()))
				runner.Shutdown()
				return err
			}
			return runner.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address, overrides listen_addr")
	return cmd
}

