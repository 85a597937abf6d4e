// internal/app/runner.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/clanker-launchpad/internal/blockchain/base"
	"github.com/rovshanmuradov/clanker-launchpad/internal/config"
	"github.com/rovshanmuradov/clanker-launchpad/internal/discovery"
	"github.com/rovshanmuradov/clanker-launchpad/internal/httpapi"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ipfs"
	"github.com/rovshanmuradov/clanker-launchpad/internal/upstream"
	"github.com/rovshanmuradov/clanker-launchpad/internal/utils/metrics"
)

const shutdownTimeout = 30 * time.Second

// ErrNotConfigured is returned for a service whose credentials are missing.
// It is httpapi.ErrNotConfigured, so one errors.Is check covers both packages.
var ErrNotConfigured = httpapi.ErrNotConfigured

// Runner builds the launchpad services from config and owns their
// lifecycle.
type Runner struct {
	logger   *zap.Logger
	config   *config.Config
	metrics  *metrics.Collector
	upstream *upstream.Client
	shutdown *ShutdownHandler
	dial     base.DialFunc

	baseClient *base.Client
	fees       *base.FeeChecker
	uploader   *ipfs.PinataClient
	tokens     *discovery.Service
}

// NewRunner accepts cfg and logger
func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	collector := metrics.NewCollector()
	return &Runner{
		logger:   logger,
		config:   cfg,
		metrics:  collector,
		upstream: upstream.New(upstream.NewHTTPClient(cfg.RequestTimeout()), cfg.Retries, logger, collector),
		shutdown: NewShutdownHandler(logger, shutdownTimeout),
	}
}

// WithDialer replaces the Base RPC connection factory.
func (r *Runner) WithDialer(dial base.DialFunc) *Runner {
	r.dial = dial
	return r
}

// Initialize creates every service the config has credentials for. A
// configured RPC endpoint that cannot be reached is an error.
func (r *Runner) Initialize(ctx context.Context) error {
	cfg := r.config

	if cfg.HasRPC() {
		var (
			client *base.Client
			err    error
		)
		if r.dial != nil {
			client, err = base.DialWith(ctx, r.dial, cfg.BaseRPCURL, cfg.Retries, r.logger)
		} else {
			client, err = base.Dial(ctx, cfg.BaseRPCURL, cfg.Retries, r.logger)
		}
		if err != nil {
			return fmt.Errorf("connect base rpc: %w", err)
		}
		r.baseClient = client
		r.fees = base.NewFeeChecker(
			common.HexToAddress(cfg.FeeLockerAddress),
			common.HexToAddress(cfg.WETHAddress),
			client, r.logger)
		r.shutdown.AddFunc("base-rpc", func() error {
			client.Close()
			return nil
		})
	} else {
		r.logger.Warn("base_rpc_url not set, fee checks disabled")
	}

	if cfg.HasPinata() {
		r.uploader = ipfs.NewPinataClient(cfg.PinataURL, cfg.PinataGateway, cfg.PinataJWT,
			cfg.MaxUploadBytes, r.upstream, r.logger)
	} else {
		r.logger.Warn("pinata_jwt not set, image uploads disabled")
	}

	if cfg.HasDiscovery() {
		alchemy := discovery.NewAlchemyClient(cfg.AlchemyURL, cfg.AlchemyAPIKey, cfg.MaxTransferPages, r.upstream, r.logger)
		moralis := discovery.NewMoralisClient(cfg.MoralisURL, cfg.MoralisAPIKey, cfg.MoralisBatchSize,
			cfg.MoralisBatchDelay(), r.upstream, r.logger)
		r.tokens = discovery.NewService(alchemy, moralis, r.logger)
	} else {
		r.logger.Warn("alchemy_api_key or moralis_api_key not set, token discovery disabled")
	}

	r.logger.Info("Services initialized",
		zap.Bool("fees", r.fees != nil),
		zap.Bool("uploads", r.uploader != nil),
		zap.Bool("discovery", r.tokens != nil))
	return nil
}

// FeeChecker returns the fee checker or ErrNotConfigured.
func (r *Runner) FeeChecker() (*base.FeeChecker, error) {
	if r.fees == nil {
		return nil, fmt.Errorf("fee checks: %w (set base_rpc_url)", ErrNotConfigured)
	}
	return r.fees, nil
}

// Discovery returns the token discovery service or ErrNotConfigured.
func (r *Runner) Discovery() (*discovery.Service, error) {
	if r.tokens == nil {
		return nil, fmt.Errorf("token discovery: %w (set alchemy_api_key and moralis_api_key)", ErrNotConfigured)
	}
	return r.tokens, nil
}

// Uploader returns the Pinata client or ErrNotConfigured.
func (r *Runner) Uploader() (*ipfs.PinataClient, error) {
	if r.uploader == nil {
		return nil, fmt.Errorf("image upload: %w (set pinata_jwt)", ErrNotConfigured)
	}
	return r.uploader, nil
}

// Metrics returns the collector shared by all services.
func (r *Runner) Metrics() *metrics.Collector {
	return r.metrics
}

// Server builds the HTTP API over the initialized services. Missing
// services stay nil so their routes answer 503.
func (r *Runner) Server() *httpapi.Server {
	cfg := r.config
	deps := httpapi.Deps{Metrics: r.metrics}
	if r.fees != nil {
		deps.Fees = r.fees
	}
	if r.baseClient != nil {
		deps.Chain = r.baseClient
	}
	if r.uploader != nil {
		deps.Uploader = r.uploader
	}
	if r.tokens != nil {
		deps.Tokens = r.tokens
	}

	return httpapi.New(httpapi.Config{
		ListenAddr:          cfg.ListenAddr,
		AllowedOrigins:      cfg.AllowedOrigins,
		RatePerMin:          cfg.RatePerMin,
		Burst:               cfg.RateBurst,
		MaxUploadBytes:      cfg.MaxUploadBytes,
		DefaultMarketCapEth: cfg.DefaultMarketCapEth,
		RequestTimeout:      cfg.RequestTimeout(),
		TrustProxy:          cfg.TrustProxy,
	}, deps, r.logger)
}

// Run serves the HTTP API until ctx is cancelled, then closes all services.
func (r *Runner) Run(ctx context.Context) error {
	err := r.Server().Run(ctx)
	r.Shutdown()
	return err
}

// Shutdown closes the registered services.
func (r *Runner) Shutdown() {
	r.logger.Info("Launchpad shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := r.shutdown.Shutdown(ctx); err != nil {
		r.logger.Error("Shutdown completed with errors", zap.Error(err))
	}
}
