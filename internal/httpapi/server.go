// internal/httpapi/server.go
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/clanker-launchpad/internal/blockchain/base"
	"github.com/rovshanmuradov/clanker-launchpad/internal/discovery"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ipfs"
	"github.com/rovshanmuradov/clanker-launchpad/internal/utils/metrics"
)

const shutdownTimeout = 10 * time.Second

// FeeChecker reads claimable fees for a token.
type FeeChecker interface {
	Check(ctx context.Context, owner, token common.Address) (*base.FeeReport, error)
}

// Uploader pins token images.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (*ipfs.PinResult, error)
}

// BlockReader reports the chain head. *base.Client satisfies it.
type BlockReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// TokenDiscoverer lists the tokens a wallet has interacted with.
type TokenDiscoverer interface {
	Discover(ctx context.Context, wallet string) ([]discovery.DiscoveredToken, error)
}

type Config struct {
	ListenAddr          string
	AllowedOrigins      []string
	RatePerMin          int
	Burst               int
	MaxUploadBytes      int64
	DefaultMarketCapEth float64
	RequestTimeout      time.Duration
	// TrustProxy keys the rate limiter on X-Forwarded-For. Enable only
	// behind a proxy that overwrites the header.
	TrustProxy bool
}

// Deps are the optional backends. A nil backend makes its routes answer 503.
type Deps struct {
	Fees     FeeChecker
	Uploader Uploader
	Tokens   TokenDiscoverer
	Chain    BlockReader
	Metrics  *metrics.Collector
}

type Server struct {
	cfg     Config
	deps    Deps
	mux     *http.ServeMux
	limiter *ipLimiter
	logger  *zap.Logger
	handler http.Handler
}

func New(cfg Config, deps Deps, logger *zap.Logger) *Server {
	if cfg.RatePerMin <= 0 {
		cfg.RatePerMin = 120
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 30
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 << 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		mux:     http.NewServeMux(),
		limiter: newIPLimiter(cfg.RatePerMin, cfg.Burst),
		logger:  logger.Named("httpapi"),
	}

	s.mux.HandleFunc("GET /healthz", s.healthz)
	s.mux.HandleFunc("POST /api/estimate/dev-buy", s.wrap(s.handleDevBuy))
	s.mux.HandleFunc("POST /api/estimate/quick", s.wrap(s.handleQuickEstimate))
	s.mux.HandleFunc("POST /api/distribution", s.wrap(s.handleDistribution))
	s.mux.HandleFunc("POST /api/deploy-config", s.wrap(s.handleDeployConfig))
	s.mux.HandleFunc("GET /api/fees", s.wrap(s.handleFees))
	s.mux.HandleFunc("POST /api/upload", s.wrap(s.handleUpload))
	s.mux.HandleFunc("GET /api/tokens", s.wrap(s.handleTokens))
	if deps.Metrics != nil {
		s.mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	s.handler = chain(s.mux,
		s.requestID,
		s.recoverer,
		s.accessLog,
		s.instrument,
		s.cors,
	)
	return s
}

// Handler returns the full middleware stack.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves on cfg.ListenAddr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				s.limiter.sweep(10 * time.Minute)
			}
		}
	})

	err := g.Wait()
	s.logger.Info("Server stopped")
	return err
}

// wrap applies the per-client limiter and the request timeout to API routes.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ok, retryAfter := s.limiter.allow(clientIP(r, s.cfg.TrustProxy)); !ok {
			s.deps.Metrics.RecordRateLimited()
			w.Header().Set("Retry-After", retryAfter)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		w.Header().Set("Cache-Control", "no-store")
		next(w, r.WithContext(ctx))
	}
}
