// internal/httpapi/handlers.go
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/clanker-launchpad/internal/dex/clanker"
)

const (
	uploadField      = "file"
	healthRPCTimeout = 3 * time.Second
)

type devBuyRequest struct {
	EthAmount    float64 `json:"ethAmount"`
	MarketCapEth float64 `json:"marketCapEth"`
	TotalSupply  float64 `json:"totalSupply"`
}

type quickEstimateResponse struct {
	Estimate *clanker.DevBuyEstimate `json:"estimate"`
}

type distributionRequest struct {
	Vault       clanker.ExtensionSetting `json:"vault"`
	Airdrop     clanker.ExtensionSetting `json:"airdrop"`
	TotalSupply float64                  `json:"totalSupply"`
}

type distributionResponse struct {
	TotalSupply float64              `json:"totalSupply"`
	Allocations []clanker.Allocation `json:"allocations"`
}

type deployConfigRequest struct {
	clanker.DeployConfig
	MarketCapEth float64 `json:"marketCapEth"`
}

type deployConfigResponse struct {
	Config *clanker.DeployConfig `json:"config"`
	Plan   *clanker.LaunchPlan   `json:"plan"`
}

type tokensResponse struct {
	Wallet string      `json:"wallet"`
	Tokens interface{} `json:"tokens"`
}

func requestIDField(r *http.Request) zap.Field {
	return zap.String("request_id", RequestID(r.Context()))
}

func supplyOrDefault(v float64) float64 {
	if v <= 0 {
		return clanker.DefaultTotalSupply
	}
	return v
}

type healthResponse struct {
	Status    string `json:"status"`
	Time      string `json:"time"`
	Fees      bool   `json:"fees"`
	Uploads   bool   `json:"uploads"`
	Discovery bool   `json:"discovery"`
	Block     uint64 `json:"block,omitempty"`
	RPCError  string `json:"rpcError,omitempty"`
}

// healthz reports which backends are configured and, with an RPC
// endpoint, the latest Base block. An unreachable endpoint degrades the
// status but still answers 200.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fees:      s.deps.Fees != nil,
		Uploads:   s.deps.Uploader != nil,
		Discovery: s.deps.Tokens != nil,
	}
	if s.deps.Chain != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthRPCTimeout)
		defer cancel()
		block, err := s.deps.Chain.BlockNumber(ctx)
		if err != nil {
			s.logger.Warn("Health check RPC failed", requestIDField(r), zap.Error(err))
			resp.Status = "degraded"
			resp.RPCError = err.Error()
		} else {
			resp.Block = block
		}
	}
	s.respond(w, r, http.StatusOK, resp)
}

// handleDevBuy answers 200 even for invalid numbers; the all-zero result
// is the signal.
func (s *Server) handleDevBuy(w http.ResponseWriter, r *http.Request) {
	var req devBuyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := clanker.CalculateDevBuyTokens(req.EthAmount, req.MarketCapEth, req.TotalSupply)
	if !result.IsFinite() {
		s.writeDomainError(w, r, nonFinite(req))
		return
	}
	s.deps.Metrics.RecordEstimate("dev_buy")
	s.respond(w, r, http.StatusOK, result)
}

func (s *Server) handleQuickEstimate(w http.ResponseWriter, r *http.Request) {
	var req devBuyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	estimate := clanker.CalculateDevBuyEstimate(req.EthAmount, req.MarketCapEth, supplyOrDefault(req.TotalSupply))
	if !estimate.IsFinite() {
		s.writeDomainError(w, r, nonFinite(req))
		return
	}
	s.deps.Metrics.RecordEstimate("quick")
	s.respond(w, r, http.StatusOK, quickEstimateResponse{Estimate: estimate})
}

func nonFinite(req devBuyRequest) error {
	return fmt.Errorf("%w: %g ETH at market cap %g ETH", clanker.ErrNonFiniteEstimate, req.EthAmount, req.MarketCapEth)
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	var req distributionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	supply := supplyOrDefault(req.TotalSupply)
	s.deps.Metrics.RecordEstimate("distribution")
	s.respond(w, r, http.StatusOK, distributionResponse{
		TotalSupply: supply,
		Allocations: clanker.CalculateTokenDistribution(clanker.DistributionConfig{
			Vault:   req.Vault,
			Airdrop: req.Airdrop,
		}, supply),
	})
}

func (s *Server) handleDeployConfig(w http.ResponseWriter, r *http.Request) {
	var req deployConfigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := req.DeployConfig
	cfg.ApplyDefaults()

	marketCap := req.MarketCapEth
	if marketCap <= 0 {
		marketCap = s.cfg.DefaultMarketCapEth
	}
	plan, err := cfg.Plan(marketCap)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.deps.Metrics.RecordEstimate("plan")
	s.respond(w, r, http.StatusOK, deployConfigResponse{Config: &cfg, Plan: plan})
}

func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	if s.deps.Fees == nil {
		s.writeDomainError(w, r, fmt.Errorf("fee checks: %w", ErrNotConfigured))
		return
	}

	owner := r.URL.Query().Get("owner")
	token := r.URL.Query().Get("token")
	if !common.IsHexAddress(owner) || !common.IsHexAddress(token) {
		writeError(w, http.StatusBadRequest, "owner and token must be 20-byte hex addresses")
		return
	}

	report, err := s.deps.Fees.Check(r.Context(), common.HexToAddress(owner), common.HexToAddress(token))
	if err != nil {
		s.logger.Warn("Fee check failed", requestIDField(r), zap.Error(err))
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// RPC failures carry no upstream status
			status = http.StatusBadGateway
		}
		writeError(w, status, err.Error())
		return
	}
	s.respond(w, r, http.StatusOK, report)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Uploader == nil {
		s.writeDomainError(w, r, fmt.Errorf("uploads: %w", ErrNotConfigured))
		return
	}

	// multipart framing on top of the image itself
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+64<<10)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}

	result, err := s.deps.Uploader.Upload(r.Context(), header.Filename, data)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.deps.Metrics.RecordUpload(result.Size)
	s.respond(w, r, http.StatusOK, result)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tokens == nil {
		s.writeDomainError(w, r, fmt.Errorf("token discovery: %w", ErrNotConfigured))
		return
	}

	wallet := r.URL.Query().Get("wallet")
	tokens, err := s.deps.Tokens.Discover(r.Context(), wallet)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, tokensResponse{Wallet: wallet, Tokens: tokens})
}
