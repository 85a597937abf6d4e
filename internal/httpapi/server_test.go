package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/clanker-launchpad/internal/blockchain/base"
	"github.com/rovshanmuradov/clanker-launchpad/internal/dex/clanker"
	"github.com/rovshanmuradov/clanker-launchpad/internal/discovery"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ipfs"
	"github.com/rovshanmuradov/clanker-launchpad/internal/utils/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

const (
	testAdmin = "0x1234567890123456789012345678901234567890"
	testToken = "0x1111111111111111111111111111111111111111"
)

type stubFees struct {
	report *base.FeeReport
	err    error
}

func (s stubFees) Check(_ context.Context, owner, token common.Address) (*base.FeeReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.report
	r.Owner, r.Token = owner.Hex(), token.Hex()
	return &r, nil
}

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, filename string, data []byte) (*ipfs.PinResult, error) {
	format, err := ipfs.ValidateImage(data, 0)
	if err != nil {
		return nil, err
	}
	return &ipfs.PinResult{CID: "bafytest", URI: "ipfs://bafytest", GatewayURL: "https://gw/ipfs/bafytest", Size: int64(len(data)), Format: format}, nil
}

type stubTokens struct {
	tokens []discovery.DiscoveredToken
	err    error
}

func (s stubTokens) Discover(_ context.Context, wallet string) ([]discovery.DiscoveredToken, error) {
	if !common.IsHexAddress(wallet) {
		return nil, discovery.ErrInvalidWallet
	}
	return s.tokens, s.err
}

func newTestServer(t *testing.T, cfg Config, deps Deps) *Server {
	if cfg.DefaultMarketCapEth == 0 {
		cfg.DefaultMarketCapEth = clanker.DefaultMarketCapEth
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"https://launchpad.example"}
	}
	return New(cfg, deps, zaptest.NewLogger(t))
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "203.0.113.7:4242"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{Fees: stubFees{}}).Handler()
	rec := do(t, h, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["fees"])
	assert.Equal(t, false, body["uploads"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

type stubChain struct {
	block uint64
	err   error
}

func (s stubChain) BlockNumber(context.Context) (uint64, error) { return s.block, s.err }

func TestHealthzReportsChainHead(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{Chain: stubChain{block: 21_000_000}}).Handler()
	body := decode[healthResponse](t, do(t, h, http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, uint64(21_000_000), body.Block)
	assert.Empty(t, body.RPCError)

	h = newTestServer(t, Config{}, Deps{Chain: stubChain{err: errors.New("dial tcp: connection refused")}}).Handler()
	rec := do(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[healthResponse](t, rec)
	assert.Equal(t, "degraded", body.Status)
	assert.Zero(t, body.Block)
	assert.Contains(t, body.RPCError, "connection refused")
}

func TestDevBuyEndpoint(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{}).Handler()

	rec := do(t, h, http.MethodPost, "/api/estimate/dev-buy", map[string]float64{"ethAmount": 0.1, "marketCapEth": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[clanker.DevBuyResult](t, rec)
	assert.Equal(t, clanker.CalculateDevBuyTokens(0.1, 10, clanker.DefaultTotalSupply), got)

	rec = do(t, h, http.MethodPost, "/api/estimate/dev-buy", map[string]float64{"ethAmount": -1, "marketCapEth": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[clanker.DevBuyResult](t, rec).IsZero())

	rec = do(t, h, http.MethodPost, "/api/estimate/dev-buy", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "invalid JSON")

	rec = do(t, h, http.MethodGet, "/api/estimate/dev-buy", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestQuickEstimateEndpoint(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{}).Handler()

	rec := do(t, h, http.MethodPost, "/api/estimate/quick", map[string]float64{"ethAmount": 1, "marketCapEth": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[quickEstimateResponse](t, rec)
	require.NotNil(t, got.Estimate)
	assert.InDelta(t, 1e10, got.Estimate.EstimatedTokens, 1e-3)
	assert.InDelta(t, 10.0, got.Estimate.PriceImpact, 1e-12)

	rec = do(t, h, http.MethodPost, "/api/estimate/quick", map[string]float64{"ethAmount": 0, "marketCapEth": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"estimate":null}`, rec.Body.String())
}

func TestEstimateEndpointsRejectNonFinite(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{}).Handler()

	huge := clanker.NewDeployConfig("Meme", "MEME", testAdmin)
	huge.DevBuy = &clanker.DevBuyConfig{EthAmount: 1e300}

	tests := []struct {
		name   string
		target string
		body   interface{}
	}{
		{"dev buy overflows price", "/api/estimate/dev-buy", map[string]float64{"ethAmount": 1e300, "marketCapEth": 1}},
		{"dev buy underflows initial price", "/api/estimate/dev-buy", map[string]float64{"ethAmount": 1, "marketCapEth": 1e-320}},
		{"quick estimate overflows", "/api/estimate/quick", map[string]float64{"ethAmount": 1e300, "marketCapEth": 1e-300}},
		{"deploy config dev buy overflows", "/api/deploy-config", deployConfigRequest{DeployConfig: *huge, MarketCapEth: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.target, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Contains(t, decode[errorResponse](t, rec).Error, "not a finite number")
		})
	}
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	err := writeJSON(rec, http.StatusOK, clanker.DevBuyResult{PriceImpact: math.Inf(1)})

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"response encoding failed"}`, rec.Body.String())
}

func TestDistributionEndpoint(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{}).Handler()

	rec := do(t, h, http.MethodPost, "/api/distribution", map[string]interface{}{
		"vault":   map[string]interface{}{"enabled": true, "percentage": 20},
		"airdrop": map[string]interface{}{"enabled": true, "percentage": 10},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[distributionResponse](t, rec)

	assert.Equal(t, float64(clanker.DefaultTotalSupply), got.TotalSupply)
	require.Len(t, got.Allocations, 3)
	assert.Equal(t, clanker.AllocationVault, got.Allocations[0].Name)
	assert.Equal(t, 2e10, got.Allocations[0].Amount)
	assert.Equal(t, clanker.AllocationLiquidityPool, got.Allocations[2].Name)
	assert.InDelta(t, 70.0, got.Allocations[2].Percentage, 1e-9)
}

func TestDeployConfigEndpoint(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{}).Handler()

	valid := clanker.NewDeployConfig("Meme", "MEME", testAdmin)
	valid.DevBuy = &clanker.DevBuyConfig{EthAmount: 0.1}
	rec := do(t, h, http.MethodPost, "/api/deploy-config", valid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[deployConfigResponse](t, rec)
	require.NotNil(t, got.Plan)
	assert.Equal(t, clanker.DefaultMarketCapEth, got.Plan.MarketCapEth)
	assert.InDelta(t, 990099009.9, got.Plan.DevBuy.TokensReceived, 1e-3)
	assert.Equal(t, "MEME", got.Config.Symbol)

	rec = do(t, h, http.MethodPost, "/api/deploy-config", map[string]interface{}{
		"name":       "",
		"symbol":     "MEME",
		"tokenAdmin": "nope",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[errorResponse](t, rec)
	var fields []string
	for _, f := range resp.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "tokenAdmin")
}

func TestFeesEndpoint(t *testing.T) {
	report := &base.FeeReport{TokenSymbol: "MEME", TokenDecimals: 18, WethWei: "1", TokenWei: "0", WethFormatted: "0.000000000000000001", TokenFormatted: "0"}
	h := newTestServer(t, Config{}, Deps{Fees: stubFees{report: report}}).Handler()

	rec := do(t, h, http.MethodGet, "/api/fees?owner="+testAdmin+"&token="+testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[base.FeeReport](t, rec)
	assert.Equal(t, "MEME", got.TokenSymbol)
	assert.Equal(t, common.HexToAddress(testToken).Hex(), got.Token)

	rec = do(t, h, http.MethodGet, "/api/fees?owner=bad&token="+testToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	failing := newTestServer(t, Config{}, Deps{Fees: stubFees{err: errors.New("rpc down")}}).Handler()
	rec = do(t, failing, http.MethodGet, "/api/fees?owner="+testAdmin+"&token="+testToken, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	unconfigured := newTestServer(t, Config{}, Deps{}).Handler()
	rec = do(t, unconfigured, http.MethodGet, "/api/fees?owner="+testAdmin+"&token="+testToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func upload(t *testing.T, h http.Handler, field string, data []byte) *httptest.ResponseRecorder {
	body, contentType := multipartBody(t, field, "logo.png", data)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUploadEndpoint(t *testing.T) {
	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	h := newTestServer(t, Config{MaxUploadBytes: 1024}, Deps{Uploader: stubUploader{}}).Handler()

	rec := upload(t, h, "file", png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ipfs://bafytest", decode[ipfs.PinResult](t, rec).URI)

	rec = upload(t, h, "file", []byte("GIF-not-really"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = upload(t, h, "file", append(png, make([]byte, 2048)...))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = upload(t, h, "image", png)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unconfigured := newTestServer(t, Config{}, Deps{}).Handler()
	rec = upload(t, unconfigured, "file", png)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTokensEndpoint(t *testing.T) {
	tokens := []discovery.DiscoveredToken{{Address: testToken, Symbol: "MEME", Decimals: 18, TransferCount: 2}}
	h := newTestServer(t, Config{}, Deps{Tokens: stubTokens{tokens: tokens}}).Handler()

	rec := do(t, h, http.MethodGet, "/api/tokens?wallet="+testAdmin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"symbol":"MEME"`)

	rec = do(t, h, http.MethodGet, "/api/tokens?wallet=xyz", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	failing := newTestServer(t, Config{}, Deps{Tokens: stubTokens{err: &discovery.UpstreamError{Service: "moralis", StatusCode: 500}}}).Handler()
	rec = do(t, failing, http.MethodGet, "/api/tokens?wallet="+testAdmin, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/estimate/dev-buy", nil)
	req.Header.Set("Origin", "https://launchpad.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://launchpad.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	collector := metrics.NewCollector()
	h := newTestServer(t, Config{RatePerMin: 60, Burst: 2}, Deps{Metrics: collector}).Handler()

	body := map[string]float64{"ethAmount": 1, "marketCapEth": 10}
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/estimate/quick", body).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/estimate/quick", body).Code)

	rec := do(t, h, http.MethodPost, "/api/estimate/quick", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// health checks are not limited
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", nil).Code)

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `clanker_launchpad_http_requests_total{method="POST",route="/api/estimate/quick",status="429"} 1`)
	assert.Contains(t, rec.Body.String(), "clanker_launchpad_rate_limited_total 1")
}

func TestRecoverer(t *testing.T) {
	s := newTestServer(t, Config{}, Deps{})
	s.mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := do(t, s.Handler(), http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestIPLimiterSweep(t *testing.T) {
	l := newIPLimiter(60, 1)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	ok, _ := l.allow("a")
	assert.True(t, ok)
	ok, retry := l.allow("a")
	assert.False(t, ok)
	assert.Equal(t, "1", retry)

	now = now.Add(2 * time.Second)
	ok, _ = l.allow("b")
	assert.True(t, ok)
	ok, _ = l.allow("a")
	assert.True(t, ok)

	now = now.Add(time.Hour)
	l.sweep(time.Minute)
	assert.Zero(t, l.size())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	assert.Equal(t, "198.51.100.1", clientIP(req, false))
	assert.Equal(t, "198.51.100.1", clientIP(req, true))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "198.51.100.1", clientIP(req, false))
	assert.Equal(t, "203.0.113.9", clientIP(req, true))
}

func TestRateLimitIgnoresForwardedForByDefault(t *testing.T) {
	s := newTestServer(t, Config{RatePerMin: 60, Burst: 1}, Deps{})
	body := map[string]float64{"ethAmount": 1, "marketCapEth": 10}

	post := func(forwarded string) int {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/estimate/quick", bytes.NewReader(raw))
		req.RemoteAddr = "203.0.113.7:4242"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("198.51.100.2"))
	assert.Equal(t, 1, s.limiter.size())

	s = newTestServer(t, Config{RatePerMin: 60, Burst: 1, TrustProxy: true}, Deps{})
	assert.Equal(t, http.StatusOK, post("198.51.100.1"))
	assert.Equal(t, http.StatusOK, post("198.51.100.2"))
	assert.Equal(t, 2, s.limiter.size())
}

func TestServeGracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s := newTestServer(t, Config{}, Deps{})
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Timeout: 2 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
