// internal/discovery/moralis.go
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/clanker-launchpad/internal/upstream"
)

const (
	moralisService     = "moralis"
	moralisChain       = "base"
	defaultConcurrency = 4
)

type moralisToken struct {
	Address          string      `json:"address"`
	Name             string      `json:"name"`
	Symbol           string      `json:"symbol"`
	Decimals         json.Number `json:"decimals"`
	Logo             *string     `json:"logo"`
	Thumbnail        *string     `json:"thumbnail"`
	PossibleSpam     bool        `json:"possible_spam"`
	VerifiedContract bool        `json:"verified_contract"`
}

// MoralisClient fetches ERC-20 metadata in paced batches.
type MoralisClient struct {
	baseURL     string
	apiKey      string
	batchSize   int
	concurrency int
	limiter     ratelimit.Limiter
	http        *upstream.Client
	logger      *zap.Logger
}

// NewMoralisClient starts at most one batch request per batchDelay.
func NewMoralisClient(baseURL, apiKey string, batchSize int, batchDelay time.Duration, httpClient *upstream.Client, logger *zap.Logger) *MoralisClient {
	if batchSize <= 0 {
		batchSize = 25
	}
	limiter := ratelimit.NewUnlimited()
	if batchDelay > 0 {
		limiter = ratelimit.New(1, ratelimit.Per(batchDelay), ratelimit.WithoutSlack)
	}
	return &MoralisClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		batchSize:   batchSize,
		concurrency: defaultConcurrency,
		limiter:     limiter,
		http:        httpClient,
		logger:      logger.Named("moralis"),
	}
}

// TokenMetadata returns metadata for addrs in input order. Addresses
// Moralis does not know are omitted.
func (m *MoralisClient) TokenMetadata(ctx context.Context, addrs []string) ([]TokenMetadata, error) {
	if len(addrs) == 0 {
		return nil, nil
	}

	batches := chunk(addrs, m.batchSize)
	results := make([][]moralisToken, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			m.limiter.Take()
			if err := gctx.Err(); err != nil {
				return err
			}
			tokens, err := m.fetchBatch(gctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			results[i] = tokens
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byAddress := make(map[string]moralisToken, len(addrs))
	for _, batch := range results {
		for _, t := range batch {
			byAddress[strings.ToLower(t.Address)] = t
		}
	}

	out := make([]TokenMetadata, 0, len(addrs))
	for _, addr := range addrs {
		t, ok := byAddress[strings.ToLower(addr)]
		if !ok {
			continue
		}
		out = append(out, t.toMetadata())
	}

	m.logger.Debug("Metadata fetched",
		zap.Int("requested", len(addrs)),
		zap.Int("found", len(out)),
		zap.Int("batches", len(batches)))
	return out, nil
}

func (m *MoralisClient) fetchBatch(ctx context.Context, batch []string) ([]moralisToken, error) {
	query := url.Values{}
	query.Set("chain", moralisChain)
	for i, addr := range batch {
		query.Set(fmt.Sprintf("addresses[%d]", i), addr)
	}
	endpoint := m.baseURL + "/erc20/metadata?" + query.Encode()

	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-API-Key", m.apiKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	var tokens []moralisToken
	if err := m.http.DoJSON(ctx, moralisService, build, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (t moralisToken) toMetadata() TokenMetadata {
	decimals, err := t.Decimals.Int64()
	if err != nil {
		decimals = 18
	}
	logo := ""
	switch {
	case t.Logo != nil:
		logo = *t.Logo
	case t.Thumbnail != nil:
		logo = *t.Thumbnail
	}
	return TokenMetadata{
		Address:      strings.ToLower(t.Address),
		Name:         t.Name,
		Symbol:       t.Symbol,
		Decimals:     int(decimals),
		Logo:         logo,
		PossibleSpam: t.PossibleSpam,
		Verified:     t.VerifiedContract,
	}
}

func chunk(items []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
