// internal/discovery/alchemy.go
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rovshanmuradov/clanker-launchpad/internal/upstream"
	"go.uber.org/zap"
)

const (
	alchemyService  = "alchemy"
	alchemyMaxCount = "0x3e8"
)

type assetTransfersParams struct {
	FromBlock        string   `json:"fromBlock"`
	ToBlock          string   `json:"toBlock"`
	FromAddress      string   `json:"fromAddress,omitempty"`
	ToAddress        string   `json:"toAddress,omitempty"`
	Category         []string `json:"category"`
	ExcludeZeroValue bool     `json:"excludeZeroValue"`
	WithMetadata     bool     `json:"withMetadata"`
	MaxCount         string   `json:"maxCount"`
	PageKey          string   `json:"pageKey,omitempty"`
}

type rpcRequest struct {
	ID      int           `json:"id"`
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type assetTransfersResponse struct {
	Result *struct {
		Transfers []struct {
			BlockNum    string `json:"blockNum"`
			Hash        string `json:"hash"`
			From        string `json:"from"`
			To          string `json:"to"`
			Asset       string `json:"asset"`
			RawContract struct {
				Address string `json:"address"`
			} `json:"rawContract"`
		} `json:"transfers"`
		PageKey string `json:"pageKey"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

// AlchemyClient lists ERC-20 transfers through the Alchemy transfers API.
type AlchemyClient struct {
	baseURL  string
	apiKey   string
	maxPages int
	http     *upstream.Client
	logger   *zap.Logger
}

func NewAlchemyClient(baseURL, apiKey string, maxPages int, httpClient *upstream.Client, logger *zap.Logger) *AlchemyClient {
	if maxPages <= 0 {
		maxPages = 1
	}
	return &AlchemyClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		maxPages: maxPages,
		http:     httpClient,
		logger:   logger.Named("alchemy"),
	}
}

// ERC20Transfers returns transfers received by wallet followed by
// transfers sent from it. Each direction reads at most maxPages pages.
func (a *AlchemyClient) ERC20Transfers(ctx context.Context, wallet string) ([]Transfer, error) {
	incoming, err := a.transfers(ctx, assetTransfersParams{ToAddress: wallet})
	if err != nil {
		return nil, fmt.Errorf("incoming transfers: %w", err)
	}
	outgoing, err := a.transfers(ctx, assetTransfersParams{FromAddress: wallet})
	if err != nil {
		return nil, fmt.Errorf("outgoing transfers: %w", err)
	}
	return append(incoming, outgoing...), nil
}

func (a *AlchemyClient) transfers(ctx context.Context, params assetTransfersParams) ([]Transfer, error) {
	params.FromBlock = "0x0"
	params.ToBlock = "latest"
	params.Category = []string{"erc20"}
	params.ExcludeZeroValue = true
	params.MaxCount = alchemyMaxCount

	var out []Transfer
	for page := 0; page < a.maxPages; page++ {
		payload, err := json.Marshal(rpcRequest{
			ID:      page + 1,
			JSONRPC: "2.0",
			Method:  "alchemy_getAssetTransfers",
			Params:  []interface{}{params},
		})
		if err != nil {
			return nil, err
		}

		build := func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/"+a.apiKey, bytes.NewReader(payload))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json")
			return req, nil
		}

		var resp assetTransfersResponse
		if err := a.http.DoJSON(ctx, alchemyService, build, &resp); err != nil {
			return nil, err
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("alchemy rpc error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		if resp.Result == nil {
			return nil, fmt.Errorf("alchemy: empty result")
		}

		for _, t := range resp.Result.Transfers {
			if t.RawContract.Address == "" {
				continue
			}
			out = append(out, Transfer{
				Hash:     t.Hash,
				From:     t.From,
				To:       t.To,
				Contract: strings.ToLower(t.RawContract.Address),
				Asset:    t.Asset,
				BlockNum: t.BlockNum,
			})
		}

		a.logger.Debug("Transfers page fetched",
			zap.Int("page", page+1),
			zap.Int("count", len(resp.Result.Transfers)),
			zap.Bool("more", resp.Result.PageKey != ""))

		if resp.Result.PageKey == "" {
			return out, nil
		}
		params.PageKey = resp.Result.PageKey
	}

	a.logger.Warn("Transfer history truncated", zap.Int("max_pages", a.maxPages))
	return out, nil
}
