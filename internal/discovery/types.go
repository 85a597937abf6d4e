// internal/discovery/types.go
package discovery

import (
	"errors"

	"github.com/rovshanmuradov/clanker-launchpad/internal/upstream"
)

// UpstreamError is returned when Alchemy or Moralis answer with a non-2xx
// status.
type UpstreamError = upstream.Error

var (
	ErrInvalidWallet      = errors.New("wallet must be a 20-byte hex address")
	ErrMissingCredentials = errors.New("alchemy and moralis api keys are required")
)

// Transfer is one ERC-20 transfer touching the wallet.
type Transfer struct {
	Hash     string `json:"hash"`
	From     string `json:"from"`
	To       string `json:"to"`
	Contract string `json:"contract"`
	Asset    string `json:"asset"`
	BlockNum string `json:"blockNum"`
}

// TokenMetadata is the Moralis view of an ERC-20 contract.
type TokenMetadata struct {
	Address      string `json:"address"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Decimals     int    `json:"decimals"`
	Logo         string `json:"logo,omitempty"`
	PossibleSpam bool   `json:"possibleSpam"`
	Verified     bool   `json:"verified"`
}

// DiscoveredToken is a token the wallet has interacted with.
type DiscoveredToken struct {
	Address       string `json:"address"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Decimals      int    `json:"decimals"`
	Logo          string `json:"logo,omitempty"`
	TransferCount int    `json:"transferCount"`
	Verified      bool   `json:"verified"`
}
