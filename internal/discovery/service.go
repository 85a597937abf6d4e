// internal/discovery/service.go
package discovery

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// TransferSource lists ERC-20 transfers for a wallet.
type TransferSource interface {
	ERC20Transfers(ctx context.Context, wallet string) ([]Transfer, error)
}

// MetadataSource resolves token metadata for contract addresses.
type MetadataSource interface {
	TokenMetadata(ctx context.Context, addrs []string) ([]TokenMetadata, error)
}

// Service finds the tokens a wallet has traded or received.
type Service struct {
	transfers   TransferSource
	metadata    MetadataSource
	includeSpam bool
	logger      *zap.Logger
}

type Option func(*Service)

// IncludeSpam keeps tokens Moralis flags as possible spam.
func IncludeSpam() Option {
	return func(s *Service) { s.includeSpam = true }
}

func NewService(transfers TransferSource, metadata MetadataSource, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		transfers: transfers,
		metadata:  metadata,
		logger:    logger.Named("discovery"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover returns the wallet's tokens ordered by first appearance in its
// transfer history.
func (s *Service) Discover(ctx context.Context, wallet string) ([]DiscoveredToken, error) {
	if !common.IsHexAddress(wallet) {
		return nil, ErrInvalidWallet
	}
	wallet = strings.ToLower(wallet)

	transfers, err := s.transfers.ERC20Transfers(ctx, wallet)
	if err != nil {
		return nil, err
	}

	var order []string
	counts := make(map[string]int)
	for _, t := range transfers {
		addr := strings.ToLower(t.Contract)
		if addr == "" {
			continue
		}
		if _, seen := counts[addr]; !seen {
			order = append(order, addr)
		}
		counts[addr]++
	}

	if len(order) == 0 {
		s.logger.Info("Tokens discovered", zap.String("wallet", wallet), zap.Int("count", 0))
		return []DiscoveredToken{}, nil
	}

	metadata, err := s.metadata.TokenMetadata(ctx, order)
	if err != nil {
		return nil, err
	}
	byAddress := make(map[string]TokenMetadata, len(metadata))
	for _, m := range metadata {
		byAddress[strings.ToLower(m.Address)] = m
	}

	tokens := make([]DiscoveredToken, 0, len(order))
	skipped := 0
	for _, addr := range order {
		meta, ok := byAddress[addr]
		if ok && meta.PossibleSpam && !s.includeSpam {
			skipped++
			continue
		}
		token := DiscoveredToken{
			Address:       addr,
			Decimals:      18,
			TransferCount: counts[addr],
		}
		if ok {
			token.Name = meta.Name
			token.Symbol = meta.Symbol
			token.Decimals = meta.Decimals
			token.Logo = meta.Logo
			token.Verified = meta.Verified
		}
		tokens = append(tokens, token)
	}

	s.logger.Info("Tokens discovered",
		zap.String("wallet", wallet),
		zap.Int("count", len(tokens)),
		zap.Int("spam_skipped", skipped))
	return tokens, nil
}
