// internal/blockchain/types.go
package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
)

// ContractCaller executes read-only contract calls. *ethclient.Client
// satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client is the subset of an EVM JSON-RPC client the launchpad needs.
type Client interface {
	ContractCaller
	// ChainID returns the chain the endpoint serves.
	ChainID(ctx context.Context) (*big.Int, error)
	// BlockNumber returns the latest block height.
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}
