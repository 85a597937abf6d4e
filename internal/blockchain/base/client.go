// internal/blockchain/base/client.go
package base

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rovshanmuradov/clanker-launchpad/internal/blockchain"
	"go.uber.org/zap"
)

// ChainID of Base mainnet
const ChainID = 8453

var ErrWrongChain = errors.New("rpc endpoint is not Base mainnet")

// retryInterval is the first backoff step of Dial.
var retryInterval = 500 * time.Millisecond

// DialFunc opens a raw RPC connection.
type DialFunc func(ctx context.Context, url string) (blockchain.Client, error)

func dialEthclient(ctx context.Context, url string) (blockchain.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Client is a thin adapter over a Base JSON-RPC endpoint.
type Client struct {
	eth     blockchain.Client
	chainID *big.Int
	logger  *zap.Logger
}

// Dial connects to url and verifies the endpoint serves Base mainnet.
// Transient failures are retried up to retries times.
func Dial(ctx context.Context, url string, retries int, logger *zap.Logger) (*Client, error) {
	return DialWith(ctx, dialEthclient, url, retries, logger)
}

// DialWith is Dial with an injectable connection factory.
func DialWith(ctx context.Context, dial DialFunc, url string, retries int, logger *zap.Logger) (*Client, error) {
	logger = logger.Named("base-client")
	if retries < 0 {
		retries = 0
	}

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = retryInterval
	backoffPolicy.MaxInterval = retryInterval * 10

	notify := func(err error, duration time.Duration) {
		logger.Warn("RPC connection failed, retrying", zap.Error(err), zap.Duration("backoff", duration))
	}

	operation := func() (*Client, error) {
		eth, err := dial(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("dial rpc: %w", err)
		}
		id, err := eth.ChainID(ctx)
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("fetch chain id: %w", err)
		}
		if id.Cmp(big.NewInt(ChainID)) != 0 {
			eth.Close()
			return nil, backoff.Permanent(fmt.Errorf("%w: chain id %s", ErrWrongChain, id))
		}
		return &Client{eth: eth, chainID: id, logger: logger}, nil
	}

	client, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(uint(retries+1)),
		backoff.WithNotify(notify))
	if err != nil {
		logger.Error("Could not connect to Base RPC", zap.Error(err))
		return nil, err
	}

	logger.Info("Connected to Base RPC", zap.String("chain_id", client.chainID.String()))
	return client, nil
}

// NewClient wraps an already connected client without verification.
func NewClient(eth blockchain.Client, logger *zap.Logger) *Client {
	return &Client{eth: eth, chainID: big.NewInt(ChainID), logger: logger.Named("base-client")}
}

// ChainID returns the verified chain id.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// CallContract implements blockchain.ContractCaller.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, msg, blockNumber)
	if err != nil {
		c.logger.Debug("CallContract error", zap.Stringer("to", msg.To), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// BlockNumber returns the latest block height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}
