// internal/blockchain/base/feelocker.go
package base

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rovshanmuradov/clanker-launchpad/internal/blockchain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const feeLockerABIJSON = `[
  {"type":"function","name":"availableFees","stateMutability":"view",
   "inputs":[{"name":"feeOwner","type":"address"},{"name":"token","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]}
]`

const erc20ABIJSON = `[
  {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

// DefaultTokenDecimals is used when a token does not answer decimals().
const DefaultTokenDecimals = 18

var (
	feeLockerABI = mustParseABI(feeLockerABIJSON)
	erc20ABI     = mustParseABI(erc20ABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("parse abi: %v", err))
	}
	return parsed
}

// FeeLocker reads claimable LP fees from the Clanker v4 fee locker.
type FeeLocker struct {
	address common.Address
	caller  blockchain.ContractCaller
}

func NewFeeLocker(address common.Address, caller blockchain.ContractCaller) *FeeLocker {
	return &FeeLocker{address: address, caller: caller}
}

// AvailableFees returns the amount of token claimable by owner, in base units.
func (f *FeeLocker) AvailableFees(ctx context.Context, owner, token common.Address) (*big.Int, error) {
	var out *big.Int
	if err := call(ctx, f.caller, feeLockerABI, f.address, &out, "availableFees", owner, token); err != nil {
		return nil, err
	}
	return out, nil
}

// FeeReport is the claimable balance of one fee owner for one token.
type FeeReport struct {
	Owner          string `json:"owner"`
	Token          string `json:"token"`
	TokenSymbol    string `json:"tokenSymbol"`
	TokenDecimals  uint8  `json:"tokenDecimals"`
	WethWei        string `json:"wethWei"`
	TokenWei       string `json:"tokenWei"`
	WethFormatted  string `json:"wethFormatted"`
	TokenFormatted string `json:"tokenFormatted"`
}

// HasFees reports whether anything is claimable.
func (r *FeeReport) HasFees() bool {
	return r.WethWei != "0" || r.TokenWei != "0"
}

// FeeChecker combines fee locker balances with token metadata.
type FeeChecker struct {
	locker *FeeLocker
	caller blockchain.ContractCaller
	weth   common.Address
	logger *zap.Logger
}

func NewFeeChecker(locker, weth common.Address, caller blockchain.ContractCaller, logger *zap.Logger) *FeeChecker {
	return &FeeChecker{
		locker: NewFeeLocker(locker, caller),
		caller: caller,
		weth:   weth,
		logger: logger.Named("fee-checker"),
	}
}

// Check reads WETH and token fees for owner plus the token's symbol and
// decimals. The four reads run concurrently.
func (fc *FeeChecker) Check(ctx context.Context, owner, token common.Address) (*FeeReport, error) {
	var (
		wethWei, tokenWei *big.Int
		symbol            string
		decimals          uint8 = DefaultTokenDecimals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := fc.locker.AvailableFees(gctx, owner, fc.weth)
		if err != nil {
			return fmt.Errorf("weth fees: %w", err)
		}
		wethWei = v
		return nil
	})
	g.Go(func() error {
		v, err := fc.locker.AvailableFees(gctx, owner, token)
		if err != nil {
			return fmt.Errorf("token fees: %w", err)
		}
		tokenWei = v
		return nil
	})
	g.Go(func() error {
		if err := call(gctx, fc.caller, erc20ABI, token, &symbol, "symbol"); err != nil {
			fc.logger.Debug("symbol() failed", zap.String("token", token.Hex()), zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		var d uint8
		if err := call(gctx, fc.caller, erc20ABI, token, &d, "decimals"); err != nil {
			fc.logger.Debug("decimals() failed, assuming 18", zap.String("token", token.Hex()), zap.Error(err))
			return nil
		}
		decimals = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &FeeReport{
		Owner:          owner.Hex(),
		Token:          token.Hex(),
		TokenSymbol:    symbol,
		TokenDecimals:  decimals,
		WethWei:        wethWei.String(),
		TokenWei:       tokenWei.String(),
		WethFormatted:  FormatUnits(wethWei, 18),
		TokenFormatted: FormatUnits(tokenWei, decimals),
	}
	fc.logger.Info("Fees checked",
		zap.String("owner", report.Owner),
		zap.String("token", report.Token),
		zap.String("weth", report.WethFormatted),
		zap.String("token_amount", report.TokenFormatted))
	return report, nil
}

// FormatUnits renders a base-unit amount as a decimal string.
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

func call(ctx context.Context, caller blockchain.ContractCaller, contract abi.ABI, to common.Address, out interface{}, method string, args ...interface{}) error {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("pack %s: %w", method, err)
	}
	raw, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("call %s: empty response from %s", method, to.Hex())
	}
	if err := contract.UnpackIntoInterface(out, method, raw); err != nil {
		return fmt.Errorf("unpack %s: %w", method, err)
	}
	return nil
}
