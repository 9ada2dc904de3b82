package bridge

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"golxlybridge/EVMRPC"
	"golxlybridge/EVMRPC/erc20"
	"golxlybridge/config"
	"golxlybridge/types"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// RouterSwap describes one swapExactTokensForTokens call.
type RouterSwap struct {
	Router    common.Address
	AmountIn  *big.Int
	MinOut    *big.Int
	Path      []common.Address
	Recipient common.Address
	Deadline  *big.Int
}

// ChainBackend is the read/write chain surface the core components need
// on one network. The eth implementation goes through the RPC fallback
// list; tests substitute fakes.
type ChainBackend interface {
	LatestNonce(ctx context.Context, account common.Address) (uint64, error)
	TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error)
	TokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	// ApproveToken broadcasts an approval with an explicit nonce.
	ApproveToken(ctx context.Context, token, spender common.Address, amount *big.Int, nonce uint64) (common.Hash, error)
	// SwapTokens broadcasts a router swap with an explicit nonce.
	SwapTokens(ctx context.Context, swap RouterSwap, nonce uint64) (common.Hash, error)
	WaitMined(ctx context.Context, txHash common.Hash) (*types.MinimizedReceipt, error)
	TokenDetails(ctx context.Context, token common.Address) (symbol string, decimals uint8, err error)
}

// EthBackend implements ChainBackend over the network's RPC list, with
// transient failures on both reads and broadcasts retried by the
// resilience layer. Re-broadcasting with the explicit nonce is safe:
// the duplicate is either the same transaction or a nonce-too-low the
// submitter recovers from.
type EthBackend struct {
	networkID uint32
	retrier   EVMRPC.Retrier
	poller    EVMRPC.Poller
}

func NewEthBackend(networkID uint32, retrier EVMRPC.Retrier) *EthBackend {
	return &EthBackend{networkID: networkID, retrier: retrier, poller: EVMRPC.DefaultPoller()}
}

func (b *EthBackend) LatestNonce(ctx context.Context, account common.Address) (uint64, error) {
	return EVMRPC.Call(ctx, b.retrier, func() (uint64, error) {
		return EVMRPC.WithClient(b.networkID, func(client *ethclient.Client) (uint64, error) {
			return client.NonceAt(ctx, account, nil)
		})
	})
}

func (b *EthBackend) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return EVMRPC.Call(ctx, b.retrier, func() (*big.Int, error) {
		return EVMRPC.WithClient(b.networkID, func(client *ethclient.Client) (*big.Int, error) {
			t, err := erc20.New(token, client)
			if err != nil {
				return nil, err
			}
			return t.BalanceOf(&bind.CallOpts{Context: ctx}, owner)
		})
	})
}

func (b *EthBackend) TokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return EVMRPC.Call(ctx, b.retrier, func() (*big.Int, error) {
		return EVMRPC.WithClient(b.networkID, func(client *ethclient.Client) (*big.Int, error) {
			t, err := erc20.New(token, client)
			if err != nil {
				return nil, err
			}
			return t.Allowance(&bind.CallOpts{Context: ctx}, owner, spender)
		})
	})
}

func (b *EthBackend) ApproveToken(ctx context.Context, token, spender common.Address, amount *big.Int, nonce uint64) (common.Hash, error) {
	return EVMRPC.Call(ctx, b.retrier, func() (common.Hash, error) {
		return EVMRPC.WithClient(b.networkID, func(client *ethclient.Client) (common.Hash, error) {
			t, err := erc20.New(token, client)
			if err != nil {
				return common.Hash{}, err
			}
			auth, err := EVMRPC.TransactOpts(ctx, client, b.networkID, nonce, config.GAS_LIMIT_APPROVE)
			if err != nil {
				return common.Hash{}, err
			}
			tx, err := t.Approve(auth, spender, amount)
			if err != nil {
				return common.Hash{}, err
			}
			return tx.Hash(), nil
		})
	})
}

func (b *EthBackend) SwapTokens(ctx context.Context, swap RouterSwap, nonce uint64) (common.Hash, error) {
	return EVMRPC.Call(ctx, b.retrier, func() (common.Hash, error) {
		return EVMRPC.WithClient(b.networkID, func(client *ethclient.Client) (common.Hash, error) {
			parsed, err := abi.JSON(strings.NewReader(routerABI))
			if err != nil {
				return common.Hash{}, fmt.Errorf("parse router abi: %w", err)
			}
			router := bind.NewBoundContract(swap.Router, parsed, client, client, client)

			auth, err := EVMRPC.TransactOpts(ctx, client, b.networkID, nonce, config.GAS_LIMIT_SWAP)
			if err != nil {
				return common.Hash{}, err
			}
			tx, err := router.Transact(auth, "swapExactTokensForTokens",
				swap.AmountIn,
				swap.MinOut,
				swap.Path,
				swap.Recipient,
				swap.Deadline,
			)
			if err != nil {
				return common.Hash{}, err
			}
			return tx.Hash(), nil
		})
	})
}

func (b *EthBackend) WaitMined(ctx context.Context, txHash common.Hash) (*types.MinimizedReceipt, error) {
	receipt, err := EVMRPC.Poll(ctx, b.poller, func() (*types.MinimizedReceipt, error) {
		return EVMRPC.WithClient(b.networkID, func(client *ethclient.Client) (*types.MinimizedReceipt, error) {
			r, err := client.TransactionReceipt(ctx, txHash)
			if err != nil {
				return nil, err
			}
			return &types.MinimizedReceipt{
				BlockNumber:     r.BlockNumber.Uint64(),
				TransactionHash: r.TxHash.Hex(),
				Status:          r.Status,
			}, nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("transaction %s not confirmed: %w", txHash.Hex(), err)
	}
	return receipt, nil
}

func (b *EthBackend) TokenDetails(ctx context.Context, token common.Address) (string, uint8, error) {
	type details struct {
		symbol   string
		decimals uint8
	}
	d, err := EVMRPC.Call(ctx, b.retrier, func() (details, error) {
		return EVMRPC.WithClient(b.networkID, func(client *ethclient.Client) (details, error) {
			t, err := erc20.New(token, client)
			if err != nil {
				return details{}, err
			}
			opts := &bind.CallOpts{Context: ctx}
			symbol, err := t.Symbol(opts)
			if err != nil {
				return details{}, err
			}
			decimals, err := t.Decimals(opts)
			if err != nil {
				return details{}, err
			}
			return details{symbol: symbol, decimals: decimals}, nil
		})
	})
	return d.symbol, d.decimals, err
}
