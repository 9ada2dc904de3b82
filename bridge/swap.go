package bridge

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"time"

	"golxlybridge/config"
	"golxlybridge/types"

	"github.com/ethereum/go-ethereum/common"
)

// TokenSwapParams is one same-chain router swap on the source network.
// The custodian signer funds the swap; the output goes to the user.
type TokenSwapParams struct {
	TokenIn     common.Address
	TokenOut    common.Address
	Amount      string // whole-token decimal string
	UserAddress common.Address
}

type TokenSwapResult struct {
	TxHash  string                  `json:"txHash"`
	Receipt *types.MinimizedReceipt `json:"receipt,omitempty"`
}

// SwapTokens swaps two tokens through the source network's router
// without bridging: balance and allowance preconditions first, then the
// swap through the nonce-safe submitter.
func (s *Service) SwapTokens(ctx context.Context, p TokenSwapParams) (*TokenSwapResult, error) {
	net := s.network(s.sourceNetwork)
	if net.RouterAddress == "" {
		return nil, &Error{
			Kind: KindPrecondition,
			Op:   "token swap",
			Err:  fmt.Errorf("router address not configured for network %d", s.sourceNetwork),
		}
	}
	router := common.HexToAddress(net.RouterAddress)
	backend := s.backends[s.sourceNetwork]

	symbol, decimals := s.tokenDetailsOrDefault(ctx, s.sourceNetwork, p.TokenIn)
	amountWei, err := parseDecimalAmount(p.Amount, int(decimals))
	if err != nil {
		return nil, &Error{Kind: KindPrecondition, Op: "token swap", Err: fmt.Errorf("invalid amount %q: %v", p.Amount, err)}
	}

	balance, err := backend.TokenBalance(ctx, p.TokenIn, s.signer)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Op: "token swap: read balance", Err: err}
	}
	if balance.Cmp(amountWei) < 0 {
		return nil, &Error{
			Kind: KindPrecondition,
			Op:   "token swap",
			Err: fmt.Errorf("insufficient token balance: have %s %s, need %s %s",
				formatUnits(balance, decimals), symbol, formatUnits(amountWei, decimals), symbol),
		}
	}

	if err := s.EnsureAllowance(ctx, s.sourceNetwork, p.TokenIn, router, amountWei, nil); err != nil {
		return nil, err
	}

	deadline := big.NewInt(time.Now().Unix() + config.TOKEN_SWAP_DEADLINE_SECONDS)
	log.Printf("Swapping %s %s through router %s for %s", formatUnits(amountWei, decimals), symbol, router.Hex(), p.UserAddress.Hex())

	var receipt *types.MinimizedReceipt
	hash, err := s.submitter.Submit(ctx, s.sourceNetwork, func(nonce uint64) (common.Hash, error) {
		h, serr := backend.SwapTokens(ctx, RouterSwap{
			Router:    router,
			AmountIn:  amountWei,
			MinOut:    big.NewInt(0),
			Path:      []common.Address{p.TokenIn, p.TokenOut},
			Recipient: p.UserAddress,
			Deadline:  deadline,
		}, nonce)
		if serr != nil {
			return h, serr
		}
		r, werr := backend.WaitMined(ctx, h)
		if werr != nil {
			return h, werr
		}
		receipt = r
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Swap transaction confirmed: %s", hash.Hex())

	return &TokenSwapResult{TxHash: hash.Hex(), Receipt: receipt}, nil
}
