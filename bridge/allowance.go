package bridge

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"golxlybridge/EVMRPC/erc20"

	"github.com/ethereum/go-ethereum/common"
)

// approvalMultiplier sizes source-side approvals well above the immediate
// need so subsequent swaps skip the approval transaction.
var approvalMultiplier = big.NewInt(100)

// EnsureAllowance raises the owner's allowance for spender to at least
// minAmount. approveAmount is what actually gets approved when the
// current allowance falls short; nil means minAmount * approvalMultiplier.
// The approval goes through the nonce-safe submitter and is confirmed
// before the allowance is re-read.
func (s *Service) EnsureAllowance(ctx context.Context, networkID uint32, token, spender common.Address, minAmount, approveAmount *big.Int) error {
	backend := s.backends[networkID]

	allowance, err := backend.TokenAllowance(ctx, token, s.signer, spender)
	if err != nil {
		return &Error{Kind: KindUpstream, Op: "ensure allowance: read", Err: err}
	}
	log.Printf("Current allowance of %s for spender %s: %s (need %s)", token.Hex(), spender.Hex(), allowance.String(), minAmount.String())

	if allowance.Cmp(minAmount) >= 0 {
		return nil
	}

	if approveAmount == nil {
		approveAmount = new(big.Int).Mul(minAmount, approvalMultiplier)
	}
	log.Printf("Insufficient allowance, approving %s for %s", approveAmount.String(), spender.Hex())

	_, err = s.submitter.Submit(ctx, networkID, func(nonce uint64) (common.Hash, error) {
		hash, err := backend.ApproveToken(ctx, token, spender, approveAmount, nonce)
		if err != nil {
			return hash, err
		}
		log.Printf("Approval transaction submitted: %s", hash.Hex())
		receipt, err := backend.WaitMined(ctx, hash)
		if err != nil {
			return hash, err
		}
		log.Printf("Approval transaction confirmed in block %d", receipt.BlockNumber)
		return hash, nil
	})
	if err != nil {
		return err
	}

	// re-verify; a confirmed approval that still leaves us short is fatal
	allowance, err = backend.TokenAllowance(ctx, token, s.signer, spender)
	if err != nil {
		return &Error{Kind: KindUpstream, Op: "ensure allowance: re-read", Err: err}
	}
	if allowance.Cmp(minAmount) < 0 {
		return &Error{
			Kind: KindPrecondition,
			Op:   "ensure allowance",
			Err:  fmt.Errorf("allowance %s still below required %s after approval", allowance.String(), minAmount.String()),
		}
	}
	return nil
}

// preApproveDestination grants the two destination-side spenders that a
// bridge-and-call needs: the bridge executor (moves funds into the swap)
// and the router (the fallback path). Both get unlimited approvals.
// Failures are logged and the flow continues; the bridge transaction
// itself is the authoritative check, and a flaky read here must not
// block an otherwise valid swap.
func (s *Service) preApproveDestination(ctx context.Context, networkID uint32, token common.Address, minAmount *big.Int) {
	net := s.network(networkID)

	spenders := []struct {
		name string
		addr string
	}{
		{"bridge executor", net.BridgeExtensionAddress},
		{"router", net.RouterAddress},
	}

	for _, sp := range spenders {
		if sp.addr == "" {
			log.Printf("Skipping %s pre-approval: address not configured", sp.name)
			continue
		}
		err := s.EnsureAllowance(ctx, networkID, token, common.HexToAddress(sp.addr), minAmount, erc20.MaxUint256)
		if err != nil {
			log.Printf("Error pre-approving %s on network %d: %s; continuing, swap may fail if approvals are missing", sp.name, networkID, err.Error())
			continue
		}
		log.Printf("%s approved on network %d", sp.name, networkID)
	}
}
