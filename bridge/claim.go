package bridge

import (
	"context"
	"log"

	"golxlybridge/config"
	"golxlybridge/types"

	"github.com/ethereum/go-ethereum/common"
)

// ClaimResult reports the destination-chain transaction that completed
// a message claim.
type ClaimResult struct {
	TxHash  string                  `json:"txHash"`
	Receipt *types.MinimizedReceipt `json:"receipt,omitempty"`
}

// ClaimMessage completes the message half of a bridge-and-call: it
// fetches the claim payload for the source transaction from the proof
// API and submits claimMessage on the destination bridge with the
// service signer.
func (s *Service) ClaimMessage(ctx context.Context, bridgeTxHash string) (*ClaimResult, error) {
	payload, err := s.bridge.BuildPayloadForClaim(ctx, bridgeTxHash, s.sourceNetwork, config.MESSAGE_BRIDGE_INDEX)
	if err != nil {
		if looksNotFound(err) {
			return nil, &Error{Kind: KindNotFound, Op: "claim", TxHash: bridgeTxHash, Err: err}
		}
		return nil, &Error{Kind: KindUpstream, Op: "claim", TxHash: bridgeTxHash, Err: err}
	}

	var (
		claimHash common.Hash
		receipt   *types.MinimizedReceipt
	)
	_, err = s.submitter.Submit(ctx, s.destNetwork, func(nonce uint64) (common.Hash, error) {
		h, r, cerr := s.bridge.ClaimMessage(ctx, s.destNetwork, nonce, payload)
		claimHash, receipt = h, r
		return h, cerr
	})
	if err != nil {
		if looksAlreadyClaimed(err) {
			return nil, &Error{Kind: KindAlreadyClaimed, Op: "claim", TxHash: bridgeTxHash, Err: err}
		}
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, &Error{Kind: KindInternal, Op: "claim", TxHash: bridgeTxHash, Err: err}
	}

	log.Printf("claimed message for %s in destination tx %s", bridgeTxHash, claimHash.Hex())
	return &ClaimResult{TxHash: claimHash.Hex(), Receipt: receipt}, nil
}
