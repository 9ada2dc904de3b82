// Package lxly is the boundary to the LxLy bridge infrastructure: the
// bridge-and-call entrypoint on the bridge extension contract, the bridge
// contract's claimMessage, and the external proof API that builds claim
// payloads. Proof construction itself happens on the other side of that
// API and is consumed, not reimplemented.
package lxly

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"golxlybridge/EVMRPC"
	"golxlybridge/config"
	"golxlybridge/types"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const bridgeExtensionABI = `[
	{"inputs":[
		{"name":"token","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"permitData","type":"bytes"},
		{"name":"destinationNetwork","type":"uint32"},
		{"name":"callAddress","type":"address"},
		{"name":"fallbackAddress","type":"address"},
		{"name":"callData","type":"bytes"},
		{"name":"forceUpdateGlobalExitRoot","type":"bool"}
	],"name":"bridgeAndCall","outputs":[],"stateMutability":"payable","type":"function"}
]`

const bridgeABI = `[
	{"inputs":[
		{"name":"smtProofLocalExitRoot","type":"bytes32[32]"},
		{"name":"smtProofRollupExitRoot","type":"bytes32[32]"},
		{"name":"globalIndex","type":"uint256"},
		{"name":"mainnetExitRoot","type":"bytes32"},
		{"name":"rollupExitRoot","type":"bytes32"},
		{"name":"originNetwork","type":"uint32"},
		{"name":"originAddress","type":"address"},
		{"name":"destinationNetwork","type":"uint32"},
		{"name":"destinationAddress","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"metadata","type":"bytes"}
	],"name":"claimMessage","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// BridgeAndCallArgs mirrors the bridge extension's entrypoint. Nonce is
// always set explicitly by the submitter, never left to the library.
type BridgeAndCallArgs struct {
	SourceNetwork      uint32
	Token              common.Address
	Amount             *big.Int
	DestinationNetwork uint32
	CallAddress        common.Address
	FallbackAddress    common.Address
	Calldata           []byte
	ForceUpdateGER     bool
	PermitData         []byte
	Nonce              uint64
	GasLimit           uint64
}

// BridgeClient is what the core components consume. The contract-backed
// implementation below is the real one; tests substitute fakes.
type BridgeClient interface {
	BridgeAndCall(ctx context.Context, args BridgeAndCallArgs) (common.Hash, *types.MinimizedReceipt, error)
	BuildPayloadForClaim(ctx context.Context, srcTxHash string, srcNetwork uint32, bridgeIndex int) (*types.ClaimPayload, error)
	ClaimMessage(ctx context.Context, destNetwork uint32, nonce uint64, payload *types.ClaimPayload) (common.Hash, *types.MinimizedReceipt, error)
}

// Client talks to the bridge contracts through the per-network RPC
// fallback lists and to the proof API over HTTP. Broadcasts go through
// the retrier; receipt waits are bounded by the poller.
type Client struct {
	proofAPI   string
	httpClient *http.Client
	retrier    EVMRPC.Retrier
	poller     EVMRPC.Poller
}

func NewClient() *Client {
	return &Client{
		proofAPI:   config.Config.ProofAPI,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retrier:    EVMRPC.DefaultRetrier(),
		poller:     EVMRPC.DefaultPoller(),
	}
}

func (c *Client) minimizeReceipt(ctx context.Context, networkID uint32, txHash common.Hash) (*types.MinimizedReceipt, error) {
	receipt, err := EVMRPC.Poll(ctx, c.poller, func() (*types.MinimizedReceipt, error) {
		return EVMRPC.WithClient(networkID, func(client *ethclient.Client) (*types.MinimizedReceipt, error) {
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

func (c *Client) BridgeAndCall(ctx context.Context, args BridgeAndCallArgs) (common.Hash, *types.MinimizedReceipt, error) {
	net := config.Networks[args.SourceNetwork]

	hash, err := EVMRPC.Call(ctx, c.retrier, func() (common.Hash, error) {
		return EVMRPC.WithClient(args.SourceNetwork, func(client *ethclient.Client) (common.Hash, error) {
			parsed, err := abi.JSON(strings.NewReader(bridgeExtensionABI))
			if err != nil {
				return common.Hash{}, fmt.Errorf("parse bridge extension abi: %w", err)
			}
			extension := bind.NewBoundContract(common.HexToAddress(net.BridgeExtensionAddress), parsed, client, client, client)

			auth, err := EVMRPC.TransactOpts(ctx, client, args.SourceNetwork, args.Nonce, args.GasLimit)
			if err != nil {
				return common.Hash{}, err
			}

			permitData := args.PermitData
			if permitData == nil {
				permitData = []byte{}
			}

			tx, err := extension.Transact(auth, "bridgeAndCall",
				args.Token,
				args.Amount,
				permitData,
				args.DestinationNetwork,
				args.CallAddress,
				args.FallbackAddress,
				args.Calldata,
				args.ForceUpdateGER,
			)
			if err != nil {
				return common.Hash{}, err
			}
			return tx.Hash(), nil
		})
	})
	if err != nil {
		return hash, nil, err
	}
	log.Printf("Bridge transaction submitted: %s", hash.Hex())

	receipt, err := c.minimizeReceipt(ctx, args.SourceNetwork, hash)
	if err != nil {
		return hash, nil, err
	}
	return hash, receipt, nil
}

func (c *Client) ClaimMessage(ctx context.Context, destNetwork uint32, nonce uint64, payload *types.ClaimPayload) (common.Hash, *types.MinimizedReceipt, error) {
	net := config.Networks[destNetwork]

	smtProof, err := proofToWords(payload.SmtProof)
	if err != nil {
		return common.Hash{}, nil, fmt.Errorf("bad smt proof: %w", err)
	}
	smtProofRollup, err := proofToWords(payload.SmtProofRollup)
	if err != nil {
		return common.Hash{}, nil, fmt.Errorf("bad rollup smt proof: %w", err)
	}
	globalIndex, ok := new(big.Int).SetString(payload.GlobalIndex, 10)
	if !ok {
		return common.Hash{}, nil, fmt.Errorf("bad global index %q", payload.GlobalIndex)
	}
	amount, ok := new(big.Int).SetString(payload.Amount, 10)
	if !ok {
		return common.Hash{}, nil, fmt.Errorf("bad amount %q", payload.Amount)
	}
	metadata := common.FromHex(payload.Metadata)

	hash, err := EVMRPC.Call(ctx, c.retrier, func() (common.Hash, error) {
		return EVMRPC.WithClient(destNetwork, func(client *ethclient.Client) (common.Hash, error) {
			parsed, err := abi.JSON(strings.NewReader(bridgeABI))
			if err != nil {
				return common.Hash{}, fmt.Errorf("parse bridge abi: %w", err)
			}
			bridge := bind.NewBoundContract(common.HexToAddress(net.BridgeAddress), parsed, client, client, client)

			auth, err := EVMRPC.TransactOpts(ctx, client, destNetwork, nonce, config.GAS_LIMIT_CLAIM)
			if err != nil {
				return common.Hash{}, err
			}

			tx, err := bridge.Transact(auth, "claimMessage",
				smtProof,
				smtProofRollup,
				globalIndex,
				common.HexToHash(payload.MainnetExitRoot),
				common.HexToHash(payload.RollupExitRoot),
				payload.OriginNetwork,
				common.HexToAddress(payload.OriginTokenAddress),
				payload.DestinationNetwork,
				common.HexToAddress(payload.DestinationAddress),
				amount,
				metadata,
			)
			if err != nil {
				return common.Hash{}, err
			}
			return tx.Hash(), nil
		})
	})
	if err != nil {
		return hash, nil, err
	}
	log.Printf("Message claim transaction submitted: %s", hash.Hex())

	receipt, err := c.minimizeReceipt(ctx, destNetwork, hash)
	if err != nil {
		return hash, nil, err
	}
	return hash, receipt, nil
}

// proofToWords converts the proof API's hex strings into the fixed-size
// bytes32[32] shape the bridge contract expects.
func proofToWords(proof []string) ([32][32]byte, error) {
	var words [32][32]byte
	if len(proof) != 32 {
		return words, fmt.Errorf("expected 32 proof elements, got %d", len(proof))
	}
	for i, el := range proof {
		words[i] = common.HexToHash(el)
	}
	return words, nil
}
