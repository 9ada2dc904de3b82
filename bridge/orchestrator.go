package bridge

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"golxlybridge/config"
	"golxlybridge/lxly"
	"golxlybridge/types"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const routerABI = `[
	{"inputs":[
		{"name":"amountIn","type":"uint256"},
		{"name":"amountOutMin","type":"uint256"},
		{"name":"path","type":"address[]"},
		{"name":"to","type":"address"},
		{"name":"deadline","type":"uint256"}
	],"name":"swapExactTokensForTokens","outputs":[{"name":"amounts","type":"uint256[]"}],"stateMutability":"nonpayable","type":"function"}
]`

// destination pre-approvals are refreshed once the spender's allowance
// drops below this many whole tokens
var preApproveThreshold = new(big.Int).Mul(big.NewInt(100), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// SwapParams is one user-initiated cross-chain swap.
type SwapParams struct {
	TokenSelection types.TokenSelection
	Amount         string // whole-token decimal string, e.g. "0.068625"
	UserAddress    common.Address
	// MinAmountOut is a caller policy knob; zero intentionally disables
	// slippage protection for the flow.
	MinAmountOut *big.Int
}

type SwapResult struct {
	TxHash           string                  `json:"txHash"`
	Receipt          *types.MinimizedReceipt `json:"receipt"`
	SourceToken      string                  `json:"sourceToken"`
	DestinationToken string                  `json:"destinationToken"`
	Amount           string                  `json:"amount"`
	Message          string                  `json:"message"`
}

// ChainSwap bridges the selected token to the destination network with an
// attached swap call: destination pre-approvals first (best effort), then
// swap calldata, then the orchestrated bridge-and-call.
func (s *Service) ChainSwap(ctx context.Context, p SwapParams) (*SwapResult, error) {
	var sourceToken, bridgedToken, finalToken, sourceName, finalName string
	switch p.TokenSelection {
	case types.TokenAToB:
		sourceToken = config.Tokens[s.sourceNetwork]["TOKEN_A"]
		bridgedToken = config.Tokens[s.destNetwork]["TOKEN_A"]
		finalToken = config.Tokens[s.destNetwork]["TOKEN_B"]
		sourceName, finalName = config.TOKEN_A_NAME, config.TOKEN_B_NAME
	case types.TokenBToA:
		sourceToken = config.Tokens[s.sourceNetwork]["TOKEN_B"]
		bridgedToken = config.Tokens[s.destNetwork]["TOKEN_B"]
		finalToken = config.Tokens[s.destNetwork]["TOKEN_A"]
		sourceName, finalName = config.TOKEN_B_NAME, config.TOKEN_A_NAME
	default:
		return nil, &Error{Kind: KindPrecondition, Op: "chain swap", Err: fmt.Errorf("invalid token selection %q", p.TokenSelection)}
	}

	amount := p.Amount
	if override := config.Config.Debug.AmountOverride; override != "" {
		log.Printf("Debug amount override active: replacing requested %s with %s", amount, override)
		amount = override
	}
	amountWei, err := parseDecimalAmount(amount, 18)
	if err != nil {
		return nil, &Error{Kind: KindPrecondition, Op: "chain swap", Err: fmt.Errorf("invalid amount %q: %v", amount, err)}
	}

	log.Printf("Chain swap %s: %s %s from %s to %s", p.TokenSelection, amount, sourceName, s.network(s.sourceNetwork).Name, s.network(s.destNetwork).Name)

	// the bridged token arrives on the destination before the swap runs,
	// so the executor and router need spending rights there up front
	s.preApproveDestination(ctx, s.destNetwork, common.HexToAddress(bridgedToken), preApproveThreshold)

	minOut := p.MinAmountOut
	if minOut == nil {
		minOut = big.NewInt(0)
	}
	deadline := time.Now().Unix() + config.SWAP_DEADLINE_SECONDS
	calldata, err := encodeSwapCalldata(amountWei, minOut, common.HexToAddress(bridgedToken), common.HexToAddress(finalToken), p.UserAddress, deadline)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Op: "chain swap: encode calldata", Err: err}
	}

	req := &types.BridgeRequest{
		SourceToken:        sourceToken,
		Amount:             amountWei,
		DestinationToken:   bridgedToken,
		DestinationNetwork: s.destNetwork,
		Recipient:          p.UserAddress.Hex(),
		Calldata:           calldata,
		ForceUpdateGER:     true,
		PermitData:         []byte{},
	}

	hash, receipt, err := s.ExecuteBridgeAndCall(ctx, req)
	if err != nil {
		return nil, err
	}

	return &SwapResult{
		TxHash:           hash.Hex(),
		Receipt:          receipt,
		SourceToken:      sourceName,
		DestinationToken: finalName,
		Amount:           amount,
		Message:          "Bridge and call transaction confirmed. The token will be bridged and swapped automatically.",
	}, nil
}

// ExecuteBridgeAndCall runs the source-side pipeline: configuration and
// balance preconditions, source allowance, then the combined
// bridge-and-call transaction through the nonce-safe submitter.
func (s *Service) ExecuteBridgeAndCall(ctx context.Context, req *types.BridgeRequest) (common.Hash, *types.MinimizedReceipt, error) {
	net := s.network(s.sourceNetwork)
	if net.BridgeExtensionAddress == "" {
		return common.Hash{}, nil, &Error{
			Kind: KindPrecondition,
			Op:   "bridge and call",
			Err:  fmt.Errorf("bridge extension address not configured for network %d", s.sourceNetwork),
		}
	}
	bridgeExtension := common.HexToAddress(net.BridgeExtensionAddress)
	sourceToken := common.HexToAddress(req.SourceToken)
	backend := s.backends[s.sourceNetwork]

	symbol, decimals := s.tokenDetailsOrDefault(ctx, s.sourceNetwork, sourceToken)

	balance, err := backend.TokenBalance(ctx, sourceToken, s.signer)
	if err != nil {
		return common.Hash{}, nil, &Error{Kind: KindUpstream, Op: "bridge and call: read balance", Err: err}
	}
	if balance.Cmp(req.Amount) < 0 {
		return common.Hash{}, nil, &Error{
			Kind: KindPrecondition,
			Op:   "bridge and call",
			Err: fmt.Errorf("insufficient token balance: have %s %s, need %s %s",
				formatUnits(balance, decimals), symbol, formatUnits(req.Amount, decimals), symbol),
		}
	}

	if err := s.EnsureAllowance(ctx, s.sourceNetwork, sourceToken, bridgeExtension, req.Amount, nil); err != nil {
		return common.Hash{}, nil, err
	}

	log.Printf("Bridging %s %s to network %d (forceUpdateGlobalExitRoot=%v)", formatUnits(req.Amount, decimals), symbol, req.DestinationNetwork, req.ForceUpdateGER)

	var receipt *types.MinimizedReceipt
	hash, err := s.submitter.Submit(ctx, s.sourceNetwork, func(nonce uint64) (common.Hash, error) {
		h, r, berr := s.bridge.BridgeAndCall(ctx, lxly.BridgeAndCallArgs{
			SourceNetwork:      s.sourceNetwork,
			Token:              sourceToken,
			Amount:             req.Amount,
			DestinationNetwork: req.DestinationNetwork,
			CallAddress:        common.HexToAddress(s.network(req.DestinationNetwork).RouterAddress),
			FallbackAddress:    common.HexToAddress(req.Recipient),
			Calldata:           req.Calldata,
			ForceUpdateGER:     req.ForceUpdateGER,
			PermitData:         req.PermitData,
			Nonce:              nonce,
			GasLimit:           config.GAS_LIMIT_BRIDGE_AND_CALL,
		})
		receipt = r
		return h, berr
	})
	if err != nil {
		return common.Hash{}, nil, err
	}
	log.Printf("Bridge transaction confirmed: %s", hash.Hex())

	return hash, receipt, nil
}

// tokenDetailsOrDefault degrades to defaults on read failure; cosmetic
// data must not block the flow.
func (s *Service) tokenDetailsOrDefault(ctx context.Context, networkID uint32, token common.Address) (string, uint8) {
	symbol, decimals, err := s.backends[networkID].TokenDetails(ctx, token)
	if err != nil {
		log.Printf("Could not get token details for %s, using defaults: %s", token.Hex(), err.Error())
		return "Unknown", 18
	}
	return symbol, decimals
}

func encodeSwapCalldata(amountIn, minAmountOut *big.Int, tokenIn, tokenOut, recipient common.Address, deadline int64) ([]byte, error) {
	parsed, err := abi.JSON(strings.NewReader(routerABI))
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	return parsed.Pack("swapExactTokensForTokens",
		amountIn,
		minAmountOut,
		[]common.Address{tokenIn, tokenOut},
		recipient,
		big.NewInt(deadline),
	)
}

// parseDecimalAmount converts a whole-token decimal string into smallest
// units, rejecting more fractional digits than the token carries.
func parseDecimalAmount(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}

	whole, frac := amount, ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		whole, frac = amount[:i], amount[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("too many decimal places (max %d)", decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	wei, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal number")
	}
	if wei.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return wei, nil
}

func formatUnits(amount *big.Int, decimals uint8) string {
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, rem := new(big.Int).QuoRem(amount, divisor, new(big.Int))
	if rem.Sign() == 0 {
		return whole.String()
	}
	remStr := rem.String()
	if pad := int(decimals) - len(remStr); pad > 0 {
		remStr = strings.Repeat("0", pad) + remStr
	}
	return whole.String() + "." + strings.TrimRight(remStr, "0")
}
