package bridge

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"golxlybridge/lxly"
	"golxlybridge/records"
	"golxlybridge/types"

	"github.com/ethereum/go-ethereum/common"
)

// fakeBackend is an in-memory chain: the confirmed nonce advances when a
// transaction is broadcast, balances and allowances are plain maps.
type fakeBackend struct {
	mu sync.Mutex

	nonce      uint64
	nonceErr   error
	balances   map[common.Address]*big.Int
	allowances map[string]*big.Int

	approveErr   error
	approveCalls int

	swapErrs  []error // consumed one per call, nil slots succeed
	swapCalls int
	lastSwap  RouterSwap

	symbol     string
	decimals   uint8
	detailsErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[string]*big.Int),
		symbol:     "TST",
		decimals:   18,
	}
}

func allowanceKey(token, spender common.Address) string {
	return token.Hex() + "_" + spender.Hex()
}

func (b *fakeBackend) LatestNonce(ctx context.Context, account common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nonceErr != nil {
		return 0, b.nonceErr
	}
	return b.nonce, nil
}

// consumeNonce emulates a transaction with the given nonce confirming.
func (b *fakeBackend) consumeNonce(nonce uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if nonce < b.nonce {
		return fmt.Errorf("nonce too low: next nonce %d, tx nonce %d", b.nonce, nonce)
	}
	b.nonce = nonce + 1
	return nil
}

func (b *fakeBackend) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bal, ok := b.balances[token]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(bal), nil
}

func (b *fakeBackend) TokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.allowances[allowanceKey(token, spender)]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(a), nil
}

func (b *fakeBackend) ApproveToken(ctx context.Context, token, spender common.Address, amount *big.Int, nonce uint64) (common.Hash, error) {
	b.mu.Lock()
	b.approveCalls++
	err := b.approveErr
	b.mu.Unlock()
	if err != nil {
		return common.Hash{}, err
	}
	if err := b.consumeNonce(nonce); err != nil {
		return common.Hash{}, err
	}
	b.mu.Lock()
	b.allowances[allowanceKey(token, spender)] = new(big.Int).Set(amount)
	b.mu.Unlock()
	return common.BigToHash(big.NewInt(int64(nonce) + 1)), nil
}

func (b *fakeBackend) SwapTokens(ctx context.Context, swap RouterSwap, nonce uint64) (common.Hash, error) {
	b.mu.Lock()
	b.swapCalls++
	b.lastSwap = swap
	var err error
	if len(b.swapErrs) > 0 {
		err = b.swapErrs[0]
		b.swapErrs = b.swapErrs[1:]
	}
	b.mu.Unlock()
	if err != nil {
		return common.Hash{}, err
	}
	if err := b.consumeNonce(nonce); err != nil {
		return common.Hash{}, err
	}
	return common.BigToHash(big.NewInt(int64(nonce) + 3000)), nil
}

func (b *fakeBackend) WaitMined(ctx context.Context, txHash common.Hash) (*types.MinimizedReceipt, error) {
	return &types.MinimizedReceipt{
		BlockNumber:     1,
		TransactionHash: txHash.Hex(),
		Status:          1,
	}, nil
}

func (b *fakeBackend) TokenDetails(ctx context.Context, token common.Address) (string, uint8, error) {
	if b.detailsErr != nil {
		return "", 0, b.detailsErr
	}
	return b.symbol, b.decimals, nil
}

// fakeBridgeClient scripts the lxly boundary.
type fakeBridgeClient struct {
	mu sync.Mutex

	bridgeCalls int
	lastArgs    lxly.BridgeAndCallArgs
	bridgeErrs  []error // consumed one per call, nil slots succeed
	backend     *fakeBackend

	payload    *types.ClaimPayload
	payloadErr error

	claimCalls int
	claimErr   error
	claimHash  common.Hash
}

func (c *fakeBridgeClient) BridgeAndCall(ctx context.Context, args lxly.BridgeAndCallArgs) (common.Hash, *types.MinimizedReceipt, error) {
	c.mu.Lock()
	c.bridgeCalls++
	c.lastArgs = args
	var err error
	if len(c.bridgeErrs) > 0 {
		err = c.bridgeErrs[0]
		c.bridgeErrs = c.bridgeErrs[1:]
	}
	c.mu.Unlock()
	if err != nil {
		return common.Hash{}, nil, err
	}
	if c.backend != nil {
		if err := c.backend.consumeNonce(args.Nonce); err != nil {
			return common.Hash{}, nil, err
		}
	}
	hash := common.BigToHash(big.NewInt(int64(args.Nonce) + 1000))
	return hash, &types.MinimizedReceipt{
		BlockNumber:     42,
		TransactionHash: hash.Hex(),
		Status:          1,
	}, nil
}

func (c *fakeBridgeClient) BuildPayloadForClaim(ctx context.Context, srcTxHash string, srcNetwork uint32, bridgeIndex int) (*types.ClaimPayload, error) {
	if c.payloadErr != nil {
		return nil, c.payloadErr
	}
	if c.payload != nil {
		return c.payload, nil
	}
	return &types.ClaimPayload{DepositCount: 1}, nil
}

func (c *fakeBridgeClient) ClaimMessage(ctx context.Context, destNetwork uint32, nonce uint64, payload *types.ClaimPayload) (common.Hash, *types.MinimizedReceipt, error) {
	c.mu.Lock()
	c.claimCalls++
	err := c.claimErr
	c.mu.Unlock()
	if err != nil {
		return common.Hash{}, nil, err
	}
	if c.backend != nil {
		if err := c.backend.consumeNonce(nonce); err != nil {
			return common.Hash{}, nil, err
		}
	}
	hash := c.claimHash
	if hash == (common.Hash{}) {
		hash = common.BigToHash(big.NewInt(int64(nonce) + 2000))
	}
	return hash, &types.MinimizedReceipt{BlockNumber: 7, TransactionHash: hash.Hex(), Status: 1}, nil
}

var testSigner = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func newTestService(source, dest *fakeBackend, bc *fakeBridgeClient) *Service {
	backends := map[uint32]ChainBackend{0: source, 1: dest}
	return NewService(records.NewMemoryStore(), bc, NewAttestationClient("http://127.0.0.1:1", "test-key"), backends, testSigner)
}
