package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golxlybridge/bridge"
	"golxlybridge/config"
	"golxlybridge/lxly"
	"golxlybridge/records"
	"golxlybridge/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTxHash = "0xabc1230000000000000000000000000000000000000000000000000000000001"
	testUser   = "0x1111111111111111111111111111111111111111"
)

// stubBackend answers every chain read generously; handler tests only
// exercise the boundary classification, not the chain flows.
type stubBackend struct {
	mu        sync.Mutex
	nonce     uint64
	swapCalls int
}

func (b *stubBackend) LatestNonce(ctx context.Context, account common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonce, nil
}

func (b *stubBackend) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return new(big.Int).Lsh(big.NewInt(1), 128), nil
}

func (b *stubBackend) TokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return new(big.Int).Lsh(big.NewInt(1), 250), nil
}

func (b *stubBackend) ApproveToken(ctx context.Context, token, spender common.Address, amount *big.Int, nonce uint64) (common.Hash, error) {
	return common.BigToHash(big.NewInt(1)), nil
}

func (b *stubBackend) SwapTokens(ctx context.Context, swap bridge.RouterSwap, nonce uint64) (common.Hash, error) {
	b.mu.Lock()
	b.swapCalls++
	b.mu.Unlock()
	return common.BigToHash(big.NewInt(3000)), nil
}

func (b *stubBackend) WaitMined(ctx context.Context, txHash common.Hash) (*types.MinimizedReceipt, error) {
	return &types.MinimizedReceipt{BlockNumber: 1, TransactionHash: txHash.Hex(), Status: 1}, nil
}

func (b *stubBackend) TokenDetails(ctx context.Context, token common.Address) (string, uint8, error) {
	return "TST", 18, nil
}

type stubBridgeClient struct {
	claimErr   error
	claimCalls int
}

func (c *stubBridgeClient) BridgeAndCall(ctx context.Context, args lxly.BridgeAndCallArgs) (common.Hash, *types.MinimizedReceipt, error) {
	h := common.BigToHash(big.NewInt(99))
	return h, &types.MinimizedReceipt{BlockNumber: 1, TransactionHash: h.Hex(), Status: 1}, nil
}

func (c *stubBridgeClient) BuildPayloadForClaim(ctx context.Context, srcTxHash string, srcNetwork uint32, bridgeIndex int) (*types.ClaimPayload, error) {
	return &types.ClaimPayload{DepositCount: 1}, nil
}

func (c *stubBridgeClient) ClaimMessage(ctx context.Context, destNetwork uint32, nonce uint64, payload *types.ClaimPayload) (common.Hash, *types.MinimizedReceipt, error) {
	c.claimCalls++
	if c.claimErr != nil {
		return common.Hash{}, nil, c.claimErr
	}
	h := common.BigToHash(big.NewInt(2000))
	return h, &types.MinimizedReceipt{BlockNumber: 7, TransactionHash: h.Hex(), Status: 1}, nil
}

// attestation API stub returning one transaction in the given state
func attestationServer(t *testing.T, status string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"result": []map[string]interface{}{{
				"transactionHash":    testTxHash,
				"status":             status,
				"sourceNetwork":      0,
				"destinationNetwork": 1,
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T, attestationStatus string, bc *stubBridgeClient) *Handler {
	t.Helper()
	srv := attestationServer(t, attestationStatus)
	backends := map[uint32]bridge.ChainBackend{0: &stubBackend{}, 1: &stubBackend{}}
	svc := bridge.NewService(
		records.NewMemoryStore(),
		bc,
		bridge.NewAttestationClient(srv.URL, "test-key"),
		backends,
		common.HexToAddress("0x00000000000000000000000000000000000000aa"),
	)
	return New(svc)
}

// contract addresses are env-supplied in production; swap flows need
// them present
func withConfiguredNetworks(t *testing.T) {
	t.Helper()
	orig0, orig1 := config.Networks[0], config.Networks[1]
	n0, n1 := orig0, orig1
	n0.BridgeExtensionAddress = "0x3333333333333333333333333333333333333333"
	n0.RouterAddress = "0x6666666666666666666666666666666666666666"
	n1.BridgeExtensionAddress = "0x4444444444444444444444444444444444444444"
	n1.RouterAddress = "0x5555555555555555555555555555555555555555"
	config.Networks[0], config.Networks[1] = n0, n1
	t.Cleanup(func() {
		config.Networks[0], config.Networks[1] = orig0, orig1
	})
}

func claimRequest(hash, user string) *http.Request {
	body := `{"bridgeTransactionHash":"` + hash + `","userAddress":"` + user + `"}`
	return httptest.NewRequest(http.MethodPost, "/api/claim-message", strings.NewReader(body))
}

func TestClaimMessage_ReadyToClaim(t *testing.T) {
	bc := &stubBridgeClient{}
	h := newTestHandler(t, "READY_TO_CLAIM", bc)

	w := httptest.NewRecorder()
	h.ClaimMessage(w, claimRequest(testTxHash, testUser))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, bc.claimCalls)

	var resp ClaimMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Result)
	assert.NotEmpty(t, resp.Result.TxHash)
}

func TestClaimMessage_AlreadyClaimedConflict(t *testing.T) {
	bc := &stubBridgeClient{claimErr: errors.New("execution reverted: AlreadyClaimed()")}
	h := newTestHandler(t, "READY_TO_CLAIM", bc)

	w := httptest.NewRecorder()
	h.ClaimMessage(w, claimRequest(testTxHash, testUser))

	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestClaimMessage_AlreadyClaimedStateIsNoOp(t *testing.T) {
	bc := &stubBridgeClient{}
	h := newTestHandler(t, "CLAIMED", bc)

	w := httptest.NewRecorder()
	h.ClaimMessage(w, claimRequest(testTxHash, testUser))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, bc.claimCalls, "no claim transaction for an already claimed message")
}

func TestClaimMessage_NotReadyYet(t *testing.T) {
	for _, status := range []string{"PENDING", "BRIDGED"} {
		bc := &stubBridgeClient{}
		h := newTestHandler(t, status, bc)

		w := httptest.NewRecorder()
		h.ClaimMessage(w, claimRequest(testTxHash, testUser))

		assert.Equal(t, http.StatusBadRequest, w.Code, "status %s: %s", status, w.Body.String())
		assert.Equal(t, 0, bc.claimCalls)
	}
}

func TestClaimMessage_FailedBridge(t *testing.T) {
	bc := &stubBridgeClient{}
	h := newTestHandler(t, "FAILED", bc)

	w := httptest.NewRecorder()
	h.ClaimMessage(w, claimRequest(testTxHash, testUser))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, bc.claimCalls)
}

func TestClaimMessage_InvalidAddress(t *testing.T) {
	h := newTestHandler(t, "READY_TO_CLAIM", &stubBridgeClient{})

	w := httptest.NewRecorder()
	h.ClaimMessage(w, claimRequest(testTxHash, "not-an-address"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimMessage_MissingHash(t *testing.T) {
	h := newTestHandler(t, "READY_TO_CLAIM", &stubBridgeClient{})

	w := httptest.NewRecorder()
	h.ClaimMessage(w, claimRequest("", testUser))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionStatus(t *testing.T) {
	h := newTestHandler(t, "BRIDGED", &stubBridgeClient{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/check-transaction-status?txHash="+testTxHash+"&address="+testUser, nil)
	h.TransactionStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TransactionStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.StateBridged, resp.Result.State)
}

func TestTransactionStatus_MissingHash(t *testing.T) {
	h := newTestHandler(t, "BRIDGED", &stubBridgeClient{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/check-transaction-status?address="+testUser, nil)
	h.TransactionStatus(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenOptions(t *testing.T) {
	h := newTestHandler(t, "PENDING", &stubBridgeClient{})

	w := httptest.NewRecorder()
	h.TokenOptions(w, httptest.NewRequest(http.MethodGet, "/api/token-options", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp tokenOptionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Options, 2)
	assert.Equal(t, types.TokenAToB, resp.Options[0].Value)
	assert.Equal(t, types.TokenBToA, resp.Options[1].Value)
}

func TestCrossChainSwap_InvalidSelection(t *testing.T) {
	h := newTestHandler(t, "PENDING", &stubBridgeClient{})

	body := `{"tokenSelection":"TOKEN_X","amount":"1","userAddress":"` + testUser + `"}`
	w := httptest.NewRecorder()
	h.CrossChainSwap(w, httptest.NewRequest(http.MethodPost, "/api/cross-chain-swap", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCrossChainSwap_MissingAmount(t *testing.T) {
	h := newTestHandler(t, "PENDING", &stubBridgeClient{})

	body := `{"tokenSelection":"TOKEN_A_TO_B","userAddress":"` + testUser + `"}`
	w := httptest.NewRecorder()
	h.CrossChainSwap(w, httptest.NewRequest(http.MethodPost, "/api/cross-chain-swap", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCrossChainSwap_Submits(t *testing.T) {
	withConfiguredNetworks(t)
	h := newTestHandler(t, "PENDING", &stubBridgeClient{})

	body := `{"tokenSelection":"TOKEN_A_TO_B","amount":"0.5","userAddress":"` + testUser + `"}`
	w := httptest.NewRecorder()
	h.CrossChainSwap(w, httptest.NewRequest(http.MethodPost, "/api/cross-chain-swap", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp CrossChainSwapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Result)
	assert.NotEmpty(t, resp.Result.TxHash)
}

func TestSwapTokens_Submits(t *testing.T) {
	withConfiguredNetworks(t)
	srv := attestationServer(t, "PENDING")
	source := &stubBackend{}
	svc := bridge.NewService(
		records.NewMemoryStore(),
		&stubBridgeClient{},
		bridge.NewAttestationClient(srv.URL, "test-key"),
		map[uint32]bridge.ChainBackend{0: source, 1: &stubBackend{}},
		common.HexToAddress("0x00000000000000000000000000000000000000aa"),
	)
	h := New(svc)

	body := `{"tokenIn":"0x7777777777777777777777777777777777777777","tokenOut":"0x8888888888888888888888888888888888888888","amount":"1","userAddress":"` + testUser + `"}`
	w := httptest.NewRecorder()
	h.SwapTokens(w, httptest.NewRequest(http.MethodPost, "/api/swap-tokens", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, source.swapCalls)

	var resp SwapTokensResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Result)
	assert.NotEmpty(t, resp.Result.TxHash)
}

func TestSwapTokens_MissingToken(t *testing.T) {
	withConfiguredNetworks(t)
	h := newTestHandler(t, "PENDING", &stubBridgeClient{})

	body := `{"tokenOut":"0x8888888888888888888888888888888888888888","amount":"1","userAddress":"` + testUser + `"}`
	w := httptest.NewRecorder()
	h.SwapTokens(w, httptest.NewRequest(http.MethodPost, "/api/swap-tokens", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBridgeActivity(t *testing.T) {
	h := newTestHandler(t, "PENDING", &stubBridgeClient{})

	require.NoError(t, h.Service.Store().Upsert(&types.BridgeTransactionRecord{
		SourceTxHash: testTxHash,
		UserAddress:  testUser,
		State:        types.StateBridged,
	}))

	w := httptest.NewRecorder()
	h.BridgeActivity(w, httptest.NewRequest(http.MethodGet, "/api/bridge-activity?address="+testUser, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp BridgeActivityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Result, 1)
	assert.Equal(t, types.StateBridged, resp.Result[0].State)
}

func TestState(t *testing.T) {
	h := newTestHandler(t, "PENDING", &stubBridgeClient{})

	w := httptest.NewRecorder()
	h.State(w, httptest.NewRequest(http.MethodGet, "/state", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
