package lxly

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golxlybridge/EVMRPC"
	"golxlybridge/config"

	"github.com/ethereum/go-ethereum/common"
)

func withRateLimitedRPC(t *testing.T, networkID uint32) *atomic.Int64 {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	orig := config.Networks[networkID]
	origSigner := config.Config.Signer
	n := orig
	n.RPCList = []string{srv.URL}
	config.Networks[networkID] = n
	config.Config.Signer.PrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	t.Cleanup(func() {
		config.Networks[networkID] = orig
		config.Config.Signer = origSigner
	})
	return &hits
}

// A rate-limited bridge broadcast goes through the retrier, not straight
// to the caller as fatal.
func TestBridgeAndCallRetriesRateLimitedBroadcast(t *testing.T) {
	hits := withRateLimitedRPC(t, 1)

	c := &Client{
		retrier: EVMRPC.Retrier{
			MaxRetries:   3,
			InitialDelay: time.Millisecond,
			Sleep:        func(time.Duration) {},
		},
		poller: EVMRPC.DefaultPoller(),
	}

	_, _, err := c.BridgeAndCall(context.Background(), BridgeAndCallArgs{
		SourceNetwork:      1,
		Token:              common.HexToAddress("0x7777777777777777777777777777777777777777"),
		Amount:             big.NewInt(1),
		DestinationNetwork: 0,
		GasLimit:           config.GAS_LIMIT_BRIDGE_AND_CALL,
	})

	if !errors.Is(err, EVMRPC.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable after exhausted retries, got %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("expected 3 broadcast attempts against the endpoint, got %d", got)
	}
}
