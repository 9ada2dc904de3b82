package bridge

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"golxlybridge/records"
	"golxlybridge/types"
)

// StatusDetails carries the extra fields of the attestation record that
// callers surface alongside the state.
type StatusDetails struct {
	SourceNetwork      uint32   `json:"sourceNetwork"`
	DestinationNetwork uint32   `json:"destinationNetwork"`
	Timestamp          string   `json:"timestamp,omitempty"`
	Amounts            []string `json:"amounts,omitempty"`
	OriginTokenAddress string   `json:"originTokenAddress,omitempty"`
}

// Status is the tracked state of one bridge transaction.
type Status struct {
	State             types.TransactionState `json:"status"`
	DestinationTxHash string                 `json:"destinationTxHash,omitempty"`
	Details           *StatusDetails         `json:"details,omitempty"`
}

type statusEntry struct {
	status    Status
	fetchedAt time.Time
}

// StatusTracker resolves the current state of bridge transactions
// against the attestation API, caching results per (txHash, user) pair.
// Terminal CLAIMED entries are served from cache indefinitely.
type StatusTracker struct {
	attestation *AttestationClient
	store       records.Store
	ttl         time.Duration

	now func() time.Time

	mu    sync.Mutex
	cache map[string]statusEntry
}

func NewStatusTracker(attestation *AttestationClient, store records.Store, ttl time.Duration) *StatusTracker {
	return &StatusTracker{
		attestation: attestation,
		store:       store,
		ttl:         ttl,
		now:         time.Now,
		cache:       make(map[string]statusEntry),
	}
}

func statusCacheKey(txHash, userAddress string) string {
	return strings.ToLower(txHash) + "_" + strings.ToLower(userAddress)
}

// GetStatus returns the state of the bridge transaction txHash for
// userAddress. Fresh cache entries are returned without an upstream
// call, as are CLAIMED entries regardless of age. When the upstream
// lookup fails and a stale cached state exists, the cached state is
// returned instead of the error.
func (t *StatusTracker) GetStatus(ctx context.Context, txHash, userAddress string) (Status, error) {
	key := statusCacheKey(txHash, userAddress)

	t.mu.Lock()
	entry, cached := t.cache[key]
	t.mu.Unlock()

	if cached {
		if entry.status.State == types.StateClaimed {
			return entry.status, nil
		}
		if t.now().Sub(entry.fetchedAt) < t.ttl {
			return entry.status, nil
		}
	}

	txs, err := t.attestation.UserTransactions(ctx, userAddress)
	if err != nil {
		if cached {
			log.Printf("status lookup for %s failed, serving cached state %s: %v", txHash, entry.status.State, err)
			return entry.status, nil
		}
		return Status{}, &Error{Kind: KindUpstream, Op: "status", TxHash: txHash, Err: err}
	}

	var match *AttestationTx
	for i := range txs {
		if strings.EqualFold(txs[i].TransactionHash, txHash) {
			match = &txs[i]
			break
		}
	}

	if match == nil {
		// Not indexed yet. The transaction may still be propagating, so
		// keep whatever state we already had, defaulting to PENDING.
		status := Status{State: types.StatePending}
		if cached {
			status = entry.status
		}
		t.putCache(key, status)
		return status, nil
	}

	status := Status{
		State:             types.ParseTransactionState(match.Status),
		DestinationTxHash: match.ClaimTransactionHash,
		Details: &StatusDetails{
			SourceNetwork:      match.SourceNetwork,
			DestinationNetwork: match.DestinationNetwork,
			Timestamp:          match.Timestamp,
			Amounts:            match.Amounts,
			OriginTokenAddress: match.OriginTokenAddress,
		},
	}

	t.putCache(key, status)
	t.snapshotRecord(txHash, userAddress, match, status)
	return status, nil
}

func (t *StatusTracker) putCache(key string, status Status) {
	t.mu.Lock()
	t.cache[key] = statusEntry{status: status, fetchedAt: t.now()}
	t.mu.Unlock()
}

// snapshotRecord persists the latest known state so the activity
// endpoint can serve history without hitting the attestation API.
func (t *StatusTracker) snapshotRecord(txHash, userAddress string, tx *AttestationTx, status Status) {
	if t.store == nil {
		return
	}

	rec, err := t.store.Get(txHash, userAddress)
	if err != nil {
		log.Printf("cannot read bridge record %s: %v", txHash, err)
		return
	}
	if rec == nil {
		rec = &types.BridgeTransactionRecord{
			SourceTxHash:       txHash,
			UserAddress:        userAddress,
			SourceNetwork:      tx.SourceNetwork,
			DestinationNetwork: tx.DestinationNetwork,
			OriginToken:        tx.OriginTokenAddress,
		}
		if len(tx.Amounts) > 0 {
			rec.Amount = tx.Amounts[0]
		}
	}

	nowUnix := t.now().Unix()
	if rec.State != status.State {
		if status.State == types.StateBridged && rec.TsBridged == 0 {
			rec.TsBridged = nowUnix
		}
		if status.State == types.StateClaimed && rec.TsClaimed == 0 {
			rec.TsClaimed = nowUnix
		}
	}
	rec.State = status.State
	rec.DestinationTxHash = status.DestinationTxHash
	rec.TsUpdated = nowUnix

	if err := t.store.Upsert(rec); err != nil {
		log.Printf("cannot persist bridge record %s: %v", txHash, err)
	}
}

// MarkClaimed records a successful claim immediately so follow-up
// status checks do not wait for the attestation API to catch up.
func (t *StatusTracker) MarkClaimed(txHash, userAddress, destinationTxHash string) {
	key := statusCacheKey(txHash, userAddress)

	t.mu.Lock()
	entry := t.cache[key]
	entry.status.State = types.StateClaimed
	if destinationTxHash != "" {
		entry.status.DestinationTxHash = destinationTxHash
	}
	entry.fetchedAt = t.now()
	t.cache[key] = entry
	status := entry.status
	t.mu.Unlock()

	if t.store == nil {
		return
	}
	rec, err := t.store.Get(txHash, userAddress)
	if err != nil || rec == nil {
		return
	}
	rec.State = types.StateClaimed
	rec.DestinationTxHash = status.DestinationTxHash
	if rec.TsClaimed == 0 {
		rec.TsClaimed = t.now().Unix()
	}
	rec.TsUpdated = t.now().Unix()
	if err := t.store.Upsert(rec); err != nil {
		log.Printf("cannot persist bridge record %s: %v", txHash, err)
	}
}
