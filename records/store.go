// Package records persists bridge transaction snapshots. The Redis store
// is the production backend; the memory store backs tests and runs
// without a Redis instance.
package records

import "golxlybridge/types"

// Store is the persistence boundary for bridge transaction records.
type Store interface {
	// Upsert supersedes any previous snapshot for the same
	// (source tx hash, user address) key.
	Upsert(rec *types.BridgeTransactionRecord) error
	// Get returns nil, nil when no record exists for the key.
	Get(txHash, address string) (*types.BridgeTransactionRecord, error)
	// FindByAddress lists all records for a user, newest first not guaranteed.
	FindByAddress(address string) ([]*types.BridgeTransactionRecord, error)
	// FindAllByState lists every record currently in the given state.
	FindAllByState(state types.TransactionState) ([]*types.BridgeTransactionRecord, error)
}
