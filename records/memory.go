package records

import (
	"strings"
	"sync"

	"golxlybridge/types"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with last-write-wins semantics.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]*types.BridgeTransactionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]*types.BridgeTransactionRecord)}
}

func memKey(txHash, address string) string {
	return strings.ToLower(txHash) + "_" + strings.ToLower(address)
}

func (s *MemoryStore) Upsert(rec *types.BridgeTransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	cp := *rec
	s.recs[memKey(rec.SourceTxHash, rec.UserAddress)] = &cp
	return nil
}

func (s *MemoryStore) Get(txHash, address string) (*types.BridgeTransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[memKey(txHash, address)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) FindAllByState(state types.TransactionState) ([]*types.BridgeTransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.BridgeTransactionRecord, 0)
	for _, rec := range s.recs {
		if rec.State == state {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) FindByAddress(address string) ([]*types.BridgeTransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.BridgeTransactionRecord, 0)
	for _, rec := range s.recs {
		if strings.EqualFold(rec.UserAddress, address) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}
