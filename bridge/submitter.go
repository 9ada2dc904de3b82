package bridge

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// TxBuilder broadcasts one transaction using the explicit nonce it is
// given and returns the broadcast hash.
type TxBuilder func(nonce uint64) (common.Hash, error)

// Submitter serializes outgoing transactions per (signer, network) so no
// two concurrent submissions ever read the same latest nonce. The chain
// is the nonce source of truth; there is no in-memory counter to drift.
type Submitter struct {
	signer   common.Address
	backends map[uint32]ChainBackend

	mu    sync.Mutex
	locks map[uint32]*sync.Mutex
}

func NewSubmitter(signer common.Address, backends map[uint32]ChainBackend) *Submitter {
	return &Submitter{
		signer:   signer,
		backends: backends,
		locks:    make(map[uint32]*sync.Mutex),
	}
}

func (s *Submitter) networkLock(networkID uint32) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[networkID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[networkID] = l
	}
	return l
}

// Submit fetches the latest confirmed nonce, broadcasts through build,
// and recovers from a single "nonce too low" race: first by parsing the
// chain-suggested nonce out of the error, else by re-fetching. A second
// failure is fatal and surfaced with full context.
//
// Transient rate-limit retries happen below this layer, inside the
// backend's resilience wrapper; the single nonce retry here addresses a
// different failure class and must stay separate.
func (s *Submitter) Submit(ctx context.Context, networkID uint32, build TxBuilder) (common.Hash, error) {
	lock := s.networkLock(networkID)
	lock.Lock()
	defer lock.Unlock()

	backend, ok := s.backends[networkID]
	if !ok {
		return common.Hash{}, &Error{
			Kind: KindPrecondition,
			Op:   "submit",
			Err:  fmt.Errorf("no backend configured for network %d", networkID),
		}
	}

	nonce, err := backend.LatestNonce(ctx, s.signer)
	if err != nil {
		return common.Hash{}, &Error{Kind: KindUpstream, Op: "submit: fetch nonce", Err: err}
	}
	log.Printf("Current nonce for %s on network %d: %d", s.signer.Hex(), networkID, nonce)

	hash, err := build(nonce)
	if err == nil {
		return hash, nil
	}
	if !isNonceTooLow(err) {
		return common.Hash{}, &Error{Kind: KindInternal, Op: "submit: broadcast", Nonce: nonce, TxHash: hash.Hex(), Err: err}
	}

	// nonce race: recover once
	corrected, ok := parseSuggestedNonce(err)
	if ok {
		log.Printf("Extracted correct nonce from error: %d", corrected)
	} else {
		corrected, err = backend.LatestNonce(ctx, s.signer)
		if err != nil {
			return common.Hash{}, &Error{Kind: KindUpstream, Op: "submit: re-fetch nonce", Err: err}
		}
		log.Printf("Re-fetched latest nonce: %d", corrected)
	}

	log.Printf("Retrying transaction with nonce %d", corrected)
	hash, err = build(corrected)
	if err != nil {
		return common.Hash{}, &Error{
			Kind:   KindNonceConflict,
			Op:     "submit: broadcast retry",
			Nonce:  corrected,
			TxHash: hash.Hex(),
			Err:    fmt.Errorf("failed even with corrected nonce %d: %w", corrected, err),
		}
	}
	return hash, nil
}
