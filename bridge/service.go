// Package bridge implements the cross-chain swap workflow: nonce-safe
// submission, allowance management, the bridge-and-call orchestrator,
// attestation-driven status tracking, and the message claim flow.
package bridge

import (
	"time"

	"golxlybridge/EVMRPC"
	"golxlybridge/config"
	"golxlybridge/lxly"
	"golxlybridge/records"

	"github.com/ethereum/go-ethereum/common"
)

// Service owns the long-lived state the workflows share: one chain
// backend per network, the per-network submission locks, and the status
// cache. Handlers receive it injected; there are no package globals.
type Service struct {
	backends  map[uint32]ChainBackend
	bridge    lxly.BridgeClient
	submitter *Submitter
	tracker   *StatusTracker
	store     records.Store
	signer    common.Address

	sourceNetwork uint32
	destNetwork   uint32
}

// NewService wires a service from explicit parts. Production uses
// DefaultService; tests pass fakes.
func NewService(store records.Store, bridgeClient lxly.BridgeClient, attestation *AttestationClient, backends map[uint32]ChainBackend, signer common.Address) *Service {
	s := &Service{
		backends:      backends,
		bridge:        bridgeClient,
		store:         store,
		signer:        signer,
		sourceNetwork: 0,
		destNetwork:   1,
	}
	s.submitter = NewSubmitter(signer, backends)
	s.tracker = NewStatusTracker(attestation, store, config.STATUS_CACHE_TTL_SECONDS*time.Second)
	return s
}

// DefaultService builds the production wiring from config.
func DefaultService(store records.Store) *Service {
	retrier := EVMRPC.DefaultRetrier()
	backends := make(map[uint32]ChainBackend, len(config.Networks))
	for id := range config.Networks {
		backends[id] = NewEthBackend(id, retrier)
	}
	attestation := NewAttestationClient(config.Config.Attestation.URL, config.Config.Attestation.APIKey)
	signer := common.HexToAddress(config.Config.Signer.PublicAddress)
	return NewService(store, lxly.NewClient(), attestation, backends, signer)
}

func (s *Service) network(id uint32) config.NetworkConfig {
	return config.Networks[id]
}

func (s *Service) Tracker() *StatusTracker {
	return s.tracker
}

func (s *Service) Store() records.Store {
	return s.store
}

func (s *Service) Backend(id uint32) ChainBackend {
	return s.backends[id]
}

func (s *Service) Signer() common.Address {
	return s.signer
}
