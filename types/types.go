package types

import (
	"math/big"
	"strings"
)

// network ids follow the LxLy numbering:
// 0 is the L1 (Sepolia), 1 is the rollup (Cardona)

// TransactionState is the local view of a bridge transaction, driven by
// the attestation API. CLAIMED and FAILED are terminal.
type TransactionState string

const (
	StatePending      TransactionState = "PENDING"
	StateBridged      TransactionState = "BRIDGED"
	StateReadyToClaim TransactionState = "READY_TO_CLAIM"
	StateClaimed      TransactionState = "CLAIMED"
	StateFailed       TransactionState = "FAILED"
)

// Terminal states are never re-verified against the attestation API.
func (s TransactionState) Terminal() bool {
	return s == StateClaimed || s == StateFailed
}

// ParseTransactionState maps an attestation API status string onto the
// local state machine. Anything unrecognized is PENDING.
func ParseTransactionState(status string) TransactionState {
	switch strings.ToUpper(status) {
	case "BRIDGED":
		return StateBridged
	case "READY_TO_CLAIM":
		return StateReadyToClaim
	case "CLAIMED":
		return StateClaimed
	case "FAILED":
		return StateFailed
	default:
		return StatePending
	}
}

// BridgeRequest is a single bridge-and-call attempt, built once per user
// action and immutable once submitted.
type BridgeRequest struct {
	SourceToken        string
	Amount             *big.Int // smallest unit
	DestinationToken   string
	DestinationNetwork uint32
	Recipient          string
	Calldata           []byte
	ForceUpdateGER     bool
	PermitData         []byte
}

// BridgeTransactionRecord is keyed by source tx hash + user address. It is
// created when a bridge transaction is first observed and only ever
// superseded by a newer snapshot, never deleted.
type BridgeTransactionRecord struct {
	ID                 string
	SourceTxHash       string
	UserAddress        string
	State              TransactionState
	DestinationTxHash  string
	SourceNetwork      uint32
	DestinationNetwork uint32
	Amount             string // smallest unit, decimal string
	OriginToken        string
	TsBridged          int64
	TsClaimed          int64
	TsUpdated          int64
}

// ClaimPayload carries the proof material and routing fields needed to
// submit a message claim. Fetched fresh for each attempt, never persisted.
type ClaimPayload struct {
	SmtProof           []string `json:"smtProof"`
	SmtProofRollup     []string `json:"smtProofRollup"`
	GlobalIndex        string   `json:"globalIndex"`
	MainnetExitRoot    string   `json:"mainnetExitRoot"`
	RollupExitRoot     string   `json:"rollupExitRoot"`
	OriginNetwork      uint32   `json:"originNetwork"`
	OriginTokenAddress string   `json:"originTokenAddress"`
	DestinationNetwork uint32   `json:"destinationNetwork"`
	DestinationAddress string   `json:"destinationAddress"`
	Amount             string   `json:"amount"`
	Metadata           string   `json:"metadata"`
	DepositCount       uint64   `json:"depositCount"`
}

// MinimizedReceipt is what callers get back after a confirmed
// transaction: just enough to display and link.
type MinimizedReceipt struct {
	BlockNumber     uint64 `json:"blockNumber"`
	TransactionHash string `json:"transactionHash"`
	Status          uint64 `json:"status"`
}

// TokenSelection mirrors the two supported swap directions.
type TokenSelection string

const (
	TokenAToB TokenSelection = "TOKEN_A_TO_B"
	TokenBToA TokenSelection = "TOKEN_B_TO_A"
)

type TokenInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Network string `json:"network"`
}

type TokenOption struct {
	Value            TokenSelection `json:"value"`
	Label            string         `json:"label"`
	SourceToken      TokenInfo      `json:"sourceToken"`
	DestinationToken TokenInfo      `json:"destinationToken"`
}
