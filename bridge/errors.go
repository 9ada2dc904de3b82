package bridge

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind tags the single error type every component raises. Boundary
// handlers map kinds to HTTP categories; core logic never does.
type Kind int

const (
	KindInternal Kind = iota
	// rate limiting or upstream 5xx, retries already exhausted
	KindUpstream
	// second nonce conflict after one recovery attempt
	KindNonceConflict
	// insufficient balance, missing configuration, invalid input
	KindPrecondition
	// message already claimed or claim reverted, benign for the caller
	KindAlreadyClaimed
	// bridge transaction unknown to the proof/attestation services
	KindNotFound
)

// Error carries enough structured context for the boundary to classify
// without re-parsing messages.
type Error struct {
	Kind   Kind
	Op     string
	TxHash string
	Nonce  uint64
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Err)
	if e.TxHash != "" {
		msg += fmt.Sprintf(" (tx %s)", e.TxHash)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind from any error in the chain.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

var nonceSuggestionRe = regexp.MustCompile(`next nonce (\d+)`)

// isNonceTooLow matches the broadcast failure produced when another
// transaction consumed the nonce first. These come out of upstream
// libraries as free text.
func isNonceTooLow(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "nonce too low")
}

// parseSuggestedNonce pulls the chain-suggested next nonce out of the
// error text when the node includes one.
func parseSuggestedNonce(err error) (uint64, bool) {
	m := nonceSuggestionRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	n, convErr := strconv.ParseUint(m[1], 10, 64)
	if convErr != nil {
		return 0, false
	}
	return n, true
}

// looksAlreadyClaimed matches revert shapes seen when the message half
// was claimed before us. Kept as a text fallback for errors originating
// in uncontrolled upstream layers.
func looksAlreadyClaimed(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already claimed") ||
		strings.Contains(msg, "alreadyclaimed") ||
		strings.Contains(msg, "reverted") ||
		strings.Contains(msg, "call_exception")
}

func looksNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no transaction")
}
