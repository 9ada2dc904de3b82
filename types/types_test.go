package types

import "testing"

func TestParseTransactionState(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionState
	}{
		{"PENDING", StatePending},
		{"BRIDGED", StateBridged},
		{"READY_TO_CLAIM", StateReadyToClaim},
		{"CLAIMED", StateClaimed},
		{"FAILED", StateFailed},
		{"ready_to_claim", StateReadyToClaim},
		{"", StatePending},
		{"SOMETHING_NEW", StatePending},
	}
	for _, c := range cases {
		if got := ParseTransactionState(c.in); got != c.want {
			t.Errorf("ParseTransactionState(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestTransactionStateTerminal(t *testing.T) {
	terminal := map[TransactionState]bool{
		StatePending:      false,
		StateBridged:      false,
		StateReadyToClaim: false,
		StateClaimed:      true,
		StateFailed:       true,
	}
	for state, want := range terminal {
		if got := state.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", state, got, want)
		}
	}
}
