package workers

import (
	"context"
	"log"
	"time"

	"golxlybridge/bridge"
	"golxlybridge/types"
)

// states worth re-checking against the attestation API
var refreshStates = []types.TransactionState{
	types.StatePending,
	types.StateBridged,
	types.StateReadyToClaim,
}

// Worker_refreshStatus periodically re-resolves every non-terminal
// bridge record so the activity listing stays current even when no user
// is polling. Terminal records are never touched again.
func Worker_refreshStatus(service *bridge.Service) {
	for !WorkerShutdown {
		// attestation indexing lags the chain by a block or two, no
		// point polling faster than that
		time.Sleep(30 * time.Second)

		for _, state := range refreshStates {
			recs, err := service.Store().FindAllByState(state)
			if err != nil {
				log.Printf("Error listing %s records for refresh: %s", state, err.Error())
				continue
			}

			for _, rec := range recs {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				status, err := service.Tracker().GetStatus(ctx, rec.SourceTxHash, rec.UserAddress)
				cancel()
				if err != nil {
					log.Printf("Error refreshing status of %s: %s", rec.SourceTxHash, err.Error())
					continue
				}
				if status.State != rec.State {
					log.Printf("Bridge transaction %s moved %s -> %s", rec.SourceTxHash, rec.State, status.State)
				}
			}
		}
	}
}
