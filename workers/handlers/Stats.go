package handlers

import (
	"net/http"

	"golxlybridge/types"
)

func (h *Handler) GetFailedTransactions(w http.ResponseWriter, r *http.Request) {
	failedTxs, err := h.Service.Store().FindAllByState(types.StateFailed)

	if err != nil {
		responseJSON(w, nil, 500)
		return
	}

	responseJSON(w, failedTxs, 200)
}

func (h *Handler) GetClaimedTransactions(w http.ResponseWriter, r *http.Request) {
	claimedTxs, err := h.Service.Store().FindAllByState(types.StateClaimed)

	if err != nil {
		responseJSON(w, nil, 500)
		return
	}

	responseJSON(w, claimedTxs, 200)
}
