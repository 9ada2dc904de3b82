package handlers

import (
	"log"
	"net/http"

	"golxlybridge/types"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
)

type BridgeActivityResponse struct {
	Status string                           `json:"status"`
	Result []*types.BridgeTransactionRecord `json:"result"`
}

// BridgeActivity lists the recorded bridge transactions for a user.
func (h *Handler) BridgeActivity(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")

	if !common.IsHexAddress(address) {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "address",
			Message: "No ethereum address or invalid address provided",
		}, http.StatusBadRequest)
		return
	}
	if err := ethav.Validate(common.HexToAddress(address).Hex()); err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "address",
			Message: "No ethereum address or invalid address provided",
		}, http.StatusBadRequest)
		return
	}

	recs, err := h.Service.Store().FindByAddress(address)
	if err != nil {
		log.Printf("Error listing bridge activity for %s: %s\n", address, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error listing bridge activity",
		}, http.StatusInternalServerError)
		return
	}

	if recs == nil {
		recs = []*types.BridgeTransactionRecord{}
	}

	responseJSON(w, &BridgeActivityResponse{
		Status: "ok",
		Result: recs,
	}, http.StatusOK)
}
