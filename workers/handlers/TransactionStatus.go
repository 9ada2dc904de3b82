package handlers

import (
	"log"
	"net/http"

	"golxlybridge/bridge"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
)

type TransactionStatusResponse struct {
	Status string        `json:"status"`
	Result bridge.Status `json:"result"`
}

func (h *Handler) TransactionStatus(w http.ResponseWriter, r *http.Request) {
	txHash := r.URL.Query().Get("txHash")
	address := r.URL.Query().Get("address")

	if txHash == "" {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "txHash",
			Message: "No transaction hash provided",
		}, http.StatusBadRequest)
		return
	}

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

	status, err := h.Service.Tracker().GetStatus(r.Context(), txHash, address)
	if err != nil {
		log.Printf("Error checking status of %s: %s\n", txHash, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error checking transaction status",
		}, http.StatusBadGateway)
		return
	}

	responseJSON(w, &TransactionStatusResponse{
		Status: "ok",
		Result: status,
	}, http.StatusOK)
}
