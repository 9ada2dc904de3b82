package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"golxlybridge/bridge"
	"golxlybridge/types"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
)

type CrossChainSwapRequest struct {
	TokenSelection string `json:"tokenSelection"`
	Amount         string `json:"amount"`
	UserAddress    string `json:"userAddress"`
}

type CrossChainSwapResponse struct {
	Status string             `json:"status"`
	Result *bridge.SwapResult `json:"result,omitempty"`
}

func (h *Handler) CrossChainSwap(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading request body: %s", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error reading request body",
		}, http.StatusBadRequest)
		return
	}

	var req CrossChainSwapRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		log.Printf("Error unmarshalling request body: %s\n", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot unmarshal input JSON",
		}, http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(req.UserAddress) {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "userAddress",
			Message: "No ethereum address or invalid address provided",
		}, http.StatusBadRequest)
		return
	}
	if err := ethav.Validate(common.HexToAddress(req.UserAddress).Hex()); err != nil {
		log.Printf("Error validating user address '%s': %s\n", req.UserAddress, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "userAddress",
			Message: "No ethereum address or invalid address provided",
		}, http.StatusBadRequest)
		return
	}

	if req.Amount == "" {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "amount",
			Message: "No amount provided",
		}, http.StatusBadRequest)
		return
	}

	selection := types.TokenSelection(req.TokenSelection)
	if selection != types.TokenAToB && selection != types.TokenBToA {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "tokenSelection",
			Message: "Token selection not provided or not supported",
		}, http.StatusBadRequest)
		return
	}

	result, err := h.Service.ChainSwap(r.Context(), bridge.SwapParams{
		TokenSelection: selection,
		Amount:         req.Amount,
		UserAddress:    common.HexToAddress(req.UserAddress),
	})
	if err != nil {
		log.Printf("Error executing cross-chain swap for %s: %s\n", req.UserAddress, err.Error())
		code := http.StatusInternalServerError
		message := "Error executing cross-chain swap"
		switch bridge.KindOf(err) {
		case bridge.KindPrecondition:
			code = http.StatusBadRequest
			message = err.Error()
		case bridge.KindUpstream:
			code = http.StatusBadGateway
			message = "Upstream RPC unavailable, try again later"
		case bridge.KindNonceConflict:
			code = http.StatusConflict
			message = "Transaction submission conflict, try again"
		}
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: message,
		}, code)
		return
	}

	responseJSON(w, &CrossChainSwapResponse{
		Status: "ok",
		Result: result,
	}, http.StatusOK)
}
