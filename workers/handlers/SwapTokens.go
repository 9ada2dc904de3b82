package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"golxlybridge/bridge"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
)

type SwapTokensRequest struct {
	TokenIn     string `json:"tokenIn"`
	TokenOut    string `json:"tokenOut"`
	Amount      string `json:"amount"`
	UserAddress string `json:"userAddress"`
}

type SwapTokensResponse struct {
	Status string                  `json:"status"`
	Result *bridge.TokenSwapResult `json:"result,omitempty"`
}

// SwapTokens handles a same-chain swap through the source network
// router, without bridging.
func (h *Handler) SwapTokens(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading request body: %s", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error reading request body",
		}, http.StatusBadRequest)
		return
	}

	var req SwapTokensRequest
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

	if !common.IsHexAddress(req.TokenIn) {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "tokenIn",
			Message: "No token address or invalid address provided",
		}, http.StatusBadRequest)
		return
	}
	if !common.IsHexAddress(req.TokenOut) {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "tokenOut",
			Message: "No token address or invalid address provided",
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

	result, err := h.Service.SwapTokens(r.Context(), bridge.TokenSwapParams{
		TokenIn:     common.HexToAddress(req.TokenIn),
		TokenOut:    common.HexToAddress(req.TokenOut),
		Amount:      req.Amount,
		UserAddress: common.HexToAddress(req.UserAddress),
	})
	if err != nil {
		log.Printf("Error executing token swap for %s: %s\n", req.UserAddress, err.Error())
		code := http.StatusInternalServerError
		message := "Error executing token swap"
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

	responseJSON(w, &SwapTokensResponse{
		Status: "ok",
		Result: result,
	}, http.StatusOK)
}
