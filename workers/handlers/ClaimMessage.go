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

type ClaimMessageRequest struct {
	BridgeTransactionHash string `json:"bridgeTransactionHash"`
	UserAddress           string `json:"userAddress"`
}

type ClaimMessageResponse struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Result  *bridge.ClaimResult `json:"result,omitempty"`
}

func (h *Handler) ClaimMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading request body: %s", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error reading request body",
		}, http.StatusBadRequest)
		return
	}

	var req ClaimMessageRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		log.Printf("Error unmarshalling request body: %s\n", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot unmarshal input JSON",
		}, http.StatusBadRequest)
		return
	}

	if req.BridgeTransactionHash == "" {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "bridgeTransactionHash",
			Message: "No bridge transaction hash provided",
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
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "userAddress",
			Message: "No ethereum address or invalid address provided",
		}, http.StatusBadRequest)
		return
	}

	// The claim only makes sense once the message is claimable on the
	// destination network, so resolve the current state first.
	status, err := h.Service.Tracker().GetStatus(r.Context(), req.BridgeTransactionHash, req.UserAddress)
	if err != nil {
		log.Printf("Error checking status before claim of %s: %s\n", req.BridgeTransactionHash, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error checking transaction status",
		}, http.StatusBadGateway)
		return
	}

	switch status.State {
	case types.StateClaimed:
		responseJSON(w, &ClaimMessageResponse{
			Status:  "ok",
			Message: "Message already claimed",
		}, http.StatusOK)
		return
	case types.StateFailed:
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Bridge transaction failed, nothing to claim",
		}, http.StatusBadRequest)
		return
	case types.StatePending, types.StateBridged:
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Bridge transaction is not ready to claim yet",
		}, http.StatusBadRequest)
		return
	}

	result, err := h.Service.ClaimMessage(r.Context(), req.BridgeTransactionHash)
	if err != nil {
		log.Printf("Error claiming message for %s: %s\n", req.BridgeTransactionHash, err.Error())
		switch bridge.KindOf(err) {
		case bridge.KindAlreadyClaimed:
			responseJSON(w, &APIResponse{
				Status:  "error",
				Message: "Message was already claimed or the claim reverted",
			}, http.StatusConflict)
		case bridge.KindNotFound:
			responseJSON(w, &APIResponse{
				Status:  "error",
				Message: "Bridge transaction not found",
			}, http.StatusNotFound)
		case bridge.KindUpstream:
			responseJSON(w, &APIResponse{
				Status:  "error",
				Message: "Upstream RPC unavailable, try again later",
			}, http.StatusBadGateway)
		default:
			responseJSON(w, &APIResponse{
				Status:  "error",
				Message: "Error claiming message",
			}, http.StatusInternalServerError)
		}
		return
	}

	h.Service.Tracker().MarkClaimed(req.BridgeTransactionHash, req.UserAddress, result.TxHash)

	responseJSON(w, &ClaimMessageResponse{
		Status: "ok",
		Result: result,
	}, http.StatusOK)
}
