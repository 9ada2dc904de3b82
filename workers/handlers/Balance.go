package handlers

import (
	"log"
	"net/http"

	"golxlybridge/config"

	"github.com/ethereum/go-ethereum/common"
)

func (h *Handler) BalanceSource(w http.ResponseWriter, r *http.Request) {
	h.tokenBalances(w, r, 0)
}

func (h *Handler) BalanceDestination(w http.ResponseWriter, r *http.Request) {
	h.tokenBalances(w, r, 1)
}

type balanceResponse struct {
	Status   string            `json:"status"`
	Network  string            `json:"network"`
	Balances map[string]string `json:"balances"`
}

// tokenBalances reports the custodian signer's raw token balances on one
// network, one entry per catalog token.
func (h *Handler) tokenBalances(w http.ResponseWriter, r *http.Request, networkID uint32) {
	backend := h.Service.Backend(networkID)
	signer := h.Service.Signer()

	balances := make(map[string]string, len(config.Tokens[networkID]))
	for name, addr := range config.Tokens[networkID] {
		bal, err := backend.TokenBalance(r.Context(), common.HexToAddress(addr), signer)
		if err != nil {
			log.Printf("Error getting %s balance on network %d: %s", name, networkID, err.Error())
			responsePlain(w, []byte("error"), http.StatusInternalServerError)
			return
		}
		balances[name] = bal.String()
	}

	responseJSON(w, &balanceResponse{
		Status:   "ok",
		Network:  config.Networks[networkID].Name,
		Balances: balances,
	}, http.StatusOK)
}
