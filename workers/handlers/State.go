package handlers

import (
	"net/http"
)

// prev. bridge implementation compatibility
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, &APIStateResponse{
		Status: "ok",
	}, http.StatusOK)
}
