package handlers

import "golxlybridge/bridge"

// Handler holds the service dependencies injected at startup. Routes
// are methods on it; there is no handler-level global state.
type Handler struct {
	Service *bridge.Service
}

func New(service *bridge.Service) *Handler {
	return &Handler{Service: service}
}

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type APIStateResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
