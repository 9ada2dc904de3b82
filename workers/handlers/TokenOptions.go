package handlers

import (
	"fmt"
	"net/http"

	"golxlybridge/config"
	"golxlybridge/types"
)

type tokenOptionsResponse struct {
	Status  string              `json:"status"`
	Options []types.TokenOption `json:"options"`
}

// TokenOptions lists the supported swap directions with the token
// addresses on both networks. The catalog is static per deployment.
func (h *Handler) TokenOptions(w http.ResponseWriter, r *http.Request) {
	source := config.Networks[0]
	dest := config.Networks[1]

	options := []types.TokenOption{
		{
			Value: types.TokenAToB,
			Label: fmt.Sprintf("%s (%s) to %s (%s)", config.TOKEN_A_NAME, source.Name, config.TOKEN_B_NAME, dest.Name),
			SourceToken: types.TokenInfo{
				Address: config.Tokens[source.ID]["TOKEN_A"],
				Name:    config.TOKEN_A_NAME,
				Network: source.Name,
			},
			DestinationToken: types.TokenInfo{
				Address: config.Tokens[dest.ID]["TOKEN_B"],
				Name:    config.TOKEN_B_NAME,
				Network: dest.Name,
			},
		},
		{
			Value: types.TokenBToA,
			Label: fmt.Sprintf("%s (%s) to %s (%s)", config.TOKEN_B_NAME, source.Name, config.TOKEN_A_NAME, dest.Name),
			SourceToken: types.TokenInfo{
				Address: config.Tokens[source.ID]["TOKEN_B"],
				Name:    config.TOKEN_B_NAME,
				Network: source.Name,
			},
			DestinationToken: types.TokenInfo{
				Address: config.Tokens[dest.ID]["TOKEN_A"],
				Name:    config.TOKEN_A_NAME,
				Network: dest.Name,
			},
		},
	}

	responseJSON(w, &tokenOptionsResponse{
		Status:  "ok",
		Options: options,
	}, http.StatusOK)
}
