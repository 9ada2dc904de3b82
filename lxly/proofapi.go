package lxly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golxlybridge/types"
)

type proofAPIResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Result  *types.ClaimPayload `json:"result"`
}

// BuildPayloadForClaim asks the proof API for the claim payload of one
// half of a bridge transaction. bridgeIndex selects which half: 0 is the
// asset, 1 the message.
func (c *Client) BuildPayloadForClaim(ctx context.Context, srcTxHash string, srcNetwork uint32, bridgeIndex int) (*types.ClaimPayload, error) {
	endpoint := fmt.Sprintf("%s/claim-payload", c.proofAPI)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("txHash", srcTxHash)
	q.Set("networkId", strconv.FormatUint(uint64(srcNetwork), 10))
	q.Set("bridgeIndex", strconv.Itoa(bridgeIndex))
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proof API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("proof API: transaction %s not found", srcTxHash)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proof API: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed proofAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("proof API: cannot unmarshal response: %w", err)
	}
	if !parsed.Success || parsed.Result == nil {
		return nil, fmt.Errorf("proof API returned unsuccessful response: %s", parsed.Message)
	}
	return parsed.Result, nil
}
