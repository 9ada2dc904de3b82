package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// AttestationTx is one entry of the attestation API's per-user
// transaction listing.
type AttestationTx struct {
	TransactionHash           string   `json:"transactionHash"`
	Status                    string   `json:"status"`
	SourceNetwork             uint32   `json:"sourceNetwork"`
	DestinationNetwork        uint32   `json:"destinationNetwork"`
	Timestamp                 string   `json:"timestamp"`
	Amounts                   []string `json:"amounts"`
	OriginTokenAddress        string   `json:"originTokenAddress"`
	ClaimTransactionHash      string   `json:"claimTransactionHash"`
	ClaimTransactionTimestamp string   `json:"claimTransactionTimestamp"`
}

type attestationResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  []AttestationTx `json:"result"`
}

// AttestationClient looks up bridge transactions on the external
// attestation API, authenticated by API key.
type AttestationClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewAttestationClient(baseURL, apiKey string) *AttestationClient {
	return &AttestationClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// UserTransactions lists every bridge transaction the API knows for the
// user address.
func (c *AttestationClient) UserTransactions(ctx context.Context, userAddress string) ([]AttestationTx, error) {
	endpoint := fmt.Sprintf("%s/transactions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("userAddress", userAddress)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attestation API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attestation API: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed attestationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("attestation API: cannot unmarshal response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("attestation API returned unsuccessful response: %s", parsed.Message)
	}
	return parsed.Result, nil
}
