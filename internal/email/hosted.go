package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
)

// HostedClient posts messages to the hosted send-email function.
type HostedClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ Sender = (*HostedClient)(nil)

func NewHostedClient(endpoint, apiKey string, timeout time.Duration) *HostedClient {
	return &HostedClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HostedClient) Send(ctx context.Context, msg Message) (Receipt, error) {
	if c.endpoint == "" || c.apiKey == "" {
		return Receipt{}, fmt.Errorf("%w: email endpoint or api key missing", domain.ErrConfig)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: marshal message: %v", ErrDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: create request: %v", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: execute request: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: read response: %v", ErrDelivery, err)
	}

	var receipt Receipt
	decodeErr := json.Unmarshal(body, &receipt)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := strings.TrimSpace(string(body))
		if decodeErr == nil && receipt.Error != "" {
			reason = receipt.Error
		}
		return Receipt{}, fmt.Errorf("%w: status %d: %s", ErrDelivery, resp.StatusCode, reason)
	}
	if decodeErr != nil {
		return Receipt{}, fmt.Errorf("%w: decode response: %v", ErrDelivery, decodeErr)
	}
	if !receipt.Success {
		return receipt, fmt.Errorf("%w: %s", ErrDelivery, receipt.Error)
	}
	return receipt, nil
}
