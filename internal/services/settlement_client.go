package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementClient is an HTTP client for the external custody wallet API.
// Transfers are initiated per principal wallet; the response body is the
// settlement verdict.
type SettlementClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSettlementClient creates a settlement gateway client
func NewSettlementClient(baseURL, apiKey string, timeout time.Duration) SettlementGateway {
	return &SettlementClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
}

type transferRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// Transfer initiates an external token transfer from the principal's wallet
// to the recipient address
func (c *SettlementClient) Transfer(ctx context.Context, fromPrincipal, toAddress string, amount decimal.Decimal) (*SettlementResult, error) {
	url := fmt.Sprintf("%s/wallets/userId:%s:evm/tokens/transfers", c.baseURL, fromPrincipal)

	body, err := json.Marshal(transferRequest{
		Recipient: toAddress,
		Amount:    amount.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("settlement request failed: %w", err)
	}
	defer resp.Body.Close()

	var result SettlementResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode settlement response: %w", err)
	}

	if resp.StatusCode >= 400 && result.Error == "" {
		result.OK = false
		result.Error = "http_error"
		result.Message = fmt.Sprintf("settlement gateway returned status %d", resp.StatusCode)
	}
	if resp.StatusCode < 400 && result.Error == "" {
		result.OK = true
	}

	c.logger.DebugContext(ctx, "settlement transfer attempted",
		slog.String("recipient", toAddress),
		slog.String("amount", amount.String()),
		slog.Bool("ok", result.OK),
	)

	return &result, nil
}
