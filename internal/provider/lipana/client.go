package lipana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Client talks to the Lipana mobile-money rail. A push request prompts the
// customer's phone for a PIN; the final outcome arrives later on the webhook.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type pushRequest struct {
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
}

// PushResponse is the rail's acceptance payload. The transaction id appears
// under either key depending on the API revision.
type PushResponse struct {
	Message string `json:"message"`
	Data    struct {
		TransactionID    string `json:"transactionId"`
		TransactionIDAlt string `json:"transaction_id"`
	} `json:"data"`
	Raw json.RawMessage `json:"-"`
}

// Reference returns the rail-assigned transaction id, whichever key carried
// it.
func (r *PushResponse) Reference() string {
	if r.Data.TransactionID != "" {
		return r.Data.TransactionID
	}
	return r.Data.TransactionIDAlt
}

// PushSTK initiates a push payment of amount KES to the given phone.
func (c *Client) PushSTK(ctx context.Context, phone string, amount decimal.Decimal) (*PushResponse, error) {
	body, err := json.Marshal(pushRequest{Phone: phone, Amount: amount.InexactFloat64()})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/transactions/push-stk", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lipana push: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lipana push: read body: %w", err)
	}

	var out PushResponse
	if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("lipana push: decode: %w", err)
	}
	out.Raw = raw

	if resp.StatusCode >= 300 {
		msg := out.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("lipana push failed: %s", msg)
	}
	return &out, nil
}
