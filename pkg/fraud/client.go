package fraud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrServiceUnavailable means the risk service could not produce a
// verdict: network failure, bad status, or a malformed response. The
// service is untrusted, so none of these ever count as an approval.
var ErrServiceUnavailable = errors.New("fraud check service unavailable")

// RejectedLabel is the canonical verdict value that blocks a transfer.
const RejectedLabel = "fraudulent"

// CheckRequest is the payload sent to the risk-scoring endpoint.
type CheckRequest struct {
	Sender       string `json:"sender"`
	Receiver     string `json:"receiver"`
	Amount       string `json:"amount"`
	Token        string `json:"token"`
	TokenAddress string `json:"tokenAddress,omitempty"`
}

// Verdict is the risk service's decision on one transfer request.
type Verdict struct {
	Rejected bool
	Label    string
	Raw      json.RawMessage
}

// AuditEntry is the payload recorded for a rejected transfer attempt.
type AuditEntry struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
	Token    string `json:"token"`
}

// Client talks to the external fraud-check service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a fraud-check client. The timeout bounds every call
// so an unresponsive risk service cannot block a transfer indefinitely.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Check submits a transfer for risk scoring and returns the verdict.
//
// The service has keyed its verdict on both a "prediction" and a "status"
// field over time; "prediction" is canonical here and "status" is accepted
// as a legacy alias. A response carrying neither is malformed and maps to
// an error, never to an implicit approval.
func (c *Client) Check(ctx context.Context, req CheckRequest) (*Verdict, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode check request: %w", err)
	}

	raw, err := c.post(ctx, "/predict", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	var resp struct {
		Prediction string `json:"prediction"`
		Status     string `json:"status"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrServiceUnavailable, err)
	}

	label := resp.Prediction
	if label == "" {
		label = resp.Status
	}
	if label == "" {
		return nil, fmt.Errorf("%w: response carries no verdict", ErrServiceUnavailable)
	}

	return &Verdict{
		Rejected: label == RejectedLabel,
		Label:    label,
		Raw:      raw,
	}, nil
}

// ReportFraud records a rejected transfer attempt in the audit log.
// Callers treat failures as non-fatal.
func (c *Client) ReportFraud(ctx context.Context, entry AuditEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	if _, err := c.post(ctx, "/logFraud", body); err != nil {
		return fmt.Errorf("failed to record fraud attempt: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Try to surface the service's own error message.
		var errorResp map[string]interface{}
		if jsonErr := json.Unmarshal(respBody, &errorResp); jsonErr == nil {
			if message, ok := errorResp["error"].(string); ok {
				return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, message)
			}
		}
		return nil, fmt.Errorf("API returned status code %d", resp.StatusCode)
	}

	return respBody, nil
}
