// Package gateway holds the outbound clients for the WhatsApp messaging
// gateways the bot can run behind. Both variants expose the same Sender
// surface; delivery is attempted exactly once and failures are reported
// upward for logging only.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Sender is the outbound contract consumed by the webhook handler.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	SendVoice(ctx context.Context, to string, audio []byte) error
}

type apiError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message,omitempty"`
	Detail     string `json:"error,omitempty"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway: %s (status=%d)", e.Message, e.StatusCode)
	}
	if e.Detail != "" {
		return fmt.Sprintf("gateway: %s (status=%d)", e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("gateway: http status %d", e.StatusCode)
}

func decodeAPIError(status int, body []byte) error {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &apiError{StatusCode: status, Detail: string(body)}
	}
	parsed.StatusCode = status
	return &parsed
}

// postJSON issues a single JSON POST and treats any non-2xx status as an
// API error. No retries: the webhook contract is try once, log, move on.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gateway: marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, body)
	}
	return nil
}
