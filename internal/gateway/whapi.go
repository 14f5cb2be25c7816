package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"
)

const defaultWhapiBaseURL = "https://gate.whapi.cloud"

// WhapiConfig controls how the Whapi client behaves.
type WhapiConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// WhapiClient sends messages through the Whapi gateway. Authentication is
// a bearer token on every request.
type WhapiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWhapiClient creates a configured client with sane defaults.
func NewWhapiClient(cfg WhapiConfig) (*WhapiClient, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("gateway: whapi token is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultWhapiBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WhapiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// SendText posts a plain text message to the recipient.
func (c *WhapiClient) SendText(ctx context.Context, to, body string) error {
	if strings.TrimSpace(to) == "" || strings.TrimSpace(body) == "" {
		return errors.New("gateway: recipient and body are required")
	}
	payload := struct {
		To   string `json:"to"`
		Body string `json:"body"`
	}{To: to, Body: body}
	c.logger.Debug("whapi send text", "to", to)
	return postJSON(ctx, c.httpClient, c.baseURL+"/messages/text", c.headers(), payload)
}

// SendVoice posts an OGG/Opus voice note as a base64 data URL.
func (c *WhapiClient) SendVoice(ctx context.Context, to string, audio []byte) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("gateway: recipient is required")
	}
	if len(audio) == 0 {
		return errors.New("gateway: audio payload is empty")
	}
	payload := struct {
		To    string `json:"to"`
		Media string `json:"media"`
	}{
		To:    to,
		Media: "data:audio/ogg;base64," + base64.StdEncoding.EncodeToString(audio),
	}
	c.logger.Debug("whapi send voice", "to", to, "bytes", len(audio))
	return postJSON(ctx, c.httpClient, c.baseURL+"/messages/voice", c.headers(), payload)
}

func (c *WhapiClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.token}
}
