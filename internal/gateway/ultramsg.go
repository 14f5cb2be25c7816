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

const defaultUltraMsgBaseURL = "https://api.ultramsg.com"

// UltraMsgConfig controls how the UltraMsg client behaves.
type UltraMsgConfig struct {
	BaseURL    string
	InstanceID string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// UltraMsgClient sends messages through the UltraMsg gateway. UltraMsg
// authenticates with a token field in the request body rather than a
// header, and scopes every endpoint under the instance id.
type UltraMsgClient struct {
	baseURL    string
	instanceID string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewUltraMsgClient creates a configured client with sane defaults.
func NewUltraMsgClient(cfg UltraMsgConfig) (*UltraMsgClient, error) {
	if strings.TrimSpace(cfg.InstanceID) == "" {
		return nil, errors.New("gateway: ultramsg instance id is required")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("gateway: ultramsg token is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultUltraMsgBaseURL
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
	return &UltraMsgClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		instanceID: cfg.InstanceID,
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// SendText posts a plain text message to the recipient.
func (c *UltraMsgClient) SendText(ctx context.Context, to, body string) error {
	if strings.TrimSpace(to) == "" || strings.TrimSpace(body) == "" {
		return errors.New("gateway: recipient and body are required")
	}
	payload := struct {
		Token string `json:"token"`
		To    string `json:"to"`
		Body  string `json:"body"`
	}{Token: c.token, To: to, Body: body}
	c.logger.Debug("ultramsg send text", "to", to)
	return postJSON(ctx, c.httpClient, c.endpoint("chat"), nil, payload)
}

// SendVoice posts a voice note as base64 audio.
func (c *UltraMsgClient) SendVoice(ctx context.Context, to string, audio []byte) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("gateway: recipient is required")
	}
	if len(audio) == 0 {
		return errors.New("gateway: audio payload is empty")
	}
	payload := struct {
		Token string `json:"token"`
		To    string `json:"to"`
		Audio string `json:"audio"`
	}{Token: c.token, To: to, Audio: base64.StdEncoding.EncodeToString(audio)}
	c.logger.Debug("ultramsg send voice", "to", to, "bytes", len(audio))
	return postJSON(ctx, c.httpClient, c.endpoint("voice"), nil, payload)
}

func (c *UltraMsgClient) endpoint(kind string) string {
	return c.baseURL + "/" + c.instanceID + "/messages/" + kind
}
