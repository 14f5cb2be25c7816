// Package speech wraps the AI provider's audio endpoints: speech-to-text
// for inbound voice notes and text-to-speech for optional voice replies.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// WhatsApp voice notes arrive as OGG/Opus; the transcription endpoint
// picks the decoder from the filename extension.
const voiceNoteFilename = "voice.ogg"

// ErrEmptyTranscript reports a transcription that produced no usable text.
var ErrEmptyTranscript = errors.New("speech: transcription returned no text")

type audioAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Config controls the speech client.
type Config struct {
	API             audioAPI
	TranscribeModel string
	TTSModel        string
	TTSVoice        string
	DownloadTimeout time.Duration
	HTTPClient      *http.Client
}

// Client downloads gateway-hosted media and talks to the provider's audio
// endpoints. All failures are non-fatal and reported as errors.
type Client struct {
	api             audioAPI
	transcribeModel string
	ttsModel        string
	ttsVoice        string
	httpClient      *http.Client
}

// NewClient validates the configuration and returns a ready-to-use client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.API == nil {
		return nil, errors.New("speech: audio API client is required")
	}
	transcribeModel := strings.TrimSpace(cfg.TranscribeModel)
	if transcribeModel == "" {
		transcribeModel = openai.Whisper1
	}
	ttsModel := strings.TrimSpace(cfg.TTSModel)
	if ttsModel == "" {
		ttsModel = string(openai.TTSModel1)
	}
	ttsVoice := strings.TrimSpace(cfg.TTSVoice)
	if ttsVoice == "" {
		ttsVoice = string(openai.VoiceAlloy)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.DownloadTimeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		api:             cfg.API,
		transcribeModel: transcribeModel,
		ttsModel:        ttsModel,
		ttsVoice:        ttsVoice,
		httpClient:      httpClient,
	}, nil
}

// TranscribeURL fetches the voice note from the gateway media link and
// transcribes it.
func (c *Client) TranscribeURL(ctx context.Context, mediaURL string) (string, error) {
	audio, err := c.download(ctx, mediaURL)
	if err != nil {
		return "", err
	}
	return c.Transcribe(ctx, audio)
}

// Transcribe submits raw audio bytes to the speech-to-text endpoint and
// returns the trimmed transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("speech: no audio to transcribe")
	}
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcribeModel,
		Reader:   bytes.NewReader(audio),
		FilePath: voiceNoteFilename,
	})
	if err != nil {
		return "", fmt.Errorf("speech: transcription failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// Synthesize converts reply text into OGG/Opus audio bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("speech: no text to synthesize")
	}
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.ttsModel),
		Input:          text,
		Voice:          openai.SpeechVoice(c.ttsVoice),
		ResponseFormat: openai.SpeechResponseFormatOpus,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: synthesis failed: %w", err)
	}
	defer resp.Close()
	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("speech: read synthesized audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("speech: synthesis returned no audio")
	}
	return audio, nil
}

func (c *Client) download(ctx context.Context, mediaURL string) ([]byte, error) {
	if strings.TrimSpace(mediaURL) == "" {
		return nil, errors.New("speech: media url is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("speech: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech: download media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("speech: media download returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech: read media body: %w", err)
	}
	return data, nil
}
