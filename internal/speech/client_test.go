package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAudioAPI struct {
	transcribeText  string
	transcribeErr   error
	transcribeCalls int
	lastAudioReq    openai.AudioRequest

	speechAudio []byte
	speechErr   error
	speechCalls int
}

func (s *stubAudioAPI) CreateTranscription(_ context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	s.transcribeCalls++
	s.lastAudioReq = req
	if s.transcribeErr != nil {
		return openai.AudioResponse{}, s.transcribeErr
	}
	return openai.AudioResponse{Text: s.transcribeText}, nil
}

func (s *stubAudioAPI) CreateSpeech(_ context.Context, _ openai.CreateSpeechRequest) (openai.RawResponse, error) {
	s.speechCalls++
	if s.speechErr != nil {
		return openai.RawResponse{}, s.speechErr
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(strings.NewReader(string(s.speechAudio)))}, nil
}

func TestTranscribeURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/ogg")
		w.Write([]byte("ogg-bytes"))
	}))
	defer server.Close()

	api := &stubAudioAPI{transcribeText: "  بغيت طاكوس ديال الدجاج  "}
	client, err := NewClient(Config{API: api})
	require.NoError(t, err)

	text, err := client.TranscribeURL(context.Background(), server.URL+"/media/abc.ogg")
	require.NoError(t, err)
	assert.Equal(t, "بغيت طاكوس ديال الدجاج", text)
	assert.Equal(t, 1, api.transcribeCalls)
	assert.Equal(t, voiceNoteFilename, api.lastAudioReq.FilePath)
	assert.Equal(t, openai.Whisper1, api.lastAudioReq.Model)
}

func TestTranscribeURLDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	api := &stubAudioAPI{transcribeText: "unused"}
	client, err := NewClient(Config{API: api})
	require.NoError(t, err)

	_, err = client.TranscribeURL(context.Background(), server.URL+"/media/missing.ogg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Zero(t, api.transcribeCalls, "transcription must not run after a failed download")
}

func TestTranscribeEmptyResultIsError(t *testing.T) {
	api := &stubAudioAPI{transcribeText: "   "}
	client, err := NewClient(Config{API: api})
	require.NoError(t, err)

	_, err = client.Transcribe(context.Background(), []byte("ogg"))
	require.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestTranscribeAPIFailure(t *testing.T) {
	api := &stubAudioAPI{transcribeErr: errors.New("quota exceeded")}
	client, err := NewClient(Config{API: api})
	require.NoError(t, err)

	_, err = client.Transcribe(context.Background(), []byte("ogg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSynthesize(t *testing.T) {
	api := &stubAudioAPI{speechAudio: []byte("opus-bytes")}
	client, err := NewClient(Config{API: api})
	require.NoError(t, err)

	audio, err := client.Synthesize(context.Background(), "وصل الطلب ديالك")
	require.NoError(t, err)
	assert.Equal(t, []byte("opus-bytes"), audio)
	assert.Equal(t, 1, api.speechCalls)
}

func TestSynthesizeFailures(t *testing.T) {
	api := &stubAudioAPI{speechErr: errors.New("tts down")}
	client, err := NewClient(Config{API: api})
	require.NoError(t, err)

	_, err = client.Synthesize(context.Background(), "hello")
	require.Error(t, err)

	_, err = client.Synthesize(context.Background(), "   ")
	require.Error(t, err)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	client, err := NewClient(Config{API: &stubAudioAPI{}})
	require.NoError(t, err)
	assert.Equal(t, openai.Whisper1, client.transcribeModel)
	assert.Equal(t, string(openai.TTSModel1), client.ttsModel)
	assert.Equal(t, string(openai.VoiceAlloy), client.ttsVoice)
}
