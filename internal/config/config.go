package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// AI provider
	OpenAIAPIKey          string
	OpenAIChatModel       string
	OpenAITranscribeModel string
	OpenAITTSModel        string
	OpenAITTSVoice        string

	// Messaging gateway
	GatewayProvider    string
	WhapiBaseURL       string
	WhapiToken         string
	UltraMsgBaseURL    string
	UltraMsgInstanceID string
	UltraMsgToken      string

	// Behavior
	VoiceReplies         bool
	MediaDownloadTimeout time.Duration
	ReplyTimeout         time.Duration
	SendTimeout          time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		OpenAITranscribeModel: getEnv("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		OpenAITTSModel:        getEnv("OPENAI_TTS_MODEL", "tts-1"),
		OpenAITTSVoice:        getEnv("OPENAI_TTS_VOICE", "alloy"),

		GatewayProvider:    strings.ToLower(strings.TrimSpace(getEnv("GATEWAY_PROVIDER", "whapi"))),
		WhapiBaseURL:       getEnv("WHAPI_BASE_URL", "https://gate.whapi.cloud"),
		WhapiToken:         getEnv("WHAPI_TOKEN", ""),
		UltraMsgBaseURL:    getEnv("ULTRAMSG_BASE_URL", "https://api.ultramsg.com"),
		UltraMsgInstanceID: getEnv("ULTRAMSG_INSTANCE_ID", ""),
		UltraMsgToken:      getEnv("ULTRAMSG_TOKEN", ""),

		VoiceReplies:         getEnvAsBool("VOICE_REPLIES", false),
		MediaDownloadTimeout: getEnvAsDuration("MEDIA_DOWNLOAD_TIMEOUT", 20*time.Second),
		ReplyTimeout:         getEnvAsDuration("REPLY_TIMEOUT", 30*time.Second),
		SendTimeout:          getEnvAsDuration("SEND_TIMEOUT", 15*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
