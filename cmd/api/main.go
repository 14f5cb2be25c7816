package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ksellami/whatsorder/internal/api/router"
	appconfig "github.com/ksellami/whatsorder/internal/config"
	"github.com/ksellami/whatsorder/internal/gateway"
	observemetrics "github.com/ksellami/whatsorder/internal/observability/metrics"
	"github.com/ksellami/whatsorder/internal/reply"
	"github.com/ksellami/whatsorder/internal/speech"
	"github.com/ksellami/whatsorder/internal/webhook"
	"github.com/ksellami/whatsorder/pkg/logging"
)

func main() {
	// A .env file is optional; real deployments set the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting whatsorder webhook server",
		"env", cfg.Env,
		"port", cfg.Port,
		"gateway", cfg.GatewayProvider,
	)

	sender := buildSender(cfg, logger)

	var generator *reply.Generator
	var speechClient *speech.Client
	if cfg.OpenAIAPIKey == "" {
		// Degrade to fixed replies rather than refusing to start.
		logger.Warn("OPENAI_API_KEY not set, replies degrade to fixed messages")
	} else {
		aiClient := openai.NewClient(cfg.OpenAIAPIKey)
		generator = reply.NewGenerator(aiClient, cfg.OpenAIChatModel, cfg.ReplyTimeout, logger)
		var err error
		speechClient, err = speech.NewClient(speech.Config{
			API:             aiClient,
			TranscribeModel: cfg.OpenAITranscribeModel,
			TTSModel:        cfg.OpenAITTSModel,
			TTSVoice:        cfg.OpenAITTSVoice,
			DownloadTimeout: cfg.MediaDownloadTimeout,
		})
		if err != nil {
			logger.Error("failed to build speech client", "error", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := observemetrics.NewWebhookMetrics(registry)

	handlerCfg := webhook.HandlerConfig{
		Sender:       sender,
		Logger:       logger,
		Metrics:      webhookMetrics,
		VoiceReplies: cfg.VoiceReplies,
	}
	if generator != nil {
		handlerCfg.Replies = generator
	}
	if speechClient != nil {
		handlerCfg.Transcriber = speechClient
		handlerCfg.Synthesizer = speechClient
	}
	webhookHandler := webhook.NewHandler(handlerCfg)

	r := router.New(&router.Config{
		Logger:         logger,
		Webhook:        webhookHandler,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildSender picks the gateway client for the configured provider. A
// missing credential is logged and leaves the sender nil: inbound events
// are still acknowledged, replies are dropped.
func buildSender(cfg *appconfig.Config, logger *logging.Logger) gateway.Sender {
	switch cfg.GatewayProvider {
	case "ultramsg":
		client, err := gateway.NewUltraMsgClient(gateway.UltraMsgConfig{
			BaseURL:    cfg.UltraMsgBaseURL,
			InstanceID: cfg.UltraMsgInstanceID,
			Token:      cfg.UltraMsgToken,
			Timeout:    cfg.SendTimeout,
			Logger:     logger.Logger,
		})
		if err != nil {
			logger.Warn("ultramsg client not configured", "error", err)
			return nil
		}
		return client
	case "whapi":
		client, err := gateway.NewWhapiClient(gateway.WhapiConfig{
			BaseURL: cfg.WhapiBaseURL,
			Token:   cfg.WhapiToken,
			Timeout: cfg.SendTimeout,
			Logger:  logger.Logger,
		})
		if err != nil {
			logger.Warn("whapi client not configured", "error", err)
			return nil
		}
		return client
	default:
		logger.Warn("unknown gateway provider", "provider", cfg.GatewayProvider)
		return nil
	}
}
