package webhook

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ksellami/whatsorder/internal/gateway"
	observemetrics "github.com/ksellami/whatsorder/internal/observability/metrics"
	"github.com/ksellami/whatsorder/internal/reply"
	"github.com/ksellami/whatsorder/pkg/logging"
)

// Fixed replies for the paths where the pipeline cannot produce a model
// answer. Customers write Darija, so the canned strings do too.
const (
	// Sent for a text message with an empty body. Policy decision: an
	// empty body gets a friendly nudge instead of silence.
	emptyTextReply = "مرحبا بيك! عافاك كتب لينا الطلب ديالك باش نبداو."
	// Sent when a voice note has no media link or could not be
	// downloaded or transcribed.
	voiceFailReply = "سمحلنا، ما قدرناش نسمعو التسجيلة الصوتية ديالك. عافاك صيفط الطلب ديالك كتابة."
	// Sent for stickers, images, locations and anything else.
	unsupportedReply = "كنستقبلو غير الرسائل النصية والصوتية. عافاك صيفط الطلب ديالك كتابة ولا بتسجيلة صوتية."
)

type replyGenerator interface {
	Generate(ctx context.Context, userText string) string
}

type transcriber interface {
	TranscribeURL(ctx context.Context, mediaURL string) (string, error)
}

type synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Handler orchestrates the receive → transcribe → generate → send pipeline
// for one inbound gateway event. It always acknowledges with 200 so the
// gateway never retry-storms, whatever happened internally.
type Handler struct {
	sender       gateway.Sender
	replies      replyGenerator
	transcriber  transcriber
	synthesizer  synthesizer
	logger       *logging.Logger
	metrics      *observemetrics.WebhookMetrics
	voiceReplies bool
}

type HandlerConfig struct {
	Sender       gateway.Sender
	Replies      replyGenerator
	Transcriber  transcriber
	Synthesizer  synthesizer
	Logger       *logging.Logger
	Metrics      *observemetrics.WebhookMetrics
	VoiceReplies bool
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Handler{
		sender:       cfg.Sender,
		replies:      cfg.Replies,
		transcriber:  cfg.Transcriber,
		synthesizer:  cfg.Synthesizer,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		voiceReplies: cfg.VoiceReplies,
	}
}

// Handle processes one inbound webhook POST from the messaging gateway.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		h.ack(w)
		return
	}

	eventID := uuid.NewString()
	logger := h.logger.With("event_id", eventID)

	msg, ok := normalize(body)
	kind := "none"
	if ok {
		kind = string(msg.Kind)
	}
	defer func() {
		h.metrics.ObserveLatency(kind, time.Since(start).Seconds())
	}()

	if !ok || msg.From == "" {
		logger.Info("webhook carried no actionable message")
		h.metrics.ObserveInbound(kind, "ignored")
		h.ack(w)
		return
	}

	logger = logger.With("from", msg.From, "kind", kind)

	replyText, voiceNote, outcome := h.resolveReply(r.Context(), logger, msg)
	h.metrics.ObserveInbound(kind, outcome)
	if replyText != "" {
		h.dispatch(r.Context(), logger, msg.From, replyText, voiceNote)
	}
	h.ack(w)
}

// resolveReply runs the transcribe/generate stages and returns the body to
// send, whether it should go out as a voice note, and the metrics outcome.
func (h *Handler) resolveReply(ctx context.Context, logger *logging.Logger, msg InboundMessage) (string, bool, string) {
	switch msg.Kind {
	case KindText:
		if msg.Text == "" {
			return emptyTextReply, false, "empty_text"
		}
		return h.generate(ctx, msg.Text), false, "replied"
	case KindVoice:
		if msg.MediaURL == "" {
			logger.Info("voice note without media link")
			return voiceFailReply, false, "no_media"
		}
		if h.transcriber == nil {
			logger.Warn("transcription not configured")
			return voiceFailReply, false, "transcribe_failed"
		}
		text, err := h.transcriber.TranscribeURL(ctx, msg.MediaURL)
		if err != nil {
			logger.Error("transcription failed", "error", err)
			return voiceFailReply, false, "transcribe_failed"
		}
		// An empty transcript is as useless as a failed one.
		if strings.TrimSpace(text) == "" {
			logger.Info("transcription produced no text")
			return voiceFailReply, false, "transcribe_failed"
		}
		return h.generate(ctx, text), true, "replied"
	default:
		return unsupportedReply, false, "unsupported"
	}
}

func (h *Handler) generate(ctx context.Context, text string) string {
	if h.replies == nil {
		return reply.FallbackReply
	}
	return h.replies.Generate(ctx, text)
}

// dispatch sends exactly one outbound reply. Delivery failure is logged and
// swallowed: the acknowledgement to the gateway is not affected.
func (h *Handler) dispatch(ctx context.Context, logger *logging.Logger, to, body string, voiceNote bool) {
	if h.sender == nil {
		logger.Warn("gateway sender not configured, dropping reply")
		h.metrics.ObserveReply("text", "skipped")
		return
	}
	if voiceNote && h.voiceReplies && h.synthesizer != nil {
		audio, err := h.synthesizer.Synthesize(ctx, body)
		if err == nil {
			if err := h.sender.SendVoice(ctx, to, audio); err != nil {
				logger.Error("voice reply delivery failed", "error", err)
				h.metrics.ObserveReply("voice", "failed")
			} else {
				h.metrics.ObserveReply("voice", "sent")
			}
			return
		}
		logger.Error("speech synthesis failed, falling back to text", "error", err)
	}
	if err := h.sender.SendText(ctx, to, body); err != nil {
		logger.Error("reply delivery failed", "error", err)
		h.metrics.ObserveReply("text", "failed")
		return
	}
	h.metrics.ObserveReply("text", "sent")
}

func (h *Handler) ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"ok":true}`))
}
