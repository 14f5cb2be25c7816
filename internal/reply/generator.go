package reply

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ksellami/whatsorder/pkg/logging"
)

// The assistant takes restaurant orders over WhatsApp. Customers mostly
// write Moroccan Darija, so the persona answers in whatever language the
// customer used.
const systemPrompt = "You are the order-taking assistant of a restaurant, chatting with customers on WhatsApp. " +
	"Reply in the same language the customer writes in (usually Moroccan Darija or Arabic). " +
	"Stay concise and friendly. Take the customer's order, and when information is missing ask one clarifying " +
	"question at a time: delivery address, phone number, or quantity. " +
	"Politely refuse to discuss anything unrelated to the restaurant and its menu."

// FallbackReply is sent to the customer whenever the model cannot produce
// a reply. It is never empty because it becomes the outbound message body.
const FallbackReply = "سمحلنا، وقع مشكل تقني. عافاك عاود صيفط الطلب ديالك من بعد شوية."

var tracer = otel.Tracer("whatsorder.internal.reply")

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator produces order-taking replies with a chat-completion model.
type Generator struct {
	client  chatClient
	model   string
	timeout time.Duration
	logger  *logging.Logger
}

// NewGenerator returns a chat-completion backed Generator.
func NewGenerator(client chatClient, model string, timeout time.Duration, logger *logging.Logger) *Generator {
	if client == nil {
		panic("reply: chat client cannot be nil")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate returns a reply for the customer's message. The result is never
// empty: any provider failure is logged and replaced by FallbackReply,
// since whatever Generate returns is sent back to the customer.
func (g *Generator) Generate(ctx context.Context, userText string) string {
	text, err := g.complete(ctx, userText)
	if err != nil {
		g.logger.Error("reply generation failed", "error", err)
		return FallbackReply
	}
	return text
}

func (g *Generator) complete(ctx context.Context, userText string) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", errors.New("reply: user text is empty")
	}

	ctx, span := tracer.Start(ctx, "reply.generate")
	defer span.End()
	span.SetAttributes(attribute.String("whatsorder.model", g.model))

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		err := errors.New("reply: completion returned no choices")
		span.RecordError(err)
		return "", err
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		err := errors.New("reply: completion returned empty text")
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.Int("whatsorder.reply_len", len(text)))
	return text, nil
}
