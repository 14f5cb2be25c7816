package webhook

import (
	"encoding/json"
	"strings"
)

// Kind classifies an inbound message after normalization.
type Kind string

const (
	KindText  Kind = "text"
	KindVoice Kind = "voice"
	KindOther Kind = "other"
)

// InboundMessage is the normalized form of a gateway webhook event. It is
// request-local and discarded once the reply has been dispatched.
type InboundMessage struct {
	From     string
	Kind     Kind
	Text     string
	MediaURL string
	// Raw keeps the original payload for diagnostics.
	Raw json.RawMessage
}

// Gateways disagree on where the interesting fields live: Whapi puts them
// under messages[0], UltraMsg under data, and relay bridges wrap them in
// payload. Each shape gets its own adapter; normalize tries them in order
// and never fails the request.
type payloadAdapter func(body []byte) (InboundMessage, bool)

var adapters = []payloadAdapter{
	parseWhapi,
	parseUltraMsg,
	parseWrapped,
}

// normalize extracts an InboundMessage from an arbitrary gateway body.
// The second return is false when no adapter found an actionable message.
func normalize(body []byte) (InboundMessage, bool) {
	for _, adapt := range adapters {
		if msg, ok := adapt(body); ok {
			msg.Raw = json.RawMessage(body)
			return msg, true
		}
	}
	return InboundMessage{}, false
}

// classifyKind maps provider-specific type tags onto the three kinds the
// pipeline handles.
func classifyKind(typeTag string) Kind {
	switch strings.ToLower(strings.TrimSpace(typeTag)) {
	case "chat", "text":
		return KindText
	case "ptt", "voice", "audio":
		return KindVoice
	default:
		return KindOther
	}
}

// senderID strips the @c.us / @s.whatsapp.net suffix from a chat or
// contact identifier, leaving the bare phone number.
func senderID(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.Index(value, "@"); i >= 0 {
		value = value[:i]
	}
	return value
}

// Whapi delivers batches under messages[]; only the first entry carries
// the inbound event this service reacts to.
type whapiEnvelope struct {
	Messages []whapiMessage `json:"messages"`
}

type whapiMessage struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	From   string `json:"from"`
	ChatID string `json:"chat_id"`
	FromMe bool   `json:"from_me"`
	Text   *struct {
		Body string `json:"body"`
	} `json:"text"`
	Voice *struct {
		Link string `json:"link"`
	} `json:"voice"`
	Audio *struct {
		Link string `json:"link"`
	} `json:"audio"`
}

func (m whapiMessage) sender() string {
	if v := senderID(m.From); v != "" {
		return v
	}
	return senderID(m.ChatID)
}

func (m whapiMessage) mediaLink() string {
	if m.Voice != nil && strings.TrimSpace(m.Voice.Link) != "" {
		return strings.TrimSpace(m.Voice.Link)
	}
	if m.Audio != nil && strings.TrimSpace(m.Audio.Link) != "" {
		return strings.TrimSpace(m.Audio.Link)
	}
	return ""
}

func parseWhapi(body []byte) (InboundMessage, bool) {
	var env whapiEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Messages) == 0 {
		return InboundMessage{}, false
	}
	m := env.Messages[0]
	if m.FromMe {
		return InboundMessage{}, false
	}
	msg := InboundMessage{
		From:     m.sender(),
		Kind:     classifyKind(m.Type),
		MediaURL: m.mediaLink(),
	}
	if m.Text != nil {
		msg.Text = strings.TrimSpace(m.Text.Body)
	}
	return msg, true
}

// UltraMsg nests the message under data, tags text messages "chat" and
// voice notes "ptt", and hands the media link in the media field (older
// instances put it in body).
type ultraMsgEnvelope struct {
	EventType string `json:"event_type"`
	Data      *struct {
		ID     string `json:"id"`
		From   string `json:"from"`
		Type   string `json:"type"`
		Body   string `json:"body"`
		Media  string `json:"media"`
		FromMe bool   `json:"fromMe"`
	} `json:"data"`
}

func parseUltraMsg(body []byte) (InboundMessage, bool) {
	var env ultraMsgEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Data == nil {
		return InboundMessage{}, false
	}
	d := env.Data
	if d.FromMe {
		return InboundMessage{}, false
	}
	msg := InboundMessage{
		From: senderID(d.From),
		Kind: classifyKind(d.Type),
	}
	switch msg.Kind {
	case KindVoice:
		msg.MediaURL = strings.TrimSpace(d.Media)
		if msg.MediaURL == "" && looksLikeURL(d.Body) {
			msg.MediaURL = strings.TrimSpace(d.Body)
		}
	default:
		msg.Text = strings.TrimSpace(d.Body)
	}
	return msg, true
}

// Relay bridges wrap a flat message in a payload object with the audio
// link under audio.url.
type wrappedEnvelope struct {
	Payload *struct {
		From  string `json:"from"`
		Type  string `json:"type"`
		Text  string `json:"text"`
		Audio *struct {
			URL string `json:"url"`
		} `json:"audio"`
	} `json:"payload"`
}

func parseWrapped(body []byte) (InboundMessage, bool) {
	var env wrappedEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Payload == nil {
		return InboundMessage{}, false
	}
	p := env.Payload
	msg := InboundMessage{
		From: senderID(p.From),
		Kind: classifyKind(p.Type),
		Text: strings.TrimSpace(p.Text),
	}
	if p.Audio != nil {
		msg.MediaURL = strings.TrimSpace(p.Audio.URL)
	}
	return msg, true
}

func looksLikeURL(value string) bool {
	value = strings.TrimSpace(value)
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}
