package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWhapiText(t *testing.T) {
	body := []byte(`{"messages":[{"type":"text","from":"213600000000","text":{"body":"السلام، واش عندكم فالمنيو؟"}}]}`)
	msg, ok := normalize(body)
	require.True(t, ok)
	assert.Equal(t, "213600000000", msg.From)
	assert.Equal(t, KindText, msg.Kind)
	assert.Equal(t, "السلام، واش عندكم فالمنيو؟", msg.Text)
	assert.Empty(t, msg.MediaURL)
	assert.JSONEq(t, string(body), string(msg.Raw))
}

func TestNormalizeWhapiVoice(t *testing.T) {
	body := []byte(`{"messages":[{"type":"voice","chat_id":"213611122233@s.whatsapp.net","voice":{"link":"https://media.example/v/1.ogg"}}]}`)
	msg, ok := normalize(body)
	require.True(t, ok)
	assert.Equal(t, "213611122233", msg.From, "sender falls back to chat_id before @")
	assert.Equal(t, KindVoice, msg.Kind)
	assert.Equal(t, "https://media.example/v/1.ogg", msg.MediaURL)
}

func TestNormalizeWhapiVoiceWithoutLink(t *testing.T) {
	msg, ok := normalize([]byte(`{"messages":[{"type":"voice","from":"2136","voice":{}}]}`))
	require.True(t, ok)
	assert.Equal(t, KindVoice, msg.Kind)
	assert.Empty(t, msg.MediaURL)
}

func TestNormalizeWhapiSkipsOwnMessages(t *testing.T) {
	_, ok := normalize([]byte(`{"messages":[{"type":"text","from":"2136","from_me":true,"text":{"body":"hi"}}]}`))
	assert.False(t, ok)
}

func TestNormalizeWhapiEmptyBatch(t *testing.T) {
	_, ok := normalize([]byte(`{"messages":[]}`))
	assert.False(t, ok)
}

func TestNormalizeUltraMsgChat(t *testing.T) {
	body := []byte(`{"event_type":"message_received","data":{"from":"213600000000@c.us","type":"chat","body":"بغيت طاجين"}}`)
	msg, ok := normalize(body)
	require.True(t, ok)
	assert.Equal(t, "213600000000", msg.From)
	assert.Equal(t, KindText, msg.Kind)
	assert.Equal(t, "بغيت طاجين", msg.Text)
}

func TestNormalizeUltraMsgPTT(t *testing.T) {
	body := []byte(`{"event_type":"message_received","data":{"from":"2136@c.us","type":"ptt","body":"","media":"https://media.ultramsg.com/a.ogg"}}`)
	msg, ok := normalize(body)
	require.True(t, ok)
	assert.Equal(t, KindVoice, msg.Kind)
	assert.Equal(t, "https://media.ultramsg.com/a.ogg", msg.MediaURL)
}

func TestNormalizeUltraMsgPTTLinkInBody(t *testing.T) {
	body := []byte(`{"event_type":"message_received","data":{"from":"2136@c.us","type":"ptt","body":"https://media.ultramsg.com/b.ogg"}}`)
	msg, ok := normalize(body)
	require.True(t, ok)
	assert.Equal(t, "https://media.ultramsg.com/b.ogg", msg.MediaURL)
}

func TestNormalizeWrappedShape(t *testing.T) {
	body := []byte(`{"payload":{"from":"213655544433","type":"audio","text":"","audio":{"url":"https://cdn.example/n.ogg"}}}`)
	msg, ok := normalize(body)
	require.True(t, ok)
	assert.Equal(t, "213655544433", msg.From)
	assert.Equal(t, KindVoice, msg.Kind)
	assert.Equal(t, "https://cdn.example/n.ogg", msg.MediaURL)
}

func TestNormalizeUnknownShape(t *testing.T) {
	_, ok := normalize([]byte(`{"hello":"world"}`))
	assert.False(t, ok)

	_, ok = normalize([]byte(`not json at all`))
	assert.False(t, ok)
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		tag  string
		want Kind
	}{
		{"chat", KindText},
		{"text", KindText},
		{"TEXT", KindText},
		{"ptt", KindVoice},
		{"voice", KindVoice},
		{"audio", KindVoice},
		{"image", KindOther},
		{"sticker", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyKind(tt.tag), "tag %q", tt.tag)
	}
}

func TestSenderID(t *testing.T) {
	assert.Equal(t, "213600000000", senderID("213600000000@c.us"))
	assert.Equal(t, "213600000000", senderID("213600000000"))
	assert.Equal(t, "", senderID("  "))
}
