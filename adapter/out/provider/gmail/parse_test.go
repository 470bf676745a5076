package gmail

import (
	"encoding/base64"
	"testing"

	gmailapi "google.golang.org/api/gmail/v1"

	"drafly_server/core/port/out"
)

func encodeRaw(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"url-safe unpadded", base64.RawURLEncoding.EncodeToString([]byte("hello world")), "hello world"},
		{"url-safe padded", base64.URLEncoding.EncodeToString([]byte("hello world")), "hello world"},
		{"standard fallback", base64.StdEncoding.EncodeToString([]byte("a+b/c?d")), "a+b/c?d"},
		{"url-safe binary", base64.RawURLEncoding.EncodeToString([]byte{0xfb, 0xff, 0x00}), string([]byte{0xfb, 0xff, 0x00})},
		{"garbage", "!!!not base64!!!", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeBody(tt.data); got != tt.want {
				t.Errorf("decodeBody(%q) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}

func TestHeaderValue(t *testing.T) {
	headers := []*gmailapi.MessagePartHeader{
		{Name: "from", Value: "first@example.com"},
		{Name: "From", Value: "second@example.com"},
		{Name: "Subject", Value: "Hello"},
	}

	if got := headerValue(headers, "From"); got != "first@example.com" {
		t.Errorf("From = %q, want the first case-insensitive match", got)
	}
	if got := headerValue(headers, "SUBJECT"); got != "Hello" {
		t.Errorf("SUBJECT = %q", got)
	}
	if got := headerValue(headers, "To"); got != "" {
		t.Errorf("missing header = %q, want empty", got)
	}
}

func TestCollectBodiesMultipart(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmailapi.MessagePart{
			{
				MimeType: "text/plain; charset=UTF-8",
				Body:     &gmailapi.MessagePartBody{Data: encodeRaw("plain body")},
			},
			{
				MimeType: "text/html; charset=UTF-8",
				Body:     &gmailapi.MessagePartBody{Data: encodeRaw("<p>html body</p>")},
			},
			{
				MimeType: "text/plain",
				Body:     &gmailapi.MessagePartBody{Data: encodeRaw("second plain, ignored")},
			},
		},
	}

	result := &out.ProviderMessage{}
	collectBodies(payload, 0, result)

	if result.BodyText != "plain body" {
		t.Errorf("BodyText = %q", result.BodyText)
	}
	if result.BodyHTML != "<p>html body</p>" {
		t.Errorf("BodyHTML = %q", result.BodyHTML)
	}
}

func TestCollectBodiesDepthBound(t *testing.T) {
	leaf := &gmailapi.MessagePart{
		MimeType: "text/plain",
		Body:     &gmailapi.MessagePartBody{Data: encodeRaw("too deep")},
	}
	root := leaf
	for i := 0; i < maxPartDepth+2; i++ {
		root = &gmailapi.MessagePart{
			MimeType: "multipart/mixed",
			Parts:    []*gmailapi.MessagePart{root},
		}
	}

	result := &out.ProviderMessage{}
	collectBodies(root, 0, result)
	if result.BodyText != "" {
		t.Errorf("body found past depth bound: %q", result.BodyText)
	}
}

func TestParseMessage(t *testing.T) {
	msg := &gmailapi.Message{
		Id:       "m1",
		ThreadId: "t1",
		Snippet:  "Hi there...",
		LabelIds: []string{"INBOX", "UNREAD"},
		Payload: &gmailapi.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "From", Value: "alice@example.com"},
				{Name: "To", Value: "me@example.com"},
				{Name: "Subject", Value: "Hi there"},
			},
			Parts: []*gmailapi.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmailapi.MessagePartBody{Data: encodeRaw("Hi!")},
				},
			},
		},
	}

	got := parseMessage(msg)
	if got.ID != "m1" || got.ThreadID != "t1" {
		t.Errorf("ids = %q/%q", got.ID, got.ThreadID)
	}
	if got.Sender != "alice@example.com" || got.To != "me@example.com" || got.Subject != "Hi there" {
		t.Errorf("envelope = %q/%q/%q", got.Sender, got.To, got.Subject)
	}
	if got.BodyText != "Hi!" {
		t.Errorf("BodyText = %q", got.BodyText)
	}
	if len(got.Labels) != 2 {
		t.Errorf("labels = %v", got.Labels)
	}
}

func TestParseMessageNoPayload(t *testing.T) {
	got := parseMessage(&gmailapi.Message{Id: "m1", Snippet: "s"})
	if got.ID != "m1" || got.Snippet != "s" {
		t.Errorf("got = %+v", got)
	}
	if got.Sender != "" || got.BodyText != "" {
		t.Errorf("payloadless message produced envelope/body: %+v", got)
	}
}
