package gmail

import (
	"encoding/base64"
	"strings"

	"drafly_server/core/port/out"

	gmailapi "google.golang.org/api/gmail/v1"
)

// maxPartDepth bounds the MIME tree walk; payloads nested deeper are ignored.
const maxPartDepth = 16

// parseMessage flattens a full-format message into the provider-neutral
// shape. Header lookups are case-insensitive and first-wins, matching how
// Gmail orders duplicate headers.
func parseMessage(msg *gmailapi.Message) *out.ProviderMessage {
	result := &out.ProviderMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		Labels:   msg.LabelIds,
	}

	if msg.Payload == nil {
		return result
	}

	result.Sender = headerValue(msg.Payload.Headers, "From")
	result.To = headerValue(msg.Payload.Headers, "To")
	result.Subject = headerValue(msg.Payload.Headers, "Subject")

	collectBodies(msg.Payload, 0, result)
	return result
}

func headerValue(headers []*gmailapi.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// collectBodies walks the MIME tree depth-first and keeps the first
// text/plain and text/html leaves it finds.
func collectBodies(part *gmailapi.MessagePart, depth int, result *out.ProviderMessage) {
	if part == nil || depth > maxPartDepth {
		return
	}
	if result.BodyText != "" && result.BodyHTML != "" {
		return
	}

	if part.Body != nil && part.Body.Data != "" {
		switch {
		case result.BodyText == "" && strings.HasPrefix(part.MimeType, "text/plain"):
			result.BodyText = decodeBody(part.Body.Data)
		case result.BodyHTML == "" && strings.HasPrefix(part.MimeType, "text/html"):
			result.BodyHTML = decodeBody(part.Body.Data)
		}
	}

	for _, child := range part.Parts {
		collectBodies(child, depth+1, result)
	}
}

// decodeBody handles Gmail's base64url-without-padding encoding, falling
// back to standard base64 for the occasional nonconforming payload.
func decodeBody(data string) string {
	if b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "=")); err == nil {
		return string(b)
	}
	if b, err := base64.StdEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}
