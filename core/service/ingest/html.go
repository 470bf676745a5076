package ingest

import (
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/microcosm-cc/bluemonday"
)

// sanitizer strips scripts and unsafe markup before text flattening.
var sanitizer = bluemonday.UGCPolicy()

// htmlToText derives a plain-text body from an HTML part when the message
// carries no text/plain leaf. The result is best-effort display text.
func htmlToText(htmlBody string) string {
	cleaned := sanitizer.Sanitize(htmlBody)
	text, err := html2text.FromString(cleaned, html2text.Options{TextOnly: true})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
