package render

import (
	"strings"

	erp "github.com/web-ridge/email-reply-parser"

	"github.com/mailtidy/mailtidy/pkg/mail"
)

// truncationMarker is appended when a body is cut to fit the size cap.
const truncationMarker = "\n\n[... body truncated ...]"

// ExtractBody resolves a message's textual content. HTML parts are
// preferred: when every HTML part resolves to a non-empty value, they are
// concatenated, sanitized and rendered as Markdown. Otherwise the plain-text
// parts are used as-is. Absent content yields the empty string, never an
// error.
func (r *Renderer) ExtractBody(msg *mail.Message) string {
	if body, ok := r.htmlBody(msg); ok {
		return r.finishBody(body)
	}
	if body, ok := textBody(msg); ok {
		return r.finishBody(body)
	}
	return ""
}

// htmlBody concatenates, sanitizes and converts the HTML parts. It reports
// false unless every referenced part resolves to a non-empty value.
func (r *Renderer) htmlBody(msg *mail.Message) (string, bool) {
	if len(msg.HTMLBodyParts) == 0 {
		return "", false
	}

	values := make([]string, 0, len(msg.HTMLBodyParts))
	for _, part := range msg.HTMLBodyParts {
		v, ok := msg.BodyValues[part.PartID]
		if !ok || v.Value == "" {
			return "", false
		}
		values = append(values, v.Value)
	}

	sanitized := r.sanitizer.Sanitize(strings.Join(values, "\n"))
	return convertBody(sanitized), true
}

// textBody concatenates the plain-text parts that resolve.
func textBody(msg *mail.Message) (string, bool) {
	var values []string
	for _, part := range msg.TextBodyParts {
		if v, ok := msg.BodyValues[part.PartID]; ok && v.Value != "" {
			values = append(values, v.Value)
		}
	}
	if len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(strings.Join(values, "\n")), true
}

// finishBody applies the optional post-extraction stages: quoted-reply
// stripping and size capping.
func (r *Renderer) finishBody(body string) string {
	if r.stripQuotedReplies {
		body = strings.TrimSpace(erp.Parse(body))
	}
	if r.maxBodyChars > 0 {
		body = truncateBody(body, r.maxBodyChars)
	}
	return body
}

// truncateBody cuts text to fit within limit characters, cutting at the
// last newline before the limit when possible and appending a marker.
func truncateBody(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	budget := limit - len(truncationMarker)
	if budget <= 0 {
		return truncationMarker
	}
	cut := strings.LastIndex(text[:budget], "\n")
	if cut <= 0 {
		cut = budget
	}
	return text[:cut] + truncationMarker
}
