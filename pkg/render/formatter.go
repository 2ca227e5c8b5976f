package render

import (
	"sort"
	"strings"
	"time"

	"github.com/mailtidy/mailtidy/pkg/mail"
)

// Attribute values escape the quote as well; text content does not, and
// bodies are post-sanitization text that is never re-escaped.
var (
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// addressField is one rendered address-list block.
type addressField struct {
	tag   string
	addrs []mail.Address
}

// format groups messages by thread, orders each group chronologically and
// serializes the result. bodies[i] is the extracted body of messages[i].
func (r *Renderer) format(messages []*mail.Message, bodies []string) string {
	type entry struct {
		msg  *mail.Message
		body string
	}

	// Partition by thread key, preserving first-seen group order.
	var order []string
	groups := make(map[string][]entry)
	for i, msg := range messages {
		key := msg.ThreadKey()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], entry{msg: msg, body: bodies[i]})
	}

	threads := make([]string, 0, len(order))
	for _, key := range order {
		group := groups[key]

		// Stable: equal timestamps keep input order.
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].msg.EffectiveTime().Before(group[j].msg.EffectiveTime())
		})

		blocks := make([]string, 0, len(group))
		for _, e := range group {
			blocks = append(blocks, r.formatMessage(e.msg, e.body))
		}

		var sb strings.Builder
		sb.WriteString(`<thread id="` + attrEscaper.Replace(key) + "\">\n")
		sb.WriteString(strings.Join(blocks, "\n"))
		sb.WriteString("\n</thread>")
		threads = append(threads, sb.String())
	}

	return strings.Join(threads, "\n\n")
}

// formatMessage renders one <email> block.
func (r *Renderer) formatMessage(msg *mail.Message, body string) string {
	var sb strings.Builder

	sb.WriteString(`<email id="` + attrEscaper.Replace(msg.ID) + `"`)

	if msg.HasDate() {
		sb.WriteString(` date="` + msg.EffectiveTime().Format(time.RFC3339) + `"`)
	}

	if status := statusList(msg); len(status) > 0 {
		sb.WriteString(` status="` + strings.Join(status, ", ") + `"`)
	}

	if msg.HasAttachment {
		sb.WriteString(` attachments="yes"`)
	}

	sb.WriteString(">\n")

	for _, field := range []addressField{
		{"from", msg.From},
		{"to", msg.To},
		{"cc", msg.CC},
		{"bcc", msg.BCC},
		{"reply-to", msg.ReplyTo},
		{"sender", msg.Sender},
	} {
		if len(field.addrs) == 0 {
			continue
		}
		sb.WriteString("  <" + field.tag + ">\n")
		for _, addr := range field.addrs {
			sb.WriteString("    <address")
			if addr.Name != "" {
				sb.WriteString(` name="` + attrEscaper.Replace(addr.Name) + `"`)
			}
			sb.WriteString(` email="` + attrEscaper.Replace(addr.Email) + `" />` + "\n")
		}
		sb.WriteString("  </" + field.tag + ">\n")
	}

	if msg.Subject != "" {
		sb.WriteString("  <subject>" + textEscaper.Replace(msg.Subject) + "</subject>\n")
	}

	sb.WriteString("  <body>\n")
	if body != "" {
		sb.WriteString(body + "\n")
	}
	sb.WriteString("  </body>\n")

	sb.WriteString("</email>")
	return sb.String()
}

// statusList returns the message's status markers in fixed order.
func statusList(msg *mail.Message) []string {
	var status []string
	if msg.IsUnread() {
		status = append(status, "unread")
	}
	if msg.IsFlagged() {
		status = append(status, "flagged")
	}
	if msg.IsAnswered() {
		status = append(status, "replied")
	}
	if msg.IsDraft() {
		status = append(status, "draft")
	}
	return status
}
