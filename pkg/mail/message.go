// Package mail defines the message shapes consumed by the rendering
// pipeline. The field layout follows the JMAP Email object: messages arrive
// as already-fetched, in-memory records; nothing here touches the wire.
package mail

import (
	"strings"
	"time"
)

// JMAP system keywords carried in Message.Keywords.
const (
	KeywordSeen     = "$seen"
	KeywordFlagged  = "$flagged"
	KeywordAnswered = "$answered"
	KeywordDraft    = "$draft"
)

// Address is a single mailbox participant.
type Address struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Email string `json:"email" yaml:"email" validate:"required"`
}

// String renders "Name <email>" or the bare email when no name is set.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

// BodyPart references one MIME part of a message body.
type BodyPart struct {
	PartID string `json:"partId" yaml:"partId"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
}

// BodyValue is the fetched content of one body part.
type BodyValue struct {
	Value       string `json:"value" yaml:"value"`
	IsTruncated bool   `json:"isTruncated,omitempty" yaml:"isTruncated,omitempty"`
}

// Message is the pipeline's input unit. All fields except ID are optional;
// the pipeline never mutates a Message.
type Message struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	ThreadID string `json:"threadId,omitempty" yaml:"threadId,omitempty"`
	Subject  string `json:"subject,omitempty" yaml:"subject,omitempty"`

	From    []Address `json:"from,omitempty" yaml:"from,omitempty"`
	To      []Address `json:"to,omitempty" yaml:"to,omitempty"`
	CC      []Address `json:"cc,omitempty" yaml:"cc,omitempty"`
	BCC     []Address `json:"bcc,omitempty" yaml:"bcc,omitempty"`
	ReplyTo []Address `json:"replyTo,omitempty" yaml:"replyTo,omitempty"`
	Sender  []Address `json:"sender,omitempty" yaml:"sender,omitempty"`

	ReceivedAt *time.Time `json:"receivedAt,omitempty" yaml:"receivedAt,omitempty"`
	SentAt     *time.Time `json:"sentAt,omitempty" yaml:"sentAt,omitempty"`

	Keywords      map[string]bool `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	HasAttachment bool            `json:"hasAttachment,omitempty" yaml:"hasAttachment,omitempty"`

	HTMLBodyParts []BodyPart           `json:"htmlBody,omitempty" yaml:"htmlBody,omitempty"`
	TextBodyParts []BodyPart           `json:"textBody,omitempty" yaml:"textBody,omitempty"`
	BodyValues    map[string]BodyValue `json:"bodyValues,omitempty" yaml:"bodyValues,omitempty"`
}

// ThreadKey returns the conversation identifier, defaulting to the message
// ID so a message without one is its own single-message thread.
func (m *Message) ThreadKey() string {
	if m.ThreadID != "" {
		return m.ThreadID
	}
	return m.ID
}

// EffectiveTime returns the timestamp used for in-thread ordering:
// ReceivedAt when present, else SentAt, else the zero time.
func (m *Message) EffectiveTime() time.Time {
	if m.ReceivedAt != nil {
		return *m.ReceivedAt
	}
	if m.SentAt != nil {
		return *m.SentAt
	}
	return time.Time{}
}

// HasDate reports whether the message carries any timestamp at all.
func (m *Message) HasDate() bool {
	return m.ReceivedAt != nil || m.SentAt != nil
}

// IsUnread reports whether the $seen keyword is absent or false.
func (m *Message) IsUnread() bool {
	return !m.Keywords[KeywordSeen]
}

// IsFlagged reports whether the $flagged keyword is set.
func (m *Message) IsFlagged() bool {
	return m.Keywords[KeywordFlagged]
}

// IsAnswered reports whether the $answered keyword is set.
func (m *Message) IsAnswered() bool {
	return m.Keywords[KeywordAnswered]
}

// IsDraft reports whether the $draft keyword is set.
func (m *Message) IsDraft() bool {
	return m.Keywords[KeywordDraft]
}

// Participants returns every address on the message, deduplicated by email,
// in header order (from, to, cc, bcc, reply-to, sender).
func (m *Message) Participants() []Address {
	seen := make(map[string]bool)
	var out []Address
	for _, list := range [][]Address{m.From, m.To, m.CC, m.BCC, m.ReplyTo, m.Sender} {
		for _, addr := range list {
			key := strings.ToLower(addr.Email)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, addr)
		}
	}
	return out
}
