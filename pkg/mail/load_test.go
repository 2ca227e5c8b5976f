package mail

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeMessagesJSON(t *testing.T) {
	data := `[
		{
			"id": "m1",
			"threadId": "t1",
			"subject": "Hello",
			"from": [{"name": "Alice", "email": "alice@example.com"}],
			"receivedAt": "2025-01-15T10:00:00Z",
			"keywords": {"$seen": true},
			"htmlBody": [{"partId": "1", "type": "text/html"}],
			"bodyValues": {"1": {"value": "<p>Hi</p>"}}
		},
		{"id": "m2"}
	]`

	messages, err := DecodeMessages(strings.NewReader(data), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}

	m := messages[0]
	if m.ID != "m1" || m.ThreadID != "t1" {
		t.Errorf("unexpected identity fields: %+v", m)
	}
	if m.ReceivedAt == nil || m.ReceivedAt.Year() != 2025 {
		t.Errorf("expected parsed receivedAt, got %v", m.ReceivedAt)
	}
	if !m.Keywords[KeywordSeen] {
		t.Error("expected $seen keyword")
	}
	if len(m.HTMLBodyParts) != 1 || m.HTMLBodyParts[0].PartID != "1" {
		t.Errorf("unexpected body parts: %+v", m.HTMLBodyParts)
	}
	if m.BodyValues["1"].Value != "<p>Hi</p>" {
		t.Errorf("unexpected body value: %+v", m.BodyValues)
	}
}

func TestDecodeMessagesRejectsMissingID(t *testing.T) {
	data := `[{"subject": "no id"}]`
	if _, err := DecodeMessages(strings.NewReader(data), FormatJSON); err == nil {
		t.Error("expected validation error for missing id")
	}
}

func TestDecodeMessagesRejectsBadAddress(t *testing.T) {
	data := `[{"id": "m1", "from": [{"name": "ghost"}]}]`
	if _, err := DecodeMessages(strings.NewReader(data), FormatJSON); err == nil {
		t.Error("expected validation error for address without email")
	}
}

func TestLoadMessagesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	data := `
- id: m1
  threadId: t1
  subject: Hello
  textBody:
    - partId: "1"
  bodyValues:
    "1":
      value: plain body
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	messages, err := LoadMessages(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 1 || messages[0].BodyValues["1"].Value != "plain body" {
		t.Errorf("unexpected result: %+v", messages)
	}
}

func TestLoadMessagesUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.csv")
	if err := os.WriteFile(path, []byte("id\nm1"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMessages(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
