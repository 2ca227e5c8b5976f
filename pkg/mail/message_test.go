package mail

import (
	"testing"
	"time"
)

func TestThreadKey(t *testing.T) {
	m := &Message{ID: "m1", ThreadID: "t1"}
	if m.ThreadKey() != "t1" {
		t.Errorf("expected t1, got %s", m.ThreadKey())
	}

	m = &Message{ID: "m1"}
	if m.ThreadKey() != "m1" {
		t.Errorf("expected fallback to id, got %s", m.ThreadKey())
	}
}

func TestEffectiveTime(t *testing.T) {
	received := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	sent := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		msg  Message
		want time.Time
	}{
		{"received wins", Message{ReceivedAt: &received, SentAt: &sent}, received},
		{"sent fallback", Message{SentAt: &sent}, sent},
		{"zero when dateless", Message{}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.EffectiveTime(); !got.Equal(tt.want) {
				t.Errorf("EffectiveTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeywordHelpers(t *testing.T) {
	m := &Message{}
	if !m.IsUnread() {
		t.Error("message without keywords should be unread")
	}
	if m.IsFlagged() || m.IsAnswered() || m.IsDraft() {
		t.Error("message without keywords should have no other flags")
	}

	m = &Message{Keywords: map[string]bool{
		KeywordSeen:     true,
		KeywordFlagged:  true,
		KeywordAnswered: true,
		KeywordDraft:    true,
	}}
	if m.IsUnread() {
		t.Error("$seen message should not be unread")
	}
	if !m.IsFlagged() || !m.IsAnswered() || !m.IsDraft() {
		t.Error("expected all flag helpers true")
	}

	m = &Message{Keywords: map[string]bool{KeywordSeen: false}}
	if !m.IsUnread() {
		t.Error("$seen=false should count as unread")
	}
}

func TestAddressString(t *testing.T) {
	a := Address{Name: "Alice", Email: "alice@example.com"}
	if a.String() != "Alice <alice@example.com>" {
		t.Errorf("unexpected: %s", a.String())
	}

	a = Address{Email: "bob@example.com"}
	if a.String() != "bob@example.com" {
		t.Errorf("unexpected: %s", a.String())
	}
}

func TestParticipants(t *testing.T) {
	m := &Message{
		From: []Address{{Name: "Alice", Email: "alice@example.com"}},
		To: []Address{
			{Email: "bob@example.com"},
			{Email: "ALICE@example.com"}, // dup, case-insensitive
		},
		CC: []Address{{Email: "carol@example.com"}},
	}

	got := m.Participants()
	if len(got) != 3 {
		t.Fatalf("expected 3 participants, got %d: %v", len(got), got)
	}
	if got[0].Email != "alice@example.com" || got[1].Email != "bob@example.com" {
		t.Errorf("expected header order, got %v", got)
	}
}
