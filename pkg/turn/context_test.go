package turn

import (
	"context"
	"testing"
)

type recorder struct {
	sent []string
}

func (r *recorder) Send(_ context.Context, text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func TestUtteranceNormalization(t *testing.T) {
	tc := NewContext(Event{Kind: KindMessage, Text: "  ReStart \n"}, nil)
	if got := tc.Utterance(); got != "restart" {
		t.Fatalf("Utterance() = %q, want %q", got, "restart")
	}
}

func TestReplyMarksResponded(t *testing.T) {
	rec := &recorder{}
	tc := NewContext(Event{Kind: KindMessage}, rec)

	if tc.Responded() {
		t.Fatal("fresh context should not be responded")
	}
	if err := tc.Reply(context.Background(), "hello"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if !tc.Responded() {
		t.Fatal("context should be responded after Reply")
	}
	if len(rec.sent) != 1 || rec.sent[0] != "hello" {
		t.Fatalf("sent = %v, want [hello]", rec.sent)
	}
}

func TestKeysIncludeChannel(t *testing.T) {
	tc := NewContext(Event{
		ChannelID:      "telegram",
		ConversationID: "42",
		SenderID:       "alice",
	}, nil)

	if got := tc.UserKey(); got != "telegram:alice" {
		t.Fatalf("UserKey() = %q", got)
	}
	if got := tc.ConversationKey(); got != "telegram:42" {
		t.Fatalf("ConversationKey() = %q", got)
	}

	bare := NewContext(Event{ConversationID: "42", SenderID: "alice"}, nil)
	if got := bare.UserKey(); got != "alice" {
		t.Fatalf("UserKey() without channel = %q", got)
	}
}

func TestLocaleRoundTrip(t *testing.T) {
	tc := NewContext(Event{}, nil)
	if tc.Locale() != "" {
		t.Fatal("locale should be empty before resolution")
	}
	tc.SetLocale("fr-FR")
	if tc.Locale() != "fr-FR" {
		t.Fatalf("Locale() = %q", tc.Locale())
	}
}
