package dialog

import (
	"context"
	"strings"
	"testing"

	"github.com/conciergebot/concierge/pkg/answer"
	"github.com/conciergebot/concierge/pkg/locale"
	"github.com/conciergebot/concierge/pkg/state"
	"github.com/conciergebot/concierge/pkg/turn"
)

type recorder struct {
	sent []string
}

func (r *recorder) Send(_ context.Context, text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func testCatalog(t *testing.T) *locale.Catalog {
	t.Helper()
	cat, err := locale.NewCatalog("en-US", locale.DefaultStrings())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return cat
}

func messageContext(text string, rec *recorder) *turn.Context {
	tc := turn.NewContext(turn.Event{
		Kind:           turn.KindMessage,
		Text:           text,
		ChannelID:      "test",
		ConversationID: "c1",
		SenderID:       "u1",
	}, rec)
	tc.SetLocale("en-US")
	return tc
}

type fixedSearcher struct {
	a     answer.Answer
	found bool
}

func (f fixedSearcher) Search(context.Context, string) (answer.Answer, bool, error) {
	return f.a, f.found, nil
}

func TestWelcomeDialogRepliesAndCompletes(t *testing.T) {
	rec := &recorder{}
	d := NewWelcomeDialog(testCatalog(t))

	res, err := d.Begin(context.Background(), messageContext("", rec), &Instance{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if res.Status != turn.StatusComplete {
		t.Fatalf("status = %q", res.Status)
	}
	if len(rec.sent) != 1 {
		t.Fatalf("sent = %v, want one welcome message", rec.sent)
	}
}

func TestGreetingDialogUsesNameEntity(t *testing.T) {
	rec := &recorder{}
	users, _ := locale.NewStore(state.NewMemory())
	d := NewGreetingDialog(testCatalog(t), users)
	tc := messageContext("hi", rec)

	res, err := d.Begin(context.Background(), tc, &Instance{Options: Options{"name": "Alice"}})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if res.Status != turn.StatusComplete {
		t.Fatalf("status = %q", res.Status)
	}
	if len(rec.sent) != 1 || !strings.Contains(rec.sent[0], "Alice") {
		t.Fatalf("sent = %v, want greeting containing Alice", rec.sent)
	}

	ud, ok, err := users.Get(context.Background(), tc.UserKey())
	if err != nil || !ok {
		t.Fatalf("user record: ok=%t err=%v", ok, err)
	}
	if ud.Name != "Alice" {
		t.Fatalf("name = %q, want Alice remembered", ud.Name)
	}
}

func TestCancelDialogConfirmFlow(t *testing.T) {
	rec := &recorder{}
	d := NewCancelDialog(testCatalog(t))
	ctx := context.Background()

	inst := &Instance{State: map[string]string{}}
	res, err := d.Begin(ctx, messageContext("cancel", rec), inst)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if res.Status != turn.StatusWaiting {
		t.Fatalf("begin status = %q, want waiting", res.Status)
	}

	res, err = d.Continue(ctx, messageContext("yes", rec), inst)
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if res.Status != turn.StatusComplete || res.Value != "cancelled" {
		t.Fatalf("continue result = %+v", res)
	}
}

func TestCancelDialogAbort(t *testing.T) {
	rec := &recorder{}
	d := NewCancelDialog(testCatalog(t))
	ctx := context.Background()

	inst := &Instance{State: map[string]string{}}
	if _, err := d.Begin(ctx, messageContext("cancel", rec), inst); err != nil {
		t.Fatalf("begin: %v", err)
	}
	res, err := d.Continue(ctx, messageContext("no", rec), inst)
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if res.Status != turn.StatusComplete || res.Value != "resumed" {
		t.Fatalf("continue result = %+v", res)
	}
}

func TestAnswerDialogConfidentHit(t *testing.T) {
	rec := &recorder{}
	searchers, _ := answer.NewSet(map[string]answer.Searcher{
		"en-US": fixedSearcher{a: answer.Answer{Text: "We open at 9am.", Confidence: 0.9}, found: true},
	})
	d, err := NewAnswerDialog(testCatalog(t), searchers)
	if err != nil {
		t.Fatalf("new dialog: %v", err)
	}

	res, err := d.Begin(context.Background(), messageContext("when do you open?", rec), &Instance{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if res.Status != turn.StatusComplete {
		t.Fatalf("status = %q", res.Status)
	}
	if len(rec.sent) != 1 || rec.sent[0] != "We open at 9am." {
		t.Fatalf("sent = %v", rec.sent)
	}
}

func TestAnswerDialogClarifiesThenCompletes(t *testing.T) {
	rec := &recorder{}
	searchers, _ := answer.NewSet(map[string]answer.Searcher{
		"en-US": fixedSearcher{found: false},
	})
	d, _ := NewAnswerDialog(testCatalog(t), searchers)
	ctx := context.Background()

	inst := &Instance{State: map[string]string{}}
	res, err := d.Begin(ctx, messageContext("gibberish", rec), inst)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if res.Status != turn.StatusWaiting {
		t.Fatalf("begin status = %q, want waiting (clarify)", res.Status)
	}

	res, err = d.Continue(ctx, messageContext("still gibberish", rec), inst)
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if res.Status != turn.StatusComplete {
		t.Fatalf("continue status = %q, want complete", res.Status)
	}
	if len(rec.sent) != 2 {
		t.Fatalf("sent = %v, want clarify then not-found", rec.sent)
	}
}
