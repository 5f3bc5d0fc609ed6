package dialog

import (
	"context"
	"testing"

	"github.com/conciergebot/concierge/pkg/state"
	"github.com/conciergebot/concierge/pkg/turn"
)

// scriptDialog is a minimal dialog for engine tests: Begin reports
// beginStatus, Continue reports continueStatus.
type scriptDialog struct {
	id             string
	beginStatus    turn.Status
	continueStatus turn.Status
	reprompts      int
}

func (d *scriptDialog) ID() string { return d.id }

func (d *scriptDialog) Begin(_ context.Context, _ *turn.Context, inst *Instance) (turn.Result, error) {
	inst.Step = 1
	return turn.Result{Status: d.beginStatus}, nil
}

func (d *scriptDialog) Continue(_ context.Context, _ *turn.Context, inst *Instance) (turn.Result, error) {
	inst.Step++
	return turn.Result{Status: d.continueStatus}, nil
}

func (d *scriptDialog) Reprompt(context.Context, *turn.Context, *Instance) error {
	d.reprompts++
	return nil
}

func newTestContext() *turn.Context {
	return turn.NewContext(turn.Event{
		Kind:           turn.KindMessage,
		ChannelID:      "test",
		ConversationID: "c1",
		SenderID:       "u1",
	}, nil)
}

func TestEngineBeginWaitingKeepsFrame(t *testing.T) {
	d := &scriptDialog{id: "multi", beginStatus: turn.StatusWaiting, continueStatus: turn.StatusComplete}
	e, err := NewEngine(state.NewMemory(), d)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx := context.Background()
	tc := newTestContext()

	res, err := e.Begin(ctx, tc, "multi", nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if res.Status != turn.StatusWaiting {
		t.Fatalf("status = %q", res.Status)
	}

	id, ok, err := e.ActiveID(ctx, tc)
	if err != nil {
		t.Fatalf("active id: %v", err)
	}
	if !ok || id != "multi" {
		t.Fatalf("active = %q ok=%t, want multi", id, ok)
	}
}

func TestEngineContinuePopsOnComplete(t *testing.T) {
	d := &scriptDialog{id: "multi", beginStatus: turn.StatusWaiting, continueStatus: turn.StatusComplete}
	e, _ := NewEngine(state.NewMemory(), d)
	ctx := context.Background()
	tc := newTestContext()

	if _, err := e.Begin(ctx, tc, "multi", nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	res, err := e.Continue(ctx, tc)
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if res.Status != turn.StatusComplete {
		t.Fatalf("status = %q", res.Status)
	}

	_, ok, err := e.ActiveID(ctx, tc)
	if err != nil {
		t.Fatalf("active id: %v", err)
	}
	if ok {
		t.Fatal("stack should be empty after completion")
	}
}

func TestEngineContinueEmptyStack(t *testing.T) {
	e, _ := NewEngine(state.NewMemory())
	res, err := e.Continue(context.Background(), newTestContext())
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if res.Status != turn.StatusEmpty {
		t.Fatalf("status = %q, want empty", res.Status)
	}
}

func TestEngineCancelAllIdempotent(t *testing.T) {
	d := &scriptDialog{id: "multi", beginStatus: turn.StatusWaiting, continueStatus: turn.StatusWaiting}
	e, _ := NewEngine(state.NewMemory(), d)
	ctx := context.Background()
	tc := newTestContext()

	if _, err := e.Begin(ctx, tc, "multi", nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := e.CancelAll(ctx, tc); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := e.CancelAll(ctx, tc); err != nil {
		t.Fatalf("cancel empty stack: %v", err)
	}

	_, ok, _ := e.ActiveID(ctx, tc)
	if ok {
		t.Fatal("stack should be empty after cancel")
	}
}

func TestEngineRepromptKeepsPosition(t *testing.T) {
	d := &scriptDialog{id: "multi", beginStatus: turn.StatusWaiting, continueStatus: turn.StatusWaiting}
	e, _ := NewEngine(state.NewMemory(), d)
	ctx := context.Background()
	tc := newTestContext()

	if _, err := e.Begin(ctx, tc, "multi", nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := e.Reprompt(ctx, tc); err != nil {
		t.Fatalf("reprompt: %v", err)
	}
	if d.reprompts != 1 {
		t.Fatalf("reprompts = %d, want 1", d.reprompts)
	}

	id, ok, _ := e.ActiveID(ctx, tc)
	if !ok || id != "multi" {
		t.Fatalf("active = %q ok=%t after reprompt", id, ok)
	}
}

func TestEngineUnknownDialog(t *testing.T) {
	e, _ := NewEngine(state.NewMemory())
	if _, err := e.Begin(context.Background(), newTestContext(), "nope", nil); err == nil {
		t.Fatal("expected error for unknown dialog")
	}
}

func TestEngineRejectsDuplicateIDs(t *testing.T) {
	a := &scriptDialog{id: "dup"}
	b := &scriptDialog{id: "dup"}
	if _, err := NewEngine(state.NewMemory(), a, b); err == nil {
		t.Fatal("expected error for duplicate dialog id")
	}
}

func TestEnginePersistsStepBetweenTurns(t *testing.T) {
	d := &scriptDialog{id: "multi", beginStatus: turn.StatusWaiting, continueStatus: turn.StatusWaiting}
	acc := state.NewMemory()
	e, _ := NewEngine(acc, d)
	ctx := context.Background()

	if _, err := e.Begin(ctx, newTestContext(), "multi", nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := e.Continue(ctx, newTestContext()); err != nil {
		t.Fatalf("continue: %v", err)
	}

	// A second engine over the same accessor sees the persisted frame.
	e2, _ := NewEngine(acc, d)
	id, ok, err := e2.ActiveID(ctx, newTestContext())
	if err != nil {
		t.Fatalf("active id: %v", err)
	}
	if !ok || id != "multi" {
		t.Fatalf("active = %q ok=%t on fresh engine", id, ok)
	}
}
