package dialog

import (
	"context"

	"github.com/conciergebot/concierge/pkg/turn"
)

// IDs of the dialogs the router begins by name. Hosts registering
// their own dialogs may use any other identifiers.
const (
	WelcomeID  = "welcome"
	GreetingID = "greeting"
	CancelID   = "cancel"
	AnswerID   = "answer"
)

// Options are the begin-time parameters passed to a dialog, e.g.
// recognized entities forwarded into the greeting dialog.
type Options map[string]string

// Instance is the mutable per-activation view a dialog operates on.
// The engine persists it between turns as part of the stack frame.
type Instance struct {
	ID      string
	Options Options
	State   map[string]string
	Step    int
}

// Dialog is one named multi-turn flow registered on the stack engine.
type Dialog interface {
	ID() string
	Begin(ctx context.Context, tc *turn.Context, inst *Instance) (turn.Result, error)
	Continue(ctx context.Context, tc *turn.Context, inst *Instance) (turn.Result, error)
	Reprompt(ctx context.Context, tc *turn.Context, inst *Instance) error
}

// Stack is the external dialog-stack engine boundary the router drives.
// Every operation applies to the conversation the turn belongs to.
type Stack interface {
	Begin(ctx context.Context, tc *turn.Context, dialogID string, opts Options) (turn.Result, error)
	Continue(ctx context.Context, tc *turn.Context) (turn.Result, error)
	Reprompt(ctx context.Context, tc *turn.Context) error
	CancelAll(ctx context.Context, tc *turn.Context) error

	// ActiveID reports the identity of the dialog on top of the stack,
	// ok=false when the stack is empty.
	ActiveID(ctx context.Context, tc *turn.Context) (string, bool, error)
}
