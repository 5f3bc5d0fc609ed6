package dialog

import (
	"context"
	"fmt"

	"github.com/conciergebot/concierge/pkg/locale"
	"github.com/conciergebot/concierge/pkg/turn"
)

// WelcomeDialog greets a user when the bot joins a conversation or
// after a restart.
type WelcomeDialog struct {
	cat *locale.Catalog
}

func NewWelcomeDialog(cat *locale.Catalog) *WelcomeDialog {
	return &WelcomeDialog{cat: cat}
}

func (d *WelcomeDialog) ID() string { return WelcomeID }

func (d *WelcomeDialog) Begin(ctx context.Context, tc *turn.Context, _ *Instance) (turn.Result, error) {
	if err := tc.Reply(ctx, d.cat.Text(tc.Locale(), locale.KeyWelcome)); err != nil {
		return turn.Result{}, err
	}
	return turn.Result{Status: turn.StatusComplete}, nil
}

func (d *WelcomeDialog) Continue(context.Context, *turn.Context, *Instance) (turn.Result, error) {
	return turn.Result{Status: turn.StatusComplete}, nil
}

func (d *WelcomeDialog) Reprompt(ctx context.Context, tc *turn.Context, _ *Instance) error {
	return tc.Reply(ctx, d.cat.Text(tc.Locale(), locale.KeyWelcome))
}

// GreetingDialog answers a greeting, optionally addressing the user by
// the recognized "name" entity.
type GreetingDialog struct {
	cat   *locale.Catalog
	users *locale.Store
}

// NewGreetingDialog builds the greeting dialog. users may be nil; when
// present the recognized name is remembered on the user's record.
func NewGreetingDialog(cat *locale.Catalog, users *locale.Store) *GreetingDialog {
	return &GreetingDialog{cat: cat, users: users}
}

func (d *GreetingDialog) ID() string { return GreetingID }

func (d *GreetingDialog) Begin(ctx context.Context, tc *turn.Context, inst *Instance) (turn.Result, error) {
	loc := tc.Locale()
	name := inst.Options["name"]

	text := d.cat.Text(loc, locale.KeyGreeting)
	if name != "" {
		text = fmt.Sprintf(d.cat.Text(loc, locale.KeyGreetingNamed), name)
		if d.users != nil {
			if err := d.users.SetName(ctx, tc.UserKey(), name); err != nil {
				return turn.Result{}, err
			}
		}
	}
	if err := tc.Reply(ctx, text); err != nil {
		return turn.Result{}, err
	}
	return turn.Result{Status: turn.StatusComplete}, nil
}

func (d *GreetingDialog) Continue(context.Context, *turn.Context, *Instance) (turn.Result, error) {
	return turn.Result{Status: turn.StatusComplete}, nil
}

func (d *GreetingDialog) Reprompt(ctx context.Context, tc *turn.Context, _ *Instance) error {
	return tc.Reply(ctx, d.cat.Text(tc.Locale(), locale.KeyGreeting))
}

// CancelDialog confirms cancellation before the host tears the flow
// down. Its first turn prompts, the second consumes the answer.
type CancelDialog struct {
	cat *locale.Catalog
}

func NewCancelDialog(cat *locale.Catalog) *CancelDialog {
	return &CancelDialog{cat: cat}
}

func (d *CancelDialog) ID() string { return CancelID }

func (d *CancelDialog) Begin(ctx context.Context, tc *turn.Context, inst *Instance) (turn.Result, error) {
	if err := tc.Reply(ctx, d.cat.Text(tc.Locale(), locale.KeyCancelPrompt)); err != nil {
		return turn.Result{}, err
	}
	inst.Step = 1
	return turn.Result{Status: turn.StatusWaiting}, nil
}

func (d *CancelDialog) Continue(ctx context.Context, tc *turn.Context, _ *Instance) (turn.Result, error) {
	loc := tc.Locale()
	confirm := d.cat.Text(loc, locale.KeyConfirmWord)

	u := tc.Utterance()
	if u == confirm || u == "yes" || u == "y" {
		if err := tc.Reply(ctx, d.cat.Text(loc, locale.KeyCancelConfirmed)); err != nil {
			return turn.Result{}, err
		}
		return turn.Result{Status: turn.StatusComplete, Value: "cancelled"}, nil
	}

	if err := tc.Reply(ctx, d.cat.Text(loc, locale.KeyCancelAborted)); err != nil {
		return turn.Result{}, err
	}
	return turn.Result{Status: turn.StatusComplete, Value: "resumed"}, nil
}

func (d *CancelDialog) Reprompt(ctx context.Context, tc *turn.Context, _ *Instance) error {
	return tc.Reply(ctx, d.cat.Text(tc.Locale(), locale.KeyCancelPrompt))
}
