package dialog

import (
	"context"
	"fmt"

	"github.com/conciergebot/concierge/pkg/answer"
	"github.com/conciergebot/concierge/pkg/locale"
	"github.com/conciergebot/concierge/pkg/turn"
)

// minAnswerConfidence is the score below which a knowledge-base hit is
// treated as uncertain and the user is asked to rephrase once.
const minAnswerConfidence = 0.3

// AnswerDialog runs the knowledge-base fallback. A confident hit
// answers and completes in one turn; an uncertain or missing hit asks
// the user to rephrase and consumes the follow-up utterance.
type AnswerDialog struct {
	cat       *locale.Catalog
	searchers *answer.Set
}

func NewAnswerDialog(cat *locale.Catalog, searchers *answer.Set) (*AnswerDialog, error) {
	if searchers == nil {
		return nil, fmt.Errorf("dialog: answer searcher set is required")
	}
	return &AnswerDialog{cat: cat, searchers: searchers}, nil
}

func (d *AnswerDialog) ID() string { return AnswerID }

func (d *AnswerDialog) search(ctx context.Context, tc *turn.Context) (answer.Answer, bool, error) {
	loc := tc.Locale()
	s, ok := d.searchers.For(loc)
	if !ok {
		s, ok = d.searchers.For(d.cat.Default())
	}
	if !ok {
		return answer.Answer{}, false, fmt.Errorf("dialog: no answer searcher for locale %q", loc)
	}
	return s.Search(ctx, tc.Utterance())
}

func (d *AnswerDialog) Begin(ctx context.Context, tc *turn.Context, inst *Instance) (turn.Result, error) {
	a, found, err := d.search(ctx, tc)
	if err != nil {
		return turn.Result{}, err
	}

	if found && a.Confidence >= minAnswerConfidence {
		if err := tc.Reply(ctx, a.Text); err != nil {
			return turn.Result{}, err
		}
		return turn.Result{Status: turn.StatusComplete, Value: a}, nil
	}

	// Uncertain or no hit: ask once for a rephrase and stay active so
	// the next utterance comes back to us.
	if err := tc.Reply(ctx, d.cat.Text(tc.Locale(), locale.KeyAnswerClarify)); err != nil {
		return turn.Result{}, err
	}
	inst.Step = 1
	return turn.Result{Status: turn.StatusWaiting}, nil
}

func (d *AnswerDialog) Continue(ctx context.Context, tc *turn.Context, _ *Instance) (turn.Result, error) {
	a, found, err := d.search(ctx, tc)
	if err != nil {
		return turn.Result{}, err
	}

	if found {
		if err := tc.Reply(ctx, a.Text); err != nil {
			return turn.Result{}, err
		}
		return turn.Result{Status: turn.StatusComplete, Value: a}, nil
	}

	if err := tc.Reply(ctx, d.cat.Text(tc.Locale(), locale.KeyAnswerNotFound)); err != nil {
		return turn.Result{}, err
	}
	return turn.Result{Status: turn.StatusComplete}, nil
}

func (d *AnswerDialog) Reprompt(ctx context.Context, tc *turn.Context, _ *Instance) error {
	return tc.Reply(ctx, d.cat.Text(tc.Locale(), locale.KeyAnswerClarify))
}
