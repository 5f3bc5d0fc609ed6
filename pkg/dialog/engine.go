package dialog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/conciergebot/concierge/pkg/state"
	"github.com/conciergebot/concierge/pkg/turn"
)

// frame is one stack entry, persisted per conversation through the
// state accessor.
type frame struct {
	InstanceID string            `json:"instance_id"`
	DialogID   string            `json:"dialog_id"`
	Step       int               `json:"step"`
	Options    Options           `json:"options,omitempty"`
	State      map[string]string `json:"state,omitempty"`
}

type stackRecord struct {
	Frames []frame `json:"frames"`
}

// Engine is a reference Stack implementation: an ordered stack of
// named dialog instances per conversation, persisted as JSON through a
// state accessor. Hosts with their own dialog engine only need to
// satisfy the Stack interface instead.
type Engine struct {
	acc     state.Accessor
	dialogs map[string]Dialog
}

func NewEngine(acc state.Accessor, dialogs ...Dialog) (*Engine, error) {
	if acc == nil {
		return nil, fmt.Errorf("dialog: state accessor is required")
	}
	reg := make(map[string]Dialog, len(dialogs))
	for _, d := range dialogs {
		if d == nil {
			return nil, fmt.Errorf("dialog: nil dialog registered")
		}
		if _, dup := reg[d.ID()]; dup {
			return nil, fmt.Errorf("dialog: duplicate dialog id %q", d.ID())
		}
		reg[d.ID()] = d
	}
	return &Engine{acc: acc, dialogs: reg}, nil
}

// Register adds a dialog after construction; it replaces any dialog
// already registered under the same id.
func (e *Engine) Register(d Dialog) {
	e.dialogs[d.ID()] = d
}

func stackKey(tc *turn.Context) string {
	return "stack:" + tc.ConversationKey()
}

func (e *Engine) load(ctx context.Context, tc *turn.Context) (stackRecord, error) {
	var rec stackRecord
	if _, err := e.acc.Get(ctx, stackKey(tc), &rec); err != nil {
		return stackRecord{}, fmt.Errorf("dialog: load stack: %w", err)
	}
	return rec, nil
}

func (e *Engine) save(ctx context.Context, tc *turn.Context, rec stackRecord) error {
	if len(rec.Frames) == 0 {
		return e.acc.Delete(ctx, stackKey(tc))
	}
	if err := e.acc.Set(ctx, stackKey(tc), rec); err != nil {
		return fmt.Errorf("dialog: save stack: %w", err)
	}
	return nil
}

func instanceView(f *frame) *Instance {
	if f.State == nil {
		f.State = make(map[string]string)
	}
	return &Instance{
		ID:      f.InstanceID,
		Options: f.Options,
		State:   f.State,
		Step:    f.Step,
	}
}

func (e *Engine) Begin(ctx context.Context, tc *turn.Context, dialogID string, opts Options) (turn.Result, error) {
	d, ok := e.dialogs[dialogID]
	if !ok {
		return turn.Result{}, fmt.Errorf("dialog: unknown dialog %q", dialogID)
	}

	rec, err := e.load(ctx, tc)
	if err != nil {
		return turn.Result{}, err
	}

	f := frame{
		InstanceID: uuid.NewString(),
		DialogID:   dialogID,
		Options:    opts,
	}
	rec.Frames = append(rec.Frames, f)
	top := &rec.Frames[len(rec.Frames)-1]

	inst := instanceView(top)
	res, err := d.Begin(ctx, tc, inst)
	if err != nil {
		return turn.Result{}, err
	}
	top.Step = inst.Step

	if res.Status == turn.StatusComplete || res.Status == turn.StatusEmpty {
		rec.Frames = rec.Frames[:len(rec.Frames)-1]
	}
	if err := e.save(ctx, tc, rec); err != nil {
		return turn.Result{}, err
	}
	return res, nil
}

func (e *Engine) Continue(ctx context.Context, tc *turn.Context) (turn.Result, error) {
	rec, err := e.load(ctx, tc)
	if err != nil {
		return turn.Result{}, err
	}
	if len(rec.Frames) == 0 {
		return turn.Result{Status: turn.StatusEmpty}, nil
	}

	top := &rec.Frames[len(rec.Frames)-1]
	d, ok := e.dialogs[top.DialogID]
	if !ok {
		return turn.Result{}, fmt.Errorf("dialog: unknown dialog %q on stack", top.DialogID)
	}

	inst := instanceView(top)
	res, err := d.Continue(ctx, tc, inst)
	if err != nil {
		return turn.Result{}, err
	}
	top.Step = inst.Step

	if res.Status == turn.StatusComplete || res.Status == turn.StatusEmpty {
		rec.Frames = rec.Frames[:len(rec.Frames)-1]
	}
	if err := e.save(ctx, tc, rec); err != nil {
		return turn.Result{}, err
	}
	return res, nil
}

func (e *Engine) Reprompt(ctx context.Context, tc *turn.Context) error {
	rec, err := e.load(ctx, tc)
	if err != nil {
		return err
	}
	if len(rec.Frames) == 0 {
		return nil
	}

	top := &rec.Frames[len(rec.Frames)-1]
	d, ok := e.dialogs[top.DialogID]
	if !ok {
		return fmt.Errorf("dialog: unknown dialog %q on stack", top.DialogID)
	}

	// Reprompt never changes the frame's position or step.
	return d.Reprompt(ctx, tc, instanceView(top))
}

func (e *Engine) CancelAll(ctx context.Context, tc *turn.Context) error {
	// Cancelling an already-empty stack is a no-op.
	return e.acc.Delete(ctx, stackKey(tc))
}

func (e *Engine) ActiveID(ctx context.Context, tc *turn.Context) (string, bool, error) {
	rec, err := e.load(ctx, tc)
	if err != nil {
		return "", false, err
	}
	if len(rec.Frames) == 0 {
		return "", false, nil
	}
	return rec.Frames[len(rec.Frames)-1].DialogID, true, nil
}
