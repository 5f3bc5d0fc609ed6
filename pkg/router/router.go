package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/conciergebot/concierge/pkg/audit"
	"github.com/conciergebot/concierge/pkg/dialog"
	"github.com/conciergebot/concierge/pkg/intent"
	"github.com/conciergebot/concierge/pkg/interrupt"
	"github.com/conciergebot/concierge/pkg/locale"
	"github.com/conciergebot/concierge/pkg/logger"
	"github.com/conciergebot/concierge/pkg/turn"
	"github.com/conciergebot/concierge/pkg/utils"
)

// GreetingIntent is the default intent label bound to the greeting
// dialog.
const GreetingIntent = "Greeting"

// Options wires the router's collaborators. Stack, Users, Catalog,
// Recognizers and Policy are required.
type Options struct {
	Stack       dialog.Stack
	Users       *locale.Store
	Catalog     *locale.Catalog
	Recognizers *intent.Set
	Policy      interrupt.Policy

	// Threshold below which the effective top intent is forced to None.
	// Zero means intent.DefaultThreshold.
	Threshold float64

	// BotID is the identity matched against membership-change events.
	// When empty, the event's recipient is used instead.
	BotID string

	// Dialog bindings; zero values use the dialog package defaults.
	WelcomeDialogID  string
	GreetingDialogID string
	CancelDialogID   string
	AnswerDialogID   string
	GreetingIntent   string

	// Audit, when set, records one outcome per routed turn.
	Audit *audit.Log
}

// Router is the turn-orchestration core. It holds no per-conversation
// state: everything it reads or writes lives in the dialog stack and
// the user-state store, so one Router serves any number of
// conversations concurrently.
type Router struct {
	stack       dialog.Stack
	users       *locale.Store
	catalog     *locale.Catalog
	recognizers *intent.Set
	policy      interrupt.Policy
	threshold   float64
	botID       string

	welcomeID      string
	greetingID     string
	cancelID       string
	answerID       string
	greetingIntent string

	auditLog *audit.Log
}

// New validates the wiring and builds a Router. Missing collaborators
// are configuration errors, reported at construction rather than on
// the first turn.
func New(opts Options) (*Router, error) {
	if opts.Stack == nil {
		return nil, fmt.Errorf("router: dialog stack is required")
	}
	if opts.Users == nil {
		return nil, fmt.Errorf("router: user-state store is required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("router: locale catalog is required")
	}
	if opts.Recognizers == nil {
		return nil, fmt.Errorf("router: recognizer set is required")
	}
	if opts.Policy == nil {
		return nil, fmt.Errorf("router: interruption policy is required")
	}
	if !opts.Recognizers.Has(opts.Catalog.Default()) {
		return nil, fmt.Errorf("router: no recognizer for default locale %q", opts.Catalog.Default())
	}

	r := &Router{
		stack:          opts.Stack,
		users:          opts.Users,
		catalog:        opts.Catalog,
		recognizers:    opts.Recognizers,
		policy:         opts.Policy,
		threshold:      opts.Threshold,
		botID:          opts.BotID,
		welcomeID:      opts.WelcomeDialogID,
		greetingID:     opts.GreetingDialogID,
		cancelID:       opts.CancelDialogID,
		answerID:       opts.AnswerDialogID,
		greetingIntent: opts.GreetingIntent,
		auditLog:       opts.Audit,
	}
	if r.threshold <= 0 {
		r.threshold = intent.DefaultThreshold
	}
	if r.welcomeID == "" {
		r.welcomeID = dialog.WelcomeID
	}
	if r.greetingID == "" {
		r.greetingID = dialog.GreetingID
	}
	if r.cancelID == "" {
		r.cancelID = dialog.CancelID
	}
	if r.answerID == "" {
		r.answerID = dialog.AnswerID
	}
	if r.greetingIntent == "" {
		r.greetingIntent = GreetingIntent
	}
	return r, nil
}

func defaultResult() turn.Result {
	return turn.Result{Status: turn.StatusWaiting}
}

// HandleTurn processes one inbound event to completion: it resolves
// the user's locale, dispatches on the event kind, and drives the
// dialog stack to a TurnResult. It is the library entry point invoked
// by the channel adapter.
func (r *Router) HandleTurn(ctx context.Context, tc *turn.Context) (turn.Result, error) {
	loc, err := r.resolveLocale(ctx, tc)
	if err != nil {
		return defaultResult(), err
	}

	logger.DebugCF("router", "Routing turn",
		map[string]interface{}{
			"kind":         string(tc.Event.Kind),
			"conversation": tc.ConversationKey(),
			"locale":       loc,
			"text":         utils.Truncate(tc.Event.Text, 80),
		})

	switch tc.Event.Kind {
	case turn.KindMessage:
		return r.routeMessage(ctx, tc, loc)
	case turn.KindMembershipChange:
		return r.routeMembershipChange(ctx, tc, loc)
	default:
		r.record(tc, loc, "", 0, audit.OutcomeNoop, "")
		return defaultResult(), nil
	}
}

// resolveLocale reads the persisted locale, falls back to the turn's
// hint and then the catalog default, coerces unsupported values, and
// persists only when the value changed. It runs exactly once per turn,
// before dispatch.
func (r *Router) resolveLocale(ctx context.Context, tc *turn.Context) (string, error) {
	ud, _, err := r.users.Get(ctx, tc.UserKey())
	if err != nil {
		return "", err
	}

	candidate := ud.Locale
	if candidate == "" {
		candidate = tc.Event.LocaleHint
	}
	resolved := r.catalog.Resolve(candidate)

	if resolved != ud.Locale {
		if err := r.users.SetLocale(ctx, tc.UserKey(), resolved); err != nil {
			return "", err
		}
	}
	tc.SetLocale(resolved)
	return resolved, nil
}

func (r *Router) routeMembershipChange(ctx context.Context, tc *turn.Context, loc string) (turn.Result, error) {
	self := r.botID
	if self == "" {
		self = tc.Event.RecipientID
	}
	for _, member := range tc.Event.MembersAdded {
		if member != "" && member == self {
			res, err := r.stack.Begin(ctx, tc, r.welcomeID, nil)
			if err != nil {
				return defaultResult(), err
			}
			r.record(tc, loc, "", 0, audit.OutcomeWelcome, r.welcomeID)
			return res, nil
		}
	}
	r.record(tc, loc, "", 0, audit.OutcomeNoop, "")
	return defaultResult(), nil
}

// routeMessage is the core decision procedure for message events.
func (r *Router) routeMessage(ctx context.Context, tc *turn.Context, loc string) (turn.Result, error) {
	u := tc.Utterance()

	// Attachments are never routed to dialogs.
	if u == "" && len(tc.Event.Attachments) > 0 {
		if err := tc.Reply(ctx, r.catalog.Text(loc, locale.KeyAttachmentUnsupported)); err != nil {
			return defaultResult(), err
		}
		r.record(tc, loc, "", 0, audit.OutcomeAttachmentReply, "")
		return defaultResult(), nil
	}

	// The restart command is an unconditional override: no
	// classification, no interruption evaluation, no fallback.
	if u != "" && u == strings.ToLower(r.catalog.Text(loc, locale.KeyRestartCommand)) {
		return r.restart(ctx, tc, loc)
	}

	res := defaultResult()
	continued := false

	// An active answer dialog consumes the turn before classification.
	// A completion is normalized to empty so the rest of the procedure
	// sees "nothing active" instead of "just finished".
	activeID, hasActive, err := r.stack.ActiveID(ctx, tc)
	if err != nil {
		return defaultResult(), err
	}
	if hasActive && activeID == r.answerID {
		res, err = r.stack.Continue(ctx, tc)
		if err != nil {
			return defaultResult(), err
		}
		continued = true
		if res.Status == turn.StatusComplete {
			res.Status = turn.StatusEmpty
		}
	}

	rec := r.recognize(ctx, tc, loc)
	top, conf := intent.Effective(rec, r.threshold)

	// Re-read the active dialog: the pre-continue above may have
	// emptied the stack.
	activeID, hasActive, err = r.stack.ActiveID(ctx, tc)
	if err != nil {
		return defaultResult(), err
	}
	policyActive := ""
	if hasActive {
		policyActive = activeID
	}

	outcome := audit.OutcomeContinue
	if r.policy.IsInterruption(policyActive, top) {
		switch {
		case hasActive && activeID != r.cancelID:
			// Interrupting a regular dialog reprompts it in place.
			if err := r.stack.Reprompt(ctx, tc); err != nil {
				return defaultResult(), err
			}
			outcome = audit.OutcomeReprompt
		case hasActive:
			// The cancel dialog consumes the interrupting turn itself.
			res, err = r.stack.Continue(ctx, tc)
			if err != nil {
				return defaultResult(), err
			}
		}
	} else if !continued {
		res, err = r.stack.Continue(ctx, tc)
		if err != nil {
			return defaultResult(), err
		}
	}

	switch res.Status {
	case turn.StatusEmpty:
		// Fallback dispatch: only when no reply has been produced and
		// no active dialog consumed the turn.
		if !tc.Responded() {
			if top == r.greetingIntent {
				res, err = r.stack.Begin(ctx, tc, r.greetingID, optionsFromEntities(rec.Entities))
				outcome = audit.OutcomeBeginGreeting
			} else {
				res, err = r.stack.Begin(ctx, tc, r.answerID, nil)
				outcome = audit.OutcomeBeginAnswer
			}
			if err != nil {
				return defaultResult(), err
			}
		} else {
			outcome = audit.OutcomeNoop
		}
	case turn.StatusWaiting, turn.StatusComplete:
		// The active dialog owns the turn.
	default:
		// Engine-reported anomaly: cancel everything so the
		// conversation stays usable.
		logger.ErrorCF("router", "Unrecognized stack status, resetting dialogs",
			map[string]interface{}{
				"status":       string(res.Status),
				"conversation": tc.ConversationKey(),
			})
		if err := r.stack.CancelAll(ctx, tc); err != nil {
			return defaultResult(), err
		}
		r.record(tc, loc, top, conf, audit.OutcomeFailsafeReset, "")
		return defaultResult(), nil
	}

	dialogID := ""
	switch outcome {
	case audit.OutcomeBeginGreeting:
		dialogID = r.greetingID
	case audit.OutcomeBeginAnswer:
		dialogID = r.answerID
	case audit.OutcomeReprompt, audit.OutcomeContinue:
		dialogID = activeID
	}
	r.record(tc, loc, top, conf, outcome, dialogID)
	return res, nil
}

// restart wipes the user's record except for the locale, cancels every
// dialog and starts the welcome dialog over.
func (r *Router) restart(ctx context.Context, tc *turn.Context, loc string) (turn.Result, error) {
	if err := r.users.Reset(ctx, tc.UserKey()); err != nil {
		return defaultResult(), err
	}
	if err := r.stack.CancelAll(ctx, tc); err != nil {
		return defaultResult(), err
	}
	res, err := r.stack.Begin(ctx, tc, r.welcomeID, nil)
	if err != nil {
		return defaultResult(), err
	}
	logger.InfoCF("router", "Conversation restarted",
		map[string]interface{}{
			"conversation": tc.ConversationKey(),
			"locale":       loc,
		})
	r.record(tc, loc, "", 0, audit.OutcomeRestart, r.welcomeID)
	return res, nil
}

// recognize runs the locale's classifier. A classifier failure is
// logged and treated as an empty recognition so the turn still routes
// to the knowledge-base fallback.
func (r *Router) recognize(ctx context.Context, tc *turn.Context, loc string) intent.Recognition {
	rec, ok := r.recognizers.For(loc)
	if !ok {
		rec, _ = r.recognizers.For(r.catalog.Default())
	}
	result, err := rec.Recognize(ctx, tc.Event.Text)
	if err != nil {
		logger.WarnCF("router", "Intent classification failed",
			map[string]interface{}{
				"locale": loc,
				"error":  err.Error(),
			})
		return intent.Recognition{}
	}
	return result
}

func optionsFromEntities(entities map[string]string) dialog.Options {
	if len(entities) == 0 {
		return nil
	}
	opts := make(dialog.Options, len(entities))
	for k, v := range entities {
		opts[k] = v
	}
	return opts
}

func (r *Router) record(tc *turn.Context, loc, top string, conf float64, outcome, dialogID string) {
	if r.auditLog == nil {
		return
	}
	r.auditLog.Add(audit.Record{
		ConversationKey: tc.ConversationKey(),
		Kind:            string(tc.Event.Kind),
		Locale:          loc,
		Intent:          top,
		Confidence:      conf,
		Outcome:         outcome,
		DialogID:        dialogID,
	})
}
