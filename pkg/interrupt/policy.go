package interrupt

import "github.com/conciergebot/concierge/pkg/intent"

// Policy decides whether a turn interrupts the current flow. The
// router treats it as an opaque predicate: the decision rules live
// here (or in the host's implementation), never in the router.
type Policy interface {
	// IsInterruption receives the identity of the active dialog ("" when
	// none is active) and the effective top intent for the turn.
	IsInterruption(activeDialogID, topIntent string) bool
}

// IntentSet is a Policy that interrupts on a fixed set of intent
// labels, typically cancel/restart style commands.
type IntentSet struct {
	labels map[string]struct{}
}

func NewIntentSet(labels ...string) *IntentSet {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return &IntentSet{labels: set}
}

func (p *IntentSet) IsInterruption(_ string, topIntent string) bool {
	if topIntent == intent.None {
		return false
	}
	_, ok := p.labels[topIntent]
	return ok
}

// Never is a Policy that never interrupts; useful for hosts without
// multi-turn dialogs.
type Never struct{}

func (Never) IsInterruption(string, string) bool { return false }
