package turn

import (
	"context"
	"strings"
)

// Responder delivers replies for the current turn back through the
// channel adapter that produced the event.
type Responder interface {
	Send(ctx context.Context, text string) error
}

// Context carries one inbound event through a single routing pass and
// tracks whether any reply has been produced for it yet. It is not safe
// for concurrent use and must not outlive the turn.
type Context struct {
	Event     Event
	responder Responder
	locale    string
	responded bool
}

func NewContext(ev Event, r Responder) *Context {
	return &Context{Event: ev, responder: r}
}

// Reply sends text to the user and marks the turn as responded.
func (c *Context) Reply(ctx context.Context, text string) error {
	if c.responder == nil {
		c.responded = true
		return nil
	}
	if err := c.responder.Send(ctx, text); err != nil {
		return err
	}
	c.responded = true
	return nil
}

// Responded reports whether any reply was sent during this turn.
func (c *Context) Responded() bool {
	return c.responded
}

// SetLocale records the locale resolved for this turn.
func (c *Context) SetLocale(locale string) {
	c.locale = locale
}

// Locale returns the locale resolved for this turn, or "" before
// resolution has run.
func (c *Context) Locale() string {
	return c.locale
}

// Utterance returns the lowercased, whitespace-trimmed message text.
func (c *Context) Utterance() string {
	return strings.ToLower(strings.TrimSpace(c.Event.Text))
}

// UserKey identifies the sender across turns within a channel.
func (c *Context) UserKey() string {
	if c.Event.ChannelID == "" {
		return c.Event.SenderID
	}
	return c.Event.ChannelID + ":" + c.Event.SenderID
}

// ConversationKey identifies the conversation the event belongs to.
func (c *Context) ConversationKey() string {
	if c.Event.ChannelID == "" {
		return c.Event.ConversationID
	}
	return c.Event.ChannelID + ":" + c.Event.ConversationID
}
