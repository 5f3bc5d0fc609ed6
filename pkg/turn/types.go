package turn

// Kind classifies an inbound conversation event.
type Kind string

const (
	KindMessage          Kind = "message"
	KindMembershipChange Kind = "membership_change"
	KindOther            Kind = "other"
)

// Status is the state a dialog stack operation reports back.
type Status string

const (
	StatusEmpty    Status = "empty"
	StatusWaiting  Status = "waiting"
	StatusComplete Status = "complete"
)

// Result is returned by every dialog stack operation. Routing logic
// branches on Status only; Value is an opaque dialog payload.
type Result struct {
	Status Status      `json:"status"`
	Value  interface{} `json:"value,omitempty"`
}

// Attachment is a non-text payload carried by a message event.
type Attachment struct {
	ContentType string `json:"content_type"`
	ContentURL  string `json:"content_url,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Event is one inbound conversation event as delivered by a channel
// adapter. It is immutable for the duration of a turn.
type Event struct {
	Kind           Kind         `json:"kind"`
	Text           string       `json:"text,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	LocaleHint     string       `json:"locale_hint,omitempty"`
	ChannelID      string       `json:"channel_id,omitempty"`
	ConversationID string       `json:"conversation_id"`
	SenderID       string       `json:"sender_id"`
	RecipientID    string       `json:"recipient_id,omitempty"`
	MembersAdded   []string     `json:"members_added,omitempty"`
}
