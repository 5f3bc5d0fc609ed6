package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Outcomes a routing pass can end with.
const (
	OutcomeAttachmentReply = "attachment_reply"
	OutcomeRestart         = "restart"
	OutcomeWelcome         = "welcome"
	OutcomeReprompt        = "reprompt"
	OutcomeContinue        = "continue"
	OutcomeBeginGreeting   = "begin_greeting"
	OutcomeBeginAnswer     = "begin_answer"
	OutcomeNoop            = "noop"
	OutcomeFailsafeReset   = "failsafe_reset"
)

// retentionDays bounds how long routing records are kept.
const retentionDays = 30

// Record is one routed turn.
type Record struct {
	Timestamp       time.Time `json:"timestamp"`
	DayKey          string    `json:"day_key"`
	ConversationKey string    `json:"conversation_key"`
	Kind            string    `json:"kind"`
	Locale          string    `json:"locale"`
	Intent          string    `json:"intent,omitempty"`
	Confidence      float64   `json:"confidence,omitempty"`
	Outcome         string    `json:"outcome"`
	DialogID        string    `json:"dialog_id,omitempty"`
}

type Filter struct {
	ConversationKey string
	DayKey          string
	Outcome         string
	Limit           int
}

// Log records routing outcomes per turn. With a directory it persists
// to routing.json; without one it is memory-only.
type Log struct {
	mu      sync.RWMutex
	records []Record
	path    string
}

func NewLog(dir string) *Log {
	l := &Log{records: make([]Record, 0, 256)}
	if dir == "" {
		return l
	}
	_ = os.MkdirAll(dir, 0755)
	l.path = filepath.Join(dir, "routing.json")
	l.load()
	return l
}

func (l *Log) TodayKey() string {
	return time.Now().UTC().Format("2006-01-02")
}

func (l *Log) Add(r Record) {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.DayKey == "" {
		r.DayKey = r.Timestamp.UTC().Format("2006-01-02")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	l.mu.Lock()
	kept := l.records[:0]
	for _, rec := range l.records {
		if rec.Timestamp.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	l.records = append(kept, r)
	l.mu.Unlock()

	l.save()
}

// LastByConversation returns the most recent record for a conversation.
func (l *Log) LastByConversation(conversationKey string) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].ConversationKey == conversationKey {
			return l.records[i], true
		}
	}
	return Record{}, false
}

func (l *Log) Query(f Filter) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		if f.ConversationKey != "" && r.ConversationKey != f.ConversationKey {
			continue
		}
		if f.DayKey != "" && r.DayKey != f.DayKey {
			continue
		}
		if f.Outcome != "" && r.Outcome != f.Outcome {
			continue
		}
		out = append(out, r)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

func (l *Log) load() {
	if l.path == "" {
		return
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return
	}
	l.mu.Lock()
	l.records = records
	l.mu.Unlock()
}

func (l *Log) save() {
	if l.path == "" {
		return
	}
	l.mu.RLock()
	data, err := json.MarshalIndent(l.records, "", "  ")
	l.mu.RUnlock()
	if err != nil {
		return
	}
	_ = os.WriteFile(l.path, data, 0644)
}
