package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a chat message.
type Kind string

const (
	KindUser    Kind = "user"
	KindBot     Kind = "bot"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindLoading Kind = "loading"
)

// Message represents a single chat message
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps a message with a fresh id and the current time.
func NewMessage(kind Kind, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// Transcript is the ordered list of chat messages. Messages are only ever
// appended; the one exception is the loading placeholder.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a message and returns it.
func (t *Transcript) Append(kind Kind, text string) Message {
	msg := NewMessage(kind, text)
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
	return msg
}

// RemoveLoading drops the loading placeholder with the given id.
// It reports whether a placeholder was removed.
func (t *Transcript) RemoveLoading(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, msg := range t.messages {
		if msg.ID == id && msg.Kind == KindLoading {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Since returns the messages appended after the first n.
func (t *Transcript) Since(n int) []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n >= len(t.messages) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	out := make([]Message, len(t.messages)-n)
	copy(out, t.messages[n:])
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Reset clears the transcript.
func (t *Transcript) Reset() {
	t.mu.Lock()
	t.messages = nil
	t.mu.Unlock()
}
