package brainstorm

import (
	"log"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Transport — chat delivery boundary
// ──────────────────────────────────────────────

// InboundEvent is one message arriving from the chat transport.
type InboundEvent struct {
	UserID    string
	Text      string
	Timestamp time.Time
}

// Transport delivers outbound text to a user. Delivery is best effort:
// failures are logged by the controller, never retried.
type Transport interface {
	Send(userID, text string) error
}

// FuncTransport adapts a plain function to Transport.
type FuncTransport func(userID, text string) error

func (f FuncTransport) Send(userID, text string) error { return f(userID, text) }

// LogTransport writes outbound messages to the process log. Useful for
// examples and local debugging.
type LogTransport struct{}

func (LogTransport) Send(userID, text string) error {
	log.Printf("[Transport] -> %s | %s", userID, text)
	return nil
}

// RecorderTransport captures outbound messages per user. Intended for tests.
type RecorderTransport struct {
	mu   sync.Mutex
	sent map[string][]string
}

// NewRecorderTransport creates an empty recorder.
func NewRecorderTransport() *RecorderTransport {
	return &RecorderTransport{sent: make(map[string][]string)}
}

func (t *RecorderTransport) Send(userID, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent[userID] = append(t.sent[userID], text)
	return nil
}

// Sent returns a copy of everything delivered to userID, in order.
func (t *RecorderTransport) Sent(userID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent[userID]...)
}

// LastSent returns the most recent message for userID, or "".
func (t *RecorderTransport) LastSent(userID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := t.sent[userID]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}
