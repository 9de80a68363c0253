package brainstorm

import (
	"time"
)

// ──────────────────────────────────────────────
// Conversation Session — per-user brainstorming state machine
// ──────────────────────────────────────────────

// SessionStatus is the lifecycle state of a ConversationSession.
type SessionStatus string

const (
	// StatusReady means the session was just created or reset.
	StatusReady SessionStatus = "ready"
	// StatusAwaitingIdea means the idea prompt was sent and the first
	// reply is expected. Equivalent to Ready for message handling.
	StatusAwaitingIdea SessionStatus = "awaiting_idea"
	// StatusBrainstorming means the idea is captured and categories are
	// being covered.
	StatusBrainstorming SessionStatus = "brainstorming"
	// StatusComplete means the artifact was delivered. Reachable again
	// only through Reset.
	StatusComplete SessionStatus = "complete"
)

// Transcript speaker roles.
const (
	SpeakerUser  = "user"
	SpeakerAgent = "agent"
)

// TranscriptEntry is one line of the append-only conversation transcript.
type TranscriptEntry struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationSession holds all per-user brainstorming state.
//
// A session is owned by the SessionRegistry and is NOT internally locked:
// the registry serializes each user's turns via Acquire, so mutators may
// assume single-threaded access per user.
type ConversationSession struct {
	UserID       string
	Status       SessionStatus
	InitialIdea  string
	CreatedAt    time.Time
	LastActivity time.Time

	// QuestionLog holds every emitted question in order.
	// QuestionsAsked == len(QuestionLog) at all times.
	QuestionLog    []string
	QuestionsAsked int

	// ResponseLog holds raw category answers in order. The initial idea
	// is captured in InitialIdea, never appended here.
	ResponseLog []string

	StyleProfile StyleAttributes
	Transcript   []TranscriptEntry

	covered map[Category]bool
}

// NewConversationSession creates a fresh session in Ready state.
func NewConversationSession(userID string, now time.Time) *ConversationSession {
	return &ConversationSession{
		UserID:       userID,
		Status:       StatusReady,
		CreatedAt:    now,
		LastActivity: now,
		covered:      make(map[Category]bool),
	}
}

// RecordIdea captures the first inbound message verbatim as the initial idea
// and moves the session to Brainstorming. Set exactly once; later calls are
// no-ops so a stray duplicate can never clobber the idea.
func (s *ConversationSession) RecordIdea(text string, now time.Time) {
	if s.InitialIdea != "" {
		return
	}
	s.InitialIdea = text
	s.Status = StatusBrainstorming
	s.covered[CategoryInitialIdea] = true
	s.appendTranscript(SpeakerUser, text, now)
	s.LastActivity = now
}

// RecordResponse appends a raw category answer and the matching transcript line.
func (s *ConversationSession) RecordResponse(text string, now time.Time) {
	s.ResponseLog = append(s.ResponseLog, text)
	s.appendTranscript(SpeakerUser, text, now)
	s.LastActivity = now
}

// RecordQuestion registers an emitted question: marks the category covered
// (fallback prompts excluded), appends to the question log, bumps the
// counter, and adds the agent transcript line. Called exactly once per
// successfully generated question.
func (s *ConversationSession) RecordQuestion(category Category, text string, now time.Time) {
	if category == CategoryInitialIdea && s.Status == StatusReady {
		s.Status = StatusAwaitingIdea
	}
	if category != CategoryOpenEnded {
		s.covered[category] = true
	}
	s.QuestionLog = append(s.QuestionLog, text)
	s.QuestionsAsked++
	s.appendTranscript(SpeakerAgent, text, now)
	s.LastActivity = now
}

// MergeStyle overwrites the style profile dimension by dimension.
// The most recent message always wins.
func (s *ConversationSession) MergeStyle(attrs StyleAttributes) {
	s.StyleProfile.Tone = attrs.Tone
	s.StyleProfile.Length = attrs.Length
	s.StyleProfile.Enthusiasm = attrs.Enthusiasm
	s.StyleProfile.Formality = attrs.Formality
}

// MarkComplete transitions to Complete after artifact delivery.
func (s *ConversationSession) MarkComplete(now time.Time) {
	s.Status = StatusComplete
	s.LastActivity = now
}

// Reset discards all accumulated state and returns the session to Ready,
// reproducing first-contact behavior exactly.
func (s *ConversationSession) Reset(now time.Time) {
	s.Status = StatusReady
	s.InitialIdea = ""
	s.QuestionLog = nil
	s.QuestionsAsked = 0
	s.ResponseLog = nil
	s.StyleProfile = StyleAttributes{}
	s.Transcript = nil
	s.covered = make(map[Category]bool)
	s.LastActivity = now
}

// IsCovered reports whether a category was already asked about.
func (s *ConversationSession) IsCovered(category Category) bool {
	return s.covered[category]
}

// CoveredCount returns the number of covered categories, the initial idea
// pseudo-category included.
func (s *ConversationSession) CoveredCount() int {
	return len(s.covered)
}

// CoveredCategories returns the covered set in the canonical planner order.
func (s *ConversationSession) CoveredCategories() []Category {
	var out []Category
	if s.covered[CategoryInitialIdea] {
		out = append(out, CategoryInitialIdea)
	}
	for _, c := range DefaultCategoryOrder {
		if s.covered[c] {
			out = append(out, c)
		}
	}
	return out
}

func (s *ConversationSession) appendTranscript(speaker, text string, now time.Time) {
	s.Transcript = append(s.Transcript, TranscriptEntry{
		Speaker:   speaker,
		Text:      text,
		Timestamp: now,
	})
}

// ──────────────────────────────────────────────
// SessionContext — read-only snapshot for the generative backend
// ──────────────────────────────────────────────

// SessionContext is a detached copy of the session state handed to the
// Generator. Safe to hold across the (potentially slow) generation call.
type SessionContext struct {
	UserID         string
	InitialIdea    string
	Style          StyleAttributes
	Covered        []Category
	QuestionLog    []string
	ResponseLog    []string
	Transcript     []TranscriptEntry
	QuestionsAsked int
}

// Context builds a SessionContext snapshot.
func (s *ConversationSession) Context() SessionContext {
	return SessionContext{
		UserID:         s.UserID,
		InitialIdea:    s.InitialIdea,
		Style:          s.StyleProfile,
		Covered:        s.CoveredCategories(),
		QuestionLog:    append([]string(nil), s.QuestionLog...),
		ResponseLog:    append([]string(nil), s.ResponseLog...),
		Transcript:     append([]TranscriptEntry(nil), s.Transcript...),
		QuestionsAsked: s.QuestionsAsked,
	}
}
