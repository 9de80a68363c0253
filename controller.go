package brainstorm

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ──────────────────────────────────────────────
// Conversation Controller — state machine driver
// ──────────────────────────────────────────────

// ErrMalformedEvent marks an inbound event missing its user identity or
// text. The event is dropped without touching any session.
var ErrMalformedEvent = errors.New("malformed inbound event")

// User-facing copy. Kept transport-agnostic: the transport layer decides
// rendering (markdown, plain text, ...).
const (
	msgWelcome = "Welcome! I help turn rough ideas into polished drafts. " +
		"Tell me your content idea, or send /help for the full command list."
	msgReadyToSynthesize = "We've covered everything we need. " +
		"Send /summarize when you want the final draft."
	msgNothingToSummarize = "Nothing to summarize yet — tell me your content idea first."
	msgNoActiveSession    = "No active session. Send /start to begin."
	msgCancelled          = "Session cancelled. Send /start whenever you want to begin again."
	msgComplete           = "This idea is complete. Send /start to brainstorm a fresh one, " +
		"or /status to review."
	msgGenerationFailed = "Sorry, something went wrong on my side. " +
		"Please send that again and I'll retry."
	msgUnknownCommand = "I don't know that command. Send /help to see what I can do."
	msgHelp           = "Commands:\n" +
		"/start — begin a fresh brainstorming session\n" +
		"/status — show session progress and response stats\n" +
		"/summarize — build the final draft from our conversation\n" +
		"/cancel — delete the current session\n" +
		"/help — this message\n" +
		"Anything else you send is treated as part of the brainstorm."
)

// ControllerConfig wires the controller's collaborators. Registry, Planner,
// Monitor and Generator default to fresh instances when nil; Transport is
// required.
type ControllerConfig struct {
	Registry  *SessionRegistry
	Planner   *QuestionPlanner
	Monitor   *PerformanceMonitor
	Generator Generator
	Transport Transport
	// Archive is optional; when set, delivered artifacts are recorded.
	Archive *ArtifactArchive
	Debug   bool
}

// ConversationController orchestrates registry, monitor, session, planner,
// generator and transport for every inbound event.
//
// Each user's events are processed one at a time (registry turn lock);
// events from different users run fully in parallel.
type ConversationController struct {
	registry  *SessionRegistry
	planner   *QuestionPlanner
	monitor   *PerformanceMonitor
	generator Generator
	transport Transport
	archive   *ArtifactArchive
	pipeline  *EventPipeline
	debug     bool
}

// NewConversationController creates a controller from config.
func NewConversationController(cfg ControllerConfig) (*ConversationController, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("controller: transport is required")
	}
	if cfg.Registry == nil {
		cfg.Registry = NewSessionRegistry()
	}
	if cfg.Planner == nil {
		cfg.Planner = NewQuestionPlanner(nil)
	}
	if cfg.Monitor == nil {
		cfg.Monitor = NewPerformanceMonitor(0)
	}
	if cfg.Generator == nil {
		cfg.Generator = NewTemplateGenerator()
	}
	return &ConversationController{
		registry:  cfg.Registry,
		planner:   cfg.Planner,
		monitor:   cfg.Monitor,
		generator: cfg.Generator,
		transport: cfg.Transport,
		archive:   cfg.Archive,
		pipeline:  NewEventPipeline(),
		debug:     cfg.Debug,
	}, nil
}

// Registry exposes the session registry (read-mostly callers: watchdog, ops).
func (c *ConversationController) Registry() *SessionRegistry { return c.registry }

// Monitor exposes the performance monitor.
func (c *ConversationController) Monitor() *PerformanceMonitor { return c.monitor }

// Use registers a middleware applied around Dispatch.
func (c *ConversationController) Use(mw MiddlewareFunc) {
	c.pipeline.Use(mw)
}

// Dispatch runs the middleware pipeline and HandleEvent with panic recovery.
// This is the entry point a transport adapter should call per update.
func (c *ConversationController) Dispatch(ev InboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Controller] Panic in handler | user=%s error=%v", ev.UserID, r)
		}
	}()

	ctx := &EventContext{Event: ev, Extra: make(map[string]interface{})}
	c.pipeline.Execute(ctx, func() {
		ctx.Handled = true
		ctx.Err = c.HandleEvent(ctx.Event)
	})
	if ctx.Err != nil && !errors.Is(ctx.Err, ErrMalformedEvent) {
		log.Printf("[Controller] Event error | user=%s error=%v", ev.UserID, ctx.Err)
	}
}

// HandleEvent routes a single inbound event: commands to their handlers,
// everything else through the brainstorming state machine.
func (c *ConversationController) HandleEvent(ev InboundEvent) error {
	text := strings.TrimSpace(ev.Text)
	if ev.UserID == "" || text == "" {
		log.Printf("[Controller] Dropped malformed event | user=%q", ev.UserID)
		return ErrMalformedEvent
	}
	now := ev.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	if strings.HasPrefix(text, "/") {
		return c.handleCommand(ev.UserID, text, now)
	}
	return c.handleMessage(ev.UserID, text, now)
}

func (c *ConversationController) handleCommand(userID, text string, now time.Time) error {
	cmd := strings.ToLower(strings.TrimPrefix(strings.Fields(text)[0], "/"))
	// Strip a bot mention suffix ("/start@my_bot").
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	if c.debug {
		log.Printf("[Controller] Command | user=%s cmd=/%s", userID, cmd)
	}

	switch cmd {
	case "start", "create", "reset":
		return c.handleStart(userID, now)
	case "cancel":
		return c.handleCancel(userID)
	case "status":
		return c.handleStatus(userID)
	case "summarize", "summary":
		return c.handleSummarize(userID, now)
	case "help":
		return c.send(userID, msgHelp)
	default:
		return c.send(userID, msgUnknownCommand)
	}
}

// handleStart resets (or creates) the session and asks for the idea.
func (c *ConversationController) handleStart(userID string, now time.Time) error {
	session, release := c.registry.Acquire(userID)
	defer release()

	session.Reset(now)
	if err := c.send(userID, msgWelcome); err != nil {
		return err
	}
	return c.emitNext(session, now)
}

// handleCancel removes the session entirely. Idempotent.
func (c *ConversationController) handleCancel(userID string) error {
	if !c.registry.Exists(userID) {
		return c.send(userID, msgNoActiveSession)
	}
	c.registry.Remove(userID)
	log.Printf("[Controller] Session cancelled | user=%s", userID)
	return c.send(userID, msgCancelled)
}

// handleStatus sends a read-only snapshot of session and monitor state.
func (c *ConversationController) handleStatus(userID string) error {
	if !c.registry.Exists(userID) {
		return c.send(userID, msgNoActiveSession)
	}
	session, release := c.registry.Acquire(userID)
	snapshot := c.formatStatus(session)
	release()
	return c.send(userID, snapshot)
}

func (c *ConversationController) formatStatus(s *ConversationSession) string {
	var b strings.Builder

	switch s.Status {
	case StatusReady:
		b.WriteString("Status: ready to start — just send your idea.\n")
	case StatusAwaitingIdea:
		b.WriteString("Status: waiting for your content idea.\n")
	case StatusBrainstorming:
		b.WriteString("Status: brainstorming in progress.\n")
	case StatusComplete:
		b.WriteString("Status: draft delivered.\n")
	}
	if s.InitialIdea != "" {
		fmt.Fprintf(&b, "Idea: %s\n", s.InitialIdea)
	}
	covered := 0
	for _, cat := range DefaultCategoryOrder {
		if s.IsCovered(cat) {
			covered++
		}
	}
	fmt.Fprintf(&b, "Covered: %d/%d topics, %d questions asked\n",
		covered, len(DefaultCategoryOrder), s.QuestionsAsked)
	fmt.Fprintf(&b, "Style: %s\n", s.StyleProfile.Describe())

	stats := c.monitor.UserStats(s.UserID)
	if stats.QuestionCount > 0 || stats.TimeoutCount > 0 {
		fmt.Fprintf(&b, "Responses: %d answered, avg %.1fs, %d timeouts",
			stats.QuestionCount, stats.AvgLatency, stats.TimeoutCount)
	}
	return strings.TrimRight(b.String(), "\n")
}

// handleSummarize synthesizes and delivers the final artifact.
func (c *ConversationController) handleSummarize(userID string, now time.Time) error {
	if !c.registry.Exists(userID) {
		return c.send(userID, msgNoActiveSession)
	}
	session, release := c.registry.Acquire(userID)
	defer release()

	if session.InitialIdea == "" {
		return c.send(userID, msgNothingToSummarize)
	}

	artifact, err := c.generator.GenerateArtifact(session.Context())
	if err != nil {
		// Session state untouched so the user can retry the same turn.
		log.Printf("[Controller] Artifact generation failed | user=%s error=%v", userID, err)
		return c.send(userID, msgGenerationFailed)
	}

	session.MarkComplete(now)
	if c.archive != nil {
		if aerr := c.archive.Record(userID, session.InitialIdea, artifact); aerr != nil {
			log.Printf("[Controller] Archive write failed | user=%s error=%v", userID, aerr)
		}
	}
	log.Printf("[Controller] Artifact delivered | user=%s idea=%q", userID, session.InitialIdea)

	if err := c.send(userID, artifact); err != nil {
		return err
	}
	return c.send(userID, "Ready for more? Send /start to brainstorm another idea.")
}

// handleMessage is the conversational path: record the reply, infer style,
// plan the next question, emit it.
func (c *ConversationController) handleMessage(userID, text string, now time.Time) error {
	session, release := c.registry.Acquire(userID)
	defer release()

	// Close the open timer first so latency covers only the user's thinking
	// time, not our processing.
	if c.monitor.HasOpenQuestion(userID) {
		c.monitor.RecordResponse(userID, text)
	}

	if session.Status == StatusComplete {
		return c.send(userID, msgComplete)
	}

	if session.InitialIdea == "" {
		// First-message rule: whatever arrives before an idea is recorded
		// is the idea, never a category answer.
		session.RecordIdea(text, now)
		log.Printf("[Controller] Idea captured | user=%s idea=%q", userID, text)
	} else {
		session.RecordResponse(text, now)
		session.MergeStyle(InferStyle(text))
	}

	return c.emitNext(session, now)
}

// emitNext asks the planner for a decision and carries it out. Session
// mutations happen only after question generation succeeds, so a backend
// failure leaves the turn fully retryable.
func (c *ConversationController) emitNext(session *ConversationSession, now time.Time) error {
	decision := c.planner.Next(session)

	switch decision.Kind {
	case DecisionTerminate:
		// No timer: a terminal prompt expects no answer.
		return c.send(session.UserID, msgReadyToSynthesize)

	case DecisionAsk, DecisionFallback:
		question, err := c.generator.GenerateQuestion(decision.Category, session.Context())
		if err != nil {
			log.Printf("[Controller] Question generation failed | user=%s category=%s error=%v",
				session.UserID, decision.Category, err)
			return c.send(session.UserID, msgGenerationFailed)
		}
		session.RecordQuestion(decision.Category, question, now)
		c.monitor.StartQuestion(session.UserID, question)
		return c.send(session.UserID, question)

	default:
		return fmt.Errorf("controller: unknown planner decision %q", decision.Kind)
	}
}

// send delivers text best-effort; failures are logged, never retried.
func (c *ConversationController) send(userID, text string) error {
	if err := c.transport.Send(userID, text); err != nil {
		log.Printf("[Controller] Send failed | user=%s error=%v", userID, err)
		return err
	}
	return nil
}
