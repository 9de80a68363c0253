package brainstorm

import (
	"fmt"
	"strings"
)

// ──────────────────────────────────────────────
// Generator — generative backend boundary
// ──────────────────────────────────────────────

// Generator produces question text and the final artifact. Implementations
// typically wrap an LLM; both calls may fail, and failure is recoverable —
// the controller reports it to the user and leaves session state untouched
// so the same turn can be retried.
type Generator interface {
	GenerateQuestion(category Category, ctx SessionContext) (string, error)
	GenerateArtifact(ctx SessionContext) (string, error)
}

// QuestionFn generates question text for a category.
type QuestionFn func(category Category, ctx SessionContext) (string, error)

// ArtifactFn synthesizes the final artifact from the collected context.
type ArtifactFn func(ctx SessionContext) (string, error)

// FuncGenerator adapts plain callbacks (e.g. an LLM client) to Generator.
type FuncGenerator struct {
	QuestionFn QuestionFn
	ArtifactFn ArtifactFn
}

func (g FuncGenerator) GenerateQuestion(category Category, ctx SessionContext) (string, error) {
	if g.QuestionFn == nil {
		return "", fmt.Errorf("generator: no question function configured")
	}
	return g.QuestionFn(category, ctx)
}

func (g FuncGenerator) GenerateArtifact(ctx SessionContext) (string, error) {
	if g.ArtifactFn == nil {
		return "", fmt.Errorf("generator: no artifact function configured")
	}
	return g.ArtifactFn(ctx)
}

// ──────────────────────────────────────────────
// TemplateGenerator — deterministic default backend
// ──────────────────────────────────────────────

// questionTemplates holds the canned question per category. %s is the idea.
var questionTemplates = map[Category]string{
	CategoryInitialIdea:   "What would you like to write about? Share a topic, a trend you noticed, or an insight you want to explore.",
	CategoryAudience:      "Who is the main audience for %q? Be as specific as you can.",
	CategoryHookStyle:     "What kind of opening would grab your readers — a bold claim, a question, a statistic, or a short story?",
	CategoryPersonalStory: "Do you have a personal experience with %q that we could weave in?",
	CategoryUniqueAngle:   "What's your unique angle on %q — something most people writing about it would miss?",
	CategoryKeyMessage:    "If readers remember only one thing from this piece, what should it be?",
	CategoryWritingStyle:  "How do you usually like your writing to sound — punchy and direct, story-driven, analytical?",
	CategoryOpenEnded:     "What else should this piece cover? Anything important we haven't touched on?",
}

// TemplateGenerator is a zero-dependency Generator backed by fixed templates.
// It keeps the engine fully functional without an LLM and is the backend
// used throughout the tests.
type TemplateGenerator struct{}

// NewTemplateGenerator creates the default template backend.
func NewTemplateGenerator() *TemplateGenerator { return &TemplateGenerator{} }

func (g *TemplateGenerator) GenerateQuestion(category Category, ctx SessionContext) (string, error) {
	tmpl, ok := questionTemplates[category]
	if !ok {
		tmpl = questionTemplates[CategoryOpenEnded]
	}
	if strings.Contains(tmpl, "%") {
		return fmt.Sprintf(tmpl, ctx.InitialIdea), nil
	}
	return tmpl, nil
}

func (g *TemplateGenerator) GenerateArtifact(ctx SessionContext) (string, error) {
	if ctx.InitialIdea == "" {
		return "", fmt.Errorf("generator: no idea to synthesize from")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Draft: %s\n\n", ctx.InitialIdea)

	// Pair every question with its answer from the transcript. The logs can
	// be offset by one when the idea prompt was asked explicitly, so the
	// transcript is the reliable pairing source.
	var lastQuestion string
	for _, entry := range ctx.Transcript {
		switch entry.Speaker {
		case SpeakerAgent:
			lastQuestion = entry.Text
		case SpeakerUser:
			if lastQuestion == "" || entry.Text == ctx.InitialIdea {
				continue
			}
			fmt.Fprintf(&b, "- %s\n  %s\n", lastQuestion, entry.Text)
			lastQuestion = ""
		}
	}

	if !ctx.Style.IsZero() {
		fmt.Fprintf(&b, "\nVoice: %s.\n", ctx.Style.Describe())
	}
	fmt.Fprintf(&b, "\nBuilt from %d answers across %d question rounds.\n",
		len(ctx.ResponseLog), ctx.QuestionsAsked)

	return b.String(), nil
}
