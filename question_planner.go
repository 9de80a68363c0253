package brainstorm

// ──────────────────────────────────────────────
// Question Planner — fixed-order category progression
// ──────────────────────────────────────────────

// Category tags one brainstorming question topic.
type Category string

const (
	// CategoryInitialIdea is the distinguished zeroth category: its
	// "question" asks for the idea itself, and answering it captures
	// the idea rather than a category answer.
	CategoryInitialIdea Category = "initial_idea"

	CategoryAudience      Category = "audience"
	CategoryHookStyle     Category = "hook_style"
	CategoryPersonalStory Category = "personal_story"
	CategoryUniqueAngle   Category = "unique_angle"
	CategoryKeyMessage    Category = "key_message"
	CategoryWritingStyle  Category = "writing_style"

	// CategoryOpenEnded is the defensive fallback prompt. Never enters
	// the covered set.
	CategoryOpenEnded Category = "open_ended"
)

// DefaultCategoryOrder is the canonical question sequence. The ordering is
// the algorithm: categories are visited strictly in this order, never
// reordered or skipped based on content.
var DefaultCategoryOrder = []Category{
	CategoryAudience,
	CategoryHookStyle,
	CategoryPersonalStory,
	CategoryUniqueAngle,
	CategoryKeyMessage,
	CategoryWritingStyle,
}

// DecisionKind classifies a planner decision.
type DecisionKind string

const (
	// DecisionAsk asks the question for Decision.Category next.
	DecisionAsk DecisionKind = "ask"
	// DecisionFallback emits a generic open-ended prompt. Only reachable
	// when every category is covered but too few questions were asked,
	// which cannot happen under the default order — handled defensively.
	DecisionFallback DecisionKind = "fallback"
	// DecisionTerminate means the session is ready for artifact synthesis.
	DecisionTerminate DecisionKind = "terminate"
)

// PlannerDecision is the outcome of one QuestionPlanner.Next call.
type PlannerDecision struct {
	Kind     DecisionKind
	Category Category
	// IsFirst marks the idea prompt (no prior context exists yet).
	IsFirst bool
}

// minQuestionsToTerminate guards against premature termination.
const minQuestionsToTerminate = 4

// QuestionPlanner decides the next question category from session state.
// Next is pure: all session mutations happen later via RecordQuestion, once
// question text generation has actually succeeded.
type QuestionPlanner struct {
	order        []Category
	minQuestions int
}

// NewQuestionPlanner creates a planner. A nil order uses DefaultCategoryOrder.
func NewQuestionPlanner(order []Category) *QuestionPlanner {
	if order == nil {
		order = DefaultCategoryOrder
	}
	return &QuestionPlanner{order: order, minQuestions: minQuestionsToTerminate}
}

// Next returns the decision for the session's current state.
func (p *QuestionPlanner) Next(s *ConversationSession) PlannerDecision {
	if s.InitialIdea == "" {
		return PlannerDecision{Kind: DecisionAsk, Category: CategoryInitialIdea, IsFirst: true}
	}

	if next, ok := firstUncovered(s, p.order); ok {
		return PlannerDecision{Kind: DecisionAsk, Category: next}
	}

	if s.QuestionsAsked >= p.minQuestions {
		return PlannerDecision{Kind: DecisionTerminate}
	}
	return PlannerDecision{Kind: DecisionFallback, Category: CategoryOpenEnded}
}

// firstUncovered scans the order and returns the first category not yet
// covered by the session.
func firstUncovered(s *ConversationSession, order []Category) (Category, bool) {
	for _, c := range order {
		if !s.IsCovered(c) {
			return c, true
		}
	}
	return "", false
}
