package brainstorm

import "strings"

// ──────────────────────────────────────────────
// Style Inferer — keyword heuristics over user replies (no LLM cost)
// ──────────────────────────────────────────────

// Style dimension values.
const (
	ToneConversational = "conversational"
	ToneProfessional   = "professional"

	LengthConcise  = "concise"
	LengthDetailed = "detailed"

	EnthusiasmHigh     = "high"
	EnthusiasmModerate = "moderate"

	FormalityCasual = "casual"
	FormalityFormal = "formal"
)

// StyleAttributes is the fixed-shape writing style profile inferred from a
// single message. Four named dimensions, each independently overwritten on
// merge — no voting or smoothing across messages, the latest reply wins.
type StyleAttributes struct {
	Tone       string `json:"tone"`       // conversational / professional
	Length     string `json:"length"`     // concise / detailed
	Enthusiasm string `json:"enthusiasm"` // high / moderate
	Formality  string `json:"formality"`  // casual / formal
}

// Token threshold separating concise from detailed replies.
const conciseTokenLimit = 20

// casualMarkers flips Tone to conversational.
var casualMarkers = []string{"yeah", "like", "kinda", "gonna"}

// friendlyWords flips Formality to casual.
var friendlyWords = []string{"hey", "cool", "awesome", "great"}

// enthusiasmMarkers flips Enthusiasm to high.
var enthusiasmMarkers = []string{"!", "?", "..."}

// InferStyle derives a StyleAttributes from one free-text message.
// Deterministic, no side effects.
func InferStyle(message string) StyleAttributes {
	lower := strings.ToLower(message)

	attrs := StyleAttributes{
		Tone:       ToneProfessional,
		Length:     LengthDetailed,
		Enthusiasm: EnthusiasmModerate,
		Formality:  FormalityFormal,
	}

	for _, marker := range casualMarkers {
		if strings.Contains(lower, marker) {
			attrs.Tone = ToneConversational
			break
		}
	}

	if len(strings.Fields(message)) < conciseTokenLimit {
		attrs.Length = LengthConcise
	}

	for _, marker := range enthusiasmMarkers {
		if strings.Contains(message, marker) {
			attrs.Enthusiasm = EnthusiasmHigh
			break
		}
	}

	for _, word := range friendlyWords {
		if strings.Contains(lower, word) {
			attrs.Formality = FormalityCasual
			break
		}
	}

	return attrs
}

// IsZero reports whether the profile has never been inferred.
func (a StyleAttributes) IsZero() bool {
	return a.Tone == "" && a.Length == "" && a.Enthusiasm == "" && a.Formality == ""
}

// Describe returns a one-line human-readable summary for prompts and status output.
func (a StyleAttributes) Describe() string {
	if a.IsZero() {
		return "not inferred yet"
	}
	return strings.Join([]string{a.Tone, a.Length, a.Enthusiasm + " enthusiasm", a.Formality}, ", ")
}
