// Package reversal turns a target emotional sequence into a typed plan of
// narrative reversals with guaranteed minimum intensity.
package reversal

// Type names the kind of narrative reversal a step performs.
type Type string

const (
	ClassicPeripeteia Type = "classic_peripeteia"
	FalseDefeat       Type = "false_defeat"
	BetrayalCascade   Type = "betrayal_cascade"
	PyrrhicVictory    Type = "pyrrhic_victory"
	RecognitionScene  Type = "recognition_scene"
	RoleReversal      Type = "role_reversal"
)

var narrativeFunctions = map[Type]string{
	ClassicPeripeteia: "punishment and lesson for the protagonist's hubris",
	FalseDefeat:       "reveals hidden strength and unseen allies",
	BetrayalCascade:   "the fragility of trust and the complexity of human bonds",
	PyrrhicVictory:    "shows the true cost of power and success",
	RecognitionScene:  "disclosure of truth and self-recognition",
	RoleReversal:      "inversion of standing and a new perspective",
}

// NarrativeFunction returns the fixed description of what a reversal of
// this type accomplishes in the story. Total over the known types.
func (t Type) NarrativeFunction() string {
	return narrativeFunctions[t]
}

// ArcPoints is the fixed sampling resolution of every emotional arc,
// independent of how long the realized scene ends up being.
const ArcPoints = 5

// Reversal is one planned emotional turn. Immutable once produced.
type Reversal struct {
	Type              Type      `json:"type"`
	Position          string    `json:"position"`
	CurrentState      float64   `json:"current_state"`
	TargetState       float64   `json:"target_state"`
	Intensity         float64   `json:"intensity"`
	NarrativeFunction string    `json:"narrative_function"`
	EmotionalArc      []float64 `json:"emotional_arc"`
}
