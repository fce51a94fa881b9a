package reversal

import "math/rand/v2"

// SceneTemplate sketches the shape of a scene that performs a reversal of
// a given type. Templates are prompt material, not prose.
type SceneTemplate struct {
	Setup            string
	TurningPoint     string
	Aftermath        string
	EmotionalBeats   []string
	RequiredElements []string
}

var sceneTemplates = map[Type]SceneTemplate{
	ClassicPeripeteia: {
		Setup:            "a victory feast, the summit of power, a moment of glory",
		TurningPoint:     "a hidden truth surfaces, a fatal mistake is exposed, a trusted ally betrays",
		Aftermath:        "everything collapses; disgrace and isolation",
		EmotionalBeats:   []string{"elation", "confusion", "understanding", "despair", "acceptance"},
		RequiredElements: []string{"symbol of power", "bond of trust", "hidden truth", "omen of ruin"},
	},
	FalseDefeat: {
		Setup:            "a hopeless siege, a last stand, everything seemingly lost",
		TurningPoint:     "unexpected reinforcements, a hidden power awakens, a miraculous discovery",
		Aftermath:        "the tide turns; new hope and a realignment of strength",
		EmotionalBeats:   []string{"despair", "resignation", "a faint light", "astonishment", "joy"},
		RequiredElements: []string{"overwhelming odds", "hidden ally", "source of power", "spark of reversal"},
	},
	BetrayalCascade: {
		Setup:            "trust affirmed, bonds deepening, a false sense of safety",
		TurningPoint:     "the first betrayal, further treachery, a chain collapse of loyalties",
		Aftermath:        "complete isolation; trust destroyed, a worldview overturned",
		EmotionalBeats:   []string{"trust", "doubt", "shock", "anger", "emptiness"},
		RequiredElements: []string{"vital relationship", "secret motive", "chain reaction", "last refuge"},
	},
	PyrrhicVictory: {
		Setup:            "the final battle, the road to victory, the goal within reach",
		TurningPoint:     "the price of winning revealed, the scale of what was lost, a hollow triumph",
		Aftermath:        "victory rings empty; facing the cost, a new burden",
		EmotionalBeats:   []string{"resolve", "struggle", "victory", "reckoning", "emptiness"},
		RequiredElements: []string{"great objective", "sacrifice", "moment of triumph", "weight of the cost"},
	},
	RecognitionScene: {
		Setup:            "a riddle of circumstances, fragmentary information, a confused reality",
		TurningPoint:     "truth disclosed, recognition shifts, reality reassembled",
		Aftermath:        "new understanding; a changed worldview, a clarified purpose",
		EmotionalBeats:   []string{"confusion", "inquiry", "discovery", "astonishment", "acceptance"},
		RequiredElements: []string{"hidden truth", "evidence", "witness", "turning point"},
	},
	RoleReversal: {
		Setup:            "settled positions, a familiar balance of power",
		TurningPoint:     "the weak gain leverage, the strong falter, positions invert",
		Aftermath:        "a new order; former certainties no longer hold",
		EmotionalBeats:   []string{"stability", "disturbance", "inversion", "disorientation", "adjustment"},
		RequiredElements: []string{"established hierarchy", "hidden leverage", "moment of inversion"},
	},
}

// TemplateFor returns the scene template for a reversal type, falling back
// to the peripeteia template for anything unknown.
func TemplateFor(t Type) SceneTemplate {
	if tpl, ok := sceneTemplates[t]; ok {
		return tpl
	}
	return sceneTemplates[ClassicPeripeteia]
}

// Narrative techniques usable inside a reversal scene.
var Techniques = map[string]string{
	"dramatic_irony": "exploit information the reader has but the characters lack",
	"misdirection":   "draw the reader's attention elsewhere to hide the truth",
	"red_herring":    "mislead the reader with a false clue",
	"revelation":     "disclose critical information that was hidden",
	"role_reversal":  "invert enemy and ally, the strong and the weak",
	"temporal_shift": "use non-linear time for surprise",
}

// BeatFunction labels what a beat at the given position does for the scene.
func BeatFunction(position, total int) string {
	switch {
	case position == 0:
		return "establish the situation and its emotional ground"
	case position < total/2:
		return "build tension and prepare the turn"
	case position == total/2:
		return "the turning point and climax"
	case position < total-1:
		return "play out the aftermath and the new situation"
	default:
		return "a new equilibrium, readying what comes next"
	}
}

// TechniquesForBeat picks the techniques suited to a beat position for the
// given reversal type.
func TechniquesForBeat(position, total int, t Type) []string {
	if position == 0 {
		return []string{"dramatic_irony"}
	}
	if position == total/2 {
		switch t {
		case ClassicPeripeteia:
			return []string{"revelation", "role_reversal"}
		case FalseDefeat:
			return []string{"misdirection", "revelation"}
		case BetrayalCascade:
			return []string{"revelation", "dramatic_irony"}
		}
	}
	return nil
}

// High-fantasy furniture offered to the prose collaborator alongside a
// reversal directive.
var fantasyElements = map[string][]string{
	"magic_system":    {"ancient magic", "forbidden spells", "the price of sorcery", "wellsprings of power"},
	"mythical_beings": {"dragons", "the undying", "spirits", "elder gods"},
	"artifacts":       {"a legendary sword", "a forbidden tome", "the prophecy stone", "the sealing key"},
	"prophecies":      {"an old prophecy", "an oracle", "threads of fate", "the guidance of stars"},
	"realms":          {"another plane", "the spirit world", "the land of the dead", "the rift between moments"},
}

// SelectFantasyElements samples per-category elements for a scene. Stronger
// reversals get more furniture. Sampling uses the supplied source.
func SelectFantasyElements(intensity float64, rng *rand.Rand) map[string][]string {
	n := 1
	if intensity > 0.8 {
		n = 2
	}

	selected := make(map[string][]string, len(fantasyElements))
	for category, elements := range fantasyElements {
		k := min(n, len(elements))
		picked := make([]string, 0, k)
		for _, idx := range rng.Perm(len(elements))[:k] {
			picked = append(picked, elements[idx])
		}
		selected[category] = picked
	}
	return selected
}
