package semantic

import (
	"fmt"
	"math/rand/v2"
)

// Event is one plot event as the planner sees it.
type Event struct {
	Description string `json:"description"`
	Type        string `json:"type"`
	Timestamp   int    `json:"timestamp"`
}

// Step is one stop on a planned journey. Bridge steps are synthetic events
// inserted to soften a jump the reader could not follow.
type Step struct {
	Event      Event    `json:"event"`
	Position   Position `json:"position"`
	IsBridge   bool     `json:"is_bridge,omitempty"`
	BridgeType string   `json:"bridge_type,omitempty"`
}

// Jumps wider than this get a bridge step.
const bridgeThreshold = 0.7

// optimalStepDistance is the per-step distance the planner aims for. Closer
// steps feel static, farther ones feel disjointed.
const optimalStepDistance = 0.5

// Engine plans semantic journeys. The temporal tiebreak is sampled from the
// supplied source, so a seeded engine plans deterministically.
type Engine struct {
	rng *rand.Rand
}

func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// BuildJourney orders events to keep each step near the optimal semantic
// distance. It opens with the chronologically earliest event and proceeds
// greedily, inserting a bridge wherever the next step is too far.
func (e *Engine) BuildJourney(events []Event) []Step {
	if len(events) == 0 {
		return nil
	}

	remaining := make([]Step, len(events))
	for i, ev := range events {
		remaining[i] = Step{Event: ev, Position: PositionOf(ev.Description, ev.Type)}
	}

	first := 0
	for i, s := range remaining {
		if s.Event.Timestamp < remaining[first].Event.Timestamp {
			first = i
		}
	}

	journey := make([]Step, 0, len(remaining)+1)
	journey = append(journey, remaining[first])
	current := remaining[first].Position
	remaining = append(remaining[:first], remaining[first+1:]...)

	for len(remaining) > 0 {
		next := e.selectNext(current, remaining)

		if d := current.Distance(remaining[next].Position); d > bridgeThreshold {
			journey = append(journey, bridgeStep(current, remaining[next].Position))
		}

		journey = append(journey, remaining[next])
		current = remaining[next].Position
		remaining = append(remaining[:next], remaining[next+1:]...)
	}

	return journey
}

func (e *Engine) selectNext(current Position, candidates []Step) int {
	best, bestScore := 0, -1.0
	for i, c := range candidates {
		distance := distanceScore(current.Distance(c.Position))
		// A soft temporal preference keeps chronology from dominating.
		temporal := 0.3 + e.rng.Float64()*0.4
		if score := distance*0.7 + temporal*0.3; score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func distanceScore(d float64) float64 {
	score := 1.0 - abs(d-optimalStepDistance)*2
	if score < 0 {
		return 0
	}
	return score
}

var bridgeTypes = map[string]string{
	"physical":      "a change of setting and movement",
	"emotional":     "an inward shift of feeling",
	"philosophical": "a turn of values and reflection",
	"political":     "a shift in the balance of power",
	"spiritual":     "a change of belief, a brush with the numinous",
	"mythological":  "a remembered past, a legend recalled",
}

func bridgeStep(from, to Position) Step {
	kind := bridgeTypes[DominantShift(from, to)]
	return Step{
		Event: Event{
			Description: fmt.Sprintf("semantic bridge: %s", kind),
			Type:        "bridge",
			Timestamp:   -1,
		},
		Position:   Midpoint(from, to),
		IsBridge:   true,
		BridgeType: kind,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
