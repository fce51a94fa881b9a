package reversal

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// MinIntensity is the hard floor on the emotional swing of every step.
// Targets too close to the running state are pushed away, never rejected.
const MinIntensity = 0.8

// Optimizer plans reversal sequences. Arc generation jitters interior
// points from the supplied source, so two optimizers seeded alike produce
// identical plans.
type Optimizer struct {
	rng *rand.Rand
}

func NewOptimizer(rng *rand.Rand) *Optimizer {
	return &Optimizer{rng: rng}
}

// Optimize walks the target sequence with a running state starting at 0,
// enforcing the intensity floor before classifying each step. Out-of-range
// targets are clamped into [-1, 1], never rejected.
func (o *Optimizer) Optimize(targets []float64) []Reversal {
	out := make([]Reversal, 0, len(targets))
	current := 0.0

	for i, target := range targets {
		target = clamp(target, -1, 1)

		if math.Abs(target-current) < MinIntensity {
			if target > current {
				target = current + MinIntensity
			} else {
				target = current - MinIntensity
			}
			target = clamp(target, -1, 1)
		}
		intensity := math.Abs(target - current)

		// Classification always sees the post-clamp pair.
		typ := classify(current, target, i)

		out = append(out, Reversal{
			Type:              typ,
			Position:          fmt.Sprintf("chapter_%d_scene_%d", i/3+1, i%3+1),
			CurrentState:      current,
			TargetState:       target,
			Intensity:         intensity,
			NarrativeFunction: typ.NarrativeFunction(),
			EmotionalArc:      o.emotionalArc(current, target),
		})

		current = target
	}

	return out
}

func classify(current, target float64, position int) Type {
	positiveToNegative := current > 0.3 && target < -0.3
	negativeToPositive := current < -0.3 && target > 0.3

	early := position < 3
	middle := position >= 3 && position < 8

	switch {
	case positiveToNegative:
		switch {
		case early:
			return BetrayalCascade
		case middle:
			return ClassicPeripeteia
		default:
			return PyrrhicVictory
		}
	case negativeToPositive:
		if middle {
			return FalseDefeat
		}
		return RecognitionScene
	default:
		return RoleReversal
	}
}

// emotionalArc samples a smoothstep curve between the states at five fixed
// points. Interior points get uniform jitter in [-0.2, 0.2]; the endpoints
// anchor exactly to start and end.
func (o *Optimizer) emotionalArc(start, end float64) []float64 {
	arc := make([]float64, ArcPoints)
	diff := end - start

	for i := range arc {
		t := float64(i) / float64(ArcPoints-1)
		s := 3*t*t - 2*t*t*t
		v := start + diff*s

		if i >= 1 && i <= ArcPoints-2 {
			v += o.rng.Float64()*0.4 - 0.2
			v = clamp(v, -1, 1)
		}

		arc[i] = v
	}

	return arc
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
