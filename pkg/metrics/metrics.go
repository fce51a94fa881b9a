// Package metrics aggregates the per-stage analysis of a finished
// manuscript into a single success score.
package metrics

import "math"

// Targets are the per-component saturation thresholds. A component at its
// threshold contributes its full weight; beyond it the contribution caps.
type Targets struct {
	ReversalFrequency float64 `json:"reversal_frequency"`
	ReversalIntensity float64 `json:"average_reversal_intensity"`
	EmotionalVariance float64 `json:"emotional_variance"`
	SemanticDistance  float64 `json:"semantic_distance"`
}

// DefaultTargets are the thresholds the score was tuned against.
func DefaultTargets() Targets {
	return Targets{
		ReversalFrequency: 2.5,
		ReversalIntensity: 0.8,
		EmotionalVariance: 0.6,
		SemanticDistance:  0.7,
	}
}

// Component weights of the success score. They sum to 1.
const (
	weightReversal  = 0.3
	weightIntensity = 0.25
	weightVariance  = 0.25
	weightDistance  = 0.2
)

// A reversal between consecutive chapters counts as significant above this
// valence swing.
const SignificantSwing = 0.6

// Metrics holds the measured narrative qualities of a manuscript.
type Metrics struct {
	ReversalFrequency float64   `json:"reversal_frequency"`
	ReversalIntensity float64   `json:"average_reversal_intensity"`
	EmotionalVariance float64   `json:"emotional_variance"`
	SemanticDistance  float64   `json:"semantic_distance"`
	ValenceHistory    []float64 `json:"valence_history"`
	SuccessScore      float64   `json:"success_score"`
}

// Compute derives the metrics from the chapter valence series and the
// manuscript's total semantic distance, then scores them against the
// default targets.
func Compute(valences []float64, semanticDistance float64, chapters int) Metrics {
	var swings []float64
	for i := 1; i < len(valences); i++ {
		if swing := math.Abs(valences[i] - valences[i-1]); swing > SignificantSwing {
			swings = append(swings, swing)
		}
	}

	m := Metrics{
		ReversalFrequency: float64(len(swings)) / math.Max(1, float64(chapters)),
		ReversalIntensity: mean(swings),
		EmotionalVariance: variance(valences),
		SemanticDistance:  semanticDistance,
		ValenceHistory:    valences,
	}
	m.SuccessScore = SuccessScore(m, DefaultTargets())
	return m
}

// SuccessScore maps each metric onto [0, 1] against its target and blends
// them with the fixed weights.
func SuccessScore(m Metrics, t Targets) float64 {
	reversal := math.Min(1.0, m.ReversalFrequency/t.ReversalFrequency)
	intensity := math.Min(1.0, m.ReversalIntensity/t.ReversalIntensity)
	varScore := math.Min(1.0, m.EmotionalVariance/t.EmotionalVariance)
	distance := math.Min(1.0, m.SemanticDistance/t.SemanticDistance)

	return reversal*weightReversal +
		intensity*weightIntensity +
		varScore*weightVariance +
		distance*weightDistance
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values))
}
