// Package valence scores the emotional valence of scene text with a
// weighted lexicon and tracks the resulting series across a run.
package valence

import (
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strings"

	"fabula/pkg/utils"
)

// Classification buckets a sample by the magnitude of its valence.
type Classification string

const (
	HighIntensity     Classification = "high_intensity"
	ModerateIntensity Classification = "moderate_intensity"
	Neutral           Classification = "neutral"
)

// Sample records a notable emotional moment. Samples are immutable once
// appended to the tracker's history.
type Sample struct {
	Position       int            `json:"position"`
	Valence        float64        `json:"valence"`
	Intensity      float64        `json:"intensity"`
	Classification Classification `json:"classification"`
	Description    string         `json:"description"`
}

// Tracker owns the valence history for a single run. It is not safe for
// concurrent use; concurrent runs must each construct their own.
type Tracker struct {
	history []float64
	current float64
	events  []Sample
	window  int
}

func NewTracker() *Tracker {
	return &Tracker{window: 5}
}

var (
	punctRX = regexp.MustCompile(`[。！？.!?]+`)
	spaceRX = regexp.MustCompile(`\s+`)
)

// Score analyzes one scene and returns its valence in [-1, 1]. The result
// is appended to the history; scores with magnitude above 0.7 also record
// a Sample. Empty text scores exactly 0.
func (t *Tracker) Score(text string, position int) float64 {
	cleaned := preprocess(text)

	v := baseValence(cleaned)
	v = applyModifiers(cleaned, v)
	v = adjustForPosition(v, position)

	t.history = append(t.history, v)
	t.current = v

	if math.Abs(v) > 0.7 {
		class := ModerateIntensity
		if math.Abs(v) > 0.8 {
			class = HighIntensity
		}
		t.events = append(t.events, Sample{
			Position:       position,
			Valence:        v,
			Intensity:      math.Abs(v),
			Classification: class,
			Description:    describe(v, cleaned),
		})
	}

	return v
}

func preprocess(text string) string {
	text = punctRX.ReplaceAllString(text, "。")
	return spaceRX.ReplaceAllString(strings.TrimSpace(text), " ")
}

func baseValence(text string) float64 {
	var positive, negative float64
	for _, b := range positiveBands {
		for _, w := range b.words {
			positive += float64(strings.Count(text, w)) * b.weight
		}
	}
	for _, b := range negativeBands {
		for _, w := range b.words {
			negative += float64(strings.Count(text, w)) * math.Abs(b.weight)
		}
	}

	total := positive + negative
	if total <= 0 {
		return 0
	}
	return clamp((positive-negative)/total, -1, 1)
}

func applyModifiers(text string, v float64) float64 {
	var intensifierCount int
	for _, w := range intensifiers {
		intensifierCount += strings.Count(text, w)
	}
	if intensifierCount > 0 {
		v *= math.Min(2.0, 1.0+float64(intensifierCount)*0.2)
	}

	// Any number of diminishers applies the same halving; repeated
	// hedging does not keep shrinking the score.
	for _, w := range diminishers {
		if strings.Contains(text, w) {
			v *= diminisherMultiplier
			break
		}
	}

	var negatorCount int
	for _, w := range negators {
		negatorCount += strings.Count(text, w)
	}
	if negatorCount%2 == 1 {
		// Hedged negation: flip, but keep some of the original charge.
		v *= -0.8
	}

	return clamp(v, -1, 1)
}

// adjustForPosition suppresses early volatility and amplifies the ending.
func adjustForPosition(v float64, position int) float64 {
	switch {
	case position <= 3:
		return clamp(v*0.8, -1, 1)
	case position >= 10:
		return clamp(v*1.2, -1, 1)
	default:
		return v
	}
}

func describe(v float64, text string) string {
	sample := utils.LimitStr(text, 50)
	switch {
	case v > 0.8:
		return fmt.Sprintf("strong positive turn: %s", sample)
	case v > 0.5:
		return fmt.Sprintf("moderate positive development: %s", sample)
	case v < -0.8:
		return fmt.Sprintf("strong negative turn: %s", sample)
	case v < -0.5:
		return fmt.Sprintf("moderate negative development: %s", sample)
	default:
		return fmt.Sprintf("neutral development: %s", sample)
	}
}

// Current returns the most recently scored valence.
func (t *Tracker) Current() float64 { return t.current }

// History returns the scored series in order. The caller must not mutate it.
func (t *Tracker) History() []float64 { return t.history }

// Events returns the recorded high-magnitude samples in order.
func (t *Tracker) Events() []Sample { return t.events }

// Reset clears all per-run state.
func (t *Tracker) Reset() {
	t.history = nil
	t.events = nil
	t.current = 0
}

// ReversalImpact measures the felt size of a valence swing.
func ReversalImpact(from, to float64) float64 {
	return math.Abs(to - from)
}

// Swings returns the chapter-to-chapter valence deltas, the raw material
// for SuggestNextReversal.
func Swings(history []float64) []float64 {
	if len(history) < 2 {
		return nil
	}
	out := make([]float64, len(history)-1)
	for i := 1; i < len(history); i++ {
		out[i-1] = history[i] - history[i-1]
	}
	return out
}

// MovingAverage smooths the history with the given window, defaulting to
// the tracker's window when size <= 0.
func (t *Tracker) MovingAverage(size int) []float64 {
	if size <= 0 {
		size = t.window
	}
	return MovingAverage(t.history, size)
}

// MovingAverage smooths a valence series with the given window. A series
// shorter than the window is returned as a copy.
func MovingAverage(series []float64, size int) []float64 {
	if size <= 0 {
		size = 1
	}
	if len(series) < size {
		out := make([]float64, len(series))
		copy(out, series)
		return out
	}

	out := make([]float64, 0, len(series)-size+1)
	for i := size - 1; i < len(series); i++ {
		var sum float64
		for _, v := range series[i-size+1 : i+1] {
			sum += v
		}
		out = append(out, sum/float64(size))
	}
	return out
}

// Stats summarizes the valence history.
type Stats struct {
	Mean               float64 `json:"mean_valence"`
	Variance           float64 `json:"valence_variance"`
	StdDev             float64 `json:"valence_std"`
	Min                float64 `json:"min_valence"`
	Max                float64 `json:"max_valence"`
	Range              float64 `json:"range"`
	PositiveRatio      float64 `json:"positive_ratio"`
	NegativeRatio      float64 `json:"negative_ratio"`
	NeutralRatio       float64 `json:"neutral_ratio"`
	EventCount         int     `json:"emotional_events_count"`
	HighIntensityCount int     `json:"high_intensity_events"`
}

// Statistics computes summary statistics over the history. The zero Stats
// is returned for an empty history.
func (t *Tracker) Statistics() Stats {
	return Summarize(t.history)
}

// Summarize computes summary statistics over a valence series. Event
// counts follow the same thresholds Score records samples at, so a bare
// series summarizes the same as the tracker that produced it.
func Summarize(history []float64) Stats {
	if len(history) == 0 {
		return Stats{}
	}

	s := Stats{Min: history[0], Max: history[0]}
	var pos, neg, zero int
	for _, v := range history {
		s.Mean += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		switch {
		case v > 0:
			pos++
		case v < 0:
			neg++
		default:
			zero++
		}
		if math.Abs(v) > 0.7 {
			s.EventCount++
		}
		if math.Abs(v) > 0.8 {
			s.HighIntensityCount++
		}
	}
	n := float64(len(history))
	s.Mean /= n
	for _, v := range history {
		s.Variance += (v - s.Mean) * (v - s.Mean)
	}
	s.Variance /= n
	s.StdDev = math.Sqrt(s.Variance)
	s.Range = s.Max - s.Min
	s.PositiveRatio = float64(pos) / n
	s.NegativeRatio = float64(neg) / n
	s.NeutralRatio = float64(zero) / n
	return s
}

// Suggestion proposes where the next emotional reversal should land.
type Suggestion struct {
	Direction    string  `json:"suggested_direction"`
	Intensity    float64 `json:"suggested_intensity"`
	Target       float64 `json:"target_valence"`
	Current      float64 `json:"current_valence"`
	ReversalType string  `json:"reversal_type"`
	Confidence   float64 `json:"confidence"`
}

// SuggestNextReversal recommends the next turn from the current valence and
// the recent reversal magnitudes. Randomness comes from the supplied source
// so callers can reproduce a suggestion exactly.
func (t *Tracker) SuggestNextReversal(recent []float64, rng *rand.Rand) Suggestion {
	var lastIntensity, avgRecent float64
	if len(recent) > 0 {
		lastIntensity = math.Abs(recent[len(recent)-1])
		tail := recent
		if len(tail) > 3 {
			tail = tail[len(tail)-3:]
		}
		for _, r := range tail {
			avgRecent += math.Abs(r)
		}
		avgRecent /= float64(len(tail))
	}

	var intensity float64
	switch {
	case lastIntensity > 0.8:
		// After a big swing, recommend breathing room.
		intensity = uniform(rng, 0.4, 0.6)
	case avgRecent < 0.5:
		intensity = uniform(rng, 0.8, 1.0)
	default:
		intensity = uniform(rng, 0.6, 0.9)
	}

	var direction string
	var target float64
	switch {
	case t.current > 0.3:
		direction = "negative"
		target = t.current - intensity
	case t.current < -0.3:
		direction = "positive"
		target = t.current + intensity
	default:
		direction = "positive"
		sign := 1.0
		if rng.IntN(2) == 1 {
			direction = "negative"
			sign = -1.0
		}
		target = intensity * sign
	}
	target = clamp(target, -1, 1)

	return Suggestion{
		Direction:    direction,
		Intensity:    intensity,
		Target:       target,
		Current:      t.current,
		ReversalType: suggestType(t.current, target),
		Confidence:   suggestionConfidence(recent),
	}
}

func suggestType(current, target float64) string {
	intensity := math.Abs(target - current)
	switch {
	case current > 0.5 && target < -0.5:
		return "classic_peripeteia"
	case current < -0.5 && target > 0.5:
		return "false_defeat"
	case intensity > 0.8:
		return "dramatic_reversal"
	default:
		return "gradual_shift"
	}
}

func suggestionConfidence(recent []float64) float64 {
	if len(recent) < 3 {
		return 0.5
	}

	var mean float64
	for _, r := range recent {
		mean += r
	}
	mean /= float64(len(recent))
	var variance float64
	for _, r := range recent {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(recent))

	var directionChanges int
	for i := 1; i < len(recent); i++ {
		if (recent[i] > 0) != (recent[i-1] > 0) {
			directionChanges++
		}
	}
	optimal := float64(len(recent)) * 0.6
	consistency := clamp(1.0-math.Abs(float64(directionChanges)-optimal)/float64(len(recent)), 0, 1)

	return math.Min(1.0, (variance*2+consistency)/2)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
