// Package semantic locates story events in a six-dimensional meaning space
// and plans journeys through it that keep the reader moving.
package semantic

import (
	"math"
	"strings"
)

// Position is a point in meaning space. Every dimension lives in [-1, 1].
type Position struct {
	Physical      float64 `json:"physical"`
	Emotional     float64 `json:"emotional"`
	Philosophical float64 `json:"philosophical"`
	Political     float64 `json:"political"`
	Spiritual     float64 `json:"spiritual"`
	Mythological  float64 `json:"mythological"`
}

// Dimensions names the axes of the space, in struct order.
var Dimensions = [6]string{
	"physical", "emotional", "philosophical", "political", "spiritual", "mythological",
}

func (p Position) values() [6]float64 {
	return [6]float64{p.Physical, p.Emotional, p.Philosophical, p.Political, p.Spiritual, p.Mythological}
}

func fromValues(v [6]float64) Position {
	return Position{v[0], v[1], v[2], v[3], v[4], v[5]}
}

// Distance is the Euclidean distance between two positions. Symmetric, and
// zero iff the positions are equal.
func (p Position) Distance(other Position) float64 {
	a, b := p.values(), other.values()
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Midpoint returns the componentwise midpoint of two positions.
func Midpoint(a, b Position) Position {
	av, bv := a.values(), b.values()
	var mid [6]float64
	for i := range av {
		mid[i] = (av[i] + bv[i]) / 2
	}
	return fromValues(mid)
}

// DominantShift names the dimension with the largest absolute change
// between two positions.
func DominantShift(from, to Position) string {
	fv, tv := from.values(), to.values()
	best, bestDelta := 0, -1.0
	for i := range fv {
		if d := math.Abs(tv[i] - fv[i]); d > bestDelta {
			best, bestDelta = i, d
		}
	}
	return Dimensions[best]
}

type domain struct {
	name     string
	concepts []string
	weights  map[string]float64
}

// The concept lists are matched verbatim against scene text, so they stay
// in the language of the manuscript.
var domains = []domain{
	{
		name:     "physical",
		concepts: []string{"戦闘", "旅", "探索", "逃走", "建築", "自然"},
		weights:  map[string]float64{"action": 0.8, "description": 0.6, "dialogue": 0.2},
	},
	{
		name:     "emotional",
		concepts: []string{"愛", "憎しみ", "恐怖", "希望", "絶望", "怒り", "悲しみ", "喜び"},
		weights:  map[string]float64{"dialogue": 0.9, "internal": 0.8, "action": 0.4},
	},
	{
		name:     "philosophical",
		concepts: []string{"正義", "運命", "自由意志", "犠牲", "真実", "善悪", "存在意義"},
		weights:  map[string]float64{"internal": 0.9, "dialogue": 0.7, "symbolism": 0.8},
	},
	{
		name:     "political",
		concepts: []string{"権力", "統治", "反乱", "同盟", "陰謀", "外交", "戦争"},
		weights:  map[string]float64{"dialogue": 0.8, "action": 0.7, "description": 0.5},
	},
	{
		name:     "spiritual",
		concepts: []string{"信仰", "奇跡", "堕落", "贖罪", "神々", "祈り", "聖域"},
		weights:  map[string]float64{"symbolism": 0.9, "description": 0.7, "dialogue": 0.6},
	},
	{
		name:     "mythological",
		concepts: []string{"予言", "古代", "神々", "創造", "終末", "英雄", "怪物"},
		weights:  map[string]float64{"description": 0.8, "action": 0.7, "symbolism": 0.9},
	},
}

const defaultTypeWeight = 0.5

// PositionOf scores event text against every domain's concept list. Each
// hit is weighted by the event type; unknown types get the default weight.
// Text with no hits in a domain sits at that axis's origin.
func PositionOf(text, eventType string) Position {
	lowered := strings.ToLower(text)

	var out [6]float64
	for i, d := range domains {
		weight, ok := d.weights[eventType]
		if !ok {
			weight = defaultTypeWeight
		}

		var score float64
		var hits int
		for _, concept := range d.concepts {
			n := strings.Count(lowered, strings.ToLower(concept))
			if n > 0 {
				score += float64(n) * weight
				hits += n
			}
		}

		if hits > 0 {
			normalized := math.Min(1.0, score/float64(hits))
			out[i] = -1.0 + normalized*2.0
		}
	}
	return fromValues(out)
}
