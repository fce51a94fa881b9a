package semantic

import (
	"math"

	"fabula/pkg/utils"
)

// DimensionCoverage describes how much of one axis a trajectory explored.
type DimensionCoverage struct {
	Range         float64 `json:"range"`
	Variance      float64 `json:"variance"`
	CoverageRatio float64 `json:"coverage_ratio"`
}

// Trajectory summarizes the path a journey traces through meaning space.
type Trajectory struct {
	Positions           []Position                   `json:"positions"`
	TotalDistance       float64                      `json:"total_distance"`
	AverageStepDistance float64                      `json:"average_step_distance"`
	Coverage            map[string]DimensionCoverage `json:"semantic_coverage"`
}

// ComputeTrajectory walks the steps in order and accumulates distance and
// per-dimension coverage.
func ComputeTrajectory(steps []Step) Trajectory {
	t := Trajectory{Positions: make([]Position, 0, len(steps))}

	for _, s := range steps {
		if n := len(t.Positions); n > 0 {
			t.TotalDistance += t.Positions[n-1].Distance(s.Position)
		}
		t.Positions = append(t.Positions, s.Position)
	}

	if n := len(t.Positions); n > 1 {
		t.AverageStepDistance = t.TotalDistance / float64(n-1)
	} else {
		t.AverageStepDistance = t.TotalDistance
	}
	t.Coverage = coverage(t.Positions)
	return t
}

func coverage(positions []Position) map[string]DimensionCoverage {
	if len(positions) == 0 {
		return nil
	}

	out := make(map[string]DimensionCoverage, len(Dimensions))
	for i, name := range Dimensions {
		lo, hi := positions[0].values()[i], positions[0].values()[i]
		var mean float64
		for _, p := range positions {
			v := p.values()[i]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			mean += v
		}
		mean /= float64(len(positions))

		var variance float64
		for _, p := range positions {
			d := p.values()[i] - mean
			variance += d * d
		}
		variance /= float64(len(positions))

		out[name] = DimensionCoverage{
			Range:    hi - lo,
			Variance: variance,
			// The axis spans [-1, 1], so a full sweep covers 2.0.
			CoverageRatio: (hi - lo) / 2.0,
		}
	}
	return out
}

// ManuscriptDistance scores how far a finished manuscript travels through
// meaning space, chapter to chapter in chapter-number order, normalized to
// [0, 1] against a nominal maximum of 2.0 per chapter.
func ManuscriptDistance(manuscript map[string]string) float64 {
	if len(manuscript) == 0 {
		return 0.0
	}

	keys := utils.SortedChapterKeys(manuscript)

	positions := make([]Position, len(keys))
	for i, k := range keys {
		positions[i] = PositionOf(manuscript[k], "description")
	}

	var total float64
	for i := 1; i < len(positions); i++ {
		total += positions[i-1].Distance(positions[i])
	}

	max := float64(len(positions)) * 2.0
	return math.Min(1.0, total/math.Max(1.0, max))
}
