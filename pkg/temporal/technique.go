// Package temporal turns a linear plot into a non-linear temporal
// structure with multiple timelines, flashbacks, and prophetic elements.
package temporal

// Technique is a named way of manipulating narrative time.
type Technique string

const (
	InMediasRes         Technique = "in_medias_res"
	FrameNarrative      Technique = "frame_narrative"
	ParallelTimelines   Technique = "parallel_timelines"
	ReverseChronology   Technique = "reverse_chronology"
	TimeLoops           Technique = "time_loops"
	PropheticVisions    Technique = "prophetic_visions"
	NestedFlashbacks    Technique = "nested_flashbacks"
	ConvergentTimelines Technique = "convergent_timelines"
)

// TechniqueProfile rates a technique for the selection heuristics.
type TechniqueProfile struct {
	Description string
	Complexity  float64
	Engagement  float64
	SuitableFor []string
}

var techniqueProfiles = map[Technique]TechniqueProfile{
	InMediasRes: {
		Description: "open the story in the middle of the action",
		Complexity:  0.3,
		Engagement:  0.8,
		SuitableFor: []string{"action", "mystery", "thriller"},
	},
	FrameNarrative: {
		Description: "a story told inside a story",
		Complexity:  0.5,
		Engagement:  0.6,
		SuitableFor: []string{"epic", "historical", "philosophical"},
	},
	ParallelTimelines: {
		Description: "timelines running side by side",
		Complexity:  0.7,
		Engagement:  0.9,
		SuitableFor: []string{"epic", "multi_character", "complex_plot"},
	},
	ReverseChronology: {
		Description: "events told in reverse order",
		Complexity:  0.8,
		Engagement:  0.7,
		SuitableFor: []string{"mystery", "tragedy", "revelation"},
	},
	TimeLoops: {
		Description: "a looping structure of repeated time",
		Complexity:  0.9,
		Engagement:  0.8,
		SuitableFor: []string{"fantasy", "philosophical", "character_study"},
	},
	PropheticVisions: {
		Description: "visions that foretell what is to come",
		Complexity:  0.4,
		Engagement:  0.7,
		SuitableFor: []string{"fantasy", "epic", "destiny"},
	},
	NestedFlashbacks: {
		Description: "flashbacks nested within flashbacks",
		Complexity:  0.6,
		Engagement:  0.6,
		SuitableFor: []string{"character_development", "mystery", "trauma"},
	},
	ConvergentTimelines: {
		Description: "separate timelines converging on one point",
		Complexity:  0.8,
		Engagement:  0.9,
		SuitableFor: []string{"epic", "climax", "resolution"},
	},
}

// ProfileOf returns the rating profile for a technique.
func ProfileOf(t Technique) TechniqueProfile {
	return techniqueProfiles[t]
}

// StageRecommendations suggests techniques per story stage.
var StageRecommendations = map[string][]Technique{
	"opening":     {InMediasRes, PropheticVisions},
	"development": {ParallelTimelines, NestedFlashbacks},
	"climax":      {ConvergentTimelines, TimeLoops},
	"resolution":  {FrameNarrative, ReverseChronology},
}

const maxTechniques = 3

// SelectTechniques picks up to three techniques from the plot's complexity,
// genre hints, and revelation count. Complexity sets the base pair; genre
// and revelations extend it.
func SelectTechniques(complexity float64, genres []string, revelations int) []Technique {
	var selected []Technique
	switch {
	case complexity > 0.7:
		selected = append(selected, ParallelTimelines, ConvergentTimelines)
	case complexity > 0.5:
		selected = append(selected, InMediasRes, NestedFlashbacks)
	default:
		selected = append(selected, InMediasRes)
	}

	for _, genre := range genres {
		switch genre {
		case "fantasy":
			selected = appendUnique(selected, PropheticVisions)
		case "mystery":
			selected = appendUnique(selected, ReverseChronology)
		}
	}

	if revelations > 3 {
		selected = appendUnique(selected, NestedFlashbacks)
	}

	if len(selected) > maxTechniques {
		selected = selected[:maxTechniques]
	}
	return selected
}

func appendUnique(techniques []Technique, t Technique) []Technique {
	for _, have := range techniques {
		if have == t {
			return techniques
		}
	}
	return append(techniques, t)
}

// ComplexityScore averages the chosen techniques' complexity with a small
// bonus per technique, capped at 1.
func ComplexityScore(techniques []Technique) float64 {
	if len(techniques) == 0 {
		return 0.0
	}
	var total float64
	for _, t := range techniques {
		total += techniqueProfiles[t].Complexity
	}
	score := total/float64(len(techniques)) + float64(len(techniques))*0.1
	if score > 1.0 {
		return 1.0
	}
	return score
}

// EngagementScore averages the chosen techniques' reader engagement,
// defaulting to 0.5 for an empty selection.
func EngagementScore(techniques []Technique) float64 {
	if len(techniques) == 0 {
		return 0.5
	}
	var total float64
	for _, t := range techniques {
		total += techniqueProfiles[t].Engagement
	}
	return total / float64(len(techniques))
}
