package semantic

import (
	"fmt"
	"math"
	"strings"
)

// Speed is a target narrative speed for a stretch of prose.
type Speed string

const (
	VerySlow Speed = "very_slow"
	Slow     Speed = "slow"
	Moderate Speed = "moderate"
	Fast     Speed = "fast"
	VeryFast Speed = "very_fast"
)

// SpeedParams tune how a scene at a given speed should read.
type SpeedParams struct {
	DescriptionRatio       float64
	InternalMonologueRatio float64
	SceneDetailLevel       float64
	TemporalStretching     float64
}

var speedParams = map[Speed]SpeedParams{
	VerySlow: {0.6, 0.3, 0.9, 2.0},
	Slow:     {0.4, 0.2, 0.7, 1.5},
	Moderate: {0.3, 0.15, 0.5, 1.0},
	Fast:     {0.2, 0.1, 0.3, 0.7},
	VeryFast: {0.1, 0.05, 0.2, 0.5},
}

// ParamsFor returns the tuning for a speed, defaulting to moderate.
func ParamsFor(s Speed) SpeedParams {
	if p, ok := speedParams[s]; ok {
		return p
	}
	return speedParams[Moderate]
}

// PerspectiveShift hands a slice of a chapter to another viewpoint.
type PerspectiveShift struct {
	ShiftTo string  `json:"shift_to"`
	Events  []Event `json:"events"`
}

// Chapter groups journey steps under a primary viewpoint.
type Chapter struct {
	Number      int                `json:"chapter_number"`
	Perspective string             `json:"primary_perspective"`
	Steps       []Step             `json:"events"`
	Shifts      []PerspectiveShift `json:"perspective_shifts,omitempty"`
}

const stepsPerChapter = 3

// Weave chunks a journey into chapters of three steps under the
// protagonist's viewpoint, cutting to the antagonist in every other chapter
// when antagonist material exists.
func Weave(journey []Step, antagonistEvents []Event) []Chapter {
	var chapters []Chapter
	for i := 0; i < len(journey); i += stepsPerChapter {
		end := min(i+stepsPerChapter, len(journey))
		ch := Chapter{
			Number:      i/stepsPerChapter + 1,
			Perspective: "protagonist",
			Steps:       journey[i:end],
		}
		if len(antagonistEvents) > 0 && (i/stepsPerChapter)%2 == 1 {
			cut := antagonistEvents
			if len(cut) > 2 {
				cut = cut[:2]
			}
			ch.Shifts = append(ch.Shifts, PerspectiveShift{ShiftTo: "antagonist", Events: cut})
		}
		chapters = append(chapters, ch)
	}
	return chapters
}

// chapterDensity measures how many dimensions a chapter's steps engage.
func chapterDensity(ch Chapter) float64 {
	if len(ch.Steps) == 0 {
		return 0.0
	}
	var total float64
	for _, s := range ch.Steps {
		var engaged int
		for _, v := range s.Position.values() {
			if math.Abs(v) > 0.3 {
				engaged++
			}
		}
		total += float64(engaged) / float64(len(Dimensions))
	}
	return total / float64(len(ch.Steps))
}

func chapterEmotionalPeak(ch Chapter) float64 {
	var peak float64
	for _, s := range ch.Steps {
		peak = math.Max(peak, math.Abs(s.Position.Emotional))
	}
	return peak
}

// PacingProfile recommends a speed per chapter number. Dense or emotionally
// loaded chapters slow down so the reader can dwell in them.
func PacingProfile(chapters []Chapter) map[int]Speed {
	profile := make(map[int]Speed, len(chapters))
	for _, ch := range chapters {
		density := chapterDensity(ch)
		peak := chapterEmotionalPeak(ch)
		switch {
		case density > 0.7 || peak > 0.8:
			profile[ch.Number] = Slow
		case density > 0.5 || peak > 0.6:
			profile[ch.Number] = Moderate
		default:
			profile[ch.Number] = Fast
		}
	}
	return profile
}

// ComplexityScore blends viewpoint diversity, the share of chapters with
// perspective shifts, and mean semantic density into [0, 1].
func ComplexityScore(chapters []Chapter) float64 {
	if len(chapters) == 0 {
		return 0.0
	}

	perspectives := map[string]struct{}{}
	var shifted int
	var density float64
	for _, ch := range chapters {
		perspectives[ch.Perspective] = struct{}{}
		for _, s := range ch.Shifts {
			perspectives[s.ShiftTo] = struct{}{}
		}
		if len(ch.Shifts) > 0 {
			shifted++
		}
		density += chapterDensity(ch)
	}

	diversity := float64(len(perspectives)) / 5.0
	temporal := float64(shifted) / float64(len(chapters))
	return (diversity + temporal + density/float64(len(chapters))) / 3.0
}

// PathElement tells a reader (or the prose stage) how to take a chapter.
type PathElement struct {
	Chapter      int    `json:"chapter"`
	PrimaryFocus string `json:"primary_focus"`
	Instructions string `json:"reading_instructions"`
	Duration     string `json:"expected_duration"`
}

var focusDescriptions = map[string]string{
	"physical":      "action and adventure",
	"emotional":     "relationships and emotional development",
	"philosophical": "values and worldview",
	"political":     "power and social structure",
	"spiritual":     "faith and the supernatural",
	"mythological":  "legend and ancient mystery",
}

// ReadingPath lays out, chapter by chapter, what to focus on and how long
// to linger.
func ReadingPath(chapters []Chapter) []PathElement {
	path := make([]PathElement, 0, len(chapters))
	for _, ch := range chapters {
		focus := chapterFocus(ch)
		instructions := fmt.Sprintf("follow the story's development through %s", focus)
		if len(ch.Shifts) > 0 {
			instructions = fmt.Sprintf("read %s closely across the shifting viewpoints", focus)
		}
		path = append(path, PathElement{
			Chapter:      ch.Number,
			PrimaryFocus: focus,
			Instructions: instructions,
			Duration:     readingDuration(ch),
		})
	}
	return path
}

func chapterFocus(ch Chapter) string {
	if len(ch.Steps) == 0 {
		return "transitional"
	}

	var strengths [6]float64
	for _, s := range ch.Steps {
		for i, v := range s.Position.values() {
			strengths[i] += math.Abs(v)
		}
	}
	best := 0
	for i := range strengths {
		if strengths[i] > strengths[best] {
			best = i
		}
	}
	return focusDescriptions[Dimensions[best]]
}

func readingDuration(ch Chapter) string {
	density := chapterDensity(ch)
	switch {
	case len(ch.Steps) > 4 || density > 0.7:
		return "long"
	case len(ch.Steps) > 2 || density > 0.4:
		return "medium"
	default:
		return "short"
	}
}

// SpeedDirectives appends pacing guidance to a scene brief so the prose
// stage writes at the target speed. Moderate scenes pass through untouched.
func SpeedDirectives(scene string, target Speed) string {
	p := ParamsFor(target)

	switch target {
	case VerySlow, Slow:
		directives := []string{"\n[pacing: slow]"}
		if p.DescriptionRatio > 0.4 {
			directives = append(directives,
				"- detailed environment rendered through the five senses",
				"- small expressions and gestures of the characters",
				"- prose aware of the passage of time",
			)
		}
		if p.InternalMonologueRatio > 0.2 {
			directives = append(directives,
				"- deep interior exploration",
				"- contrast with remembered past",
				"- room for philosophical reflection",
			)
		}
		if p.SceneDetailLevel > 0.7 {
			directives = append(directives,
				"- symbolic detail given weight",
				"- metaphorical language",
				"- layered meaning",
			)
		}
		return scene + strings.Join(directives, "\n")
	case Fast, VeryFast:
		directives := []string{
			"\n[pacing: fast]",
			"- terse, action-forward prose",
			"- short sentences, rhythmic movement",
			"- omission and implication",
			"- compressed time, tight focus",
		}
		return scene + strings.Join(directives, "\n")
	default:
		return scene
	}
}
