package temporal

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// PlotEvent is one event of the linear plot handed to the designer.
type PlotEvent struct {
	Description     string   `json:"description"`
	Type            string   `json:"type"`
	EmotionalImpact float64  `json:"emotional_impact"`
	Importance      float64  `json:"importance,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Dependencies    []string `json:"dependencies,omitempty"`
	Reveals         []string `json:"reveals,omitempty"`
	Characters      []string `json:"characters,omitempty"`
	Themes          []string `json:"themes,omitempty"`
}

// Plot is the linear input: events in chronological order plus the cast.
type Plot struct {
	Events     []PlotEvent `json:"events"`
	Characters []string    `json:"characters"`
	Setting    string      `json:"setting,omitempty"`
}

// TemporalEvent places an event on a timeline with both its chronological
// and its narrative position.
type TemporalEvent struct {
	Content            string   `json:"content"`
	ChronologicalOrder int      `json:"chronological_order"`
	NarrativeOrder     int      `json:"narrative_order"`
	TimelineID         string   `json:"timeline_id"`
	EventType          string   `json:"event_type"`
	Dependencies       []string `json:"dependencies,omitempty"`
	Reveals            []string `json:"reveals,omitempty"`
}

// Timeline is one strand of the story told from a single perspective.
type Timeline struct {
	ID                 string          `json:"timeline_id"`
	Perspective        string          `json:"perspective"`
	Events             []TemporalEvent `json:"events"`
	TimeRange          [2]int          `json:"time_range"`
	IntersectionPoints []int           `json:"intersection_points"`
}

// Flashback cuts from a trigger event back to earlier material.
type Flashback struct {
	TriggerPosition    int      `json:"trigger_position"`
	TargetPastPosition int      `json:"target_past_position"`
	ContentFocus       []string `json:"content_focus"`
	EmotionalPurpose   string   `json:"emotional_purpose"`
	Duration           string   `json:"duration"`
	Perspective        string   `json:"perspective"`
}

// NestedFlashback wraps one flashback inside another.
type NestedFlashback struct {
	Outer Flashback `json:"outer_flashback"`
	Inner Flashback `json:"inner_flashback"`
}

// FlashbackStructure collects every flashback the design calls for.
type FlashbackStructure struct {
	Primary []Flashback       `json:"primary_flashbacks"`
	Nested  []NestedFlashback `json:"nested_flashbacks"`
}

// Prophecy plants a foreshadowing element with its payoff positions.
type Prophecy struct {
	Position             int      `json:"position"`
	Type                 string   `json:"type"`
	Content              string   `json:"content"`
	FulfillmentPositions []int    `json:"fulfillment_positions"`
	AmbiguityLevel       float64  `json:"ambiguity_level"`
	SymbolicElements     []string `json:"symbolic_elements"`
}

// Convergence is a point where multiple timelines meet.
type Convergence struct {
	Position           string   `json:"position"`
	InvolvedTimelines  []string `json:"involved_timelines"`
	Type               string   `json:"convergence_type"`
	NarrativeImpact    string   `json:"narrative_impact"`
	EmotionalIntensity float64  `json:"emotional_intensity"`
}

// StartingPoint says where and how the telling begins.
type StartingPoint struct {
	Technique     string `json:"technique"`
	EventIndex    int    `json:"starting_event_index"`
	FrameNarrator string `json:"frame_narrator,omitempty"`
	Rationale     string `json:"justification"`
}

// PerspectiveShift hands part of a chapter to another timeline.
type PerspectiveShift struct {
	ShiftTo    string          `json:"shift_to"`
	TimelineID string          `json:"timeline_id"`
	Events     []TemporalEvent `json:"events"`
}

// ChapterPlan schedules one chapter of the reading path.
type ChapterPlan struct {
	Number            int                `json:"chapter_number"`
	PrimaryTimeline   string             `json:"primary_timeline"`
	EventsRange       [2]int             `json:"events_range"`
	PerspectiveShifts []PerspectiveShift `json:"perspective_shifts"`
	Flashbacks        []Flashback        `json:"flashbacks"`
	PropheticElements []Prophecy         `json:"prophetic_elements"`
}

// Structure is the full non-linear design for a plot.
type Structure struct {
	Techniques        []Technique        `json:"structure_type"`
	StartingPoint     StartingPoint      `json:"starting_point"`
	Timelines         []Timeline         `json:"timelines"`
	Flashbacks        FlashbackStructure `json:"flashback_structure"`
	PropheticElements []Prophecy         `json:"prophetic_elements"`
	ConvergencePoints []Convergence      `json:"convergence_points"`
	ReadingPath       []ChapterPlan      `json:"reading_path"`
	ComplexityScore   float64            `json:"complexity_score"`
	Engagement        float64            `json:"estimated_reader_engagement"`
}

// Designer builds temporal structures. Flashback reach is sampled from the
// supplied source, so a seeded designer is deterministic.
type Designer struct {
	rng *rand.Rand
}

func NewDesigner(rng *rand.Rand) *Designer {
	return &Designer{rng: rng}
}

// Design analyzes the linear plot, selects techniques, and lays out
// timelines, flashbacks, prophecies, convergences, and the reading path.
func (d *Designer) Design(plot Plot) Structure {
	complexity := plotComplexity(plot.Events)
	genres := genreIndicators(plot)
	revelations := RevelationPoints(plot.Events)

	techniques := SelectTechniques(complexity, genres, len(revelations))
	timelines := d.buildTimelines(plot, techniques)
	flashbacks := d.flashbackStructure(revelations)
	prophecies := propheticElements(len(plot.Events), techniques)

	return Structure{
		Techniques:        techniques,
		StartingPoint:     startingPoint(plot.Events, techniques),
		Timelines:         timelines,
		Flashbacks:        flashbacks,
		PropheticElements: prophecies,
		ConvergencePoints: convergencePoints(timelines),
		ReadingPath:       readingPath(timelines, flashbacks, prophecies),
		ComplexityScore:   ComplexityScore(techniques),
		Engagement:        EngagementScore(techniques),
	}
}

func plotComplexity(events []PlotEvent) float64 {
	if len(events) == 0 {
		return 0.0
	}

	types := map[string]struct{}{}
	var dependencies, secrets int
	for _, e := range events {
		t := e.Type
		if t == "" {
			t = "unknown"
		}
		types[t] = struct{}{}
		dependencies += len(e.Dependencies)
		if hasTag(e, "secret") {
			secrets++
		}
	}

	typeDiversity := float64(len(types)) / 10.0
	depComplexity := minf(1.0, float64(dependencies)/float64(len(events)))
	mystery := minf(1.0, float64(secrets)/maxf(1.0, float64(len(events))*0.3))

	return (typeDiversity + depComplexity + mystery) / 3.0
}

func genreIndicators(plot Plot) []string {
	var b strings.Builder
	b.WriteString(strings.ToLower(plot.Setting))
	for _, e := range plot.Events {
		b.WriteString(" ")
		b.WriteString(strings.ToLower(e.Description))
		b.WriteString(" ")
		b.WriteString(strings.ToLower(e.Type))
	}
	text := b.String()

	var genres []string
	if strings.Contains(text, "magic") {
		genres = append(genres, "fantasy")
	}
	if strings.Contains(text, "war") {
		genres = append(genres, "epic")
	}
	if strings.Contains(text, "mystery") {
		genres = append(genres, "mystery")
	}
	if len(genres) == 0 {
		genres = []string{"general"}
	}
	return genres
}

// Revelation is an event position where hidden information surfaces.
type Revelation struct {
	Position int      `json:"position"`
	Content  string   `json:"content"`
	Impact   float64  `json:"impact"`
	Reveals  []string `json:"reveals"`
}

// RevelationPoints finds the events that disclose hidden information, by
// type, tag, or high importance.
func RevelationPoints(events []PlotEvent) []Revelation {
	var out []Revelation
	for i, e := range events {
		if e.Type == "revelation" || hasTag(e, "revelation") || e.Importance > 0.7 {
			out = append(out, Revelation{
				Position: i,
				Content:  e.Description,
				Impact:   e.EmotionalImpact,
				Reveals:  e.Reveals,
			})
		}
	}
	return out
}

func startingPoint(events []PlotEvent, techniques []Technique) StartingPoint {
	switch {
	case hasTechnique(techniques, InMediasRes):
		mid := len(events) / 2
		start := mid
		bestDelta := -1
		for i, e := range events {
			if e.EmotionalImpact > 0.5 {
				if delta := absInt(i - mid); bestDelta < 0 || delta < bestDelta {
					start, bestDelta = i, delta
				}
			}
		}
		return StartingPoint{
			Technique:  string(InMediasRes),
			EventIndex: start,
			Rationale:  "open at a dramatic midpoint to seize the reader immediately",
		}
	case hasTechnique(techniques, FrameNarrative):
		idx := len(events) - 1
		if idx < 0 {
			idx = 0
		}
		return StartingPoint{
			Technique:     string(FrameNarrative),
			EventIndex:    idx,
			FrameNarrator: "a narrator from the future",
			Rationale:     "the whole story told as recollection",
		}
	default:
		return StartingPoint{
			Technique:  "chronological",
			EventIndex: 0,
			Rationale:  "a natural chronological opening",
		}
	}
}

func (d *Designer) buildTimelines(plot Plot, techniques []Technique) []Timeline {
	n := len(plot.Events)

	main := Timeline{
		ID:          "main",
		Perspective: "protagonist",
		Events:      make([]TemporalEvent, 0, n),
		TimeRange:   [2]int{0, n},
	}
	for i, e := range plot.Events {
		main.Events = append(main.Events, TemporalEvent{
			Content:            e.Description,
			ChronologicalOrder: i,
			NarrativeOrder:     i,
			TimelineID:         "main",
			EventType:          orDefault(e.Type, "action"),
			Dependencies:       e.Dependencies,
			Reveals:            e.Reveals,
		})
	}
	timelines := []Timeline{main}

	if !hasTechnique(techniques, ParallelTimelines) {
		return timelines
	}

	timelines = append(timelines, Timeline{
		ID:                 "antagonist",
		Perspective:        "antagonist",
		Events:             antagonistEvents(plot.Events),
		TimeRange:          [2]int{0, n},
		IntersectionPoints: []int{n / 3, 2 * n / 3},
	})

	if len(plot.Characters) > 2 {
		timelines = append(timelines, Timeline{
			ID:                 "supporter",
			Perspective:        "a key supporter",
			Events:             supporterEvents(n),
			TimeRange:          [2]int{n / 4, 3 * n / 4},
			IntersectionPoints: []int{n / 2},
		})
	}

	return timelines
}

func antagonistEvents(mainEvents []PlotEvent) []TemporalEvent {
	events := make([]TemporalEvent, 0, len(mainEvents)+2)
	for i, e := range mainEvents {
		events = append(events, TemporalEvent{
			Content:            fmt.Sprintf("the antagonist's answer to: %s", e.Description),
			ChronologicalOrder: i,
			NarrativeOrder:     i,
			TimelineID:         "antagonist",
			EventType:          "reaction",
			Dependencies:       []string{fmt.Sprintf("main_event_%d", i)},
			Reveals:            []string{fmt.Sprintf("antagonist_motivation_%d", i)},
		})
	}

	n := len(mainEvents)
	events = append(events,
		TemporalEvent{
			Content:            "the antagonist's own plan advances",
			ChronologicalOrder: n / 3,
			NarrativeOrder:     n / 3,
			TimelineID:         "antagonist",
			EventType:          "plot_advancement",
			Reveals:            []string{"hidden_agenda"},
		},
		TemporalEvent{
			Content:            "preparations for the final stage",
			ChronologicalOrder: 2 * n / 3,
			NarrativeOrder:     2 * n / 3,
			TimelineID:         "antagonist",
			EventType:          "preparation",
			Dependencies:       []string{"hidden_agenda"},
			Reveals:            []string{"final_plan"},
		},
	)
	return events
}

func supporterEvents(n int) []TemporalEvent {
	points := []int{n / 4, n / 2, 3 * n / 4}
	events := make([]TemporalEvent, 0, len(points))
	for i, p := range points {
		events = append(events, TemporalEvent{
			Content:            fmt.Sprintf("the supporter lends aid %d", i+1),
			ChronologicalOrder: p,
			NarrativeOrder:     p,
			TimelineID:         "supporter",
			EventType:          "support",
			Dependencies:       []string{fmt.Sprintf("main_event_%d", p)},
			Reveals:            []string{fmt.Sprintf("hidden_alliance_%d", i)},
		})
	}
	return events
}

func (d *Designer) flashbackStructure(revelations []Revelation) FlashbackStructure {
	var fs FlashbackStructure

	for _, r := range revelations {
		target := r.Position - (3 + d.rng.IntN(6))
		if target < 0 {
			target = 0
		}
		fs.Primary = append(fs.Primary, Flashback{
			TriggerPosition:    r.Position,
			TargetPastPosition: target,
			ContentFocus:       r.Reveals,
			EmotionalPurpose:   "deepen understanding of the present situation",
			Duration:           "medium",
			Perspective:        "the protagonist's memory",
		})
	}

	if len(revelations) > 2 {
		fs.Nested = append(fs.Nested, NestedFlashback{
			Outer: fs.Primary[0],
			Inner: Flashback{
				TargetPastPosition: 0,
				ContentFocus:       []string{"origin_story", "character_motivation"},
				EmotionalPurpose:   "explain the root motivation",
			},
		})
	}

	return fs
}

func propheticElements(eventCount int, techniques []Technique) []Prophecy {
	if !hasTechnique(techniques, PropheticVisions) {
		return nil
	}

	return []Prophecy{
		{
			Position:             1,
			Type:                 "prophetic_dream",
			Content:              "an oblique vision of the protagonist's fate",
			FulfillmentPositions: []int{eventCount / 2, eventCount - 2},
			AmbiguityLevel:       0.7,
			SymbolicElements:     []string{"light against darkness", "a lost crown", "a blood-stained sword"},
		},
		{
			Position:             eventCount / 2,
			Type:                 "oracle_revelation",
			Content:              "a prophecy of the true enemy and the final sacrifice",
			FulfillmentPositions: []int{eventCount - 1},
			AmbiguityLevel:       0.5,
			SymbolicElements:     []string{"two roads", "a trial of fire", "the last choice"},
		},
	}
}

func convergencePoints(timelines []Timeline) []Convergence {
	if len(timelines) < 2 {
		return nil
	}

	ids := make([]string, len(timelines))
	for i, t := range timelines {
		ids[i] = t.ID
	}

	return []Convergence{
		{
			Position:           "middle",
			InvolvedTimelines:  ids,
			Type:               "revelation_sharing",
			NarrativeImpact:    "several viewpoints expose a single truth",
			EmotionalIntensity: 0.7,
		},
		{
			Position:           "climax",
			InvolvedTimelines:  ids,
			Type:               "unified_action",
			NarrativeImpact:    "every strand gathers into one climax",
			EmotionalIntensity: 0.9,
		},
	}
}

const eventsPerChapter = 3

func readingPath(timelines []Timeline, flashbacks FlashbackStructure, prophecies []Prophecy) []ChapterPlan {
	main := timelines[0]
	for _, t := range timelines {
		if t.ID == "main" {
			main = t
			break
		}
	}
	total := len(main.Events)

	var path []ChapterPlan
	for i := 0; i < total; i += eventsPerChapter {
		end := i + eventsPerChapter
		if end > total {
			end = total
		}
		chapter := ChapterPlan{
			Number:            i/eventsPerChapter + 1,
			PrimaryTimeline:   "main",
			EventsRange:       [2]int{i, end},
			PerspectiveShifts: []PerspectiveShift{},
			Flashbacks:        []Flashback{},
			PropheticElements: []Prophecy{},
		}

		for _, t := range timelines {
			if t.ID == "main" {
				continue
			}
			for _, p := range t.IntersectionPoints {
				if p != i {
					continue
				}
				var shifted []TemporalEvent
				for _, e := range t.Events {
					if e.ChronologicalOrder == i {
						shifted = append(shifted, e)
					}
				}
				chapter.PerspectiveShifts = append(chapter.PerspectiveShifts, PerspectiveShift{
					ShiftTo:    t.Perspective,
					TimelineID: t.ID,
					Events:     shifted,
				})
			}
		}

		for _, f := range flashbacks.Primary {
			if f.TriggerPosition >= i && f.TriggerPosition < end {
				chapter.Flashbacks = append(chapter.Flashbacks, f)
			}
		}
		for _, p := range prophecies {
			if p.Position >= i && p.Position < end {
				chapter.PropheticElements = append(chapter.PropheticElements, p)
			}
		}

		path = append(path, chapter)
	}
	return path
}

func hasTechnique(techniques []Technique, t Technique) bool {
	for _, have := range techniques {
		if have == t {
			return true
		}
	}
	return false
}

func hasTag(e PlotEvent, tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
