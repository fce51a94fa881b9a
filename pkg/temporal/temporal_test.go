package temporal

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelectTechniques(t *testing.T) {
	tests := []struct {
		name        string
		complexity  float64
		genres      []string
		revelations int
		want        []Technique
	}{
		{
			name:       "simple plot",
			complexity: 0.3,
			genres:     []string{"general"},
			want:       []Technique{InMediasRes},
		},
		{
			name:       "medium plot",
			complexity: 0.6,
			genres:     []string{"general"},
			want:       []Technique{InMediasRes, NestedFlashbacks},
		},
		{
			name:       "complex plot",
			complexity: 0.8,
			genres:     []string{"general"},
			want:       []Technique{ParallelTimelines, ConvergentTimelines},
		},
		{
			name:       "fantasy adds visions",
			complexity: 0.3,
			genres:     []string{"fantasy"},
			want:       []Technique{InMediasRes, PropheticVisions},
		},
		{
			name:        "revelations add nested flashbacks",
			complexity:  0.3,
			genres:      []string{"general"},
			revelations: 4,
			want:        []Technique{InMediasRes, NestedFlashbacks},
		},
		{
			name:        "selection caps at three",
			complexity:  0.8,
			genres:      []string{"fantasy", "mystery"},
			revelations: 5,
			want:        []Technique{ParallelTimelines, ConvergentTimelines, PropheticVisions},
		},
		{
			name:        "no duplicate techniques",
			complexity:  0.6,
			genres:      []string{"general"},
			revelations: 5,
			want:        []Technique{InMediasRes, NestedFlashbacks},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectTechniques(tt.complexity, tt.genres, tt.revelations)
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("SelectTechniques mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestComplexityScore(t *testing.T) {
	if got := ComplexityScore(nil); got != 0 {
		t.Errorf("ComplexityScore(nil) = %v, want 0", got)
	}

	// in_medias_res alone: 0.3 mean plus the per-technique bonus.
	if got := ComplexityScore([]Technique{InMediasRes}); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("ComplexityScore(in_medias_res) = %v, want 0.4", got)
	}

	// Heavy selections saturate at 1.
	heavy := []Technique{TimeLoops, ReverseChronology, ConvergentTimelines}
	if got := ComplexityScore(heavy); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("ComplexityScore(heavy) = %v, want capped 1.0", got)
	}
}

func TestEngagementScore(t *testing.T) {
	if got := EngagementScore(nil); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("EngagementScore(nil) = %v, want 0.5", got)
	}
	got := EngagementScore([]Technique{InMediasRes, ParallelTimelines})
	if math.Abs(got-0.85) > 1e-9 {
		t.Errorf("EngagementScore = %v, want 0.85", got)
	}
}

func TestPlotComplexity(t *testing.T) {
	if got := plotComplexity(nil); got != 0 {
		t.Errorf("plotComplexity(nil) = %v, want 0", got)
	}

	events := []PlotEvent{
		{Type: "setup"},
		{Type: "battle", Dependencies: []string{"setup"}},
		{Type: "revelation", Tags: []string{"secret"}},
	}
	// 3 types, 1 dependency over 3 events, and the secret ratio capped at 1.
	want := (3.0/10.0 + 1.0/3.0 + 1.0) / 3.0
	if got := plotComplexity(events); math.Abs(got-want) > 1e-9 {
		t.Errorf("plotComplexity = %v, want %v", got, want)
	}
}

func TestGenreIndicators(t *testing.T) {
	tests := []struct {
		name string
		plot Plot
		want []string
	}{
		{
			name: "defaults to general",
			plot: Plot{Events: []PlotEvent{{Description: "a quiet morning"}}},
			want: []string{"general"},
		},
		{
			name: "magic and war detected",
			plot: Plot{
				Setting: "an empire at war",
				Events:  []PlotEvent{{Description: "the Magic awakens"}},
			},
			want: []string{"fantasy", "epic"},
		},
		{
			name: "mystery from event type",
			plot: Plot{Events: []PlotEvent{{Type: "mystery"}}},
			want: []string{"mystery"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := cmp.Diff(tt.want, genreIndicators(tt.plot)); d != "" {
				t.Errorf("genreIndicators mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestRevelationPoints(t *testing.T) {
	events := []PlotEvent{
		{Description: "an ordinary day"},
		{Description: "the truth surfaces", Type: "revelation", Reveals: []string{"lineage"}},
		{Description: "a tagged secret", Tags: []string{"revelation"}},
		{Description: "a pivotal moment", Importance: 0.8},
		{Description: "minor detail", Importance: 0.5},
	}

	got := RevelationPoints(events)
	if len(got) != 3 {
		t.Fatalf("found %d revelations, want 3", len(got))
	}
	wantPositions := []int{1, 2, 3}
	for i, r := range got {
		if r.Position != wantPositions[i] {
			t.Errorf("revelation %d at position %d, want %d", i, r.Position, wantPositions[i])
		}
	}
	if got[0].Reveals[0] != "lineage" {
		t.Errorf("revelation content not carried through: %+v", got[0])
	}
}

func TestStartingPoint(t *testing.T) {
	events := []PlotEvent{
		{Description: "calm", EmotionalImpact: 0.1},
		{Description: "skirmish", EmotionalImpact: 0.6},
		{Description: "calm again", EmotionalImpact: 0.2},
		{Description: "disaster", EmotionalImpact: 0.9},
		{Description: "aftermath", EmotionalImpact: 0.3},
		{Description: "resolve", EmotionalImpact: 0.4},
	}

	t.Run("in medias res picks the dramatic event nearest the midpoint", func(t *testing.T) {
		sp := startingPoint(events, []Technique{InMediasRes})
		if sp.Technique != string(InMediasRes) {
			t.Errorf("technique = %q", sp.Technique)
		}
		// Midpoint is index 3, which is itself dramatic.
		if sp.EventIndex != 3 {
			t.Errorf("starting index = %d, want 3", sp.EventIndex)
		}
	})

	t.Run("frame narrative starts at the end", func(t *testing.T) {
		sp := startingPoint(events, []Technique{FrameNarrative})
		if sp.EventIndex != len(events)-1 || sp.FrameNarrator == "" {
			t.Errorf("frame starting point = %+v", sp)
		}
	})

	t.Run("default is chronological", func(t *testing.T) {
		sp := startingPoint(events, []Technique{TimeLoops})
		if sp.Technique != "chronological" || sp.EventIndex != 0 {
			t.Errorf("starting point = %+v", sp)
		}
	})
}

func plotFixture(n int, characters []string) Plot {
	events := make([]PlotEvent, n)
	for i := range events {
		events[i] = PlotEvent{
			Description:     "event",
			Type:            "action",
			EmotionalImpact: 0.4,
		}
	}
	return Plot{Events: events, Characters: characters}
}

func TestBuildTimelines(t *testing.T) {
	d := NewDesigner(rand.New(rand.NewPCG(1, 1)))

	t.Run("main only without parallel technique", func(t *testing.T) {
		timelines := d.buildTimelines(plotFixture(6, []string{"a", "b"}), []Technique{InMediasRes})
		if len(timelines) != 1 || timelines[0].ID != "main" {
			t.Fatalf("timelines = %d, want just main", len(timelines))
		}
		if len(timelines[0].Events) != 6 {
			t.Errorf("main timeline has %d events, want 6", len(timelines[0].Events))
		}
	})

	t.Run("parallel adds antagonist and supporter", func(t *testing.T) {
		timelines := d.buildTimelines(plotFixture(12, []string{"a", "b", "c"}), []Technique{ParallelTimelines})
		if len(timelines) != 3 {
			t.Fatalf("timelines = %d, want 3", len(timelines))
		}

		ant := timelines[1]
		if ant.ID != "antagonist" {
			t.Fatalf("second timeline = %q", ant.ID)
		}
		// One reaction per main event plus the two plan events.
		if len(ant.Events) != 14 {
			t.Errorf("antagonist events = %d, want 14", len(ant.Events))
		}
		if d := cmp.Diff([]int{4, 8}, ant.IntersectionPoints); d != "" {
			t.Errorf("antagonist intersections (-want +got):\n%s", d)
		}

		sup := timelines[2]
		if sup.ID != "supporter" || len(sup.Events) != 3 {
			t.Errorf("supporter timeline = %+v", sup)
		}
		if sup.TimeRange != [2]int{3, 9} {
			t.Errorf("supporter range = %v, want [3 9]", sup.TimeRange)
		}
	})

	t.Run("two characters get no supporter strand", func(t *testing.T) {
		timelines := d.buildTimelines(plotFixture(12, []string{"a", "b"}), []Technique{ParallelTimelines})
		if len(timelines) != 2 {
			t.Errorf("timelines = %d, want 2", len(timelines))
		}
	})
}

func TestFlashbackStructure(t *testing.T) {
	d := NewDesigner(rand.New(rand.NewPCG(9, 9)))
	revelations := []Revelation{
		{Position: 8, Reveals: []string{"first"}},
		{Position: 10, Reveals: []string{"second"}},
		{Position: 11, Reveals: []string{"third"}},
	}

	fs := d.flashbackStructure(revelations)
	if len(fs.Primary) != 3 {
		t.Fatalf("primary flashbacks = %d, want 3", len(fs.Primary))
	}
	for i, f := range fs.Primary {
		if f.TriggerPosition != revelations[i].Position {
			t.Errorf("flashback %d triggers at %d", i, f.TriggerPosition)
		}
		reach := f.TriggerPosition - f.TargetPastPosition
		if f.TargetPastPosition != 0 && (reach < 3 || reach > 8) {
			t.Errorf("flashback %d reaches %d back, want within [3, 8]", i, reach)
		}
		if f.TargetPastPosition < 0 {
			t.Errorf("flashback %d targets negative position", i)
		}
	}

	// More than two revelations nests the first flashback.
	if len(fs.Nested) != 1 {
		t.Fatalf("nested flashbacks = %d, want 1", len(fs.Nested))
	}
	if fs.Nested[0].Outer.TriggerPosition != 8 || fs.Nested[0].Inner.TargetPastPosition != 0 {
		t.Errorf("nested flashback = %+v", fs.Nested[0])
	}

	if few := d.flashbackStructure(revelations[:2]); len(few.Nested) != 0 {
		t.Errorf("two revelations should not nest, got %d", len(few.Nested))
	}
}

func TestPropheticElements(t *testing.T) {
	if got := propheticElements(12, []Technique{InMediasRes}); got != nil {
		t.Errorf("prophecies without the technique = %v", got)
	}

	got := propheticElements(12, []Technique{PropheticVisions})
	if len(got) != 2 {
		t.Fatalf("prophecies = %d, want 2", len(got))
	}
	if got[0].Position != 1 || got[1].Position != 6 {
		t.Errorf("prophecy positions = %d, %d, want 1 and 6", got[0].Position, got[1].Position)
	}
	if d := cmp.Diff([]int{6, 10}, got[0].FulfillmentPositions); d != "" {
		t.Errorf("first prophecy fulfillments (-want +got):\n%s", d)
	}
}

func TestDesign(t *testing.T) {
	d := NewDesigner(rand.New(rand.NewPCG(5, 5)))
	plot := plotFixture(12, []string{"hero", "villain", "friend"})
	plot.Events[6].Type = "revelation"
	plot.Events[6].Description = "the magic behind the war is revealed"

	s := d.Design(plot)

	if len(s.Techniques) == 0 || len(s.Techniques) > 3 {
		t.Errorf("techniques = %v", s.Techniques)
	}
	if len(s.Timelines) == 0 || s.Timelines[0].ID != "main" {
		t.Fatalf("timelines = %+v", s.Timelines)
	}
	if len(s.ReadingPath) != 4 {
		t.Errorf("reading path has %d chapters, want 4 for 12 events", len(s.ReadingPath))
	}
	for i, ch := range s.ReadingPath {
		if ch.Number != i+1 {
			t.Errorf("chapter %d numbered %d", i, ch.Number)
		}
		if ch.EventsRange[1]-ch.EventsRange[0] > eventsPerChapter {
			t.Errorf("chapter %d spans %v", i, ch.EventsRange)
		}
	}
	if s.ComplexityScore < 0 || s.ComplexityScore > 1 {
		t.Errorf("complexity score = %v", s.ComplexityScore)
	}
	if s.Engagement < 0 || s.Engagement > 1 {
		t.Errorf("engagement = %v", s.Engagement)
	}
}

func TestConvergencePoints(t *testing.T) {
	if got := convergencePoints([]Timeline{{ID: "main"}}); got != nil {
		t.Errorf("single timeline converges: %v", got)
	}

	got := convergencePoints([]Timeline{{ID: "main"}, {ID: "antagonist"}})
	if len(got) != 2 {
		t.Fatalf("convergences = %d, want 2", len(got))
	}
	if got[0].Position != "middle" || got[1].Position != "climax" {
		t.Errorf("convergence positions = %q, %q", got[0].Position, got[1].Position)
	}
	if d := cmp.Diff([]string{"main", "antagonist"}, got[0].InvolvedTimelines); d != "" {
		t.Errorf("involved timelines (-want +got):\n%s", d)
	}
}
