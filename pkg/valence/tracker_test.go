package valence

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		position int
		want     float64
	}{
		{
			name:     "empty text is neutral",
			text:     "",
			position: 5,
			want:     0,
		},
		{
			name:     "no lexicon hits is neutral",
			text:     "彼は街道を東へ歩いた。",
			position: 5,
			want:     0,
		},
		{
			name:     "pure positive",
			text:     "勝利の喜びに満ちていた。",
			position: 5,
			want:     1.0,
		},
		{
			name:     "pure negative",
			text:     "裏切りと絶望が彼を襲った。",
			position: 5,
			want:     -1.0,
		},
		{
			name:     "mixed leans by weight",
			text:     "勝利したものの、不安が胸に残った。",
			position: 5,
			want:     (0.6 - 0.3) / 0.9,
		},
		{
			name:     "intensifier amplifies",
			text:     "非常に大きな勝利だったものの、不安が胸に残った。",
			position: 5,
			want:     (0.6 - 0.3) / 0.9 * 1.2,
		},
		{
			name:     "diminisher halves",
			text:     "少しだけ希望が見えた。",
			position: 5,
			want:     0.5,
		},
		{
			name:     "single negator flips with damping",
			text:     "もう希望はどこにもない。",
			position: 5,
			want:     -0.8,
		},
		{
			name:     "early position suppressed",
			text:     "勝利の喜びに満ちていた。",
			position: 1,
			want:     0.8,
		},
		{
			name:     "late position amplified and clamped",
			text:     "勝利の喜びに満ちていた。",
			position: 10,
			want:     1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			got := tr.Score(tt.text, tt.position)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%q, %d) = %v, want %v", tt.text, tt.position, got, tt.want)
			}
			if math.Abs(tr.Current()-got) > 1e-9 {
				t.Errorf("Current() = %v after Score returned %v", tr.Current(), got)
			}
		})
	}
}

func TestScoreRecordsEvents(t *testing.T) {
	tr := NewTracker()

	tr.Score("彼は街道を東へ歩いた。", 4)
	if len(tr.Events()) != 0 {
		t.Fatalf("neutral scene recorded %d events", len(tr.Events()))
	}

	// |v| = 0.8: above the event threshold but not high intensity.
	tr.Score("もう希望はどこにもない。", 5)
	events := tr.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Classification != ModerateIntensity {
		t.Errorf("classification = %q, want %q", events[0].Classification, ModerateIntensity)
	}
	if math.Abs(events[0].Intensity-0.8) > 1e-9 {
		t.Errorf("intensity = %v, want 0.8", events[0].Intensity)
	}

	// |v| = 1.0 gets the high intensity classification.
	tr.Score("裏切りと絶望が彼を襲った。", 6)
	events = tr.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Classification != HighIntensity {
		t.Errorf("classification = %q, want %q", events[1].Classification, HighIntensity)
	}
}

func TestHistoryAndReset(t *testing.T) {
	tr := NewTracker()
	tr.Score("勝利の喜びに満ちていた。", 5)
	tr.Score("裏切りと絶望が彼を襲った。", 6)

	want := []float64{1.0, -1.0}
	if d := cmp.Diff(want, tr.History()); d != "" {
		t.Errorf("History() mismatch (-want +got):\n%s", d)
	}

	tr.Reset()
	if len(tr.History()) != 0 || len(tr.Events()) != 0 || tr.Current() != 0 {
		t.Error("Reset() left state behind")
	}
}

func TestReversalImpact(t *testing.T) {
	if got := ReversalImpact(0.8, -0.6); math.Abs(got-1.4) > 1e-9 {
		t.Errorf("ReversalImpact(0.8, -0.6) = %v, want 1.4", got)
	}
	if got := ReversalImpact(-0.2, -0.2); got != 0 {
		t.Errorf("ReversalImpact of equal values = %v, want 0", got)
	}
}

func TestSwings(t *testing.T) {
	if got := Swings([]float64{0.5}); got != nil {
		t.Errorf("Swings of one sample = %v, want nil", got)
	}
	got := Swings([]float64{0.2, -0.6, 0.3})
	want := []float64{-0.8, 0.9}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMovingAverage(t *testing.T) {
	tr := NewTracker()
	for i, text := range []string{
		"彼は街道を東へ歩いた。",
		"勝利の喜びに満ちていた。",
		"裏切りと絶望が彼を襲った。",
	} {
		tr.Score(text, i+4)
	}

	// Shorter than the default window: returned unchanged.
	if d := cmp.Diff([]float64{0, 1, -1}, tr.MovingAverage(0)); d != "" {
		t.Errorf("MovingAverage(0) mismatch (-want +got):\n%s", d)
	}

	got := tr.MovingAverage(2)
	want := []float64{0.5, 0}
	if len(got) != len(want) {
		t.Fatalf("MovingAverage(2) length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("MovingAverage(2)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStatistics(t *testing.T) {
	tr := NewTracker()
	if got := tr.Statistics(); got != (Stats{}) {
		t.Errorf("Statistics() on empty history = %+v, want zero", got)
	}

	tr.Score("勝利の喜びに満ちていた。", 5)
	tr.Score("裏切りと絶望が彼を襲った。", 6)
	tr.Score("彼は街道を東へ歩いた。", 7)

	s := tr.Statistics()
	if math.Abs(s.Mean) > 1e-9 {
		t.Errorf("Mean = %v, want 0", s.Mean)
	}
	if math.Abs(s.Variance-2.0/3.0) > 1e-9 {
		t.Errorf("Variance = %v, want %v", s.Variance, 2.0/3.0)
	}
	if math.Abs(s.Range-2) > 1e-9 {
		t.Errorf("Range = %v, want 2", s.Range)
	}
	if math.Abs(s.PositiveRatio-1.0/3.0) > 1e-9 || math.Abs(s.NegativeRatio-1.0/3.0) > 1e-9 || math.Abs(s.NeutralRatio-1.0/3.0) > 1e-9 {
		t.Errorf("ratios = %v/%v/%v, want thirds", s.PositiveRatio, s.NegativeRatio, s.NeutralRatio)
	}
	if s.EventCount != 2 || s.HighIntensityCount != 2 {
		t.Errorf("events = %d high = %d, want 2 and 2", s.EventCount, s.HighIntensityCount)
	}

	// A bare series summarizes the same as the tracker that produced it.
	if d := cmp.Diff(s, Summarize(tr.History())); d != "" {
		t.Errorf("Summarize(history) mismatch (-tracker +series):\n%s", d)
	}
}

func TestSummarizeBareSeries(t *testing.T) {
	if got := Summarize(nil); got != (Stats{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", got)
	}

	s := Summarize([]float64{0.75, -0.9, 0.2})
	if s.EventCount != 2 {
		t.Errorf("EventCount = %d, want 2", s.EventCount)
	}
	if s.HighIntensityCount != 1 {
		t.Errorf("HighIntensityCount = %d, want 1", s.HighIntensityCount)
	}
	if math.Abs(s.Range-1.65) > 1e-9 {
		t.Errorf("Range = %v, want 1.65", s.Range)
	}
}

func TestMovingAverageBareSeries(t *testing.T) {
	series := []float64{1, 0, -1, 0}
	got := MovingAverage(series, 2)
	want := []float64{0.5, -0.5, -0.5}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// Shorter than the window: a copy, not the same backing array.
	short := MovingAverage(series, 10)
	if d := cmp.Diff(series, short); d != "" {
		t.Errorf("short series mismatch (-want +got):\n%s", d)
	}
	short[0] = 42
	if series[0] != 1 {
		t.Error("short result shares backing array with the input")
	}
}

func TestSuggestNextReversal(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("high valence pushes negative", func(t *testing.T) {
		tr := NewTracker()
		tr.Score("勝利の喜びに満ちていた。", 5)

		s := tr.SuggestNextReversal([]float64{0.9}, rng)
		if s.Direction != "negative" {
			t.Errorf("Direction = %q, want negative", s.Direction)
		}
		// A big recent swing recommends breathing room.
		if s.Intensity < 0.4 || s.Intensity > 0.6 {
			t.Errorf("Intensity = %v, want within [0.4, 0.6]", s.Intensity)
		}
		if s.Target < -1 || s.Target > 1 {
			t.Errorf("Target = %v out of range", s.Target)
		}
	})

	t.Run("quiet stretch asks for a big swing", func(t *testing.T) {
		tr := NewTracker()
		tr.Score("裏切りと絶望が彼を襲った。", 5)

		s := tr.SuggestNextReversal([]float64{0.1, 0.2, 0.1}, rng)
		if s.Direction != "positive" {
			t.Errorf("Direction = %q, want positive", s.Direction)
		}
		if s.Intensity < 0.8 || s.Intensity > 1.0 {
			t.Errorf("Intensity = %v, want within [0.8, 1.0]", s.Intensity)
		}
	})

	t.Run("confidence defaults with short history", func(t *testing.T) {
		tr := NewTracker()
		s := tr.SuggestNextReversal([]float64{0.7}, rng)
		if math.Abs(s.Confidence-0.5) > 1e-9 {
			t.Errorf("Confidence = %v, want 0.5", s.Confidence)
		}
	})
}

func TestSuggestType(t *testing.T) {
	tests := []struct {
		current, target float64
		want            string
	}{
		{0.7, -0.7, "classic_peripeteia"},
		{-0.7, 0.7, "false_defeat"},
		{0.0, 0.9, "dramatic_reversal"},
		{0.1, 0.4, "gradual_shift"},
	}
	for _, tt := range tests {
		if got := suggestType(tt.current, tt.target); got != tt.want {
			t.Errorf("suggestType(%v, %v) = %q, want %q", tt.current, tt.target, got, tt.want)
		}
	}
}
