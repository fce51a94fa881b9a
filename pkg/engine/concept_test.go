package engine

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConcept(t *testing.T) {
	c := DefaultConcept()

	if c.Theme != "権力の頂点からの転落と贖罪への道" {
		t.Errorf("Theme = %q", c.Theme)
	}
	if c.Protagonist.Name != "アルテミス・ヴェルダンディ" || c.Protagonist.Role != "堕ちた皇帝" {
		t.Errorf("Protagonist = %+v", c.Protagonist)
	}
	if len(c.CoreReversals) != 4 {
		t.Errorf("CoreReversals has %d entries, want 4", len(c.CoreReversals))
	}
	if len(c.NonlinearElements) != 4 {
		t.Errorf("NonlinearElements has %d entries, want 4", len(c.NonlinearElements))
	}
	if c.SemanticJourney.Distance != "maximum" {
		t.Errorf("SemanticJourney.Distance = %q", c.SemanticJourney.Distance)
	}

	targets := []struct {
		name string
		got  float64
		want float64
	}{
		{"reversal_frequency", c.TargetMetrics.ReversalFrequency, 2.8},
		{"reversal_intensity", c.TargetMetrics.ReversalIntensity, 0.85},
		{"semantic_distance", c.TargetMetrics.SemanticDistance, 0.9},
		{"emotional_variance", c.TargetMetrics.EmotionalVariance, 0.75},
	}
	for _, tt := range targets {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadConcept(t *testing.T) {
	empty, err := LoadConcept("")
	if err != nil {
		t.Fatalf("LoadConcept(\"\"): %v", err)
	}
	if empty.Theme != DefaultConcept().Theme {
		t.Error("empty path should fall back to the default concept")
	}

	path := filepath.Join(t.TempDir(), "concept.yaml")
	doc := "theme: 失われた航路\ncore_reversals:\n  - 嵐が導きに変わる\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConcept(path)
	if err != nil {
		t.Fatalf("LoadConcept: %v", err)
	}
	if got.Theme != "失われた航路" || len(got.CoreReversals) != 1 {
		t.Errorf("LoadConcept = %+v", got)
	}
}
