package engine

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"fabula/pkg/utils"
)

// Concept is the initial creative brief a run starts from.
type Concept struct {
	Theme             string          `yaml:"theme" json:"theme"`
	Protagonist       Protagonist     `yaml:"protagonist" json:"protagonist"`
	CoreReversals     []string        `yaml:"core_reversals" json:"core_reversals"`
	SemanticJourney   SemanticJourney `yaml:"semantic_journey" json:"semantic_journey"`
	NonlinearElements []string        `yaml:"nonlinear_elements" json:"nonlinear_elements"`
	TargetMetrics     ConceptTargets  `yaml:"target_metrics" json:"target_metrics"`
}

type Protagonist struct {
	Name string `yaml:"name" json:"name"`
	Role string `yaml:"role" json:"role"`
	Arc  string `yaml:"arc" json:"arc"`
}

type SemanticJourney struct {
	Start    string `yaml:"start" json:"start"`
	Middle   string `yaml:"middle" json:"middle"`
	End      string `yaml:"end" json:"end"`
	Distance string `yaml:"distance" json:"distance"`
}

// ConceptTargets are the ambition levels for the run, not the scoring
// thresholds; scoring always uses the fixed targets in pkg/metrics.
type ConceptTargets struct {
	ReversalFrequency float64 `yaml:"reversal_frequency" json:"reversal_frequency"`
	ReversalIntensity float64 `yaml:"reversal_intensity" json:"reversal_intensity"`
	SemanticDistance  float64 `yaml:"semantic_distance" json:"semantic_distance"`
	EmotionalVariance float64 `yaml:"emotional_variance" json:"emotional_variance"`
}

//go:embed concept.yaml
var defaultConceptYAML []byte

// DefaultConcept returns the built-in imperial-fall concept.
func DefaultConcept() Concept {
	var c Concept
	// The embedded document is validated by tests; a decode failure here
	// is a build defect, not a runtime condition.
	_ = yaml.Unmarshal(defaultConceptYAML, &c)
	return c
}

// LoadConcept reads a concept from a YAML file, falling back to the
// default when path is empty.
func LoadConcept(path string) (Concept, error) {
	if path == "" {
		return DefaultConcept(), nil
	}
	return utils.LoadYAML[Concept](path)
}
