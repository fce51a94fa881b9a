// Package report writes a finished run to disk: manuscript, world bible,
// metrics, reversal analysis, and a human-readable summary.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"fabula/pkg/chart"
	"fabula/pkg/engine"
	"fabula/pkg/metrics"
	"fabula/pkg/utils"
	"fabula/pkg/valence"
)

// Save writes every artifact of a run into dir. File names carry the
// run's timestamp so successive runs never collide.
func Save(result *engine.Result, dir string) error {
	stamp := result.GeneratedAt.Format("20060102_150405")

	manuscriptPath := filepath.Join(dir, fmt.Sprintf("novel_%s.txt", stamp))
	if err := utils.SaveText(manuscriptPath, renderManuscript(result)); err != nil {
		return fmt.Errorf("saving manuscript: %w", err)
	}
	log.Info("manuscript saved", "path", manuscriptPath)

	if err := utils.Save(filepath.Join(dir, fmt.Sprintf("world_bible_%s.json", stamp)), result.WorldBible); err != nil {
		return fmt.Errorf("saving world bible: %w", err)
	}
	if err := utils.Save(filepath.Join(dir, fmt.Sprintf("metrics_%s.json", stamp)), result.Metrics); err != nil {
		return fmt.Errorf("saving metrics: %w", err)
	}
	if err := utils.Save(filepath.Join(dir, fmt.Sprintf("reversal_analysis_%s.json", stamp)), result.ReversalMap); err != nil {
		return fmt.Errorf("saving reversal analysis: %w", err)
	}
	if err := utils.Save(filepath.Join(dir, fmt.Sprintf("structure_%s.json", stamp)), result.Blueprint); err != nil {
		return fmt.Errorf("saving structure: %w", err)
	}

	reportPath := filepath.Join(dir, fmt.Sprintf("report_%s.md", stamp))
	if err := utils.SaveText(reportPath, renderReport(result)); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}

	chartPath := filepath.Join(dir, fmt.Sprintf("emotional_journey_%s.webp", stamp))
	if err := chart.EmotionalJourney(result.Metrics.ValenceHistory, metrics.SignificantSwing, chartPath); err != nil {
		log.Warn("failed rendering emotional journey chart", "error", err)
	} else {
		log.Info("chart saved", "path", chartPath)
	}

	log.Info("run artifacts saved", "dir", dir, "run_id", result.RunID)
	return nil
}

func renderManuscript(result *engine.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", result.Title)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "run %s, generated %s\n\n", result.RunID, result.GeneratedAt.Format(time.RFC3339))

	for _, key := range utils.SortedChapterKeys(result.Manuscript) {
		b.WriteString(result.Manuscript[key])
		b.WriteString("\n\n" + strings.Repeat("-", 60) + "\n\n")
	}
	return b.String()
}

func renderReport(result *engine.Result) string {
	m := result.Metrics
	t := metrics.DefaultTargets()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", result.Title)
	fmt.Fprintf(&b, "Run `%s`, generated %s.\n\n", result.RunID, result.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Narrative metrics\n\n")
	b.WriteString("| metric | value | target |\n")
	b.WriteString("|--------|-------|--------|\n")
	fmt.Fprintf(&b, "| reversal frequency | %.2f/chapter | %.1f/chapter |\n", m.ReversalFrequency, t.ReversalFrequency)
	fmt.Fprintf(&b, "| average reversal intensity | %.2f | %.1f |\n", m.ReversalIntensity, t.ReversalIntensity)
	fmt.Fprintf(&b, "| emotional variance | %.2f | %.1f |\n", m.EmotionalVariance, t.EmotionalVariance)
	fmt.Fprintf(&b, "| semantic distance | %.2f | %.1f |\n", m.SemanticDistance, t.SemanticDistance)
	fmt.Fprintf(&b, "\n**Success score: %.2f / 1.0**\n\n", m.SuccessScore)

	switch {
	case m.SuccessScore >= 0.8:
		b.WriteString("Excellent: the optimization targets are met across the board.\n\n")
	case m.SuccessScore >= 0.6:
		b.WriteString("Good: the run meets the baseline. Areas below target:\n\n")
		if m.ReversalFrequency < t.ReversalFrequency {
			b.WriteString("- reversal frequency\n")
		}
		if m.ReversalIntensity < t.ReversalIntensity {
			b.WriteString("- reversal intensity\n")
		}
		if m.EmotionalVariance < t.EmotionalVariance {
			b.WriteString("- emotional variance\n")
		}
		if m.SemanticDistance < t.SemanticDistance {
			b.WriteString("- semantic distance\n")
		}
		b.WriteString("\n")
	default:
		b.WriteString("Below baseline: the structure needs rework before another pass.\n\n")
	}

	if s := valence.Summarize(m.ValenceHistory); len(m.ValenceHistory) > 0 {
		b.WriteString("## Emotional dynamics\n\n")
		fmt.Fprintf(&b, "Mean valence %.2f (std %.2f), spanning %.2f to %.2f.\n",
			s.Mean, s.StdDev, s.Min, s.Max)
		fmt.Fprintf(&b, "Chapters skew %.0f%% positive, %.0f%% negative.\n",
			s.PositiveRatio*100, s.NegativeRatio*100)
		fmt.Fprintf(&b, "%d emotional events, %d of high intensity.\n\n",
			s.EventCount, s.HighIntensityCount)
	}

	b.WriteString("## Temporal structure\n\n")
	for _, technique := range result.Blueprint.Structure.Techniques {
		fmt.Fprintf(&b, "- %s\n", technique)
	}
	fmt.Fprintf(&b, "\nComplexity %.2f (semantic %.2f), estimated engagement %.2f.\n",
		result.Blueprint.Structure.ComplexityScore, result.Blueprint.Complexity,
		result.Blueprint.Structure.Engagement)

	if len(result.Blueprint.ReadingGuide) > 0 {
		b.WriteString("\n## Reading guide\n\n")
		for _, p := range result.Blueprint.ReadingGuide {
			fmt.Fprintf(&b, "- Chapter %d: %s (%s read)\n", p.Chapter, p.PrimaryFocus, p.Duration)
		}
	}

	return b.String()
}
