// Package engine runs the full pipeline: foundation, plot optimization,
// reversal mapping, non-linear structure, manuscript, and verification.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"

	"fabula/pkg/inference"
	"fabula/pkg/metrics"
	"fabula/pkg/reversal"
	"fabula/pkg/schema"
	"fabula/pkg/semantic"
	"fabula/pkg/temporal"
	"fabula/pkg/utils"
	"fabula/pkg/valence"
)

// Engine drives one novel generation run. Construct a fresh Engine per
// run; the stages share per-run state through the arguments they pass.
type Engine struct {
	llm inference.Inferencer
	rng *rand.Rand
}

func New(llm inference.Inferencer, rng *rand.Rand) *Engine {
	return &Engine{llm: llm, rng: rng}
}

// PlotBeat is one plot event after reversal optimization.
type PlotBeat struct {
	schema.PlotEvent
	OptimizedImpact float64            `json:"optimized_emotional_impact"`
	Reversal        *reversal.Reversal `json:"reversal_info,omitempty"`
}

// OptimizedPlot is the linear plot with its reversal plan applied.
type OptimizedPlot struct {
	Events           []PlotBeat          `json:"events"`
	Reversals        []reversal.Reversal `json:"optimized_reversals"`
	EmotionalProfile []float64           `json:"emotional_profile"`
}

// ReversalContext pairs a planned reversal with the story situation it
// lands in.
type ReversalContext struct {
	Reversal   reversal.Reversal `json:"reversal"`
	Situation  string            `json:"current_situation"`
	Characters []string          `json:"characters"`
	Location   string            `json:"location"`
	Stakes     string            `json:"stakes"`
}

// ReversalMap buckets planned reversals by chapter key.
type ReversalMap map[string][]ReversalContext

// Blueprint is the non-linear structural design for the manuscript.
type Blueprint struct {
	Structure    temporal.Structure     `json:"temporal_structure"`
	Journey      []semantic.Step        `json:"semantic_journey"`
	Chapters     []semantic.Chapter     `json:"chapters"`
	Trajectory   semantic.Trajectory    `json:"semantic_trajectory"`
	Pacing       map[int]semantic.Speed `json:"pacing_profile"`
	Complexity   float64                `json:"semantic_complexity"`
	ReadingGuide []semantic.PathElement `json:"reading_guide"`
}

// WorldBible collects the setting material a run produced.
type WorldBible struct {
	World      schema.World       `json:"world_foundations"`
	Characters []schema.Character `json:"character_profiles"`
}

// Result is everything a run produces.
type Result struct {
	RunID       string            `json:"run_id"`
	Title       string            `json:"title"`
	Manuscript  map[string]string `json:"manuscript"`
	WorldBible  WorldBible        `json:"world_bible"`
	Metrics     metrics.Metrics   `json:"narrative_metrics"`
	ReversalMap ReversalMap       `json:"reversal_analysis"`
	Blueprint   Blueprint         `json:"structure"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Run executes every stage in order and returns the finished result. A
// failed chapter aborts the run; there is no partial manuscript.
func (e *Engine) Run(ctx context.Context, concept Concept) (*Result, error) {
	log.Info("building story foundation", "theme", utils.LimitStr(concept.Theme, 40))
	foundation, err := e.createFoundation(ctx, concept)
	if err != nil {
		return nil, fmt.Errorf("foundation: %w", err)
	}
	log.Info("foundation ready", "world", foundation.World.Name, "characters", len(foundation.Characters), "events", len(foundation.BasicPlot))

	log.Info("optimizing plot structure")
	plot := e.optimizePlot(foundation)

	log.Info("designing reversal map", "reversals", len(plot.Reversals))
	rmap := e.reversalMap(plot, foundation)

	log.Info("designing non-linear structure")
	blueprint := e.nonlinearStructure(foundation)
	log.Info("structure ready", "techniques", blueprint.Structure.Techniques, "timelines", len(blueprint.Structure.Timelines))

	manuscript, err := e.writeManuscript(ctx, foundation, plot, rmap, blueprint)
	if err != nil {
		return nil, err
	}

	log.Info("verifying narrative metrics", "chapters", len(manuscript))
	m, err := e.verifyMetrics(ctx, manuscript)
	if err != nil {
		return nil, fmt.Errorf("verification: %w", err)
	}
	log.Info("verification complete", "success_score", fmt.Sprintf("%.2f", m.SuccessScore))

	return &Result{
		RunID:      ksuid.New().String(),
		Title:      foundation.World.Name,
		Manuscript: manuscript,
		WorldBible: WorldBible{
			World:      foundation.World,
			Characters: foundation.Characters,
		},
		Metrics:     m,
		ReversalMap: rmap,
		Blueprint:   blueprint,
		GeneratedAt: time.Now(),
	}, nil
}

func (e *Engine) createFoundation(ctx context.Context, concept Concept) (schema.NovelFoundation, error) {
	var foundation schema.NovelFoundation

	brief := "Initial concept:\n" + utils.PrettyJSON(concept)
	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(8192 * 2),
		ResponseFormat:      schema.StructuredOutputsResponseFormat(),
	}

	out, err := e.llm.Infer(ctx, params, foundationPrompt, brief)
	if err != nil {
		return foundation, err
	}
	out = extractJSON(out)
	if out == "" {
		return foundation, fmt.Errorf("no JSON object in foundation output")
	}

	if err := json.Unmarshal([]byte(out), &foundation); err != nil || len(foundation.BasicPlot) == 0 {
		log.Warn("failed to parse foundation JSON, attempting to fix", "error", err)
		fixed, fixErr := e.llm.Edit(ctx, params, foundationPrompt+"\n\n"+fixJSONPrompt, brief+"\n\nFix and complete the following malformed JSON:\n\n"+out)
		if fixErr != nil {
			return foundation, fmt.Errorf("fixing foundation JSON: %w", fixErr)
		}
		if err := json.Unmarshal([]byte(extractJSON(fixed)), &foundation); err != nil {
			return foundation, fmt.Errorf("parsing foundation JSON: %w", err)
		}
	}

	if len(foundation.BasicPlot) == 0 {
		return foundation, fmt.Errorf("foundation has no plot events")
	}
	return foundation, nil
}

func (e *Engine) optimizePlot(foundation schema.NovelFoundation) OptimizedPlot {
	sequence := make([]float64, len(foundation.BasicPlot))
	for i, ev := range foundation.BasicPlot {
		sequence[i] = ev.EmotionalImpact
	}

	reversals := reversal.NewOptimizer(e.rng).Optimize(sequence)

	plot := OptimizedPlot{
		Events:           make([]PlotBeat, len(foundation.BasicPlot)),
		Reversals:        reversals,
		EmotionalProfile: make([]float64, len(reversals)),
	}
	for i, ev := range foundation.BasicPlot {
		beat := PlotBeat{PlotEvent: ev}
		if i < len(reversals) {
			beat.OptimizedImpact = reversals[i].TargetState
			beat.Reversal = &reversals[i]
		}
		plot.Events[i] = beat
	}
	for i, r := range reversals {
		plot.EmotionalProfile[i] = r.TargetState
	}
	return plot
}

func (e *Engine) reversalMap(plot OptimizedPlot, foundation schema.NovelFoundation) ReversalMap {
	names := make([]string, len(foundation.Characters))
	for i, c := range foundation.Characters {
		names[i] = c.Name
	}

	rmap := make(ReversalMap)
	for i, r := range plot.Reversals {
		key := fmt.Sprintf("chapter_%d", i/3+1)
		situation := ""
		if i < len(plot.Events) {
			situation = plot.Events[i].Description
		}
		rmap[key] = append(rmap[key], ReversalContext{
			Reversal:   r,
			Situation:  situation,
			Characters: names,
			Location:   "across the imperial heartlands",
			Stakes:     "widening from one life to the fate of the world",
		})
	}
	return rmap
}

func (e *Engine) nonlinearStructure(foundation schema.NovelFoundation) Blueprint {
	names := make([]string, len(foundation.Characters))
	for i, c := range foundation.Characters {
		names[i] = c.Name
	}

	plotEvents := make([]temporal.PlotEvent, len(foundation.BasicPlot))
	for i, ev := range foundation.BasicPlot {
		plotEvents[i] = temporal.PlotEvent{
			Description:     ev.Description,
			Type:            ev.Type,
			EmotionalImpact: ev.EmotionalImpact,
		}
	}
	structure := temporal.NewDesigner(e.rng).Design(temporal.Plot{
		Events:     plotEvents,
		Characters: names,
		Setting:    foundation.World.Name + " " + foundation.World.MagicSystem,
	})

	events := make([]semantic.Event, len(foundation.BasicPlot))
	for i, ev := range foundation.BasicPlot {
		events[i] = semantic.Event{Description: ev.Description, Type: ev.Type, Timestamp: i}
	}
	journey := semantic.NewEngine(e.rng).BuildJourney(events)

	var antagonist []semantic.Event
	for _, t := range structure.Timelines {
		if t.ID != "antagonist" {
			continue
		}
		for _, ev := range t.Events {
			if ev.EventType == "reaction" {
				continue
			}
			antagonist = append(antagonist, semantic.Event{
				Description: ev.Content,
				Type:        ev.EventType,
				Timestamp:   ev.ChronologicalOrder,
			})
		}
	}

	chapters := semantic.Weave(journey, antagonist)

	return Blueprint{
		Structure:    structure,
		Journey:      journey,
		Chapters:     chapters,
		Trajectory:   semantic.ComputeTrajectory(journey),
		Pacing:       semantic.PacingProfile(chapters),
		Complexity:   semantic.ComplexityScore(chapters),
		ReadingGuide: semantic.ReadingPath(chapters),
	}
}

// summaryTail is how much of the written manuscript feeds the next
// chapter's brief.
const summaryTail = 500

func (e *Engine) writeManuscript(ctx context.Context, foundation schema.NovelFoundation, plot OptimizedPlot, rmap ReversalMap, blueprint Blueprint) (map[string]string, error) {
	chapterCount := (len(plot.Events) + 2) / 3
	manuscript := make(map[string]string, chapterCount)
	var written []string

	outline := make([]string, len(plot.Events))
	for i, beat := range plot.Events {
		outline[i] = beat.Description
	}

	for chapter := 1; chapter <= chapterCount; chapter++ {
		key := fmt.Sprintf("chapter_%d", chapter)
		brief := e.chapterBrief(chapter, foundation, outline, rmap[key], blueprint, written)

		if tokens, err := utils.CountTokens(brief); err == nil {
			log.Debug("writing chapter", "chapter", chapter, "brief_tokens", tokens)
		} else {
			log.Debug("writing chapter", "chapter", chapter, "brief_chars", len(brief))
		}

		params := &openai.ChatCompletionNewParams{
			MaxCompletionTokens: openai.Int(4096 * 2),
		}
		out, err := e.llm.Infer(ctx, params, chapterPrompt, brief)
		if err != nil {
			return nil, fmt.Errorf("writing chapter %d: %w", chapter, err)
		}
		out = strings.TrimSpace(stripThink(out))
		if out == "" {
			return nil, fmt.Errorf("writing chapter %d: empty chapter", chapter)
		}
		if ok, verr := e.llm.Verify(ctx, out); verr != nil {
			return nil, fmt.Errorf("verifying chapter %d: %w", chapter, verr)
		} else if !ok {
			return nil, fmt.Errorf("verifying chapter %d: output rejected", chapter)
		}

		manuscript[key] = out
		written = append(written, out)
		log.Info("chapter written", "chapter", chapter, "chars", len(out))
	}

	return manuscript, nil
}

func (e *Engine) chapterBrief(chapter int, foundation schema.NovelFoundation, outline []string, contexts []ReversalContext, blueprint Blueprint, written []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write chapter %d.\n\n", chapter)
	fmt.Fprintf(&b, "### World\n%s\n\n", utils.PrettyJSON(foundation.World))
	fmt.Fprintf(&b, "### Principal characters\n%s\n\n", utils.PrettyJSON(foundation.Characters))
	fmt.Fprintf(&b, "### Full plot outline\n- %s\n\n", strings.Join(outline, "\n- "))

	b.WriteString("### This chapter must deliver\n")
	if len(contexts) == 0 {
		b.WriteString("- advancing the story\n")
	}
	for _, rc := range contexts {
		fmt.Fprintf(&b, "- %s (a %s turning %.2f to %.2f)\n",
			rc.Reversal.NarrativeFunction, rc.Reversal.Type, rc.Reversal.CurrentState, rc.Reversal.TargetState)
	}

	if len(contexts) > 0 {
		first := contexts[0]
		tpl := reversal.TemplateFor(first.Reversal.Type)
		fmt.Fprintf(&b, "\n### Scene shape\n- setup: %s\n- turning point: %s\n- aftermath: %s\n- emotional beats: %s\n",
			tpl.Setup, tpl.TurningPoint, tpl.Aftermath, strings.Join(tpl.EmotionalBeats, ", "))

		elements := reversal.SelectFantasyElements(first.Reversal.Intensity, e.rng)
		b.WriteString("\n### Fantasy elements to draw on\n")
		categories := make([]string, 0, len(elements))
		for category := range elements {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(&b, "- %s: %s\n", category, strings.Join(elements[category], ", "))
		}

		fmt.Fprintf(&b, "\n### Situation\n%s\nLocation: %s\nStakes: %s\n",
			first.Situation, first.Location, first.Stakes)
	}

	b.WriteString("\n### Story so far\n")
	if len(written) == 0 {
		b.WriteString("This is the opening chapter.\n")
	} else {
		all := strings.Join(written, "...")
		runes := []rune(all)
		if len(runes) > summaryTail {
			runes = runes[len(runes)-summaryTail:]
		}
		fmt.Fprintf(&b, "The tail of the chapters written so far: %s\n", string(runes))
	}

	brief := b.String()
	if speed, ok := blueprint.Pacing[chapter]; ok {
		brief = semantic.SpeedDirectives(brief, speed)
	}
	return brief
}

func (e *Engine) verifyMetrics(ctx context.Context, manuscript map[string]string) (metrics.Metrics, error) {
	keys := utils.SortedChapterKeys(manuscript)

	tracker := valence.NewTracker()
	valences := make([]float64, len(keys))
	for i, key := range keys {
		valences[i] = tracker.Score(manuscript[key], utils.ChapterNumber(key))
	}

	positions := make([]semantic.Position, len(keys))
	g, _ := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			positions[i] = semantic.PositionOf(manuscript[key], "description")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return metrics.Metrics{}, err
	}

	var total float64
	for i := 1; i < len(positions); i++ {
		total += positions[i-1].Distance(positions[i])
	}
	distance := math.Min(1.0, total/math.Max(1.0, float64(len(positions))*2.0))

	return metrics.Compute(valences, distance, len(manuscript)), nil
}

func stripThink(out string) string {
	if strings.Contains(out, "<think>") {
		if idx := strings.LastIndex(out, "</think>"); idx != -1 {
			return out[idx+len("</think>"):]
		}
	}
	return out
}

func extractJSON(out string) string {
	out = utils.CleanJSON(stripThink(out))
	if out == "" {
		return ""
	}
	if out[0] != '{' {
		if j := strings.Index(out, "{"); j != -1 {
			out = out[j:]
		} else {
			return ""
		}
	}
	if out[len(out)-1] != '}' {
		if j := strings.LastIndex(out, "}"); j != -1 {
			out = out[:j+1]
		} else {
			return ""
		}
	}
	return out
}
