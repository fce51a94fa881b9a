package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"fabula/pkg/chart"
	"fabula/pkg/metrics"
	"fabula/pkg/semantic"
	"fabula/pkg/utils"
	"fabula/pkg/valence"
)

var chartPath string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <manuscript.json>",
	Short: "Score an existing manuscript against the narrative metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manuscript, err := utils.Load[map[string]string](args[0])
		if err != nil {
			return err
		}
		if len(manuscript) == 0 {
			return fmt.Errorf("manuscript %s has no chapters", args[0])
		}

		keys := utils.SortedChapterKeys(manuscript)

		tracker := valence.NewTracker()
		for _, key := range keys {
			v := tracker.Score(manuscript[key], utils.ChapterNumber(key))
			log.Debug("scored chapter", "chapter", key, "valence", fmt.Sprintf("%.2f", v))
		}

		distance := semantic.ManuscriptDistance(manuscript)
		m := metrics.Compute(tracker.History(), distance, len(keys))
		fmt.Println(utils.PrettyJSON(m))

		rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		s := tracker.SuggestNextReversal(valence.Swings(tracker.History()), rng)
		log.Info("next reversal suggestion",
			"direction", s.Direction,
			"type", s.ReversalType,
			"target", fmt.Sprintf("%.2f", s.Target),
			"confidence", fmt.Sprintf("%.2f", s.Confidence))

		if chartPath != "" {
			if err := chart.EmotionalJourney(m.ValenceHistory, metrics.SignificantSwing, chartPath); err != nil {
				return err
			}
			log.Info("chart saved", "path", chartPath)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&chartPath, "chart", "", "also render the emotional journey chart to this path")
	rootCmd.AddCommand(analyzeCmd)
}
