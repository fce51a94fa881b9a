package main

import (
	"math/rand/v2"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"fabula/pkg/engine"
	"fabula/pkg/report"
)

var (
	conceptPath string
	outputDir   string
	seed        uint64
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Generate a novel and save its artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, done := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer done()

		concept, err := engine.LoadConcept(conceptPath)
		if err != nil {
			return err
		}
		log.Info("starting generation", "theme", concept.Theme, "output", outputDir)

		rng := rand.New(rand.NewPCG(seed, seed))
		if seed == 0 {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}

		result, err := engine.New(newInferencer(), rng).Run(ctx, concept)
		if err != nil {
			return err
		}
		return report.Save(result, outputDir)
	},
}

func init() {
	writeCmd.Flags().StringVarP(&conceptPath, "concept", "c", "", "concept YAML file (built-in concept when empty)")
	writeCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "directory for run artifacts")
	writeCmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible structure decisions (0 = random)")
	rootCmd.AddCommand(writeCmd)
}
