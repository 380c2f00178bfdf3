package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"treeval/experiments"
	"treeval/loader"
	"treeval/metrics"
	"treeval/tree"
)

func (a *app) benchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Time software evaluation against offloading on random trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			records, err := experiments.Run(cmd.Context(), a.cfg, metrics.NewCollector(reg))
			if err != nil {
				return err
			}

			writer, err := experiments.NewWriter(a.cfg.Bench.OutDir)
			if err != nil {
				return err
			}
			if err := writer.WriteSetup(a.cfg); err != nil {
				return err
			}
			if err := writer.WriteRecords(records); err != nil {
				return err
			}
			log.Info().Msgf("stored %d runs in %s", len(records), writer.Dir())

			mismatches, words := 0, 0
			for _, r := range records {
				words += r.Words
				if !r.Match {
					mismatches++
				}
			}
			if err := prometheus.WriteToTextfile(filepath.Join(writer.Dir(), "metrics.prom"), reg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trees: %d\n", len(records))
			fmt.Fprintf(out, "mismatches: %d\n", mismatches)
			fmt.Fprintf(out, "words sent: %d\n", words)
			fmt.Fprintf(out, "results: %s\n", writer.Dir())
			if mismatches > 0 {
				return fmt.Errorf("%d of %d trees disagree with software", mismatches, len(records))
			}
			return nil
		},
	}
}

func (a *app) generateCommand() *cobra.Command {
	var size int
	var seed uint64
	var output string
	var maxWeight int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random tree document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			t, err := tree.Random(rand.New(rand.NewSource(seed)), size, tree.WithMaxWeight(maxWeight))
			if err != nil {
				return err
			}

			format := loader.FormatJSON
			if output != "" {
				if format, err = loader.FormatOf(output); err != nil {
					return err
				}
			}
			data, err := loader.Marshal(t, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			log.Info().Msgf("writing %d node tree with seed %d to %s", t.Len(), seed, output)
			return os.WriteFile(output, data, 0644)
		},
	}

	cmd.Flags().IntVarP(&size, "size", "n", 16, "Number of nodes")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed, 0 picks one from the clock")
	cmd.Flags().IntVar(&maxWeight, "max-weight", 1, "Largest node weight")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.json, .yaml or .yml), stdout if empty")
	return cmd
}
