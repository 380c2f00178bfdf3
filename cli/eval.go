package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"treeval/loader"
)

func (a *app) evalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a tree document in software",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			t, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			log.Debug().Msgf("loaded %d nodes in %s", t.Len(), time.Since(start))

			start = time.Now()
			result := t.Solve()
			log.Debug().Msgf("evaluated in %s", time.Since(start))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nodes: %d\n", t.Len())
			fmt.Fprintf(out, "value: %g\n", result.Value)
			fmt.Fprintf(out, "action: %s\n", actionString(result.Action))
			return nil
		},
	}
}
