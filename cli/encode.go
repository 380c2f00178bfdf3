package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"treeval/loader"
	"treeval/offload"
)

func (a *app) encodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode FILE",
		Short: "Print the command words that rebuild a tree on the accelerator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			options, _ := offload.FromConfig(a.cfg.Offload)
			commands, err := offload.NewSerializer(options...).Commands(t)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range commands {
				w, err := c.Encode()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  %s\n", w, c)
			}
			return nil
		},
	}
}
