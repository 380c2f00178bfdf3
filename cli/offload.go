package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"treeval/loader"
	"treeval/offload"
	"treeval/simulator"
	"treeval/transport"
	"treeval/tree"
)

func (a *app) offloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offload FILE",
		Short: "Run a tree on the accelerator and compare with software",
		Long: `Sends the tree to an accelerator and decodes its result word. Without
--remote the built-in accelerator model is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			link, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer link.Close()

			serializerOptions, sessionOptions := offload.FromConfig(a.cfg.Offload)
			session := offload.NewSession(link, append(sessionOptions, offload.WithSerializer(offload.NewSerializer(serializerOptions...)))...)
			result, err := session.Offload(cmd.Context(), t)
			if err != nil {
				return err
			}

			solved := t.Solve()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "accelerator: action %d reward %d\n", result.Action, result.Reward)
			fmt.Fprintf(out, "software:    action %s value %g\n", actionString(solved.Action), solved.Value)
			return nil
		},
	}

	cmd.Flags().StringVar(&a.remote, "remote", "", "Websocket URL of a remote accelerator, overrides the configuration")
	return cmd
}

// closingTransport is a transport the offload command owns.
type closingTransport interface {
	transport.Transport
	Close() error
}

// connect dials the configured remote accelerator, or starts the built-in
// model on an in-process link.
func (a *app) connect(ctx context.Context) (closingTransport, error) {
	remote := a.cfg.Offload.Remote
	if a.remote != "" {
		remote = a.remote
	}
	if remote != "" {
		log.Info().Msgf("connecting to accelerator at %s", remote)
		return transport.Dial(ctx, remote)
	}

	link := transport.NewLink()
	device := simulator.NewDevice(simulator.WithWeightScale(a.cfg.Offload.WeightScale))
	go func() {
		if err := device.Serve(ctx, link.Device()); err != nil && !transport.IsClosed(err) && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("accelerator model stopped")
		}
	}()
	return link, nil
}

func actionString(action int) string {
	if action == tree.NoAction {
		return "none"
	}
	return fmt.Sprint(action)
}
