package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"treeval/config"
)

// app carries what every subcommand needs once the root command has run.
type app struct {
	configPath string
	logLevel   string
	remote     string
	addr       string
	cfg        config.Config
}

func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "treeval",
		Short: "Evaluate decision trees in software or on an accelerator",
		Long: `treeval computes the expected value and best action of a decision tree and
offloads the same tree to an accelerator through its 64-bit command protocol.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringVar(&a.configPath, "config", "treeval.yaml", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level, overrides the configuration")

	root.AddCommand(
		a.evalCommand(),
		a.encodeCommand(),
		a.offloadCommand(),
		a.serveCommand(),
		a.benchCommand(),
		a.generateCommand(),
	)
	return root
}

// Execute runs the root command and exits on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})

	a.cfg = cfg
	return nil
}
