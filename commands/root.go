// Package commands implements the pianoroll command line.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// app carries state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool

	cfg    Config
	logger *slog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pianoroll",
		Short: "Render MIDI files as player piano rolls",
		Long: `Render MIDI performance files as images of perforated player piano rolls.

Hole position follows pitch, hole length follows note duration at the
render tempo. Sustain and soft pedal become holes on the pedal slots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setupLogger(cmd)
			cfg, err := LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "configuration file (YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.renderCommand(),
		a.batchCommand(),
		a.serveCommand(),
		a.ledgerCommand(),
		a.configCommand(),
	)
	return root
}

func (a *app) setupLogger(cmd *cobra.Command) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if a.verbose {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
	slog.SetDefault(a.logger)
}

// Execute runs the command line until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
