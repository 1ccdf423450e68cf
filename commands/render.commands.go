package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pianoroll/midiprocessor"
	"pianoroll/rollgenerator"
	"pianoroll/storage"
)

// runFlags are the overrides shared by render and batch.
type runFlags struct {
	output  string
	tempo   rollgenerator.RenderTempo
	workers int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory or s3://bucket/prefix")
	cmd.Flags().Var(&f.tempo, "tempo", `render tempo, "auto" or an integer`)
	cmd.Flags().IntVar(&f.workers, "workers", 0, "files converted in parallel")
}

// apply copies the flags that were given onto cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg Config) (Config, error) {
	if cmd.Flags().Changed("output") {
		cfg.OutputDirectory = f.output
	}
	if cmd.Flags().Changed("tempo") {
		cfg.RenderTempo = f.tempo
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = f.workers
	}
	return cfg, cfg.Validate()
}

// newProcessor wires generator, store and optionally the ledger. The
// returned close function releases the ledger.
func (a *app) newProcessor(cfg Config, incremental bool) (*midiprocessor.Processor, func() error, error) {
	gen, err := rollgenerator.New(cfg.Layout, rollgenerator.WithLogger(a.logger))
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(cfg.OutputDirectory)
	if err != nil {
		return nil, nil, err
	}

	opts := []midiprocessor.Option{
		midiprocessor.WithLogger(a.logger),
		midiprocessor.WithWorkers(cfg.Workers),
	}
	closer := func() error { return nil }
	if incremental {
		l, err := a.openLedger(cfg)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, midiprocessor.WithLedger(l))
		closer = l.Close
	}

	p, err := midiprocessor.New(gen, store, opts...)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return p, closer, nil
}

func (a *app) renderCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render MIDI files",
		Example: `  pianoroll render "Maple Leaf Rag.mid"
  pianoroll render --tempo auto -o rolls/ a.mid b.mid`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd, a.cfg)
			if err != nil {
				return err
			}
			p, closeLedger, err := a.newProcessor(cfg, false)
			if err != nil {
				return err
			}
			defer closeLedger()

			results, summary := p.ProcessFiles(cmd.Context(), args)
			return report(cmd.OutOrStdout(), results, summary)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) batchCommand() *cobra.Command {
	var (
		flags       runFlags
		incremental bool
	)
	cmd := &cobra.Command{
		Use:   "batch DIR",
		Short: "Render every .mid/.midi file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd, a.cfg)
			if err != nil {
				return err
			}
			p, closeLedger, err := a.newProcessor(cfg, incremental)
			if err != nil {
				return err
			}
			defer closeLedger()

			results, summary, err := p.ProcessDir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				a.logger.Warn("no midi files found", "dir", args[0])
			}
			return report(cmd.OutOrStdout(), results, summary)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&incremental, "incremental", false, "skip files already rendered with the same layout")
	return cmd
}

// report prints the summary and fails when any file failed.
func report(w io.Writer, results []midiprocessor.Result, summary midiprocessor.Summary) error {
	fmt.Fprint(w, renderSummary(results, summary))
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, len(results))
	}
	return nil
}
