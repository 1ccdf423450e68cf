package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"pianoroll/ledger"
)

func (a *app) openLedger(cfg Config) (*ledger.Ledger, error) {
	dir, err := cfg.ledgerDir()
	if err != nil {
		return nil, err
	}
	return ledger.Open(ledger.Options{Dir: dir, Logger: a.logger})
}

func (a *app) ledgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect or prune the incremental render ledger",
	}
	cmd.AddCommand(a.ledgerListCommand(), a.ledgerForgetCommand())
	return cmd
}

func (a *app) ledgerListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLedger(a.cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			w := cmd.OutOrStdout()
			n := 0
			for rec, err := range l.Records(cmd.Context()) {
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s %s  %s\n", okStyle.Render(rec.Digest[:min(12, len(rec.Digest))]), rec.Output,
					dimStyle.Render(fmt.Sprintf("(%s, layout %s, tempo %d, %d holes, %s, run %s at %s)",
						rec.Name, rec.Fingerprint, rec.Tempo, rec.Holes, rec.Elapsed.Round(time.Millisecond),
						rec.RunID, rec.RenderedAt.Format(time.RFC3339))))
				n++
			}
			fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d records", n)))
			return nil
		},
	}
}

func (a *app) ledgerForgetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forget FILE...",
		Short: "Drop the records of MIDI files so the next incremental batch renders them again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLedger(a.cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			w := cmd.OutOrStdout()
			total := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				n, err := l.Forget(cmd.Context(), ledger.Digest(data))
				if err != nil {
					return fmt.Errorf("forget %s: %w", path, err)
				}
				a.logger.Debug("ledger records dropped", "input", path, "records", n)
				fmt.Fprintf(w, "%s %s\n", skipStyle.Render(fmt.Sprintf("%3d", n)), filepath.Base(path))
				total += n
			}
			fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d records forgotten", total)))
			return nil
		},
	}
}
