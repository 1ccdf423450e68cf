package midiprocessor

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var midiExtensions = []string{".mid", ".midi"}

func isMidiFile(name string) bool {
	return slices.Contains(midiExtensions, strings.ToLower(filepath.Ext(name)))
}

// FindMidiFiles lists the MIDI files directly inside dir, sorted by name.
func FindMidiFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && isMidiFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// ProcessDir converts every MIDI file in dir.
func (p *Processor) ProcessDir(ctx context.Context, dir string) ([]Result, Summary, error) {
	files, err := FindMidiFiles(dir)
	if err != nil {
		return nil, Summary{}, err
	}
	results, summary := p.ProcessFiles(ctx, files)
	return results, summary, nil
}

// ProcessFiles converts files on up to the configured number of workers.
// A failing file never stops the others. Results keep the input order.
func (p *Processor) ProcessFiles(ctx context.Context, files []string) ([]Result, Summary) {
	runID := uuid.NewString()
	logger := p.logger.With("run", runID)
	logger.Info("batch started", "files", len(files), "workers", p.workers)

	results := make([]Result, len(files))
	var finished atomic.Int64
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, path := range files {
		g.Go(func() error {
			results[i] = p.ProcessFile(ctx, path, runID)
			n := finished.Add(1)
			logger.Debug("progress",
				"finished", n,
				"total", len(files),
				"avg_per_file", (time.Since(start) / time.Duration(n)).Round(time.Millisecond),
			)
			return nil
		})
	}
	g.Wait()

	summary := Summarize(runID, results, time.Since(start))
	logger.Info("batch finished",
		"rendered", summary.Rendered,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed.Round(time.Millisecond),
	)
	return results, summary
}
