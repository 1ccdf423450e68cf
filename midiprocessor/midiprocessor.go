// Package midiprocessor runs conversions end to end: read a MIDI file,
// render the roll, encode it as PNG and hand it to the output store.
package midiprocessor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"time"

	"pianoroll/ledger"
	"pianoroll/midiparser"
	"pianoroll/rollgenerator"
	"pianoroll/storage"
)

type Option func(*Processor)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithLedger enables incremental runs: files already rendered with the
// same layout, whose output still exists, are skipped.
func WithLedger(l *ledger.Ledger) Option {
	return func(p *Processor) {
		p.ledger = l
	}
}

// WithWorkers bounds the number of files converted at once in a batch.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

type Processor struct {
	gen         *rollgenerator.Generator
	store       storage.FileStore
	ledger      *ledger.Ledger
	fingerprint string
	workers     int
	logger      *slog.Logger
}

func New(gen *rollgenerator.Generator, store storage.FileStore, opts ...Option) (*Processor, error) {
	fp, err := ledger.Fingerprint(gen.Layout())
	if err != nil {
		return nil, err
	}
	p := &Processor{
		gen:         gen,
		store:       store,
		fingerprint: fp,
		workers:     1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Render converts MIDI bytes to an encoded PNG. It does not touch the store.
func (p *Processor) Render(data []byte, title string) (*rollgenerator.Roll, []byte, error) {
	return Render(p.gen, data, title)
}

// Render converts MIDI bytes with gen and encodes the roll as PNG.
func Render(gen *rollgenerator.Generator, data []byte, title string) (*rollgenerator.Roll, []byte, error) {
	parsed, err := midiparser.ParseFile(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	roll, err := gen.Convert(parsed, title)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, roll.Image); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return roll, buf.Bytes(), nil
}

// ProcessFile converts one file into the store. Failures are reported in
// the result; the output either exists completely or not at all.
func (p *Processor) ProcessFile(ctx context.Context, path, runID string) Result {
	start := time.Now()
	res := p.processFile(ctx, path, runID, start)
	res.Elapsed = time.Since(start)

	logger := p.logger.With("input", path)
	switch {
	case res.Err != nil:
		logger.Error("conversion failed", "reason", FailureReason(res.Err), "err", res.Err)
	case res.Skipped:
		logger.Info("up to date", "output", res.Location)
	default:
		logger.Info("roll written",
			"output", res.Location,
			"tempo", res.Tempo,
			"height", res.Height,
			"holes", res.Holes,
			"elapsed", res.Elapsed.Round(time.Millisecond),
		)
	}
	return res
}

func (p *Processor) processFile(ctx context.Context, path, runID string, start time.Time) Result {
	res := Result{Input: path}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	digest := ledger.Digest(data)
	title := rollgenerator.Title(path)
	if p.ledger != nil {
		if rec, ok := p.upToDate(ctx, digest, path); ok {
			res.Output = rec.Output
			res.Location = p.store.Location(rec.Output)
			res.Tempo = rec.Tempo
			res.Height = rec.Height
			res.Holes = rec.Holes
			res.Skipped = true
			return res
		}
	}

	roll, encoded, err := p.Render(data, title)
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = rollgenerator.OutputName(path, roll.Tempo.RenderTempo)
	res.Location = p.store.Location(res.Output)
	res.Tempo = roll.Tempo.RenderTempo
	res.Height = roll.Image.Bounds().Dy()
	res.Holes = len(roll.Holes)

	if err := p.write(ctx, res.Output, encoded); err != nil {
		res.Err = err
		return res
	}

	if p.ledger != nil {
		rec := ledger.Record{
			Input:       path,
			Name:        title,
			Output:      res.Output,
			Digest:      digest,
			Fingerprint: p.fingerprint,
			Tempo:       res.Tempo,
			Height:      res.Height,
			Holes:       res.Holes,
			RunID:       runID,
			RenderedAt:  time.Now().UTC(),
			Elapsed:     time.Since(start),
		}
		if err := p.ledger.Put(ctx, rec); err != nil {
			p.logger.Warn("ledger update failed", "input", path, "err", err)
		}
	}
	return res
}

// upToDate reports whether path was rendered before with the same content,
// name and layout, and its output is still in the store.
func (p *Processor) upToDate(ctx context.Context, digest, path string) (ledger.Record, bool) {
	rec, err := p.ledger.Lookup(ctx, digest, p.fingerprint, rollgenerator.Title(path))
	if err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			p.logger.Warn("ledger lookup failed", "digest", digest, "err", err)
		}
		return ledger.Record{}, false
	}
	if rec.Output != rollgenerator.OutputName(path, rec.Tempo) {
		return ledger.Record{}, false
	}
	exists, err := p.store.Exists(ctx, rec.Output)
	if err != nil || !exists {
		return ledger.Record{}, false
	}
	return rec, true
}

// write stores an encoded image, removing the object again if anything
// goes wrong on the way.
func (p *Processor) write(ctx context.Context, name string, encoded []byte) error {
	w, err := p.store.Write(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	_, werr := w.Write(encoded)
	cerr := w.Close()
	if err := errors.Join(werr, cerr); err != nil {
		if derr := p.store.Delete(context.WithoutCancel(ctx), name); derr != nil {
			p.logger.Warn("partial output not removed", "output", name, "err", derr)
		}
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return nil
}

// FailureReason classifies a conversion error for reports.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, rollgenerator.ErrMissingTempo):
		return "missing tempo"
	case errors.Is(err, rollgenerator.ErrRollTooLong):
		return "roll too long"
	case errors.Is(err, midiparser.ErrMalformed):
		return "malformed input"
	case errors.Is(err, ErrEncoding):
		return "encoding failure"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "io error"
}
