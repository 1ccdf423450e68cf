// Package rollgenerator turns MIDI events into a player-piano roll image.
//
// A conversion makes one pass over the tracks in file order. The first tempo
// event fixes the time scale and allocates the canvas; from then on every
// closed note or pedal span is cut into the canvas as a perforation. Pedal
// control changes are remapped onto synthetic slots and follow the same path
// as notes.
package rollgenerator

import (
	"fmt"
	"log/slog"

	"pianoroll/midiparser"
)

type Option func(*Generator)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// Generator converts parsed MIDI files with a fixed layout. It holds no
// per-file state and can be shared between goroutines.
type Generator struct {
	layout  Layout
	offsets map[Slot]HoleOffset
	remap   controlRemapper
	logger  *slog.Logger
}

func New(layout Layout, opts ...Option) (*Generator, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("rollgenerator: %w", err)
	}
	g := &Generator{
		layout:  layout,
		offsets: layout.holeOffsets(),
		remap:   newControlRemapper(layout.PedalMap),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) Layout() Layout {
	return g.layout
}

// Convert renders one file. It returns ErrMissingTempo if no tempo event
// occurs and ErrRollTooLong if the piece does not fit the pixel limit; in
// both cases no canvas is ever allocated.
func (g *Generator) Convert(midi midiparser.ParsedMidi, title string) (*Roll, error) {
	if midi.Meta.QuarterValue <= 0 {
		return nil, fmt.Errorf("%w: ticks per quarter note %d", midiparser.ErrMalformed, midi.Meta.QuarterValue)
	}

	resolver := newTempoResolver(g.layout.RenderTempo, midi.Meta.QuarterValue)
	roll := &Roll{Title: title}
	// spans closed before the canvas exists, drawn in order once it does
	var early []Interval

	for trackIndex, track := range midi.Tracks {
		var tracker noteTracker
		for _, ev := range track.Events {
			if ev.Kind == midiparser.KindTempo {
				resolved, err := resolver.Observe(ev)
				if err != nil {
					return nil, err
				}
				if !resolved {
					continue
				}
				roll.Tempo, _ = resolver.Context()
				height, err := g.layout.canvasHeight(midi.Meta.TotalTicks, roll.Tempo)
				if err != nil {
					return nil, err
				}
				roll.Image = newCanvas(g.layout, height)
				g.logger.Info("tempo resolved",
					"title", title,
					"tick", ev.Tick,
					"bpm", fmt.Sprintf("%.2f", roll.Tempo.BPM),
					"render_tempo", roll.Tempo.RenderTempo,
					"height", height,
				)
				for _, iv := range early {
					g.cut(roll, iv)
				}
				early = nil
				continue
			}

			note, slot, ok := g.remap.Remap(ev)
			if !ok {
				continue
			}
			if note.Kind == midiparser.KindNoteOn && note.Value > 0 {
				tracker.Open(slot, ev.Tick)
				continue
			}
			iv, closed := tracker.Close(slot, ev.Tick)
			if !closed {
				g.logger.Debug("unmatched note off", "track", trackIndex, "slot", slot, "tick", ev.Tick)
				continue
			}
			if roll.Image == nil {
				early = append(early, iv)
				continue
			}
			g.cut(roll, iv)
		}
		if n := tracker.Pending(); n > 0 {
			g.logger.Debug("spans left open at end of track", "track", trackIndex, "count", n)
		}
	}

	if roll.Image == nil {
		return nil, ErrMissingTempo
	}
	if g.layout.LeaderLabel {
		label := fmt.Sprintf("%s   tempo %d", title, roll.Tempo.RenderTempo)
		if err := g.layout.drawLeaderLabel(roll.Image, label); err != nil {
			return nil, fmt.Errorf("rollgenerator: leader label: %w", err)
		}
	}
	return roll, nil
}

// cut renders one interval and records the hole.
func (g *Generator) cut(roll *Roll, iv Interval) {
	top, bottom := g.layout.holeSpan(iv, roll.Tempo, roll.Image.Bounds().Dy(), g.offsets)
	x := g.layout.HoleX(iv.Slot)
	circles := g.layout.drawHole(roll.Image, x, top, bottom)
	roll.Holes = append(roll.Holes, Hole{
		Slot:    iv.Slot,
		X:       x,
		Top:     top,
		Bottom:  bottom,
		Circles: circles,
	})
}
