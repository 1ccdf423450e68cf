package rollgenerator

import (
	"fmt"
	"math"

	"pianoroll/midiparser"
)

// tempoResolver fixes the time scale from the first tempo event of a file.
// Once resolved it never changes.
type tempoResolver struct {
	override RenderTempo
	ppq      int
	resolved bool
	ctx      TempoContext
}

func newTempoResolver(override RenderTempo, ppq int) *tempoResolver {
	return &tempoResolver{override: override, ppq: ppq}
}

// Observe feeds a tempo event. It reports true only on the transition to the
// resolved state; later tempo events are ignored.
func (r *tempoResolver) Observe(ev midiparser.Event) (bool, error) {
	if r.resolved || ev.Kind != midiparser.KindTempo {
		return false, nil
	}
	if ev.Microseconds == 0 {
		return false, fmt.Errorf("%w: zero tempo at tick %d", midiparser.ErrMalformed, ev.Tick)
	}

	bpm := 60_000_000.0 / float64(ev.Microseconds)
	tempo := int(r.override)
	if r.override == TempoAuto {
		tempo = int(math.Round(bpm))
	}
	r.ctx = TempoContext{
		PPQ:          r.ppq,
		Microseconds: ev.Microseconds,
		BPM:          bpm,
		RenderTempo:  tempo,
	}
	r.resolved = true
	return true, nil
}

// Context returns the resolved tempo and whether resolution has happened.
func (r *tempoResolver) Context() (TempoContext, bool) {
	return r.ctx, r.resolved
}
