package rollgenerator

import "pianoroll/midiparser"

// controlRemapper turns pedal control changes into note events on synthetic
// slots, so pedals go through the same tracker and renderer as notes.
type controlRemapper struct {
	slots map[uint8]Slot
}

func newControlRemapper(pedals map[int]Slot) controlRemapper {
	m := make(map[uint8]Slot, len(pedals))
	for cc, slot := range pedals {
		m[uint8(cc)] = slot
	}
	return controlRemapper{slots: m}
}

// Remap returns the synthetic note event for a mapped control change.
// Any other event is returned unchanged with ok reporting whether the
// event is relevant to the tracker at all.
func (r controlRemapper) Remap(ev midiparser.Event) (out midiparser.Event, slot Slot, ok bool) {
	switch ev.Kind {
	case midiparser.KindNoteOn, midiparser.KindNoteOff:
		return ev, Slot(ev.Number), true
	case midiparser.KindControlChange:
		s, mapped := r.slots[ev.Number]
		if !mapped {
			return ev, 0, false
		}
		out = ev
		out.Kind = midiparser.KindNoteOff
		if ev.Value > 0 {
			out.Kind = midiparser.KindNoteOn
		}
		return out, s, true
	}
	return ev, 0, false
}
