package midiparser

// Kind tags the four event types the roll engine consumes.
type Kind uint8

const (
	KindTempo Kind = iota + 1
	KindNoteOn
	KindNoteOff
	KindControlChange
)

func (k Kind) String() string {
	switch k {
	case KindTempo:
		return "tempo"
	case KindNoteOn:
		return "note-on"
	case KindNoteOff:
		return "note-off"
	case KindControlChange:
		return "control-change"
	}
	return "unknown"
}

// Event is a timestamped MIDI event.
//
// Number holds the pitch for note events and the controller number for
// control changes. Value holds the velocity or the controller value.
// Microseconds is only set for tempo events.
type Event struct {
	Kind         Kind   `json:"kind"`
	Tick         int64  `json:"tick"`
	Channel      uint8  `json:"channel"`
	Number       uint8  `json:"number"`
	Value        uint8  `json:"value"`
	Microseconds uint32 `json:"microseconds,omitempty"`
}

// Track is one MTrk chunk. Time is the absolute tick of its last event.
type Track struct {
	Events []Event `json:"events"`
	Time   int64   `json:"time"`
}

type HeaderMeta struct {
	QuarterValue int   `json:"quarterValue"`
	TracksNumber int   `json:"tracksNumber"`
	TotalTicks   int64 `json:"totalTicks"`
}

type ParsedMidi struct {
	Tracks []Track    `json:"tracks"`
	Meta   HeaderMeta `json:"meta"`
}
