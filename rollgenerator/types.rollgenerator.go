package rollgenerator

import (
	"errors"
	"image"
)

// ErrMissingTempo is returned when a file ends without any tempo event.
var ErrMissingTempo = errors.New("rollgenerator: no tempo event")

// ErrRollTooLong is returned when the canvas for a file would exceed the
// layout's pixel limit. Nothing is allocated in that case.
var ErrRollTooLong = errors.New("rollgenerator: roll too long")

// Slot is a tracking lane: a MIDI pitch or a synthetic pedal slot.
type Slot int

// MaxSlot is the highest slot the tracker accepts.
const MaxSlot Slot = 255

// Interval is a closed sustain span on one slot, in ticks.
type Interval struct {
	Slot    Slot
	OnTick  int64
	OffTick int64
}

// TempoContext fixes the time scale for a whole render.
type TempoContext struct {
	PPQ          int
	Microseconds uint32
	BPM          float64
	RenderTempo  int
}

// Hole is a rendered perforation. Top and Bottom are inclusive canvas rows;
// a hole starting at the very beginning of the roll ends on the last row.
type Hole struct {
	Slot    Slot
	X       int
	Top     int
	Bottom  int
	Circles int
}

// Length is the vertical extent of the hole in pixels.
func (h Hole) Length() int {
	return h.Bottom - h.Top
}

// Roll is the result of converting one file.
type Roll struct {
	Title string
	Image *image.Gray
	Tempo TempoContext
	Holes []Hole
}

// HoleOffset moves the start and end of every hole on a slot along the roll,
// in inches. Positive values move towards the end of the piece.
type HoleOffset struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
}

// Calibration anchors the pitch to x mapping at two reference slots.
// Pixel offsets are measured from the left edge of the roll body.
type Calibration struct {
	LowPitch  int     `yaml:"low_pitch" json:"low_pitch"`
	LowPx     float64 `yaml:"low_px" json:"low_px"`
	HighPitch int     `yaml:"high_pitch" json:"high_pitch"`
	HighPx    float64 `yaml:"high_px" json:"high_px"`
}
