// Package miditest builds small Standard MIDI Files in memory for tests.
package miditest

import (
	"bytes"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Timed is a message placed at an absolute tick.
type Timed struct {
	Tick uint32
	Msg  []byte
}

func Tempo(tick uint32, bpm float64) Timed {
	return Timed{Tick: tick, Msg: smf.MetaTempo(bpm)}
}

// TempoMicros places a raw set-tempo meta event with the given payload.
func TempoMicros(tick uint32, usec uint32) Timed {
	return Timed{Tick: tick, Msg: []byte{0xFF, 0x51, 0x03, byte(usec >> 16), byte(usec >> 8), byte(usec)}}
}

func On(tick uint32, key, velocity uint8) Timed {
	return Timed{Tick: tick, Msg: midi.NoteOn(0, key, velocity)}
}

func Off(tick uint32, key uint8) Timed {
	return Timed{Tick: tick, Msg: midi.NoteOff(0, key)}
}

func CC(tick uint32, controller, value uint8) Timed {
	return Timed{Tick: tick, Msg: midi.ControlChange(0, controller, value)}
}

// Builder accumulates tracks; events of a track must be given in tick order.
type Builder struct {
	ppq    uint16
	tracks []smf.Track
}

func New(ppq uint16) *Builder {
	return &Builder{ppq: ppq}
}

func (b *Builder) Track(events ...Timed) *Builder {
	var track smf.Track
	var last uint32
	for _, ev := range events {
		track.Add(ev.Tick-last, ev.Msg)
		last = ev.Tick
	}
	track.Close(0)
	b.tracks = append(b.tracks, track)
	return b
}

// Bytes encodes the file.
func (b *Builder) Bytes() ([]byte, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(b.ppq)
	for _, t := range b.tracks {
		if err := sm.Add(t); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
