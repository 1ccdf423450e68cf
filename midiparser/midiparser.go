// Package midiparser decodes Standard MIDI Files into the flat event model
// used by the roll generator: tempo, note-on, note-off and control-change
// events with absolute ticks.
package midiparser

import (
	"errors"
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrMalformed is returned when the container cannot be decoded.
var ErrMalformed = errors.New("midiparser: malformed input")

// ParseFile reads a whole SMF from r.
func ParseFile(r io.Reader) (ParsedMidi, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return ParsedMidi{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return ParsedMidi{}, fmt.Errorf("%w: unsupported time format %v", ErrMalformed, s.TimeFormat)
	}
	if ticks == 0 {
		return ParsedMidi{}, fmt.Errorf("%w: zero ticks per quarter note", ErrMalformed)
	}

	parsed := ParsedMidi{
		Tracks: make([]Track, 0, len(s.Tracks)),
		Meta: HeaderMeta{
			QuarterValue: int(ticks),
			TracksNumber: len(s.Tracks),
		},
	}
	for _, t := range s.Tracks {
		track := readTrack(t)
		if track.Time > parsed.Meta.TotalTicks {
			parsed.Meta.TotalTicks = track.Time
		}
		parsed.Tracks = append(parsed.Tracks, track)
	}
	return parsed, nil
}

func readTrack(t smf.Track) Track {
	var track Track
	for _, ev := range t {
		track.Time += int64(ev.Delta)
		msg := ev.Message

		var ch, key, vel uint8
		var bpm float64
		switch {
		case msg.GetMetaTempo(&bpm):
			track.Events = append(track.Events, Event{
				Kind:         KindTempo,
				Tick:         track.Time,
				Microseconds: tempoMicroseconds(msg),
			})
		case msg.GetNoteOn(&ch, &key, &vel):
			track.Events = append(track.Events, Event{Kind: KindNoteOn, Tick: track.Time, Channel: ch, Number: key, Value: vel})
		case msg.GetNoteOff(&ch, &key, &vel):
			track.Events = append(track.Events, Event{Kind: KindNoteOff, Tick: track.Time, Channel: ch, Number: key, Value: vel})
		case msg.GetControlChange(&ch, &key, &vel):
			track.Events = append(track.Events, Event{Kind: KindControlChange, Tick: track.Time, Channel: ch, Number: key, Value: vel})
		}
	}
	return track
}

// tempoMicroseconds decodes the 3-byte big-endian payload that closes a
// set-tempo meta message.
func tempoMicroseconds(msg smf.Message) uint32 {
	raw := []byte(msg)
	if len(raw) < 3 {
		return 0
	}
	data := raw[len(raw)-3:]
	return uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
}
