package midiparser_test

import (
	"bytes"
	"errors"
	"testing"

	"pianoroll/midiparser"
	"pianoroll/midiparser/miditest"
)

func TestParseFile(t *testing.T) {
	data, err := miditest.New(480).
		Track(miditest.TempoMicros(0, 500000)).
		Track(
			miditest.On(0, 60, 100),
			miditest.CC(240, 64, 127),
			miditest.Off(480, 60),
			miditest.CC(960, 64, 0),
		).
		Bytes()
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := midiparser.ParseFile(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if parsed.Meta.QuarterValue != 480 {
		t.Errorf("QuarterValue = %d, want 480", parsed.Meta.QuarterValue)
	}
	if parsed.Meta.TracksNumber != 2 {
		t.Errorf("TracksNumber = %d, want 2", parsed.Meta.TracksNumber)
	}
	if parsed.Meta.TotalTicks != 960 {
		t.Errorf("TotalTicks = %d, want 960", parsed.Meta.TotalTicks)
	}

	tempo := parsed.Tracks[0].Events
	if len(tempo) != 1 || tempo[0].Kind != midiparser.KindTempo || tempo[0].Microseconds != 500000 {
		t.Fatalf("tempo track = %+v", tempo)
	}

	want := []struct {
		kind   midiparser.Kind
		tick   int64
		number uint8
	}{
		{midiparser.KindNoteOn, 0, 60},
		{midiparser.KindControlChange, 240, 64},
		{midiparser.KindNoteOff, 480, 60},
		{midiparser.KindControlChange, 960, 64},
	}
	got := parsed.Tracks[1].Events
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Tick != w.tick || got[i].Number != w.number {
			t.Errorf("event %d = %+v, want %v@%d #%d", i, got[i], w.kind, w.tick, w.number)
		}
	}
}

func TestParseFileMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not a midi file")},
		{"truncated header", []byte("MThd\x00\x00\x00\x06\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := midiparser.ParseFile(bytes.NewReader(tt.data))
			if !errors.Is(err, midiparser.ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
		})
	}
}
