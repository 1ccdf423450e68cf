package rollgenerator

import "testing"

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Layout)
		ok     bool
	}{
		{"defaults", func(*Layout) {}, true},
		{"ampico", func(l *Layout) { l.TrackerBar = TrackerBarAmpicoB }, true},
		{"zero dpi", func(l *Layout) { l.DPI = 0 }, false},
		{"negative tempo", func(l *Layout) { l.RenderTempo = -1 }, false},
		{"wide hole", func(l *Layout) { l.HoleWidthPx = 5000 }, false},
		{"gray out of range", func(l *Layout) { l.RollGray = 256 }, false},
		{"flat calibration", func(l *Layout) { l.Calibration.HighPitch = l.Calibration.LowPitch }, false},
		{"bad controller", func(l *Layout) { l.PedalMap[200] = 10 }, false},
		{"bad pedal slot", func(l *Layout) { l.PedalMap[66] = 300 }, false},
		{"unknown tracker bar", func(l *Layout) { l.TrackerBar = "duo-art" }, false},
		{"negative pad", func(l *Layout) { l.EndPadInches = -1 }, false},
		{"no pixel budget", func(l *Layout) { l.MaxCanvasPixels = 0 }, false},
		{"budget below one row", func(l *Layout) { l.MaxCanvasPixels = int64(l.CanvasWidth() - 1) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.modify(&l)
			if err := l.Validate(); (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestHoleOffsetsOverride(t *testing.T) {
	l := DefaultLayout()
	l.TrackerBar = TrackerBarAmpicoA
	l.SlotOffsets = map[Slot]HoleOffset{18: {Start: 0.1}, 30: {End: 0.2}}

	got := l.holeOffsets()
	if got[18] != (HoleOffset{Start: 0.1}) {
		t.Errorf("override for 18 = %+v", got[18])
	}
	if got[30] != (HoleOffset{End: 0.2}) {
		t.Errorf("override for 30 = %+v", got[30])
	}
	if _, ok := got[16]; !ok {
		t.Error("preset entry 16 lost")
	}
	if _, ok := trackerBars[TrackerBarAmpicoA][30]; ok {
		t.Error("override leaked into the preset")
	}
}
