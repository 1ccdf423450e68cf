package rollgenerator

import (
	"fmt"
	"math"
)

// HoleX returns the left edge of the hole column for slot. The mapping is
// linear through the two calibration points and clamped to the roll body.
func (l Layout) HoleX(slot Slot) int {
	c := l.Calibration
	span := float64(c.HighPitch - c.LowPitch)
	center := c.LowPx + float64(int(slot)-c.LowPitch)*(c.HighPx-c.LowPx)/span
	x := int(float64(l.MarginPx) + center - float64(l.HoleWidthPx)/2)

	minX := l.MarginPx
	maxX := l.MarginPx + l.RollWidthPx() - l.HoleWidthPx
	return max(minX, min(x, maxX))
}

// TickToPixels converts a tick span to roll pixels. tempo is the render
// tempo, bpm the detected tempo, ppq the file resolution.
func (l Layout) TickToPixels(tickLen int64, tempo int, bpm float64, ppq int) int {
	return int(float64(tickLen) * float64(l.DPI) * float64(tempo) * rollSpeedFactor / (bpm * float64(ppq)))
}

// accelerate stretches a distance from the roll start to compensate for the
// take-up spool growing as the roll winds on.
func (l Layout) accelerate(px float64) float64 {
	if l.AccelRatePerFoot == 0 {
		return px
	}
	feet := px / float64(l.DPI) / 12
	return px * math.Pow(1+l.AccelRatePerFoot, feet)
}

// holeSpan computes the rendered rows of an interval on a canvas of the given
// height. The returned top and bottom are inclusive and never below the
// last row.
func (l Layout) holeSpan(iv Interval, tc TempoContext, height int, offsets map[Slot]HoleOffset) (top, bottom int) {
	length := l.TickToPixels(iv.OffTick-iv.OnTick, tc.RenderTempo, tc.BPM, tc.PPQ) - l.ShortenPx
	length = max(length, l.HoleWidthPx)

	start := float64(l.TickToPixels(iv.OnTick, tc.RenderTempo, tc.BPM, tc.PPQ) + l.startPadPx())
	end := start + float64(length)

	if off, ok := offsets[iv.Slot]; ok {
		start += l.inchesToPx(off.Start)
		end += l.inchesToPx(off.End)
		end = max(end, start+float64(l.HoleWidthPx))
	}

	start = l.accelerate(start)
	end = l.accelerate(end)

	return height - int(end), min(height-int(start), height-1)
}

// canvasHeight is the image height for a piece of totalTicks. It fails with
// ErrRollTooLong when the canvas would exceed MaxCanvasPixels, before any
// float to int conversion can overflow.
func (l Layout) canvasHeight(totalTicks int64, tc TempoContext) (int, error) {
	px := float64(totalTicks) * float64(l.DPI) * float64(tc.RenderTempo) * rollSpeedFactor / (tc.BPM * float64(tc.PPQ))
	h := l.accelerate(math.Trunc(px) + float64(l.startPadPx()+l.endPadPx()))

	pixels := h * float64(l.CanvasWidth())
	if math.IsNaN(h) || math.IsInf(h, 0) || pixels > float64(l.MaxCanvasPixels) {
		return 0, fmt.Errorf("%w: %.0f rows of %d px exceed the limit of %d pixels",
			ErrRollTooLong, h, l.CanvasWidth(), l.MaxCanvasPixels)
	}
	return max(int(h), 1), nil
}
