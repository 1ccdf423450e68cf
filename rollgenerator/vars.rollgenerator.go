package rollgenerator

const (
	defaultDPI            = 300
	defaultRenderTempo    = 95
	defaultRollWidth      = 11.25
	defaultMarginPx       = 50
	defaultHoleWidthPx    = 18
	defaultShortenPx      = 10
	defaultChainThreshold = 85
	defaultRollGray       = 120

	// about 1.5 GB of 8-bit canvas, over 100 ft of roll at 300 dpi
	defaultMaxCanvasPixels = 1_500_000_000

	// rollSpeedFactor calibrates playback speed to the physical roll feed.
	rollSpeedFactor = 1.2

	holeTone = 255
)

var defaultCalibration = Calibration{LowPitch: 15, LowPx: 36, HighPitch: 114, HighPx: 3340}

// Sustain and soft pedal land on the two outermost pedal holes of an
// 88-note tracker bar.
var defaultPedalMap = map[int]Slot{
	64: 18,
	67: 113,
}

const (
	TrackerBar88Note  = "88-note"
	TrackerBarAmpicoA = "ampico-a"
	TrackerBarAmpicoB = "ampico-b"
)

// Ampico expression holes are longer than a note hole, so the recorded
// span is pulled in from both ends. Sizes in inches.
const (
	ampicoNormalHole = 0.0625
	ampicoType1Hole  = 0.175 // fast crescendo, sustain pedal
	ampicoType2Hole  = 0.34  // slow crescendo, soft pedal
	ampicoIntensity  = 1.0 / 64
)

func shrink(holeLen float64) HoleOffset {
	d := (holeLen - ampicoNormalHole) / 2
	return HoleOffset{Start: d, End: -d}
}

var trackerBars = map[string]map[Slot]HoleOffset{
	TrackerBar88Note: {},
	TrackerBarAmpicoA: {
		16:  shrink(ampicoType2Hole), // bass slow crescendo
		18:  shrink(ampicoType1Hole), // sustain pedal
		20:  shrink(ampicoType1Hole), // bass fast crescendo
		109: shrink(ampicoType1Hole), // treble fast crescendo
		111: shrink(ampicoType2Hole), // soft pedal
		113: shrink(ampicoType2Hole), // treble slow crescendo
	},
	TrackerBarAmpicoB: {
		15:  shrink(ampicoType1Hole), // amplifier
		17:  {Start: ampicoIntensity, End: ampicoIntensity},
		18:  shrink(ampicoType1Hole),
		19:  {Start: ampicoIntensity, End: ampicoIntensity},
		21:  {Start: ampicoIntensity, End: ampicoIntensity},
		22:  {Start: ampicoIntensity, End: ampicoIntensity},
		107: {Start: ampicoIntensity, End: ampicoIntensity},
		108: {Start: ampicoIntensity, End: ampicoIntensity},
		109: shrink(ampicoType1Hole),
		110: {Start: ampicoIntensity, End: ampicoIntensity},
		111: shrink(ampicoType2Hole),
		112: {Start: ampicoIntensity, End: ampicoIntensity},
		113: shrink(ampicoType2Hole),
	},
}

// TrackerBars lists the known tracker bar names.
func TrackerBars() []string {
	return []string{TrackerBar88Note, TrackerBarAmpicoA, TrackerBarAmpicoB}
}
