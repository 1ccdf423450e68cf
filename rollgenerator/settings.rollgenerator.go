package rollgenerator

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// RenderTempo is the roll speed used for scaling. Zero means "auto": use the
// rounded BPM of the first tempo event.
type RenderTempo int

const TempoAuto RenderTempo = 0

// ParseRenderTempo accepts "auto" or a positive integer.
func ParseRenderTempo(s string) (RenderTempo, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "auto") || s == "" {
		return TempoAuto, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("render tempo must be \"auto\" or a positive integer, got %q", s)
	}
	return RenderTempo(n), nil
}

func (t RenderTempo) String() string {
	if t == TempoAuto {
		return "auto"
	}
	return strconv.Itoa(int(t))
}

// Set and Type make RenderTempo usable as a command-line flag value.
func (t *RenderTempo) Set(s string) error {
	v, err := ParseRenderTempo(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t *RenderTempo) Type() string {
	return "tempo"
}

func (t RenderTempo) MarshalYAML() (any, error) {
	if t == TempoAuto {
		return "auto", nil
	}
	return int(t), nil
}

func (t *RenderTempo) UnmarshalYAML(b []byte) error {
	return t.Set(strings.Trim(strings.TrimSpace(string(b)), `"'`))
}

// Layout holds the physical roll and tracker bar parameters.
type Layout struct {
	DPI              int                 `yaml:"dpi"`
	RenderTempo      RenderTempo         `yaml:"render_tempo"`
	RollWidthInches  float64             `yaml:"roll_width_inches"`
	MarginPx         int                 `yaml:"margin_px"`
	HoleWidthPx      int                 `yaml:"hole_width_px"`
	ShortenPx        int                 `yaml:"shorten_px"`
	ChainThresholdPx int                 `yaml:"chain_threshold_px"`
	Calibration      Calibration         `yaml:"pitch_calibration"`
	RollGray         int                 `yaml:"roll_gray_level"`
	PedalMap         map[int]Slot        `yaml:"pedal_controller_map"`
	TrackerBar       string              `yaml:"tracker_bar"`
	SlotOffsets      map[Slot]HoleOffset `yaml:"slot_offsets,omitempty"`
	StartPadInches   float64             `yaml:"start_pad_inches"`
	EndPadInches     float64             `yaml:"end_pad_inches"`
	AccelRatePerFoot float64             `yaml:"accel_rate_per_foot"`
	LeaderLabel      bool                `yaml:"leader_label"`
	// MaxCanvasPixels caps width*height of one roll image.
	MaxCanvasPixels  int64               `yaml:"max_canvas_pixels"`
}

// DefaultLayout returns an 88-note roll at 300 dpi.
func DefaultLayout() Layout {
	return Layout{
		DPI:              defaultDPI,
		RenderTempo:      defaultRenderTempo,
		RollWidthInches:  defaultRollWidth,
		MarginPx:         defaultMarginPx,
		HoleWidthPx:      defaultHoleWidthPx,
		ShortenPx:        defaultShortenPx,
		ChainThresholdPx: defaultChainThreshold,
		Calibration:      defaultCalibration,
		RollGray:         defaultRollGray,
		PedalMap:         maps.Clone(defaultPedalMap),
		TrackerBar:       TrackerBar88Note,
		MaxCanvasPixels:  defaultMaxCanvasPixels,
	}
}

func (l Layout) Validate() error {
	switch {
	case l.DPI <= 0:
		return fmt.Errorf("dpi must be positive, got %d", l.DPI)
	case l.RenderTempo < 0:
		return fmt.Errorf("render tempo must not be negative, got %d", l.RenderTempo)
	case l.RollWidthInches <= 0:
		return fmt.Errorf("roll width must be positive, got %g", l.RollWidthInches)
	case l.MarginPx < 0:
		return fmt.Errorf("margin must not be negative, got %d", l.MarginPx)
	case l.HoleWidthPx <= 0:
		return fmt.Errorf("hole width must be positive, got %d", l.HoleWidthPx)
	case l.HoleWidthPx >= l.RollWidthPx():
		return fmt.Errorf("hole width %d does not fit a roll of %d px", l.HoleWidthPx, l.RollWidthPx())
	case l.ShortenPx < 0 || l.ChainThresholdPx < 0:
		return fmt.Errorf("shorten and chain threshold must not be negative")
	case l.Calibration.LowPitch == l.Calibration.HighPitch:
		return fmt.Errorf("calibration pitches must differ, both are %d", l.Calibration.LowPitch)
	case l.RollGray < 0 || l.RollGray > 255:
		return fmt.Errorf("roll gray level must be in [0,255], got %d", l.RollGray)
	case l.StartPadInches < 0 || l.EndPadInches < 0:
		return fmt.Errorf("roll pads must not be negative")
	case l.AccelRatePerFoot < 0:
		return fmt.Errorf("acceleration rate must not be negative, got %g", l.AccelRatePerFoot)
	case l.MaxCanvasPixels < int64(l.CanvasWidth()):
		return fmt.Errorf("max canvas pixels %d is less than one row of %d px", l.MaxCanvasPixels, l.CanvasWidth())
	}
	for cc, slot := range l.PedalMap {
		if cc < 0 || cc > 127 {
			return fmt.Errorf("pedal controller %d out of range", cc)
		}
		if slot < 0 || slot > MaxSlot {
			return fmt.Errorf("pedal controller %d maps to slot %d, out of range", cc, slot)
		}
	}
	if _, ok := trackerBars[l.TrackerBar]; !ok && l.TrackerBar != "" {
		return fmt.Errorf("unknown tracker bar %q (known: %s)", l.TrackerBar, strings.Join(TrackerBars(), ", "))
	}
	return nil
}

// RollWidthPx is the width of the roll body, without margins.
func (l Layout) RollWidthPx() int {
	return int(float64(l.DPI) * l.RollWidthInches)
}

// CanvasWidth is the full image width.
func (l Layout) CanvasWidth() int {
	return l.RollWidthPx() + 2*l.MarginPx
}

func (l Layout) inchesToPx(in float64) float64 {
	return in * float64(l.DPI)
}

func (l Layout) startPadPx() int {
	return int(l.inchesToPx(l.StartPadInches))
}

func (l Layout) endPadPx() int {
	return int(l.inchesToPx(l.EndPadInches))
}

// holeOffsets merges the tracker bar preset with explicit slot overrides.
func (l Layout) holeOffsets() map[Slot]HoleOffset {
	out := maps.Clone(trackerBars[l.TrackerBar])
	if out == nil {
		out = map[Slot]HoleOffset{}
	}
	maps.Copy(out, l.SlotOffsets)
	return out
}
