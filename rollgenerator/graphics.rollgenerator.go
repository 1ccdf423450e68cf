package rollgenerator

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
)

// newCanvas allocates the roll image: margins in hole tone, body in roll gray.
func newCanvas(l Layout, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, l.CanvasWidth(), height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: holeTone}), image.Point{}, draw.Src)

	body := image.Rect(l.MarginPx, 0, l.MarginPx+l.RollWidthPx(), height)
	draw.Draw(img, body, image.NewUniform(color.Gray{Y: uint8(l.RollGray)}), image.Point{}, draw.Src)
	return img
}

// drawHole cuts one perforation spanning rows top..bottom at column x: a
// chain of round holes followed by a single rounded slot for the last
// ChainThresholdPx pixels. It returns the number of round holes.
//
// Shapes are filled on a scratch context the size of the hole and composited
// onto the canvas, so nothing outside the hole's box is touched.
func (l Layout) drawHole(canvas *image.Gray, x, top, bottom int) int {
	hw := l.HoleWidthPx
	w := hw + 1
	h := bottom - top + 1
	if h <= 0 {
		return 0
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)

	r := float64(w) / 2
	spacing := hw / 3
	circles := 0
	y := top
	for ; y < bottom-l.ChainThresholdPx; y += spacing + hw {
		dc.DrawCircle(r, float64(y-top)+r, r)
		dc.Fill()
		circles++
	}
	if y <= bottom {
		dc.DrawRoundedRectangle(0, float64(y-top), float64(w), float64(bottom-y+1), float64(hw/2))
		dc.Fill()
	}

	draw.Draw(canvas, image.Rect(x, top, x+w, top+h), dc.Image(), image.Point{}, draw.Over)

	// The leftmost column of every hole stays roll gray.
	gray := color.Gray{Y: uint8(l.RollGray)}
	for row := top; row <= bottom; row++ {
		canvas.SetGray(x, row, gray)
	}
	return circles
}

var leaderFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// drawLeaderLabel prints text centred in the start pad at the bottom of the
// roll.
func (l Layout) drawLeaderLabel(canvas *image.Gray, text string) error {
	pad := l.startPadPx()
	if pad <= 0 {
		return nil
	}
	font, err := leaderFont()
	if err != nil {
		return err
	}

	w := l.RollWidthPx()
	face := truetype.NewFace(font, &truetype.Options{Size: float64(pad) / 5})
	dc := gg.NewContext(w, pad)
	dc.SetFontFace(face)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(text, float64(w)/2, float64(pad)/2, 0.5, 0.5)

	height := canvas.Bounds().Dy()
	rect := image.Rect(l.MarginPx, height-pad, l.MarginPx+w, height)
	draw.Draw(canvas, rect, dc.Image(), image.Point{}, draw.Over)
	return nil
}
