package rollgenerator

import "testing"

func TestDrawHoleShort(t *testing.T) {
	l := DefaultLayout()
	canvas := newCanvas(l, 400)
	x, top, bottom := 500, 100, 160

	if n := l.drawHole(canvas, x, top, bottom); n != 0 {
		t.Fatalf("short hole drew %d chain circles, want 0", n)
	}

	gray := uint8(l.RollGray)
	cx := x + (l.HoleWidthPx+1)/2
	for y := top + 2; y <= bottom-2; y++ {
		if v := canvas.GrayAt(cx, y).Y; v <= gray {
			t.Fatalf("row %d of a short hole = %d, want cut", y, v)
		}
	}
	for y := top; y <= bottom; y++ {
		if v := canvas.GrayAt(x, y).Y; v != gray {
			t.Fatalf("left edge row %d = %d, want %d", y, v, gray)
		}
	}
	for _, y := range []int{top - 1, bottom + 1} {
		if v := canvas.GrayAt(cx, y).Y; v != gray {
			t.Errorf("row %d outside the hole = %d, want %d", y, v, gray)
		}
	}
}

func TestDrawHoleChain(t *testing.T) {
	l := DefaultLayout()
	canvas := newCanvas(l, 800)
	x, top, bottom := 500, 100, 600

	n := l.drawHole(canvas, x, top, bottom)
	spacing := l.HoleWidthPx / 3
	if want := (bottom - l.ChainThresholdPx - top + spacing + l.HoleWidthPx - 1) / (spacing + l.HoleWidthPx); n != want {
		t.Fatalf("drew %d chain circles, want %d", n, want)
	}

	const cut = 200
	cx := x + (l.HoleWidthPx+1)/2
	gap, longest := 0, 0
	for y := top; y <= bottom; y++ {
		if canvas.GrayAt(cx, y).Y < cut {
			gap++
			longest = max(longest, gap)
			continue
		}
		gap = 0
	}
	if longest > spacing {
		t.Fatalf("longest uncut run %d exceeds chain spacing %d", longest, spacing)
	}
	if v := canvas.GrayAt(cx, bottom-1).Y; v < cut {
		t.Errorf("tail end = %d, want cut", v)
	}
	if v := canvas.GrayAt(cx, top+1).Y; v < cut {
		t.Errorf("first circle = %d, want cut", v)
	}
}
