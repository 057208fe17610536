package ascii

import (
	"math"
	"testing"
)

func expectedRows(w, h, cols int, scale float64) int {
	tileW := float64(w) / float64(cols)
	tileH := tileW / scale
	rows := int(float64(h) / tileH)
	if rows < 1 {
		rows = 1
	}
	return rows
}

func TestDownsampleDimensions(t *testing.T) {
	tests := []struct {
		w, h  int
		cols  int
		scale float64
	}{
		{640, 360, 120, 0.43},
		{1920, 1080, 120, 0.43},
		{64, 36, 40, 0.43},
		{64, 36, 64, 0.43},
		{100, 100, 1, 0.43},
		{320, 240, 80, 1.0},
		{30, 200, 50, 0.43}, // cols wider than frame
		{640, 2, 120, 0.43}, // rows would floor to 0
	}

	for _, tt := range tests {
		pix := make([]byte, tt.w*tt.h)
		g := Downsample(pix, tt.w, tt.h, tt.cols, tt.scale)

		if g.Cols != tt.cols {
			t.Errorf("%dx%d cols=%d: got %d columns", tt.w, tt.h, tt.cols, g.Cols)
		}
		want := expectedRows(tt.w, tt.h, tt.cols, tt.scale)
		if g.Rows != want {
			t.Errorf("%dx%d cols=%d: expected %d rows, got %d", tt.w, tt.h, tt.cols, want, g.Rows)
		}
		if g.Rows < 1 {
			t.Errorf("%dx%d cols=%d: row count must never be zero", tt.w, tt.h, tt.cols)
		}
		if len(g.Cells) != g.Rows*g.Cols {
			t.Errorf("cell slice length %d does not match %dx%d", len(g.Cells), g.Rows, g.Cols)
		}
	}
}

func TestDownsampleUniformFrame(t *testing.T) {
	w, h := 64, 36
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = 137
	}

	g := Downsample(pix, w, h, 40, DefaultScale)
	for i, v := range g.Cells {
		if v != 137 {
			t.Fatalf("cell %d: uniform frame must average to itself, got %d", i, v)
		}
	}
}

func TestDownsampleAveragesRegions(t *testing.T) {
	// Left half black, right half white, one output row.
	w, h := 40, 4
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			pix[y*w+x] = 255
		}
	}

	g := Downsample(pix, w, h, 2, 1.0) // tall tiles force a single row
	if g.Rows != 1 || g.Cols != 2 {
		t.Fatalf("expected 1x2 grid, got %dx%d", g.Rows, g.Cols)
	}
	if g.At(0, 0) != 0 {
		t.Errorf("left cell should average to 0, got %d", g.At(0, 0))
	}
	if g.At(0, 1) != 255 {
		t.Errorf("right cell should average to 255, got %d", g.At(0, 1))
	}
}

func TestDownsampleDeterministic(t *testing.T) {
	w, h := 64, 36
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = byte(i * 7)
	}

	a := Downsample(pix, w, h, 40, DefaultScale)
	b := Downsample(pix, w, h, 40, DefaultScale)
	for i := range a.Cells {
		if a.Cells[i] != b.Cells[i] {
			t.Fatalf("cell %d differs between identical runs: %d vs %d", i, a.Cells[i], b.Cells[i])
		}
	}
}

func TestGlyphEndpoints(t *testing.T) {
	if got := Glyph(0, DefaultCharset); got != DefaultCharset[0] {
		t.Errorf("Glyph(0) = %q, want darkest glyph %q", got, DefaultCharset[0])
	}
	last := DefaultCharset[len(DefaultCharset)-1]
	if got := Glyph(255, DefaultCharset); got != last {
		t.Errorf("Glyph(255) = %q, want lightest glyph %q", got, last)
	}
}

func TestGlyphMonotonic(t *testing.T) {
	rampIndex := func(b byte) int {
		for i := 0; i < len(DefaultCharset); i++ {
			if DefaultCharset[i] == b {
				return i
			}
		}
		t.Fatalf("glyph %q not in ramp", b)
		return -1
	}

	prev := rampIndex(Glyph(0, DefaultCharset))
	for v := 1; v <= 255; v++ {
		idx := rampIndex(Glyph(byte(v), DefaultCharset))
		if idx < prev {
			t.Fatalf("mapping not monotonic: v=%d index %d < previous %d", v, idx, prev)
		}
		prev = idx
	}
}

func TestGlyphTotalOverShortRamps(t *testing.T) {
	for _, ramp := range []string{"01", " .:#@", DefaultCharset} {
		for v := 0; v <= 255; v++ {
			g := Glyph(byte(v), ramp)
			found := false
			for i := 0; i < len(ramp); i++ {
				if ramp[i] == g {
					found = true
				}
			}
			if !found {
				t.Fatalf("ramp %q: value %d mapped outside ramp", ramp, v)
			}
		}
	}
}

func TestLinesShape(t *testing.T) {
	w, h := 64, 36
	pix := make([]byte, w*h)
	g := Downsample(pix, w, h, 40, DefaultScale)

	lines := g.Lines(DefaultCharset)
	if len(lines) != g.Rows {
		t.Fatalf("expected %d lines, got %d", g.Rows, len(lines))
	}
	for i, line := range lines {
		if len(line) != g.Cols {
			t.Errorf("line %d: length %d, want %d", i, len(line), g.Cols)
		}
	}
	t.Logf("64x36 @ cols=40 -> %dx%d grid", g.Rows, g.Cols)
}

func TestRowCountFormula(t *testing.T) {
	// rows = max(1, floor(h / (w/cols/scale))) for a handful of shapes.
	cases := []struct{ w, h, cols int }{
		{64, 36, 40}, {640, 480, 120}, {1280, 720, 200},
	}
	for _, c := range cases {
		g := Downsample(make([]byte, c.w*c.h), c.w, c.h, c.cols, DefaultScale)
		want := int(math.Floor(float64(c.h) / (float64(c.w) / float64(c.cols) / DefaultScale)))
		if want < 1 {
			want = 1
		}
		if g.Rows != want {
			t.Errorf("%dx%d cols=%d: rows=%d want %d", c.w, c.h, c.cols, g.Rows, want)
		}
	}
}
