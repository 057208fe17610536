package ascii

// Charset is the glyph ramp ordered dark -> light. Quantizing a brightness
// value picks the glyph whose position in the ramp matches the value's
// position in [0,255].
const (
	DefaultCharset = `.:-=+*#%@/\|`
	DefaultScale   = 0.43 // terminal glyphs are taller than wide
)

// Grid holds the brightness samples of one downsampled frame, row-major.
type Grid struct {
	Rows  int
	Cols  int
	Cells []byte
}

// At returns the brightness sample at row r, column c.
func (g *Grid) At(r, c int) byte {
	return g.Cells[r*g.Cols+c]
}

// Downsample reduces a grayscale frame (h rows, w columns, one byte per
// pixel) to a cols-wide grid using area averaging: every output sample is
// the mean of its source region. Nearest-neighbor sampling flickers between
// frames because it discards most source pixels; averaging does not.
//
// The row count follows from the column width and the aspect correction
// scale: tileW = w/cols, tileH = tileW/scale, rows = floor(h/tileH),
// floored to 1 so a frame always yields at least one row.
func Downsample(pix []byte, w, h, cols int, scale float64) *Grid {
	if cols < 1 {
		cols = 1
	}
	tileW := float64(w) / float64(cols)
	tileH := tileW / scale
	rows := int(float64(h) / tileH)
	if rows < 1 {
		rows = 1
	}

	g := &Grid{
		Rows:  rows,
		Cols:  cols,
		Cells: make([]byte, rows*cols),
	}

	for r := 0; r < rows; r++ {
		y0 := r * h / rows
		y1 := (r + 1) * h / rows
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for c := 0; c < cols; c++ {
			x0 := c * w / cols
			x1 := (c + 1) * w / cols
			if x1 <= x0 {
				x1 = x0 + 1
			}

			sum := 0
			for y := y0; y < y1; y++ {
				row := pix[y*w : (y+1)*w]
				for x := x0; x < x1; x++ {
					sum += int(row[x])
				}
			}
			area := (y1 - y0) * (x1 - x0)
			g.Cells[r*cols+c] = byte((sum + area/2) / area)
		}
	}

	return g
}

// Glyph maps one brightness value to a ramp character:
// index = floor(v/255 * (K-1)), clamped to the ramp bounds.
func Glyph(v byte, ramp string) byte {
	k := len(ramp)
	idx := int(v) * (k - 1) / 255
	if idx < 0 {
		idx = 0
	}
	if idx > k-1 {
		idx = k - 1
	}
	return ramp[idx]
}

// Lines maps every grid cell through the ramp and joins each row into a
// text line. Every line has exactly g.Cols characters.
func (g *Grid) Lines(ramp string) []string {
	lines := make([]string, g.Rows)
	buf := make([]byte, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			buf[c] = Glyph(g.At(r, c), ramp)
		}
		lines[r] = string(buf)
	}
	return lines
}
