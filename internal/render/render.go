package render

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/ascii2video/internal/system"
)

// Glyph cell fallback when the face reports a non-positive measurement.
const (
	minCellWidth  = 8
	minCellHeight = 16
)

// Renderer rasterizes glyph grids to fixed-size RGBA canvases. For a fixed
// configuration and grid shape every call returns an image of identical,
// even pixel dimensions — video encoders reject streams with varying frame
// sizes, and many reject odd ones.
type Renderer struct {
	face    font.Face
	padding int
	fg      *image.Uniform
	bg      *image.Uniform
	bgColor color.Color
	cellW   int
	cellH   int
	ascent  int
}

// NewRenderer measures the glyph cell from a representative wide glyph.
// 'M' is usually among the widest glyphs of a monospace face.
func NewRenderer(face font.Face, padding int, fg, bg color.Color) *Renderer {
	adv, ok := face.GlyphAdvance('M')
	metrics := face.Metrics()

	cellW := adv.Ceil()
	if !ok || cellW <= 0 {
		cellW = minCellWidth
	}
	cellH := (metrics.Ascent + metrics.Descent).Ceil()
	if cellH <= 0 {
		cellH = minCellHeight
	}
	ascent := metrics.Ascent.Ceil()
	if ascent <= 0 || ascent > cellH {
		ascent = cellH * 3 / 4
	}

	return &Renderer{
		face:    face,
		padding: padding,
		fg:      image.NewUniform(fg),
		bg:      image.NewUniform(bg),
		bgColor: bg,
		cellW:   cellW,
		cellH:   cellH,
		ascent:  ascent,
	}
}

// CellSize reports the measured glyph cell in pixels.
func (r *Renderer) CellSize() (w, h int) {
	return r.cellW, r.cellH
}

// Background returns the configured background color, used for letterbox
// margins.
func (r *Renderer) Background() color.Color {
	return r.bgColor
}

// CanvasSize computes the output pixel dimensions for a grid shape, each
// dimension rounded up to the next even number.
func (r *Renderer) CanvasSize(rows, cols int) (w, h int) {
	w = r.cellW*cols + 2*r.padding
	h = r.cellH*rows + 2*r.padding
	if w%2 != 0 {
		w++
	}
	if h%2 != 0 {
		h++
	}
	return w, h
}

// Render draws the text rows onto a background-filled canvas. The canvas
// comes from the shared pool; return it with Release once written out.
func (r *Renderer) Render(lines []string) *image.RGBA {
	cols := 1
	for _, line := range lines {
		if len(line) > cols {
			cols = len(line)
		}
	}
	rows := len(lines)
	if rows < 1 {
		rows = 1
	}

	w, h := r.CanvasSize(rows, cols)
	img := system.GetCanvas(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), r.bg, image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  img,
		Src:  r.fg,
		Face: r.face,
	}
	y := r.padding + r.ascent
	for _, line := range lines {
		d.Dot = fixed.P(r.padding, y)
		d.DrawString(line)
		y += r.cellH
	}

	return img
}

// Release returns a canvas obtained from Render to the pool.
func (r *Renderer) Release(img *image.RGBA) {
	system.PutCanvas(img)
}

// Letterbox fits src into an outW x outH canvas: scaled down preserving
// aspect ratio, centered, with background-colored margins. Content is never
// stretched. Identical dimensions pass through untouched.
func Letterbox(src *image.RGBA, outW, outH int, bg color.Color) *image.RGBA {
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	if sw == outW && sh == outH {
		return src
	}

	scale := float64(outW) / float64(sw)
	if s := float64(outH) / float64(sh); s < scale {
		scale = s
	}
	if scale <= 0 {
		scale = 1
	}
	nw := int(float64(sw) * scale)
	if nw < 1 {
		nw = 1
	}
	nh := int(float64(sh) * scale)
	if nh < 1 {
		nh = 1
	}

	canvas := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	x := (outW - nw) / 2
	y := (outH - nh) / 2
	target := image.Rect(x, y, x+nw, y+nh)
	if nw == sw && nh == sh {
		draw.Draw(canvas, target, src, src.Bounds().Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(canvas, target, src, src.Bounds(), xdraw.Src, nil)
	}

	return canvas
}
