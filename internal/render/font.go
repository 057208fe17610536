package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontResolver turns a font request into a measurable font.Face. The
// renderer never touches the filesystem itself; it only consumes glyph
// metrics from the resolved face.
type FontResolver interface {
	Resolve(path string, size float64) (font.Face, error)
}

// SystemFontResolver loads a TTF from an explicit path, or scans a list of
// well-known monospace font locations. When nothing is installed it falls
// back to the built-in basicfont face (7x13) so save mode keeps working.
type SystemFontResolver struct {
	Candidates []string
}

func NewSystemFontResolver() *SystemFontResolver {
	return &SystemFontResolver{
		Candidates: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
			"/usr/share/fonts/TTF/DejaVuSansMono.ttf",
			`C:\Windows\Fonts\consola.ttf`,
			`C:\Windows\Fonts\lucon.ttf`,
		},
	}
}

func (r *SystemFontResolver) Resolve(path string, size float64) (font.Face, error) {
	if path != "" {
		return loadFace(path, size)
	}
	for _, candidate := range r.Candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		face, err := loadFace(candidate, size)
		if err == nil {
			return face, nil
		}
	}
	return basicfont.Face7x13, nil
}

func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read font %s: %w", path, err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("cannot parse font %s: %w", path, err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72}), nil
}
