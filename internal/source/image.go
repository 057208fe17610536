package source

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ImageSequenceSource treats a directory of PNG/JPEG files (sorted by name)
// as consecutive video frames. All frames must share the dimensions of the
// first image. It reports FPS 0 so the pipeline applies its default rate.
type ImageSequenceSource struct {
	paths []string
	info  Info
	pos   int
	buf   []byte
}

func NewImageSequenceSource(dir string) (*ImageSequenceSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no image frames found in %s", dir)
	}

	f, err := os.Open(paths[0])
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", paths[0], err)
	}

	return &ImageSequenceSource{
		paths: paths,
		info:  Info{Width: cfg.Width, Height: cfg.Height},
		buf:   make([]byte, cfg.Width*cfg.Height),
	}, nil
}

func (s *ImageSequenceSource) Info() Info { return s.info }

func (s *ImageSequenceSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.paths) {
		return nil, io.EOF
	}

	path := s.paths[s.pos]
	s.pos++

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", path, err)
	}

	b := img.Bounds()
	if b.Dx() != s.info.Width || b.Dy() != s.info.Height {
		return nil, fmt.Errorf("frame %s is %dx%d, sequence is %dx%d",
			path, b.Dx(), b.Dy(), s.info.Width, s.info.Height)
	}

	for y := 0; y < s.info.Height; y++ {
		for x := 0; x < s.info.Width; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			s.buf[y*s.info.Width+x] = g.Y
		}
	}

	return &Frame{Width: s.info.Width, Height: s.info.Height, Pix: s.buf}, nil
}

func (s *ImageSequenceSource) Close() error { return nil }
