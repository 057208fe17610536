package config

import (
	"fmt"
	"image/color"
)

type Mode string

const (
	ModeTerminal Mode = "terminal"
	ModeSave     Mode = "save"
)

// Config captures one conversion run. It is assembled once by the caller
// and never mutated after the pipeline starts.
type Config struct {
	InputPath   string
	OutputVideo string
	Mode        Mode

	Cols     int
	FPS      float64 // 0 = take the source rate
	FontSize int
	FontPath string

	Charset    string
	Scale      float64
	Padding    int
	Foreground color.RGBA
	Background color.RGBA

	MergeAudio bool
	ShowStats  bool

	BuildVersion string
}

func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input path is required")
	}
	if c.Mode != ModeTerminal && c.Mode != ModeSave {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Cols < 1 {
		return fmt.Errorf("column count must be >= 1, got %d", c.Cols)
	}
	if c.FPS < 0 {
		return fmt.Errorf("fps must be >= 0, got %g", c.FPS)
	}
	if len(c.Charset) < 2 {
		return fmt.Errorf("glyph ramp needs at least 2 characters, got %q", c.Charset)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("aspect scale must be > 0, got %g", c.Scale)
	}
	if c.Padding < 0 {
		return fmt.Errorf("padding must be >= 0, got %d", c.Padding)
	}
	return nil
}
