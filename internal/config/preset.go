package config

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a reusable rendering style stored as YAML: the glyph ramp,
// aspect correction, canvas padding and colors. Zero-valued fields keep the
// current Config value.
type Preset struct {
	Charset    string  `yaml:"charset"`
	Scale      float64 `yaml:"scale"`
	Padding    int     `yaml:"padding"`
	Foreground string  `yaml:"foreground"` // #rrggbb
	Background string  `yaml:"background"` // #rrggbb
}

// ReadPreset reads a preset from a YAML file.
func ReadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// WritePreset writes a preset to a YAML file.
func WritePreset(p *Preset, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Apply overlays the preset's non-zero fields onto cfg.
func (p *Preset) Apply(cfg *Config) error {
	if p.Charset != "" {
		cfg.Charset = p.Charset
	}
	if p.Scale > 0 {
		cfg.Scale = p.Scale
	}
	if p.Padding > 0 {
		cfg.Padding = p.Padding
	}
	if p.Foreground != "" {
		c, err := ParseHexColor(p.Foreground)
		if err != nil {
			return fmt.Errorf("preset foreground: %w", err)
		}
		cfg.Foreground = c
	}
	if p.Background != "" {
		c, err := ParseHexColor(p.Background)
		if err != nil {
			return fmt.Errorf("preset background: %w", err)
		}
		cfg.Background = c
	}
	return nil
}

// ParseHexColor parses "#rrggbb" into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	n, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	if err != nil || n != 3 {
		return color.RGBA{}, fmt.Errorf("invalid color %q, expected #rrggbb", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
