package config

import (
	"image/color"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		InputPath:  "input/video/clip.mp4",
		Mode:       ModeTerminal,
		Cols:       120,
		FontSize:   12,
		Charset:    `.:-=+*#%@/\|`,
		Scale:      0.43,
		Padding:    6,
		Foreground: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Background: color.RGBA{A: 255},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty input", func(c *Config) { c.InputPath = "" }},
		{"bad mode", func(c *Config) { c.Mode = "gui" }},
		{"zero cols", func(c *Config) { c.Cols = 0 }},
		{"negative fps", func(c *Config) { c.FPS = -1 }},
		{"short ramp", func(c *Config) { c.Charset = "@" }},
		{"zero scale", func(c *Config) { c.Scale = 0 }},
		{"negative padding", func(c *Config) { c.Padding = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPresetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retro.yaml")
	original := &Preset{
		Charset:    " .:#@",
		Scale:      0.5,
		Padding:    10,
		Foreground: "#00ff00",
		Background: "#101010",
	}

	if err := WritePreset(original, path); err != nil {
		t.Fatalf("WritePreset: %v", err)
	}
	loaded, err := ReadPreset(path)
	if err != nil {
		t.Fatalf("ReadPreset: %v", err)
	}
	if *loaded != *original {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, original)
	}
}

func TestPresetApply(t *testing.T) {
	cfg := validConfig()
	p := &Preset{
		Charset:    " .:#@",
		Foreground: "#00ff00",
	}
	if err := p.Apply(cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if cfg.Charset != " .:#@" {
		t.Errorf("charset not applied: %q", cfg.Charset)
	}
	if cfg.Foreground != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("foreground not applied: %+v", cfg.Foreground)
	}
	// Untouched fields keep their values.
	if cfg.Scale != 0.43 || cfg.Padding != 6 {
		t.Errorf("zero preset fields must not override config: scale=%g padding=%d", cfg.Scale, cfg.Padding)
	}
}

func TestPresetApplyRejectsBadColor(t *testing.T) {
	cfg := validConfig()
	p := &Preset{Background: "magenta"}
	if err := p.Apply(cfg); err == nil {
		t.Error("expected error for non-hex color")
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff8000")
	if err != nil {
		t.Fatal(err)
	}
	want := color.RGBA{R: 255, G: 128, A: 255}
	if c != want {
		t.Errorf("got %+v, want %+v", c, want)
	}
}
