package source

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"24000/1001", 23.976023976023978},
		{"30/1", 30},
		{"25", 25},
		{"0/0", 0},
		{"garbage", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := parseFrameRate(tt.in); got != tt.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func writeTestFrame(t *testing.T, path string, w, h int, shade uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImageSequenceSource(t *testing.T) {
	dir := t.TempDir()
	writeTestFrame(t, filepath.Join(dir, "f0.png"), 8, 6, 0)
	writeTestFrame(t, filepath.Join(dir, "f1.png"), 8, 6, 128)
	writeTestFrame(t, filepath.Join(dir, "f2.png"), 8, 6, 255)

	src, err := NewImageSequenceSource(dir)
	if err != nil {
		t.Fatalf("NewImageSequenceSource: %v", err)
	}
	defer src.Close()

	info := src.Info()
	if info.Width != 8 || info.Height != 6 {
		t.Fatalf("expected 8x6, got %dx%d", info.Width, info.Height)
	}
	if info.FPS != 0 {
		t.Errorf("image sequences have no native rate, got %v", info.FPS)
	}

	ctx := context.Background()
	for i, want := range []uint8{0, 128, 255} {
		frame, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if frame.Width != 8 || frame.Height != 6 {
			t.Fatalf("frame %d: got %dx%d", i, frame.Width, frame.Height)
		}
		for _, v := range frame.Pix {
			if v != want {
				t.Fatalf("frame %d: expected shade %d, got %d", i, want, v)
			}
		}
	}

	if _, err := src.Next(ctx); err != io.EOF {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestImageSequenceGrayConversion(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{A: 255})
	f, err := os.Create(filepath.Join(dir, "rgb.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	src, err := NewImageSequenceSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	frame, err := src.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if frame.Pix[0] != 255 {
		t.Errorf("white pixel should convert to 255, got %d", frame.Pix[0])
	}
	if frame.Pix[1] != 0 {
		t.Errorf("black pixel should convert to 0, got %d", frame.Pix[1])
	}
}

func TestImageSequenceRejectsEmptyDir(t *testing.T) {
	if _, err := NewImageSequenceSource(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without frames")
	}
}
