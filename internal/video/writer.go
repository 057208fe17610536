package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// FrameWriter owns one open output video stream with fixed frame dimensions.
type FrameWriter interface {
	Path() string
	Size() (w, h int)
	WriteFrame(img *image.RGBA) error
	Close() error
}

// WriterOpener opens a FrameWriter for the given canvas size, applying the
// container/codec fallback policy.
type WriterOpener interface {
	Open(ctx context.Context, path string, w, h int, fps float64) (FrameWriter, error)
}

// codecAttempt is one container+codec combination of the open policy.
type codecAttempt struct {
	codec string
	ext   string
	extra []string
}

var openAttempts = []codecAttempt{
	{codec: "libx264", ext: ".mp4", extra: []string{"-pix_fmt", "yuv420p", "-crf", "23", "-preset", "medium"}},
	{codec: "mjpeg", ext: ".avi", extra: []string{"-q:v", "5"}},
}

// FFmpegOpener opens writers backed by an ffmpeg child process consuming raw
// RGBA frames on stdin. The two-attempt policy is explicit: the primary
// codec is tried first, then the fallback with the alternate extension; if
// neither encoder is available the open fails as a whole.
type FFmpegOpener struct {
	// listEncoders returns the output of `ffmpeg -encoders`; replaceable
	// in tests.
	listEncoders func(ctx context.Context) (string, error)
	// start spawns the encoder process for one attempt; replaceable in
	// tests.
	start func(path string, w, h int, fps float64, attempt codecAttempt) (FrameWriter, error)
}

func NewFFmpegOpener() *FFmpegOpener {
	return &FFmpegOpener{
		listEncoders: runListEncoders,
		start: func(path string, w, h int, fps float64, attempt codecAttempt) (FrameWriter, error) {
			return startWriter(path, w, h, fps, attempt)
		},
	}
}

func runListEncoders(ctx context.Context) (string, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return "", fmt.Errorf("ffmpeg not found in $PATH: %w", err)
	}
	out, err := exec.CommandContext(ctx, "ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg -encoders error: %w", err)
	}
	return string(out), nil
}

func (o *FFmpegOpener) Open(ctx context.Context, path string, w, h int, fps float64) (FrameWriter, error) {
	encoders, err := o.listEncoders(ctx)
	if err != nil {
		return nil, err
	}

	var reasons []string
	for i, attempt := range openAttempts {
		if !strings.Contains(encoders, attempt.codec) {
			reasons = append(reasons, fmt.Sprintf("%s: encoder not available", attempt.codec))
			continue
		}

		outPath := path
		if i > 0 {
			outPath = replaceExt(path, attempt.ext)
		}

		writer, err := o.start(outPath, w, h, fps, attempt)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: %v", attempt.codec, err))
			continue
		}
		return writer, nil
	}

	return nil, fmt.Errorf("no codec/container combination could be opened: %s", strings.Join(reasons, "; "))
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// FFmpegWriter pipes raw RGBA frames into a running ffmpeg encoder. All
// frames must match the dimensions the writer was opened with.
type FFmpegWriter struct {
	path   string
	w, h   int
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	closed bool
}

// newEncoderCmd builds the encoder invocation. The command carries no
// run-context kill handler: cancelling a conversion stops the frame feed,
// and the encoder must still see a clean stdin EOF to write the container
// index. A killed ffmpeg leaves the output unplayable.
func newEncoderCmd(path string, w, h int, fps float64, attempt codecAttempt) *exec.Cmd {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", w, h),
		"-framerate", fmt.Sprintf("%g", fps),
		"-i", "-",
		"-c:v", attempt.codec,
	}
	args = append(args, attempt.extra...)
	args = append(args, path)
	return exec.Command("ffmpeg", args...)
}

func startWriter(path string, w, h int, fps float64, attempt codecAttempt) (*FFmpegWriter, error) {
	cmd := newEncoderCmd(path, w, h, fps, attempt)
	fw := &FFmpegWriter{path: path, w: w, h: h, cmd: cmd}
	cmd.Stderr = &fw.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	fw.stdin = stdin

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return fw, nil
}

func (fw *FFmpegWriter) Path() string { return fw.path }

func (fw *FFmpegWriter) Size() (int, int) { return fw.w, fw.h }

func (fw *FFmpegWriter) WriteFrame(img *image.RGBA) error {
	bounds := img.Bounds()
	if bounds.Dx() != fw.w || bounds.Dy() != fw.h {
		return fmt.Errorf("frame is %dx%d, writer expects %dx%d", bounds.Dx(), bounds.Dy(), fw.w, fw.h)
	}
	if err := writeRawRGBA(fw.stdin, img); err != nil {
		return fmt.Errorf("frame write error: %w", err)
	}
	return nil
}

// writeRawRGBA sends the tightly-packed pixel data of img. Images with a
// non-standard stride or origin are repacked first.
func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	rgba := img
	if rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// Close flushes the stream and waits for the encoder to finish the
// container. Safe to call once per writer.
func (fw *FFmpegWriter) Close() error {
	if fw.closed {
		return nil
	}
	fw.closed = true
	fw.stdin.Close()
	if err := fw.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg finalize error: %v\n%s", err, fw.stderr.String())
	}
	return nil
}
