package video

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrRemuxUnavailable reports that the muxing tool is not installed. The
// primary video output remains valid; callers treat this as a warning.
var ErrRemuxUnavailable = errors.New("ffmpeg not found in PATH, audio merge skipped")

// RemuxError carries the muxer diagnostics for a failed merge. Non-fatal:
// the video-only file is untouched.
type RemuxError struct {
	Detail string
	Err    error
}

func (e *RemuxError) Error() string {
	return fmt.Sprintf("audio merge failed: %v\n%s", e.Err, e.Detail)
}

func (e *RemuxError) Unwrap() error { return e.Err }

// AudioRemuxer merges the audio of a source file into a rendered video.
type AudioRemuxer interface {
	Merge(ctx context.Context, videoPath, audioSource, outputPath string) error
}

// FFmpegRemuxer copies the video stream untouched, takes the first audio
// stream of the original source and trims the result to the shorter stream.
type FFmpegRemuxer struct {
	lookPath func(string) (string, error)
	combined func(*exec.Cmd) ([]byte, error)
}

func NewFFmpegRemuxer() *FFmpegRemuxer {
	return &FFmpegRemuxer{
		lookPath: exec.LookPath,
		combined: (*exec.Cmd).CombinedOutput,
	}
}

func (r *FFmpegRemuxer) Merge(ctx context.Context, videoPath, audioSource, outputPath string) error {
	ffmpeg, err := r.lookPath("ffmpeg")
	if err != nil {
		return ErrRemuxUnavailable
	}

	cmd := exec.CommandContext(ctx, ffmpeg,
		"-y",
		"-i", videoPath,
		"-i", audioSource,
		"-c:v", "copy",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	)
	out, err := r.combined(cmd)
	if err != nil {
		return &RemuxError{Detail: string(out), Err: err}
	}
	return nil
}
