package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegSource decodes a video file through an ffmpeg child process that
// writes raw single-channel frames to a pipe. ffprobe supplies the stream
// geometry and native frame rate up front.
type FFmpegSource struct {
	info   Info
	path   string
	cmd    *exec.Cmd
	out    io.ReadCloser
	buf    []byte
	waited bool
}

// NewFFmpegSource probes path and starts the decoder. The returned source is
// positioned before the first frame; decoding begins lazily on the first
// call to Next.
func NewFFmpegSource(ctx context.Context, path string) (*FFmpegSource, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in $PATH: %w", err)
	}

	info, err := probeVideo(ctx, path)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &FFmpegSource{
		info: info,
		path: path,
		cmd:  cmd,
		out:  stdout,
		buf:  make([]byte, info.Width*info.Height),
	}, nil
}

func (s *FFmpegSource) Info() Info { return s.info }

// Next reads exactly one frame worth of bytes from the decoder pipe. A short
// read at stream end is reported as io.EOF.
func (s *FFmpegSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, err := io.ReadFull(s.out, s.buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("frame read error: %w", err)
	}
	return &Frame{Width: s.info.Width, Height: s.info.Height, Pix: s.buf}, nil
}

func (s *FFmpegSource) Close() error {
	s.out.Close()
	if s.waited {
		return nil
	}
	s.waited = true
	// The pipe is closed, so a still-running decoder exits on its next
	// write. Reap it either way.
	err := s.cmd.Wait()
	if err != nil && s.cmd.ProcessState != nil && s.cmd.ProcessState.Exited() {
		return nil
	}
	return err
}

type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

// probeVideo extracts width, height and average frame rate of the first
// video stream.
func probeVideo(ctx context.Context, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe error for %s: %w", path, err)
	}

	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return Info{}, fmt.Errorf("ffprobe output parse error: %w", err)
	}
	if len(probed.Streams) == 0 {
		return Info{}, fmt.Errorf("no video streams found in %s", path)
	}

	st := probed.Streams[0]
	if st.Width <= 0 || st.Height <= 0 {
		return Info{}, fmt.Errorf("invalid stream geometry %dx%d in %s", st.Width, st.Height, path)
	}

	return Info{
		Width:  st.Width,
		Height: st.Height,
		FPS:    parseFrameRate(st.AvgFrameRate),
	}, nil
}

// parseFrameRate handles ffprobe rational rates like "24000/1001". Malformed
// or zero rates collapse to 0 and the caller falls back to its default.
func parseFrameRate(s string) float64 {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
