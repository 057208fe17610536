package source

import "context"

// Frame is one decoded video frame as a grayscale pixel grid, row-major,
// one byte per pixel. Frames are ephemeral: the backing slice may be reused
// by the next call to Next.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// Info describes the opened stream. FPS is 0 when the container does not
// report a usable frame rate.
type Info struct {
	Width  int
	Height int
	FPS    float64
}

// Source yields grayscale frames in presentation order. Next returns io.EOF
// after the last frame. Implementations own their decoder process/file
// handles and must release them in Close regardless of how far the caller
// iterated.
type Source interface {
	Info() Info
	Next(ctx context.Context) (*Frame, error)
	Close() error
}
