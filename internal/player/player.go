package player

import (
	"bufio"
	"io"
	"strings"
	"time"
)

// ANSI clear screen + home, the same sequence a full-screen refresh uses in
// every terminal player.
const clearScreen = "\033[H\033[2J"

// Pacer regulates playback to a target frame rate. If the previous frame
// took longer than one period the next one is emitted immediately — late
// frames are never dropped to catch up, they simply run behind.
type Pacer struct {
	period time.Duration
	last   time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func NewPacer(fps float64) *Pacer {
	return &Pacer{
		period: time.Duration(float64(time.Second) / fps),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Wait blocks until the next frame is due and records the emission time.
func (p *Pacer) Wait() {
	if !p.last.IsZero() {
		elapsed := p.now().Sub(p.last)
		if elapsed < p.period {
			p.sleep(p.period - elapsed)
		}
	}
	p.last = p.now()
}

// Terminal prints glyph-grid frames to a writer, one full-screen refresh per
// frame, paced to the configured rate.
type Terminal struct {
	out   *bufio.Writer
	pacer *Pacer
}

func NewTerminal(w io.Writer, fps float64) *Terminal {
	return &Terminal{
		out:   bufio.NewWriterSize(w, 64*1024),
		pacer: NewPacer(fps),
	}
}

// Emit clears the screen, prints the frame and blocks until the next frame
// is due.
func (t *Terminal) Emit(lines []string) error {
	t.out.WriteString(clearScreen)
	t.out.WriteString(strings.Join(lines, "\n"))
	t.out.WriteByte('\n')
	if err := t.out.Flush(); err != nil {
		return err
	}
	t.pacer.Wait()
	return nil
}
