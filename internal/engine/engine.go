package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/ascii2video/internal/ascii"
	"github.com/ivlev/ascii2video/internal/config"
	"github.com/ivlev/ascii2video/internal/player"
	"github.com/ivlev/ascii2video/internal/render"
	"github.com/ivlev/ascii2video/internal/source"
	"github.com/ivlev/ascii2video/internal/video"
)

// DefaultFPS используется, когда ни флаг, ни контейнер не дали частоту.
const DefaultFPS = 24.0

const progressEvery = 50

// FrameEmitter принимает готовые текстовые кадры (терминальный режим).
type FrameEmitter interface {
	Emit(lines []string) error
}

// Result — итог одного прогона пайплайна.
type Result struct {
	OutputPath string // видео без звука (save-режим)
	AudioPath  string // видео со звуком, если ремукс удался
	Frames     int    // прочитано кадров
	Written    int    // записано кадров
	Cancelled  bool
	Warnings   []string
	Elapsed    time.Duration
}

// Pipeline прогоняет кадры источника через сэмплер, маппер и рендерер и
// отправляет результат в терминал или в видеофайл. Один экземпляр — один
// прогон; вся обработка строго последовательна, состояние пайплайна трогает
// ровно одна горутина.
type Pipeline struct {
	Config   *config.Config
	Source   source.Source
	Opener   video.WriterOpener
	Remuxer  video.AudioRemuxer
	Renderer *render.Renderer
	Out      io.Writer

	// newEmitter подменяется в тестах.
	newEmitter func(w io.Writer, fps float64) FrameEmitter
}

func NewPipeline(cfg *config.Config, src source.Source, opener video.WriterOpener, remuxer video.AudioRemuxer, renderer *render.Renderer, out io.Writer) *Pipeline {
	return &Pipeline{
		Config:   cfg,
		Source:   src,
		Opener:   opener,
		Remuxer:  remuxer,
		Renderer: renderer,
		Out:      out,
		newEmitter: func(w io.Writer, fps float64) FrameEmitter {
			return player.NewTerminal(w, fps)
		},
	}
}

// resolveFPS: флаг > 0 → флаг; иначе частота источника; иначе дефолт.
func resolveFPS(flag, native float64) float64 {
	if flag > 0 {
		return flag
	}
	if native > 0 {
		return native
	}
	return DefaultFPS
}

// Run выполняет весь прогон. Источник и писатель освобождаются на любом
// пути выхода: успех, ошибка, отмена. Отмена — не ошибка: возвращается
// Result с Cancelled=true и nil.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer p.Source.Close()

	cfg := p.Config
	fps := resolveFPS(cfg.FPS, p.Source.Info().FPS)

	res := &Result{}
	var writer video.FrameWriter
	writerClosed := false
	defer func() {
		if writer != nil && !writerClosed {
			writer.Close()
		}
	}()

	var emit FrameEmitter
	if cfg.Mode == config.ModeTerminal {
		emit = p.newEmitter(p.Out, fps)
	}

	for {
		// Кооперативная отмена: проверка на каждой границе кадра.
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		frame, err := p.Source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				res.Cancelled = true
				break
			}
			// Обрыв посреди потока: завершаем как конец файла.
			log.Printf("[!] Ошибка чтения кадра %d: %v", res.Frames+1, err)
			break
		}
		res.Frames++

		grid := ascii.Downsample(frame.Pix, frame.Width, frame.Height, cfg.Cols, cfg.Scale)
		lines := grid.Lines(cfg.Charset)

		if cfg.Mode == config.ModeTerminal {
			if err := emit.Emit(lines); err != nil {
				return res, fmt.Errorf("terminal output error: %w", err)
			}
			continue
		}

		img := p.Renderer.Render(lines)

		// Писатель открывается лениво, по размеру первого кадра.
		if writer == nil {
			b := img.Bounds()
			w, err := p.Opener.Open(ctx, cfg.OutputVideo, b.Dx(), b.Dy(), fps)
			if err != nil {
				p.Renderer.Release(img)
				return res, &WriterError{Err: err}
			}
			writer = w
			res.OutputPath = w.Path()
			fmt.Printf("[*] Запись: %s (%dx%d @ %.2f fps)\n", w.Path(), b.Dx(), b.Dy(), fps)
		}

		out := img
		ww, wh := writer.Size()
		if b := img.Bounds(); b.Dx() != ww || b.Dy() != wh {
			// Защитный путь: размеры холста постоянны при постоянной
			// конфигурации, но рассогласованный вход вписывается в
			// установленный холст без растяжения.
			out = render.Letterbox(img, ww, wh, p.Renderer.Background())
		}

		if err := writer.WriteFrame(out); err != nil {
			// Один кадр — не повод ронять весь прогон.
			log.Printf("[!] Кадр %d пропущен: %v", res.Frames, err)
		} else {
			res.Written++
		}
		p.Renderer.Release(img)

		if res.Frames%progressEvery == 0 {
			fmt.Printf("[>] Кадров обработано: %d\n", res.Frames)
		}
	}

	if writer != nil {
		writerClosed = true
		if err := writer.Close(); err != nil {
			return res, &WriterError{Err: err}
		}
	}

	if cfg.Mode == config.ModeSave && cfg.MergeAudio && res.Written > 0 && !res.Cancelled {
		p.mergeAudio(ctx, res)
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func (p *Pipeline) mergeAudio(ctx context.Context, res *Result) {
	outPath := strings.TrimSuffix(res.OutputPath, filepath.Ext(res.OutputPath)) + "_with_audio.mp4"

	err := p.Remuxer.Merge(ctx, res.OutputPath, p.Config.InputPath, outPath)
	switch {
	case err == nil:
		res.AudioPath = outPath
		fmt.Printf("[*] Аудио добавлено: %s\n", outPath)
	case errors.Is(err, video.ErrRemuxUnavailable):
		res.Warnings = append(res.Warnings, err.Error())
		log.Printf("[!] %v", err)
	default:
		res.Warnings = append(res.Warnings, err.Error())
		log.Printf("[!] Ремукс не удался: %v", err)
	}
}
