package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/ivlev/ascii2video/internal/ascii"
	"github.com/ivlev/ascii2video/internal/config"
	"github.com/ivlev/ascii2video/internal/engine"
	"github.com/ivlev/ascii2video/internal/render"
	"github.com/ivlev/ascii2video/internal/source"
	"github.com/ivlev/ascii2video/internal/system"
	"github.com/ivlev/ascii2video/internal/video"
)

const buildVersion = "1.2.0"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/video", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	inputPtr := flag.String("input", "", "Путь к видео или папке с изображениями (по умолчанию: самый свежий файл в input/video/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	modePtr := flag.String("mode", "terminal", "Режим: terminal (проигрывание в консоли) или save (запись видео)")
	colsPtr := flag.Int("cols", 120, "Ширина ASCII-сетки в символах")
	fpsPtr := flag.Float64("fps", 0, "FPS (0 - взять частоту исходного видео)")
	fontSizePtr := flag.Int("font-size", 12, "Размер шрифта в пунктах (режим save)")
	fontPtr := flag.String("font", "", "Путь к моноширинному TTF (если пусто, ищется системный)")
	charsetPtr := flag.String("charset", ascii.DefaultCharset, "Градиент символов, от темного к светлому")
	scalePtr := flag.Float64("scale", ascii.DefaultScale, "Поправка пропорций символа (ширина/высота)")
	paddingPtr := flag.Int("padding", 6, "Отступ холста в пикселях (режим save)")
	fgPtr := flag.String("fg", "#ffffff", "Цвет символов, #rrggbb")
	bgPtr := flag.String("bg", "#000000", "Цвет фона, #rrggbb")
	mergeAudioPtr := flag.Bool("merge-audio", false, "Добавить звуковую дорожку исходника в итоговое видео")
	presetPtr := flag.String("preset", "", "YAML-пресет стиля: charset, scale, padding, цвета")
	statsPtr := flag.Bool("stats", false, "Печатать отчет о производительности после прогона")

	flag.Parse()

	inputPath := *inputPtr
	if inputPath == "" {
		latest, err := system.FindLatestVideo("input/video")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите видео в input/video/", err)
		}
		inputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", inputPath)
	}

	fg, err := config.ParseHexColor(*fgPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
	bg, err := config.ParseHexColor(*bgPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	cfg := &config.Config{
		InputPath:    inputPath,
		Mode:         config.Mode(*modePtr),
		Cols:         *colsPtr,
		FPS:          *fpsPtr,
		FontSize:     *fontSizePtr,
		FontPath:     *fontPtr,
		Charset:      *charsetPtr,
		Scale:        *scalePtr,
		Padding:      *paddingPtr,
		Foreground:   fg,
		Background:   bg,
		MergeAudio:   *mergeAudioPtr,
		ShowStats:    *statsPtr,
		BuildVersion: buildVersion,
	}

	// Пресет накладывается поверх флагов: заданные в YAML поля побеждают.
	if *presetPtr != "" {
		preset, err := config.ReadPreset(*presetPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения пресета: %v", err)
		}
		if err := preset.Apply(cfg); err != nil {
			log.Fatalf("[-] Ошибка пресета: %v", err)
		}
		fmt.Printf("[*] Применен пресет: %s\n", *presetPtr)
	}

	if cfg.Mode == config.ModeSave {
		cfg.OutputVideo = *outputPtr
		if cfg.OutputVideo == "" {
			baseName := filepath.Base(inputPath)
			nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
			cleanName := strings.ReplaceAll(nameOnly, " ", "_")
			timestamp := time.Now().Format("2006-01-02_15-04-05")
			cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("%s_ascii_%s.mp4", cleanName, timestamp))
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	// Ctrl+C останавливает прогон на границе кадра, уже записанные кадры
	// остаются в файле.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src source.Source
	if info, statErr := os.Stat(inputPath); statErr == nil && info.IsDir() {
		src, err = source.NewImageSequenceSource(inputPath)
	} else {
		src, err = source.NewFFmpegSource(ctx, inputPath)
	}
	if err != nil {
		log.Fatalf("[-] %v", &engine.OpenError{Path: inputPath, Err: err})
	}

	var renderer *render.Renderer
	if cfg.Mode == config.ModeSave {
		if dur, err := system.GetVideoDuration(inputPath); err == nil {
			fmt.Printf("[*] Длительность исходника: %.1fs\n", dur)
		}
		face, err := render.NewSystemFontResolver().Resolve(cfg.FontPath, float64(cfg.FontSize))
		if err != nil {
			log.Fatalf("[-] Ошибка шрифта: %v", err)
		}
		renderer = render.NewRenderer(face, cfg.Padding, cfg.Foreground, cfg.Background)
	}

	if cfg.Mode == config.ModeTerminal {
		fd := int(os.Stdout.Fd())
		if term.IsTerminal(fd) {
			if w, _, err := term.GetSize(fd); err == nil && cfg.Cols > w {
				fmt.Printf("[!] Сетка %d символов шире терминала (%d), строки будут переноситься\n", cfg.Cols, w)
			}
		} else {
			fmt.Println("[!] Вывод не в терминал, очистка экрана будет видна как управляющие коды")
		}
	}

	pipeline := engine.NewPipeline(cfg, src, video.NewFFmpegOpener(), video.NewFFmpegRemuxer(), renderer, os.Stdout)

	start := time.Now()
	var res *engine.Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var runErr error
		res, runErr = pipeline.Run(gctx)
		return runErr
	})

	if err := g.Wait(); err != nil {
		var writerErr *engine.WriterError
		if errors.As(err, &writerErr) {
			log.Fatalf("[-] Ошибка записи видео: %v", writerErr.Err)
		}
		log.Fatalf("[-] Ошибка: %v", err)
	}

	for _, w := range res.Warnings {
		fmt.Printf("[!] %s\n", w)
	}

	switch {
	case res.Cancelled:
		fmt.Printf("[*] Остановлено. Кадров обработано: %d\n", res.Frames)
	case cfg.Mode == config.ModeSave:
		final := res.OutputPath
		if res.AudioPath != "" {
			final = res.AudioPath
		}
		fmt.Printf("[+++] Успех! Результат: %s\n", final)
	default:
		fmt.Printf("[*] Готово. Кадров показано: %d\n", res.Frames)
	}

	if cfg.ShowStats {
		system.ReportRunStats(system.RunStats{
			Build:   cfg.BuildVersion,
			Input:   cfg.InputPath,
			Frames:  res.Frames,
			Written: res.Written,
			Elapsed: time.Since(start),
		})
	}
}
