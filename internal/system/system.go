package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

var videoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	}
}

// FindLatestVideo возвращает самый свежий видеофайл в директории.
func FindLatestVideo(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		isVideo := false
		for _, ext := range videoExtensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				isVideo = true
				break
			}
		}
		if isVideo {
			info, err := f.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(latestTime) {
				latestTime = info.ModTime()
				latestFile = filepath.Join(dir, f.Name())
			}
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено видеофайлов", dir)
	}

	return latestFile, nil
}

func GetVideoDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

// RunStats описывает итог одного прогона конвертации.
type RunStats struct {
	Build    string
	Input    string
	Frames   int
	Written  int
	Elapsed  time.Duration
}

// ReportRunStats печатает отчет о производительности и дописывает строку в
// benchmark.log. Память и CPU процесса берутся через gopsutil.
func ReportRunStats(s RunStats) {
	fps := 0.0
	if s.Elapsed > 0 {
		fps = float64(s.Frames) / s.Elapsed.Seconds()
	}

	rssMB := 0.0
	cpuSec := 0.0
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			rssMB = float64(mem.RSS) / (1024 * 1024)
		}
		if times, err := proc.Times(); err == nil {
			cpuSec = times.User + times.System
		}
	}

	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Frames: %d (written: %d)\n"+
			"Total Time: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Process RSS: %.1f MB\n"+
			"CPU Time: %.2fs\n"+
			"----------------------------\n",
		s.Build, s.Frames, s.Written, s.Elapsed.Seconds(), fps, rssMB, cpuSec,
	)

	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Frames: %d | Total: %.2fs | FPS: %.2f | RSS: %.1fMB\n",
		time.Now().Format("2006-01-02 15:04:05"),
		s.Build,
		filepath.Base(s.Input),
		s.Frames,
		s.Elapsed.Seconds(),
		fps,
		rssMB,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
