package engine

import "fmt"

// OpenError: входное видео не удалось открыть. Фатально, пайплайн не
// стартует и ресурсы не выделяются.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// WriterError: ни одна комбинация кодек/контейнер не открылась, либо
// финализация потока провалилась. Фатально, источник освобождается.
type WriterError struct {
	Err error
}

func (e *WriterError) Error() string {
	return fmt.Sprintf("video writer: %v", e.Err)
}

func (e *WriterError) Unwrap() error { return e.Err }
