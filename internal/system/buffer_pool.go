package system

import (
	"image"
	"sync"
)

// CanvasPool переиспользует растровые буферы кадров одного размера, чтобы
// снизить нагрузку на GC: при сохранении видео каждый кадр рисуется на
// холсте одинакового размера.
type CanvasPool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &CanvasPool{
	pools: make(map[string]*sync.Pool),
}

// GetCanvas возвращает *image.RGBA нужного размера из пула или создает новый.
func GetCanvas(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutCanvas возвращает буфер в пул для повторного использования.
func PutCanvas(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *CanvasPool) Get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *CanvasPool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
