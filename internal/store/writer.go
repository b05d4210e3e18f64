package store

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/hazadus/go-mediaplayer/internal/media"
)

// Saver сохраняет коллекцию плейлистов
type Saver interface {
	Save(ctx context.Context, playlists []media.Playlist) error
}

// Writer сохраняет снимки коллекции в фоновой горутине.
// Снимки записываются строго по порядку; если пока идет запись пришло
// несколько снимков, записывается только последний
type Writer struct {
	saver  Saver
	logger *log.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	pending  []media.Playlist
	hasNext  bool
	writing  bool
	closed   bool
	lastErr  error
	doneChan chan struct{}
}

// NewWriter создает и запускает фоновую запись
func NewWriter(saver Saver, logger *log.Logger) *Writer {
	w := &Writer{
		saver:    saver,
		logger:   logger,
		doneChan: make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.loop()
	return w
}

// Enqueue ставит снимок коллекции в очередь на запись и сразу возвращает управление
func (w *Writer) Enqueue(playlists []media.Playlist) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending = playlists
	w.hasNext = true
	w.cond.Broadcast()
}

// Flush ждет записи всех поставленных снимков и возвращает ошибку последней записи
func (w *Writer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.mu.Lock()
		for w.hasNext || w.writing {
			w.cond.Wait()
		}
		w.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Close дожидается записи оставшихся снимков и останавливает горутину
func (w *Writer) Close(ctx context.Context) error {
	err := w.Flush(ctx)

	w.mu.Lock()
	if !w.closed {
		w.closed = true
		w.cond.Broadcast()
	}
	w.mu.Unlock()

	select {
	case <-w.doneChan:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (w *Writer) loop() {
	defer close(w.doneChan)

	for {
		w.mu.Lock()
		for !w.hasNext && !w.closed {
			w.cond.Wait()
		}
		if !w.hasNext && w.closed {
			w.mu.Unlock()
			return
		}
		snapshot := w.pending
		w.pending = nil
		w.hasNext = false
		w.writing = true
		w.mu.Unlock()

		err := w.saver.Save(context.Background(), snapshot)
		if err != nil {
			w.logger.Error("Ошибка сохранения плейлистов", "err", err)
		} else {
			w.logger.Debug("Плейлисты сохранены", "count", len(snapshot))
		}

		w.mu.Lock()
		w.writing = false
		w.lastErr = err
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}
