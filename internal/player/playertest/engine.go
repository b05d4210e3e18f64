// Package playertest содержит движок-заглушку для тестов
package playertest

import (
	"context"
	"sync"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/player"
)

// Engine записывает вызовы и позволяет тесту отправлять события
type Engine struct {
	mu      sync.Mutex
	events  chan player.Event
	closed  bool
	loaded  []media.Item
	calls   []string
	LoadErr error
	// Preparing оставляет движок в подготовке после Load, как при загрузке
	// медленного потока. Дальнейшие события отправляет тест
	Preparing bool
}

// NewEngine создает движок-заглушку
func NewEngine() *Engine {
	return &Engine{events: make(chan player.Event, 64)}
}

// Factory возвращает фабрику, всегда отдающую этот движок
func (e *Engine) Factory() player.EngineFactory {
	return func() (player.Engine, error) {
		return e, nil
	}
}

func (e *Engine) Load(_ context.Context, item media.Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, "load")
	if e.LoadErr != nil {
		return e.LoadErr
	}
	e.loaded = append(e.loaded, item)
	if e.Preparing {
		e.emitLocked(player.Event{Kind: player.EventState, State: player.StatePreparing})
		return nil
	}
	e.emitLocked(player.Event{Kind: player.EventState, State: player.StatePlaying})
	return nil
}

func (e *Engine) Pause() error {
	e.record("pause", player.StatePaused)
	return nil
}

func (e *Engine) Resume() error {
	e.record("resume", player.StatePlaying)
	return nil
}

func (e *Engine) Stop() error {
	e.record("stop", player.StateIdle)
	return nil
}

func (e *Engine) Events() <-chan player.Event {
	return e.events
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		e.calls = append(e.calls, "close")
		close(e.events)
	}
	return nil
}

// Emit отправляет событие, как будто его прислал настоящий движок
func (e *Engine) Emit(ev player.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitLocked(ev)
}

// Loaded возвращает элементы, переданные в Load
func (e *Engine) Loaded() []media.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]media.Item(nil), e.loaded...)
}

// Calls возвращает имена вызванных методов по порядку
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// Closed сообщает, был ли вызван Close
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) record(call string, state player.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
	e.emitLocked(player.Event{Kind: player.EventState, State: state})
}

func (e *Engine) emitLocked(ev player.Event) {
	if e.closed {
		return
	}
	e.events <- ev
}
