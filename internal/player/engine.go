// Package player содержит обертку над движком воспроизведения и сами движки
package player

import (
	"context"
	"errors"
	"time"

	"github.com/hazadus/go-mediaplayer/internal/media"
)

// ErrUnsupported возвращается, если движок не умеет воспроизводить элемент
var ErrUnsupported = errors.New("формат не поддерживается движком")

// ErrClosed возвращается при воспроизведении через закрытый плеер
var ErrClosed = errors.New("плеер закрыт")

// State - состояние движка
type State int

const (
	StateIdle State = iota
	StatePreparing
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePreparing:
		return "preparing"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// EventKind - тип события движка
type EventKind int

const (
	EventState EventKind = iota
	EventProgress
	EventEnded
	EventError
)

// Event - событие движка. Заполнены только поля, относящиеся к Kind
type Event struct {
	Kind     EventKind
	State    State
	Progress Progress
	Err      error
}

// Progress описывает позицию воспроизведения
type Progress struct {
	Position   time.Duration
	Duration   time.Duration
	StuckCount int // Сколько тиков подряд позиция не менялась
}

// Engine воспроизводит по одному элементу за раз.
// Load заменяет очередь движка единственным элементом и запускает его
type Engine interface {
	Load(ctx context.Context, item media.Item) error
	Pause() error
	Resume() error
	Stop() error
	// Events закрывается после Close
	Events() <-chan Event
	Close() error
}

// EngineFactory создает движок при первом обращении к плееру
type EngineFactory func() (Engine, error)
