package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/observable"
)

// Player владеет одним движком и переводит его события в наблюдаемые значения
type Player struct {
	factory EngineFactory
	logger  *log.Logger

	mutex  sync.Mutex
	engine Engine
	pumped chan struct{}
	closed bool

	hookMutex sync.Mutex
	onEnded   func()

	state    *observable.Value[State]
	playing  *observable.Value[bool]
	progress *observable.Value[Progress]
}

// NewPlayer создает плеер. Движок создается фабрикой при первом воспроизведении
func NewPlayer(factory EngineFactory, logger *log.Logger) *Player {
	return &Player{
		factory:  factory,
		logger:   logger,
		state:    observable.NewValue(StateIdle),
		playing:  observable.NewValue(false),
		progress: observable.NewValue(Progress{}),
	}
}

// OnEnded задает функцию, вызываемую, когда элемент доиграл до конца
func (p *Player) OnEnded(fn func()) {
	p.hookMutex.Lock()
	defer p.hookMutex.Unlock()
	p.onEnded = fn
}

// Play заменяет очередь движка одним элементом и начинает воспроизведение
func (p *Player) Play(ctx context.Context, item media.Item) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return ErrClosed
	}
	engine, err := p.ensureEngine()
	if err != nil {
		return err
	}

	p.progress.Set(Progress{})
	if err := engine.Load(ctx, item); err != nil {
		return fmt.Errorf("ошибка запуска воспроизведения: %w", err)
	}
	return nil
}

// Pause приостанавливает воспроизведение
func (p *Player) Pause() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.engine == nil {
		return nil
	}
	return p.engine.Pause()
}

// Resume возобновляет воспроизведение
func (p *Player) Resume() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.engine == nil {
		return nil
	}
	return p.engine.Resume()
}

// Stop останавливает воспроизведение
func (p *Player) Stop() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.engine == nil {
		return nil
	}
	return p.engine.Stop()
}

// IsPlaying возвращает true, если движок воспроизводит
func (p *Player) IsPlaying() bool {
	return p.playing.Get()
}

// State возвращает текущее состояние движка
func (p *Player) State() State {
	return p.state.Get()
}

// Progress возвращает последнюю известную позицию
func (p *Player) Progress() Progress {
	return p.progress.Get()
}

// ObservePlaying подписывает на изменения флага воспроизведения
func (p *Player) ObservePlaying() (<-chan bool, func()) {
	return p.playing.Subscribe()
}

// ObserveState подписывает на изменения состояния движка
func (p *Player) ObserveState() (<-chan State, func()) {
	return p.state.Subscribe()
}

// ObserveProgress подписывает на изменения позиции
func (p *Player) ObserveProgress() (<-chan Progress, func()) {
	return p.progress.Subscribe()
}

// Close освобождает движок и закрывает подписки
func (p *Player) Close() error {
	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return nil
	}
	p.closed = true
	engine, pumped := p.engine, p.pumped
	p.engine = nil
	p.mutex.Unlock()

	var err error
	if engine != nil {
		err = engine.Close()
		<-pumped
	}

	p.state.Close()
	p.playing.Close()
	p.progress.Close()
	return err
}

// ensureEngine должен вызываться под мьютексом
func (p *Player) ensureEngine() (Engine, error) {
	if p.engine != nil {
		return p.engine, nil
	}
	engine, err := p.factory()
	if err != nil {
		return nil, fmt.Errorf("ошибка создания движка воспроизведения: %w", err)
	}
	p.engine = engine
	p.pumped = make(chan struct{})
	go p.pump(engine.Events(), p.pumped)
	return engine, nil
}

// pump переносит события движка в наблюдаемые значения
func (p *Player) pump(events <-chan Event, done chan struct{}) {
	defer close(done)

	for ev := range events {
		switch ev.Kind {
		case EventState:
			p.state.Set(ev.State)
			p.playing.Set(ev.State == StatePlaying)
		case EventProgress:
			p.progress.Set(ev.Progress)
		case EventEnded:
			p.state.Set(StateIdle)
			p.playing.Set(false)
			p.hookMutex.Lock()
			fn := p.onEnded
			p.hookMutex.Unlock()
			if fn != nil {
				// Колбэк может снова вызвать Play, поэтому не блокируем разбор событий
				go fn()
			}
		case EventError:
			p.logger.Error("Ошибка воспроизведения", "err", ev.Err)
		}
	}

	p.state.Set(StateIdle)
	p.playing.Set(false)
}
