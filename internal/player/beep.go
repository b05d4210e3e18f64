package player

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/hazadus/go-mediaplayer/internal/media"
)

// Частота, с которой инициализируются динамики. Остальные потоки передискретизируются
const speakerRate beep.SampleRate = 44100

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Opener открывает источник по локатору
type Opener func(ctx context.Context, locator string) (io.ReadCloser, error)

type decodeFunc func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".mp3": mp3.Decode,
	".wav": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(rc)
	},
	".ogg": vorbis.Decode,
}

// BeepEngine воспроизводит аудио через gopxl/beep
type BeepEngine struct {
	open   Opener
	logger *log.Logger
	events chan Event

	mutex      sync.Mutex
	generation int
	closed     bool
	isPaused   bool
	source     io.ReadCloser
	streamer   beep.StreamSeekCloser
	ctrl       *beep.Ctrl
	cancel     context.CancelFunc
}

// NewBeepEngine создает движок. Динамики инициализируются при первом воспроизведении
func NewBeepEngine(open Opener, logger *log.Logger) *BeepEngine {
	return &BeepEngine{
		open:   open,
		logger: logger,
		events: make(chan Event, 32),
	}
}

// Events возвращает канал событий движка
func (e *BeepEngine) Events() <-chan Event {
	return e.events
}

// Load начинает воспроизведение элемента, останавливая текущий
func (e *BeepEngine) Load(ctx context.Context, item media.Item) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed {
		return fmt.Errorf("движок закрыт")
	}
	if item.Type != media.Audio {
		return fmt.Errorf("%w: %s", ErrUnsupported, item.Type)
	}
	decode, err := decoderFor(item.URI)
	if err != nil {
		return err
	}

	e.stopInternal()
	e.generation++
	generation := e.generation
	e.emit(Event{Kind: EventState, State: StatePreparing})

	source, err := e.open(ctx, item.URI)
	if err != nil {
		e.emit(Event{Kind: EventState, State: StateIdle})
		return fmt.Errorf("ошибка открытия источника: %w", err)
	}

	streamer, format, err := decode(source)
	if err != nil {
		source.Close()
		e.emit(Event{Kind: EventState, State: StateIdle})
		return fmt.Errorf("ошибка декодирования: %w", err)
	}

	if err := initSpeaker(); err != nil {
		streamer.Close()
		source.Close()
		e.emit(Event{Kind: EventState, State: StateIdle})
		return err
	}

	var output beep.Streamer = streamer
	if format.SampleRate != speakerRate {
		output = beep.Resample(4, format.SampleRate, speakerRate, streamer)
	}

	e.source = source
	e.streamer = streamer
	e.ctrl = &beep.Ctrl{Streamer: output}
	e.isPaused = false

	monitorCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	speaker.Play(beep.Seq(e.ctrl, beep.Callback(func() {
		// Колбэк вызывается под блокировкой динамиков, поэтому уходим в горутину
		go e.finished(generation)
	})))

	e.emit(Event{Kind: EventState, State: StatePlaying})
	go e.monitorProgress(monitorCtx, streamer, format)

	e.logger.Debug("Воспроизведение начато", "uri", item.URI, "rate", format.SampleRate)
	return nil
}

// Pause приостанавливает воспроизведение
func (e *BeepEngine) Pause() error {
	return e.setPaused(true)
}

// Resume возобновляет воспроизведение
func (e *BeepEngine) Resume() error {
	return e.setPaused(false)
}

func (e *BeepEngine) setPaused(paused bool) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.ctrl == nil || e.isPaused == paused {
		return nil
	}

	speaker.Lock()
	e.ctrl.Paused = paused
	speaker.Unlock()
	e.isPaused = paused

	if paused {
		e.emit(Event{Kind: EventState, State: StatePaused})
	} else {
		e.emit(Event{Kind: EventState, State: StatePlaying})
	}
	return nil
}

// Stop останавливает воспроизведение
func (e *BeepEngine) Stop() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.ctrl == nil {
		return nil
	}
	e.generation++
	e.stopInternal()
	e.emit(Event{Kind: EventState, State: StateIdle})
	return nil
}

// Close останавливает воспроизведение и закрывает канал событий
func (e *BeepEngine) Close() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed {
		return nil
	}
	e.generation++
	e.stopInternal()
	e.closed = true
	close(e.events)
	return nil
}

// stopInternal должен вызываться под мьютексом
func (e *BeepEngine) stopInternal() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.ctrl != nil {
		speaker.Clear()
		e.ctrl = nil
	}
	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	if e.source != nil {
		e.source.Close()
		e.source = nil
	}
	e.isPaused = false
}

// finished вызывается, когда поток доиграл до конца
func (e *BeepEngine) finished(generation int) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	// Элемент уже заменен или остановлен
	if e.closed || generation != e.generation {
		return
	}
	e.stopInternal()
	e.emit(Event{Kind: EventEnded})
}

// emit не блокирует: при переполненном буфере событие отбрасывается.
// Должен вызываться под мьютексом
func (e *BeepEngine) emit(ev Event) {
	if e.closed {
		return
	}
	select {
	case e.events <- ev:
	default:
		e.logger.Warn("Буфер событий переполнен", "kind", ev.Kind)
	}
}

// monitorProgress раз в секунду отправляет текущую позицию
func (e *BeepEngine) monitorProgress(ctx context.Context, streamer beep.StreamSeekCloser, format beep.Format) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastPosition := -1
	stuckCount := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mutex.Lock()
			if ctx.Err() != nil {
				e.mutex.Unlock()
				return
			}

			speaker.Lock()
			position := streamer.Position()
			length := streamer.Len()
			speaker.Unlock()

			if !e.isPaused && position == lastPosition {
				stuckCount++
			} else {
				stuckCount = 0
			}
			lastPosition = position

			select {
			case e.events <- Event{Kind: EventProgress, Progress: Progress{
				Position:   format.SampleRate.D(position),
				Duration:   format.SampleRate.D(length),
				StuckCount: stuckCount,
			}}:
			default:
				// Пропускаем обновление, если канал занят
			}
			e.mutex.Unlock()
		}
	}
}

func initSpeaker() error {
	speakerOnce.Do(func() {
		err := speaker.Init(speakerRate, speakerRate.N(time.Second/5))
		if err != nil {
			speakerErr = fmt.Errorf("ошибка инициализации динамиков: %w", err)
		}
	})
	return speakerErr
}

// decoderFor выбирает декодер по расширению пути локатора
func decoderFor(locator string) (decodeFunc, error) {
	p := locator
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.ToLower(path.Ext(p))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: расширение %q", ErrUnsupported, ext)
	}
	return decode, nil
}
