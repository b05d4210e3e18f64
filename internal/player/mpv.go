package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/DexterLB/mpvipc"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/hazadus/go-mediaplayer/internal/media"
)

// Идентификаторы наблюдаемых свойств mpv
const (
	pauseProperty = iota + 1
	timePosProperty
	durationProperty
)

var observedProperties = map[int]string{
	pauseProperty:    "pause",
	timePosProperty:  "time-pos",
	durationProperty: "duration",
}

// MPVEngine управляет процессом mpv через IPC-сокет. Воспроизводит аудио и видео
type MPVEngine struct {
	logger     *log.Logger
	command    *exec.Cmd
	conn       *mpvipc.Connection
	socketPath string

	events       chan Event
	stopListener chan struct{}
	listenerDone chan struct{}

	mutex    sync.Mutex
	closed   bool
	progress Progress
}

// NewMPVEngine запускает mpv в режиме ожидания и подключается к нему
func NewMPVEngine(mpvPath string, logger *log.Logger) (*MPVEngine, error) {
	socketPath := filepath.Join(os.TempDir(), "mediaplayer", "mpv-"+uuid.NewString()+".sock")
	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории для сокета: %w", err)
	}

	cmd := exec.Command(mpvPath, mpvArgs(socketPath)...)
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ошибка запуска mpv: %w", err)
	}

	conn := mpvipc.NewConnection(socketPath)
	if err := openWithTimeout(conn, 5*time.Second); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("ошибка подключения к mpv: %w", err)
	}

	for id, property := range observedProperties {
		if _, err := conn.Call("observe_property", id, property); err != nil {
			conn.Close()
			cmd.Process.Kill()
			cmd.Wait()
			return nil, fmt.Errorf("ошибка подписки на свойство %q: %w", property, err)
		}
	}

	e := &MPVEngine{
		logger:       logger,
		command:      cmd,
		conn:         conn,
		socketPath:   socketPath,
		events:       make(chan Event, 32),
		listenerDone: make(chan struct{}),
	}

	mpvEvents, stop := conn.NewEventListener()
	e.stopListener = stop
	go e.listen(mpvEvents)

	return e, nil
}

func mpvArgs(socketPath string) []string {
	return []string{
		"--idle",
		"--quiet",
		"--no-input-terminal",
		"--keep-open=no",
		"--force-window=no",
		"--input-ipc-server=" + socketPath,
	}
}

// openWithTimeout ждет, пока mpv создаст сокет
func openWithTimeout(conn *mpvipc.Connection, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		err := conn.Open()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		default:
			runtime.Gosched()
			time.Sleep(20 * time.Millisecond)
		}
	}
}

// Events возвращает канал событий движка
func (e *MPVEngine) Events() <-chan Event {
	return e.events
}

// Load заменяет плейлист mpv одним файлом и снимает паузу
func (e *MPVEngine) Load(_ context.Context, item media.Item) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed {
		return fmt.Errorf("движок закрыт")
	}

	e.emitLocked(Event{Kind: EventState, State: StatePreparing})
	if _, err := e.conn.Call("loadfile", item.URI, "replace"); err != nil {
		e.emitLocked(Event{Kind: EventState, State: StateIdle})
		return fmt.Errorf("ошибка загрузки файла в mpv: %w", err)
	}
	if err := e.conn.Set("pause", false); err != nil {
		return fmt.Errorf("ошибка запуска воспроизведения в mpv: %w", err)
	}
	return nil
}

// Pause ставит mpv на паузу
func (e *MPVEngine) Pause() error {
	return e.conn.Set("pause", true)
}

// Resume снимает паузу
func (e *MPVEngine) Resume() error {
	return e.conn.Set("pause", false)
}

// Stop останавливает воспроизведение и очищает плейлист mpv
func (e *MPVEngine) Stop() error {
	_, err := e.conn.Call("stop")
	return err
}

// Close завершает процесс mpv
func (e *MPVEngine) Close() error {
	e.mutex.Lock()
	if e.closed {
		e.mutex.Unlock()
		return nil
	}
	e.closed = true
	e.mutex.Unlock()

	close(e.stopListener)
	select {
	case <-e.listenerDone:
	case <-time.After(2 * time.Second):
		e.logger.Warn("Слушатель событий mpv не завершился вовремя")
	}
	e.conn.Close()

	if err := e.command.Process.Signal(os.Interrupt); err != nil {
		e.logger.Warn("Не удалось отправить SIGINT процессу mpv", "err", err)
		e.command.Process.Kill()
	}
	e.command.Wait()

	if err := os.Remove(e.socketPath); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("Не удалось удалить сокет mpv", "err", err)
	}

	e.mutex.Lock()
	close(e.events)
	e.mutex.Unlock()
	return nil
}

func (e *MPVEngine) listen(mpvEvents <-chan *mpvipc.Event) {
	defer close(e.listenerDone)

	for event := range mpvEvents {
		e.mutex.Lock()
		if ev, ok := translateEvent(event, &e.progress); ok {
			e.emitLocked(ev)
		}
		e.mutex.Unlock()
	}
}

// emitLocked не блокирует. Должен вызываться под мьютексом
func (e *MPVEngine) emitLocked(ev Event) {
	if e.closed {
		return
	}
	select {
	case e.events <- ev:
	default:
		e.logger.Warn("Буфер событий переполнен", "kind", ev.Kind)
	}
}

// translateEvent переводит событие mpv в событие движка.
// progress накапливает позицию и длительность между событиями
func translateEvent(event *mpvipc.Event, progress *Progress) (Event, bool) {
	switch event.ID {
	case pauseProperty:
		paused, ok := event.Data.(bool)
		if !ok {
			return Event{}, false
		}
		if paused {
			return Event{Kind: EventState, State: StatePaused}, true
		}
		return Event{Kind: EventState, State: StatePlaying}, true
	case timePosProperty:
		pos, ok := event.Data.(float64)
		if !ok {
			return Event{}, false
		}
		progress.Position = seconds(pos)
		return Event{Kind: EventProgress, Progress: *progress}, true
	case durationProperty:
		dur, ok := event.Data.(float64)
		if !ok {
			return Event{}, false
		}
		progress.Duration = seconds(dur)
		return Event{Kind: EventProgress, Progress: *progress}, true
	}

	switch event.Name {
	case "file-loaded":
		*progress = Progress{}
		return Event{Kind: EventState, State: StatePlaying}, true
	case "end-file":
		switch event.Reason {
		case "eof":
			return Event{Kind: EventEnded}, true
		case "error":
			return Event{Kind: EventError, Err: fmt.Errorf("mpv не смог воспроизвести файл")}, true
		case "stop", "quit":
			// stop приходит и при замене файла через loadfile
			return Event{}, false
		}
	case "idle":
		return Event{Kind: EventState, State: StateIdle}, true
	}
	return Event{}, false
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
