// Package playlist содержит контейнер состояния плеера: плейлисты, выбор и управление воспроизведением
package playlist

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/observable"
	"github.com/hazadus/go-mediaplayer/internal/player"
	"github.com/hazadus/go-mediaplayer/internal/store"
)

var (
	// ErrEmptyName возвращается для пустого имени плейлиста
	ErrEmptyName = errors.New("имя плейлиста не может быть пустым")
	// ErrNoPlaylistSelected возвращается, если операция требует выбранного плейлиста
	ErrNoPlaylistSelected = errors.New("плейлист не выбран")
	// ErrPlaylistNotFound возвращается для неизвестного ID плейлиста
	ErrPlaylistNotFound = errors.New("плейлист не найден")
	// ErrMediaNotFound возвращается для неизвестного ID медиафайла
	ErrMediaNotFound = errors.New("медиафайл не найден")
)

// Loader загружает сохраненную коллекцию
type Loader interface {
	Load(ctx context.Context) ([]media.Playlist, error)
}

// Persister принимает снимки коллекции на сохранение
type Persister interface {
	Enqueue(playlists []media.Playlist)
}

// Playback - управление движком воспроизведения
type Playback interface {
	Play(ctx context.Context, item media.Item) error
	Pause() error
	Resume() error
	Stop() error
	State() player.State
	IsPlaying() bool
	ObserveState() (<-chan player.State, func())
	ObservePlaying() (<-chan bool, func())
	ObserveProgress() (<-chan player.Progress, func())
	OnEnded(fn func())
	Close() error
}

// Options - необязательные параметры менеджера
type Options struct {
	Logger *log.Logger
	// AutoAdvance включает переход к следующему элементу по окончании текущего
	AutoAdvance bool
	// Intn возвращает случайное число в [0, n). По умолчанию rand.Intn
	Intn func(n int) int
}

// Manager хранит коллекцию плейлистов и текущий выбор.
// Все изменения сохраняются через Persister в порядке выполнения
type Manager struct {
	loader    Loader
	persister Persister
	playback  Playback
	logger    *log.Logger
	intn      func(n int) int

	mutex       sync.Mutex
	playlists   *observable.Value[[]media.Playlist]
	current     *observable.Value[media.Playlist]
	currentItem *observable.Value[media.Item]
	shuffle     *observable.Value[bool]
}

// NewManager загружает коллекцию и создает менеджер. Если сохраненные данные
// повреждены, ошибка записывается в лог и менеджер начинает с пустой коллекцией
func NewManager(ctx context.Context, loader Loader, persister Persister, playback Playback, opts Options) (*Manager, error) {
	m := &Manager{
		loader:      loader,
		persister:   persister,
		playback:    playback,
		logger:      opts.Logger,
		intn:        opts.Intn,
		playlists:   observable.NewValue([]media.Playlist{}),
		current:     observable.NewValue(media.Playlist{}),
		currentItem: observable.NewValue(media.Item{}),
		shuffle:     observable.NewValue(false),
	}
	if m.logger == nil {
		m.logger = log.Default()
	}
	if m.intn == nil {
		m.intn = rand.Intn
	}

	loaded, err := loader.Load(ctx)
	switch {
	case errors.Is(err, store.ErrCorrupted):
		m.logger.Error("Сохраненные плейлисты повреждены, начинаем с пустой коллекции", "err", err)
		loaded = []media.Playlist{}
	case err != nil:
		return nil, fmt.Errorf("ошибка загрузки плейлистов: %w", err)
	}

	m.playlists.Set(loaded)
	if len(loaded) > 0 {
		m.current.Set(loaded[0])
	}
	m.logger.Debug("Плейлисты загружены", "count", len(loaded))

	if opts.AutoAdvance {
		playback.OnEnded(m.advance)
	}
	return m, nil
}

// CreatePlaylist добавляет пустой плейлист. Если плейлист не выбран, выбирает новый
func (m *Manager) CreatePlaylist(name string) (media.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return media.Playlist{}, ErrEmptyName
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	playlist := media.NewPlaylist(name)
	playlists := append(m.snapshot(), playlist)
	if m.current.Get().ID == "" {
		m.current.Set(playlist)
	}
	m.commit(playlists)

	m.logger.Info("Плейлист создан", "id", playlist.ID, "name", name)
	return playlist, nil
}

// ImportPlaylist создает плейлист сразу с элементами
func (m *Manager) ImportPlaylist(name string, items []media.Item) (media.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return media.Playlist{}, ErrEmptyName
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	playlist := media.NewPlaylist(name)
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		// Повторяющиеся ID получают новые, чтобы ID были уникальны в плейлисте
		if item.ID == "" || seen[item.ID] {
			item.ID = media.NewID()
		}
		seen[item.ID] = true
		playlist = playlist.WithItem(item)
	}

	playlists := append(m.snapshot(), playlist)
	if m.current.Get().ID == "" {
		m.current.Set(playlist)
	}
	m.commit(playlists)

	m.logger.Info("Плейлист импортирован", "id", playlist.ID, "items", len(playlist.Items))
	return playlist, nil
}

// SelectPlaylist делает плейлист текущим. Воспроизведение не затрагивается
func (m *Manager) SelectPlaylist(id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	i := indexOf(m.playlists.Get(), id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPlaylistNotFound, id)
	}
	m.current.Set(m.playlists.Get()[i])
	return nil
}

// RenamePlaylist меняет имя плейлиста
func (m *Manager) RenamePlaylist(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	playlists := m.snapshot()
	i := indexOf(playlists, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPlaylistNotFound, id)
	}
	playlists[i].Name = name
	m.commit(playlists)
	return nil
}

// DeletePlaylist удаляет плейлист. Если он был текущим, выбирается первый
// оставшийся; если в нем был текущий элемент, воспроизведение останавливается
func (m *Manager) DeletePlaylist(id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	playlists := m.snapshot()
	i := indexOf(playlists, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPlaylistNotFound, id)
	}
	deleted := playlists[i]
	playlists = append(playlists[:i], playlists[i+1:]...)

	var stopErr error
	if current := m.currentItem.Get(); current.ID != "" && deleted.IndexOf(current.ID) >= 0 {
		stopErr = m.stopAndClear()
	}

	if m.current.Get().ID == id {
		if len(playlists) > 0 {
			m.current.Set(playlists[0])
		} else {
			m.current.Set(media.Playlist{})
		}
	}
	m.commit(playlists)

	m.logger.Info("Плейлист удален", "id", id, "name", deleted.Name)
	return stopErr
}

// AddMedia добавляет медиафайл в текущий плейлист
func (m *Manager) AddMedia(uri, title string, t media.Type, opts ...media.ItemOption) (media.Item, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	current := m.current.Get()
	if current.ID == "" {
		return media.Item{}, ErrNoPlaylistSelected
	}

	playlists := m.snapshot()
	i := indexOf(playlists, current.ID)
	if i < 0 {
		return media.Item{}, fmt.Errorf("%w: %s", ErrPlaylistNotFound, current.ID)
	}

	item := media.NewItem(uri, title, t, opts...)
	playlists[i] = playlists[i].WithItem(item)
	m.commit(playlists)

	m.logger.Debug("Медиафайл добавлен", "playlist", current.Name, "title", title, "type", t)
	return item, nil
}

// RemoveMedia удаляет медиафайл из текущего плейлиста. Если он воспроизводится,
// воспроизведение останавливается, а текущий элемент сбрасывается
func (m *Manager) RemoveMedia(itemID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	current := m.current.Get()
	if current.ID == "" {
		return ErrNoPlaylistSelected
	}

	playlists := m.snapshot()
	i := indexOf(playlists, current.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPlaylistNotFound, current.ID)
	}
	if playlists[i].IndexOf(itemID) < 0 {
		return fmt.Errorf("%w: %s", ErrMediaNotFound, itemID)
	}

	var stopErr error
	if m.currentItem.Get().ID == itemID {
		stopErr = m.stopAndClear()
	}

	playlists[i] = playlists[i].WithoutItem(itemID)
	m.commit(playlists)
	return stopErr
}

// PlayMedia делает элемент текущим и запускает его воспроизведение
func (m *Manager) PlayMedia(ctx context.Context, item media.Item) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.contains(item.ID) {
		return fmt.Errorf("%w: %s", ErrMediaNotFound, item.ID)
	}
	return m.playLocked(ctx, item)
}

// Pause приостанавливает воспроизведение
func (m *Manager) Pause() error {
	return m.playback.Pause()
}

// Resume возобновляет воспроизведение
func (m *Manager) Resume() error {
	return m.playback.Resume()
}

// Stop останавливает воспроизведение, текущий элемент сохраняется
func (m *Manager) Stop() error {
	return m.playback.Stop()
}

// TogglePause ставит на паузу, снимает с паузы или заново запускает текущий элемент
func (m *Manager) TogglePause(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch {
	case m.playback.IsPlaying():
		return m.playback.Pause()
	case m.playback.State() == player.StatePaused:
		return m.playback.Resume()
	case m.playback.State() == player.StatePreparing:
		// Повторный loadfile начал бы загрузку заново
		return nil
	}

	item := m.currentItem.Get()
	if item.ID == "" {
		return nil
	}
	return m.playLocked(ctx, item)
}

// PlayNext переходит к следующему элементу текущего плейлиста
func (m *Manager) PlayNext(ctx context.Context) error {
	return m.step(ctx, 1)
}

// PlayPrevious переходит к предыдущему элементу текущего плейлиста
func (m *Manager) PlayPrevious(ctx context.Context) error {
	return m.step(ctx, -1)
}

// ToggleShuffle переключает режим перемешивания и возвращает новое значение
func (m *Manager) ToggleShuffle() bool {
	return m.shuffle.Update(func(v bool) bool { return !v })
}

// Playlists возвращает копию коллекции
func (m *Manager) Playlists() []media.Playlist {
	playlists := m.playlists.Get()
	result := make([]media.Playlist, len(playlists))
	for i := range playlists {
		result[i] = playlists[i].Clone()
	}
	return result
}

// CurrentPlaylist возвращает текущий плейлист
func (m *Manager) CurrentPlaylist() (media.Playlist, bool) {
	p := m.current.Get()
	return p.Clone(), p.ID != ""
}

// CurrentItem возвращает текущий элемент
func (m *Manager) CurrentItem() (media.Item, bool) {
	item := m.currentItem.Get()
	return item, item.ID != ""
}

// IsPlaying возвращает true, если идет воспроизведение
func (m *Manager) IsPlaying() bool {
	return m.playback.IsPlaying()
}

// State возвращает состояние движка воспроизведения
func (m *Manager) State() player.State {
	return m.playback.State()
}

// Shuffle возвращает состояние режима перемешивания
func (m *Manager) Shuffle() bool {
	return m.shuffle.Get()
}

// ObservePlaylists подписывает на изменения коллекции
func (m *Manager) ObservePlaylists() (<-chan []media.Playlist, func()) {
	return m.playlists.Subscribe()
}

// ObserveCurrentPlaylist подписывает на изменения текущего плейлиста.
// Плейлист с пустым ID означает, что ничего не выбрано
func (m *Manager) ObserveCurrentPlaylist() (<-chan media.Playlist, func()) {
	return m.current.Subscribe()
}

// ObserveCurrentItem подписывает на изменения текущего элемента.
// Элемент с пустым ID означает, что ничего не выбрано
func (m *Manager) ObserveCurrentItem() (<-chan media.Item, func()) {
	return m.currentItem.Subscribe()
}

// ObserveState подписывает на состояние движка
func (m *Manager) ObserveState() (<-chan player.State, func()) {
	return m.playback.ObserveState()
}

// ObservePlaying подписывает на изменения флага воспроизведения
func (m *Manager) ObservePlaying() (<-chan bool, func()) {
	return m.playback.ObservePlaying()
}

// ObserveProgress подписывает на позицию воспроизведения
func (m *Manager) ObserveProgress() (<-chan player.Progress, func()) {
	return m.playback.ObserveProgress()
}

// ObserveShuffle подписывает на изменения режима перемешивания
func (m *Manager) ObserveShuffle() (<-chan bool, func()) {
	return m.shuffle.Subscribe()
}

// Close освобождает движок воспроизведения и закрывает подписки
func (m *Manager) Close() error {
	err := m.playback.Close()
	m.playlists.Close()
	m.current.Close()
	m.currentItem.Close()
	m.shuffle.Close()
	return err
}

// step выбирает соседний или случайный элемент. Если текущий элемент
// не найден в текущем плейлисте, ничего не делает
func (m *Manager) step(ctx context.Context, delta int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	items := m.current.Get().Items
	i := media.Playlist{Items: items}.IndexOf(m.currentItem.Get().ID)
	if i < 0 || len(items) == 0 {
		return nil
	}

	var next int
	if m.shuffle.Get() {
		next = m.intn(len(items))
	} else {
		next = (i + delta + len(items)) % len(items)
	}
	return m.playLocked(ctx, items[next])
}

// advance вызывается, когда элемент доиграл до конца
func (m *Manager) advance() {
	if err := m.PlayNext(context.Background()); err != nil {
		m.logger.Error("Ошибка перехода к следующему элементу", "err", err)
	}
}

// playLocked должен вызываться под мьютексом
func (m *Manager) playLocked(ctx context.Context, item media.Item) error {
	m.currentItem.Set(item)
	m.logger.Info("Воспроизведение", "title", item.Title, "type", item.Type)
	return m.playback.Play(ctx, item)
}

// stopAndClear должен вызываться под мьютексом
func (m *Manager) stopAndClear() error {
	m.currentItem.Set(media.Item{})
	if err := m.playback.Stop(); err != nil {
		return fmt.Errorf("ошибка остановки воспроизведения: %w", err)
	}
	return nil
}

// snapshot возвращает копию среза коллекции для изменения. Должен вызываться под мьютексом
func (m *Manager) snapshot() []media.Playlist {
	playlists := m.playlists.Get()
	result := make([]media.Playlist, len(playlists), len(playlists)+1)
	copy(result, playlists)
	return result
}

// commit публикует новую коллекцию, обновляет текущий плейлист и ставит снимок
// на сохранение. Должен вызываться под мьютексом
func (m *Manager) commit(playlists []media.Playlist) {
	m.playlists.Set(playlists)
	if id := m.current.Get().ID; id != "" {
		if i := indexOf(playlists, id); i >= 0 {
			m.current.Set(playlists[i])
		}
	}
	m.persister.Enqueue(playlists)
}

// contains должен вызываться под мьютексом
func (m *Manager) contains(itemID string) bool {
	if itemID == "" {
		return false
	}
	for _, p := range m.playlists.Get() {
		if p.IndexOf(itemID) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(playlists []media.Playlist, id string) int {
	for i := range playlists {
		if playlists[i].ID == id {
			return i
		}
	}
	return -1
}
