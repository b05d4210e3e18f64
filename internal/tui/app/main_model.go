// Package app содержит основную логику TUI приложения
package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/metadata"
	"github.com/hazadus/go-mediaplayer/internal/playlist"
	"github.com/hazadus/go-mediaplayer/internal/tui/input"
	tuiPlayer "github.com/hazadus/go-mediaplayer/internal/tui/player"
	"github.com/hazadus/go-mediaplayer/internal/tui/playlists"
	"github.com/hazadus/go-mediaplayer/internal/tui/tracklist"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// PlaylistsScreen - экран списка плейлистов
	PlaylistsScreen ScreenType = iota
	// TracklistScreen - экран содержимого плейлиста
	TracklistScreen
	// PlayerScreen - экран плеера
	PlayerScreen
	// InputScreen - экран ввода
	InputScreen
)

// Назначения формы ввода
const (
	purposeCreatePlaylist = "create-playlist"
	purposeRenamePlaylist = "rename-playlist"
	purposeAddMedia       = "add-media"
)

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).PaddingLeft(2)

// resultMsg несет результат фоновой операции
type resultMsg struct {
	err error
}

type playlistsChangedMsg struct{}
type currentItemChangedMsg struct{}

// MainModel представляет главную модель TUI
type MainModel struct {
	ctx       context.Context
	manager   *playlist.Manager
	extractor *metadata.Extractor

	currentScreen  ScreenType
	previousScreen ScreenType
	playlistsModel *playlists.Model
	tracklistModel *tracklist.Model
	playerModel    *tuiPlayer.Model
	inputModel     *input.Model

	// Плейлист, который переименовывается
	renaming media.Playlist

	playlistUpdates <-chan []media.Playlist
	itemUpdates     <-chan media.Item
	cancels         []func()

	status string
	size   tea.WindowSizeMsg
}

// NewMainModel создает новую главную модель
func NewMainModel(ctx context.Context, manager *playlist.Manager, extractor *metadata.Extractor) *MainModel {
	current, _ := manager.CurrentPlaylist()
	item, _ := manager.CurrentItem()

	m := &MainModel{
		ctx:            ctx,
		manager:        manager,
		extractor:      extractor,
		currentScreen:  PlaylistsScreen,
		playlistsModel: playlists.NewModel(manager.Playlists(), current.ID),
		tracklistModel: tracklist.NewModel(current, item.ID, manager.Shuffle()),
		playerModel:    tuiPlayer.NewModel(manager),
	}

	var cancel func()
	m.playlistUpdates, cancel = manager.ObservePlaylists()
	m.cancels = append(m.cancels, cancel)
	m.itemUpdates, cancel = manager.ObserveCurrentItem()
	m.cancels = append(m.cancels, cancel)

	return m
}

// Screen возвращает текущий экран
func (m *MainModel) Screen() ScreenType {
	return m.currentScreen
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(
		m.playlistsModel.Init(),
		m.playerModel.Init(),
		m.waitPlaylists(),
		m.waitCurrentItem(),
	)
}

func (m *MainModel) waitPlaylists() tea.Cmd {
	ch := m.playlistUpdates
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return playlistsChangedMsg{}
	}
}

func (m *MainModel) waitCurrentItem() tea.Cmd {
	ch := m.itemUpdates
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return currentItemChangedMsg{}
	}
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			_ = m.manager.Stop()
			return m, tea.Quit
		}
		// Любая клавиша скрывает последнее сообщение об ошибке
		m.status = ""

	case tea.WindowSizeMsg:
		// Размеры нужны всем экранам, чтобы при переключении не было скачков
		m.size = msg
		height := msg
		height.Height--
		m.playlistsModel, _ = m.playlistsModel.Update(height)
		m.tracklistModel, _ = m.tracklistModel.Update(height)
		m.playerModel, _ = m.playerModel.Update(height)
		if m.inputModel != nil {
			m.inputModel, _ = m.inputModel.Update(height)
		}
		return m, nil

	case playlistsChangedMsg:
		m.refresh()
		return m, m.waitPlaylists()

	case currentItemChangedMsg:
		m.refresh()
		return m, m.waitCurrentItem()

	case resultMsg:
		m.setError(msg.err)
		m.refresh()
		return m, nil

	// Экран плейлистов
	case playlists.OpenMsg:
		if err := m.manager.SelectPlaylist(msg.Playlist.ID); err != nil {
			m.setError(err)
			return m, nil
		}
		m.refresh()
		m.currentScreen = TracklistScreen
		return m, nil

	case playlists.CreateMsg:
		return m, m.openInput(input.NewModel("Новый плейлист", purposeCreatePlaylist,
			input.Field{Label: "Название:", Placeholder: "Мой плейлист"}))

	case playlists.RenameMsg:
		m.renaming = msg.Playlist
		return m, m.openInput(input.NewModel("Переименовать плейлист", purposeRenamePlaylist,
			input.Field{Label: "Название:", Value: msg.Playlist.Name}))

	case playlists.DeleteMsg:
		m.setError(m.manager.DeletePlaylist(msg.Playlist.ID))
		m.refresh()
		return m, nil

	// Экран плейлиста
	case tracklist.PlayMsg:
		m.currentScreen = PlayerScreen
		return m, m.run(func(ctx context.Context) error {
			return m.manager.PlayMedia(ctx, msg.Item)
		})

	case tracklist.AddMsg:
		return m, m.openInput(input.NewModel("Добавить файл", purposeAddMedia,
			input.Field{Label: "Путь или URL:", Placeholder: "~/Music/song.mp3"},
			input.Field{Label: "Название:", Placeholder: "из тегов или имени файла"},
		))

	case tracklist.RemoveMsg:
		m.setError(m.manager.RemoveMedia(msg.Item.ID))
		m.refresh()
		return m, nil

	case tracklist.ShuffleMsg:
		m.manager.ToggleShuffle()
		m.refresh()
		return m, nil

	case tracklist.NowPlayingMsg:
		m.currentScreen = PlayerScreen
		return m, nil

	case tracklist.GoBackMsg:
		m.currentScreen = PlaylistsScreen
		return m, nil

	// Экран плеера
	case tuiPlayer.ControlMsg:
		return m, m.control(msg.Action)

	case tuiPlayer.GoBackMsg:
		if _, ok := m.manager.CurrentPlaylist(); ok {
			m.currentScreen = TracklistScreen
		} else {
			m.currentScreen = PlaylistsScreen
		}
		return m, nil

	// Форма ввода
	case input.CancelledMsg:
		m.closeInput()
		return m, nil

	case input.SubmittedMsg:
		if err := m.submit(msg); err != nil {
			if m.inputModel != nil {
				m.inputModel.SetError(err.Error())
			}
			return m, nil
		}
		m.closeInput()
		m.refresh()
		return m, nil
	}

	return m, m.forward(msg)
}

// forward передает сообщение активному экрану. Экран плеера получает
// служебные сообщения всегда, чтобы не терять подписки
func (m *MainModel) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.currentScreen {
	case PlaylistsScreen:
		m.playlistsModel, cmd = m.playlistsModel.Update(msg)
	case TracklistScreen:
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)
	case InputScreen:
		if m.inputModel != nil {
			m.inputModel, cmd = m.inputModel.Update(msg)
		}
	}

	if _, isKey := msg.(tea.KeyMsg); isKey && m.currentScreen != PlayerScreen {
		return cmd
	}
	var playerCmd tea.Cmd
	m.playerModel, playerCmd = m.playerModel.Update(msg)
	return tea.Batch(cmd, playerCmd)
}

func (m *MainModel) control(action tuiPlayer.Action) tea.Cmd {
	switch action {
	case tuiPlayer.ActionTogglePause:
		return m.run(m.manager.TogglePause)
	case tuiPlayer.ActionNext:
		return m.run(m.manager.PlayNext)
	case tuiPlayer.ActionPrevious:
		return m.run(m.manager.PlayPrevious)
	case tuiPlayer.ActionShuffle:
		m.manager.ToggleShuffle()
		m.refresh()
	case tuiPlayer.ActionStop:
		m.setError(m.manager.Stop())
	}
	return nil
}

// run выполняет операцию с воспроизведением вне цикла обновления:
// загрузка потока может занять время
func (m *MainModel) run(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{err: fn(ctx)}
	}
}

func (m *MainModel) submit(msg input.SubmittedMsg) error {
	switch msg.Purpose {
	case purposeCreatePlaylist:
		created, err := m.manager.CreatePlaylist(msg.Values[0])
		if err != nil {
			return err
		}
		return m.manager.SelectPlaylist(created.ID)

	case purposeRenamePlaylist:
		return m.manager.RenamePlaylist(m.renaming.ID, msg.Values[0])

	case purposeAddMedia:
		desc, err := m.extractor.Describe(msg.Values[0])
		if err != nil {
			return err
		}
		title := desc.Info.Title
		if len(msg.Values) > 1 && msg.Values[1] != "" {
			title = msg.Values[1]
		}
		_, err = m.manager.AddMedia(desc.URI, title, desc.Type, desc.Info.Options()...)
		return err
	}
	return errors.New("неизвестная форма: " + msg.Purpose)
}

func (m *MainModel) openInput(model *input.Model) tea.Cmd {
	m.previousScreen = m.currentScreen
	m.currentScreen = InputScreen
	m.inputModel = model
	if m.size.Width > 0 {
		m.inputModel, _ = m.inputModel.Update(m.size)
	}
	return m.inputModel.Init()
}

func (m *MainModel) closeInput() {
	m.currentScreen = m.previousScreen
	m.inputModel = nil
}

// refresh перечитывает состояние менеджера в экраны списков
func (m *MainModel) refresh() {
	current, _ := m.manager.CurrentPlaylist()
	item, _ := m.manager.CurrentItem()
	m.playlistsModel.SetPlaylists(m.manager.Playlists(), current.ID)
	m.tracklistModel.SetPlaylist(current, item.ID, m.manager.Shuffle())
}

func (m *MainModel) setError(err error) {
	if err != nil {
		m.status = "Ошибка: " + err.Error()
	}
}

// View отображает интерфейс
func (m *MainModel) View() string {
	var view string
	switch m.currentScreen {
	case PlaylistsScreen:
		view = m.playlistsModel.View()
	case TracklistScreen:
		view = m.tracklistModel.View()
	case PlayerScreen:
		view = m.playerModel.View()
	case InputScreen:
		if m.inputModel == nil {
			return "Ошибка: форма ввода не инициализирована"
		}
		view = m.inputModel.View()
	default:
		return "Неизвестный экран"
	}

	if m.status != "" {
		view += "\n" + statusStyle.Render(m.status)
	}
	return view
}

// Close отменяет подписки
func (m *MainModel) Close() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
	m.playerModel.Close()
}
