// Package tracklist содержит модель экрана содержимого плейлиста для TUI
package tracklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
)

// PlayMsg отправляется при выборе медиафайла для воспроизведения
type PlayMsg struct {
	Item media.Item
}

// AddMsg запрашивает добавление медиафайла
type AddMsg struct{}

// RemoveMsg запрашивает удаление медиафайла из плейлиста
type RemoveMsg struct {
	Item media.Item
}

// ShuffleMsg переключает режим перемешивания
type ShuffleMsg struct{}

// NowPlayingMsg открывает экран воспроизведения
type NowPlayingMsg struct{}

// GoBackMsg возвращает к списку плейлистов
type GoBackMsg struct{}

type mediaItem struct {
	item    media.Item
	current bool
}

func (i mediaItem) FilterValue() string {
	return fmt.Sprintf("%s %s", i.item.Artist, i.item.Title)
}

type mediaItemDelegate struct{}

func (d mediaItemDelegate) Height() int                             { return 1 }
func (d mediaItemDelegate) Spacing() int                            { return 0 }
func (d mediaItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d mediaItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(mediaItem)
	if !ok {
		return
	}

	// Строка таблицы: отметка | Исполнитель | Название | Тип
	marker := " "
	if i.current {
		marker = "♪"
	}
	str := fmt.Sprintf("%s %-20s %-50s %s",
		marker,
		utils.TruncateString(i.item.Artist, 20),
		utils.TruncateString(i.item.Title, 50),
		i.item.Type)

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана содержимого плейлиста
type Model struct {
	list    list.Model
	shuffle bool
}

// NewModel создает модель для плейлиста. currentItemID отмечает играющий файл
func NewModel(playlist media.Playlist, currentItemID string, shuffle bool) *Model {
	l := list.New(nil, mediaItemDelegate{}, 0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	m := &Model{list: l}
	m.SetPlaylist(playlist, currentItemID, shuffle)
	return m
}

// SetPlaylist обновляет данные модели без пересоздания
func (m *Model) SetPlaylist(playlist media.Playlist, currentItemID string, shuffle bool) {
	items := make([]list.Item, len(playlist.Items))
	for i, item := range playlist.Items {
		items[i] = mediaItem{item: item, current: item.ID == currentItemID}
	}

	m.shuffle = shuffle
	m.list.Title = playlist.Name
	if shuffle {
		m.list.Title += " 🔀"
	}

	index := m.list.Index()
	m.list.SetItems(items)
	if index >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

// Selected возвращает медиафайл под курсором
func (m *Model) Selected() (media.Item, bool) {
	item, ok := m.list.SelectedItem().(mediaItem)
	if !ok {
		return media.Item{}, false
	}
	return item.item, true
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "esc", "q":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			return m, func() tea.Msg { return GoBackMsg{} }

		case "enter":
			if item, ok := m.Selected(); ok {
				return m, func() tea.Msg { return PlayMsg{Item: item} }
			}
			return m, nil

		case "a":
			return m, func() tea.Msg { return AddMsg{} }

		case "x", "delete":
			if item, ok := m.Selected(); ok {
				return m, func() tea.Msg { return RemoveMsg{Item: item} }
			}
			return m, nil

		case "s":
			return m, func() tea.Msg { return ShuffleMsg{} }

		case "p":
			return m, func() tea.Msg { return NowPlayingMsg{} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	extraHelp := helpStyle.Render("Enter: воспроизвести • a: добавить • x: удалить • s: перемешать • p: плеер • esc: назад")
	if len(m.list.Items()) == 0 {
		return titleStyle.Render(m.list.Title) + "\n\n" +
			titleStyle.Render("В плейлисте нет файлов") + "\n\n" + extraHelp
	}
	return m.list.View() + "\n" + extraHelp
}
