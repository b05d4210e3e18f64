// Package playlists содержит модель экрана списка плейлистов для TUI
package playlists

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
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// OpenMsg отправляется при выборе плейлиста
type OpenMsg struct {
	Playlist media.Playlist
}

// CreateMsg запрашивает создание нового плейлиста
type CreateMsg struct{}

// RenameMsg запрашивает переименование плейлиста
type RenameMsg struct {
	Playlist media.Playlist
}

// DeleteMsg запрашивает удаление плейлиста
type DeleteMsg struct {
	Playlist media.Playlist
}

type playlistItem struct {
	playlist media.Playlist
	current  bool
}

func (i playlistItem) FilterValue() string {
	return i.playlist.Name
}

type playlistItemDelegate struct{}

func (d playlistItemDelegate) Height() int                             { return 1 }
func (d playlistItemDelegate) Spacing() int                            { return 0 }
func (d playlistItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d playlistItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(playlistItem)
	if !ok {
		return
	}

	marker := " "
	if i.current {
		marker = "*"
	}
	str := fmt.Sprintf("%s %-40s %d", marker, utils.TruncateString(i.playlist.Name, 40), len(i.playlist.Items))

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана списка плейлистов
type Model struct {
	list     list.Model
	quitting bool
}

// NewModel создает модель экрана. currentID отмечает текущий плейлист
func NewModel(playlists []media.Playlist, currentID string) *Model {
	l := list.New(nil, playlistItemDelegate{}, 0, 0)
	l.Title = "Плейлисты"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	m := &Model{list: l}
	m.SetPlaylists(playlists, currentID)
	return m
}

// SetPlaylists заменяет содержимое списка, сохраняя позицию курсора
func (m *Model) SetPlaylists(playlists []media.Playlist, currentID string) {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p, current: p.ID == currentID}
	}
	index := m.list.Index()
	m.list.SetItems(items)
	if index >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

// Selected возвращает плейлист под курсором
func (m *Model) Selected() (media.Playlist, bool) {
	item, ok := m.list.SelectedItem().(playlistItem)
	if !ok {
		return media.Playlist{}, false
	}
	return item.playlist, true
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
		// Во время фильтрации клавиши уходят в строку поиска
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit

		case "n":
			return m, func() tea.Msg { return CreateMsg{} }

		case "enter":
			if p, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenMsg{Playlist: p} }
			}
			return m, nil

		case "r":
			if p, ok := m.Selected(); ok {
				return m, func() tea.Msg { return RenameMsg{Playlist: p} }
			}
			return m, nil

		case "d":
			if p, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteMsg{Playlist: p} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}
	if len(m.list.Items()) == 0 {
		return titleStyle.Render("Плейлистов пока нет") + "\n\n" +
			helpStyle.Render("n: создать плейлист • q: выход")
	}

	extraHelp := helpStyle.Render("Enter: открыть • n: создать • r: переименовать • d: удалить • q: выход")
	return m.list.View() + "\n" + extraHelp
}
