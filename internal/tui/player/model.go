// Package player содержит модель экрана воспроизведения для TUI
package player

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/player"
	"github.com/hazadus/go-mediaplayer/internal/streaming"
	"github.com/hazadus/go-mediaplayer/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff")).
			MarginBottom(1)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			MarginBottom(1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)
)

// Source - наблюдаемое состояние воспроизведения
type Source interface {
	CurrentItem() (media.Item, bool)
	IsPlaying() bool
	Shuffle() bool
	ObserveCurrentItem() (<-chan media.Item, func())
	ObservePlaying() (<-chan bool, func())
	ObserveProgress() (<-chan player.Progress, func())
	ObserveShuffle() (<-chan bool, func())
}

// Action - команда управления воспроизведением
type Action int

const (
	// ActionTogglePause - пауза или продолжение
	ActionTogglePause Action = iota
	// ActionNext - следующий файл
	ActionNext
	// ActionPrevious - предыдущий файл
	ActionPrevious
	// ActionShuffle - переключение перемешивания
	ActionShuffle
	// ActionStop - остановка
	ActionStop
)

// ControlMsg запрашивает действие над воспроизведением
type ControlMsg struct {
	Action Action
}

// GoBackMsg отправляется для возврата к списку
type GoBackMsg struct{}

type itemMsg struct{ item media.Item }
type playingMsg struct{ playing bool }
type progressMsg struct{ progress player.Progress }
type shuffleMsg struct{ shuffle bool }

// Model представляет модель экрана воспроизведения
type Model struct {
	source      Source
	progressBar progress.Model

	item     media.Item
	hasItem  bool
	playing  bool
	shuffle  bool
	progress player.Progress

	items    <-chan media.Item
	playings <-chan bool
	progs    <-chan player.Progress
	shuffles <-chan bool
	cancels  []func()

	width int
}

// NewModel создает модель и подписывается на изменения состояния
func NewModel(source Source) *Model {
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	m := &Model{
		source:      source,
		progressBar: prog,
		playing:     source.IsPlaying(),
		shuffle:     source.Shuffle(),
	}
	m.item, m.hasItem = source.CurrentItem()

	var cancel func()
	m.items, cancel = source.ObserveCurrentItem()
	m.cancels = append(m.cancels, cancel)
	m.playings, cancel = source.ObservePlaying()
	m.cancels = append(m.cancels, cancel)
	m.progs, cancel = source.ObserveProgress()
	m.cancels = append(m.cancels, cancel)
	m.shuffles, cancel = source.ObserveShuffle()
	m.cancels = append(m.cancels, cancel)

	return m
}

// Init запускает прослушивание подписок
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		listen(m.items, func(v media.Item) tea.Msg { return itemMsg{v} }),
		listen(m.playings, func(v bool) tea.Msg { return playingMsg{v} }),
		listen(m.progs, func(v player.Progress) tea.Msg { return progressMsg{v} }),
		listen(m.shuffles, func(v bool) tea.Msg { return shuffleMsg{v} }),
	)
}

// listen ждет следующего значения из канала. После отписки канал закрыт и команда завершается
func listen[T any](ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = min(60, msg.Width-10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return GoBackMsg{} }
		case " ":
			return m, control(ActionTogglePause)
		case "n":
			return m, control(ActionNext)
		case "p":
			return m, control(ActionPrevious)
		case "s":
			return m, control(ActionShuffle)
		case "x":
			return m, control(ActionStop)
		}

	case itemMsg:
		// Пустой ID означает, что ничего не выбрано
		m.item = msg.item
		m.hasItem = msg.item.ID != ""
		m.progress = player.Progress{}
		return m, tea.Batch(
			m.progressBar.SetPercent(0),
			listen(m.items, func(v media.Item) tea.Msg { return itemMsg{v} }),
		)

	case playingMsg:
		m.playing = msg.playing
		return m, listen(m.playings, func(v bool) tea.Msg { return playingMsg{v} })

	case shuffleMsg:
		m.shuffle = msg.shuffle
		return m, listen(m.shuffles, func(v bool) tea.Msg { return shuffleMsg{v} })

	case progressMsg:
		m.progress = msg.progress
		var percent float64
		if msg.progress.Duration > 0 {
			percent = float64(msg.progress.Position) / float64(msg.progress.Duration)
		}
		return m, tea.Batch(
			m.progressBar.SetPercent(percent),
			listen(m.progs, func(v player.Progress) tea.Msg { return progressMsg{v} }),
		)

	case progress.FrameMsg:
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func control(action Action) tea.Cmd {
	return func() tea.Msg {
		return ControlMsg{Action: action}
	}
}

// View отображает модель
func (m *Model) View() string {
	title := titleStyle.Render("🎵 Воспроизведение")
	controls := controlsStyle.Render(
		"Пробел: пауза • n: следующий • p: предыдущий • s: перемешать • x: стоп • q/esc: назад",
	)

	if !m.hasItem {
		return fmt.Sprintf("%s\n\n%s\n\n%s",
			title,
			trackInfoStyle.Render("Ничего не воспроизводится"),
			controls,
		)
	}

	artist := m.item.Artist
	if artist == "" {
		artist = "—"
	}
	trackInfo := trackInfoStyle.Render(fmt.Sprintf("🎤 %s\n🎵 %s\n📄 %s", artist, m.item.Title, m.item.Type))

	shuffle := ""
	if m.shuffle {
		shuffle = " 🔀"
	}
	statusText := statusStyle.Render(fmt.Sprintf("%s %s%s", statusIcon(m.playing), m.statusText(), shuffle))

	timeText := fmt.Sprintf("%s / %s",
		utils.FormatDuration(m.progress.Position),
		utils.FormatDuration(m.progress.Duration),
	)

	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n%s\n\n%s",
		title,
		trackInfo,
		statusText,
		m.progressBar.View(),
		timeText,
		controls,
	)
}

// Close отменяет подписки
func (m *Model) Close() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
}

func (m *Model) statusText() string {
	if !m.playing {
		return "Пауза"
	}
	return streaming.StatusText(m.progress.StuckCount)
}

func statusIcon(playing bool) string {
	if playing {
		return "▶️"
	}
	return "⏸️"
}
