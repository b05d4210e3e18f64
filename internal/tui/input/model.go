// Package input содержит экран формы ввода для TUI
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(15)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
)

// SubmittedMsg отправляется при подтверждении формы
type SubmittedMsg struct {
	Purpose string
	Values  []string
}

// CancelledMsg отправляется при отмене ввода
type CancelledMsg struct{}

// Field описывает поле формы
type Field struct {
	Label       string
	Placeholder string
	Value       string
}

// Model - форма из одного или нескольких полей. Первое поле обязательное
type Model struct {
	title      string
	purpose    string
	labels     []string
	inputs     []textinput.Model
	focusIndex int
	err        string
}

// NewModel создает форму. purpose возвращается в SubmittedMsg
func NewModel(title, purpose string, fields ...Field) *Model {
	inputs := make([]textinput.Model, len(fields))
	labels := make([]string, len(fields))
	for i, f := range fields {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = f.Placeholder
		inputs[i].SetValue(f.Value)
		inputs[i].PromptStyle = blurredStyle
		inputs[i].TextStyle = blurredStyle
		labels[i] = f.Label
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
		inputs[0].PromptStyle = focusedStyle
		inputs[0].TextStyle = focusedStyle
	}

	return &Model{
		title:   title,
		purpose: purpose,
		labels:  labels,
		inputs:  inputs,
	}
}

// Purpose возвращает назначение формы
func (m *Model) Purpose() string {
	return m.purpose
}

// SetError показывает ошибку под формой
func (m *Model) SetError(err string) {
	m.err = err
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return CancelledMsg{} }

		case "ctrl+s":
			return m, m.submit()

		case "enter":
			if m.focusIndex == len(m.inputs)-1 {
				return m, m.submit()
			}
			return m, m.moveFocus(1)

		case "tab", "down":
			return m, m.moveFocus(1)

		case "shift+tab", "up":
			return m, m.moveFocus(-1)
		}

	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 20
		}
		return m, nil
	}

	if m.focusIndex < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	m.focusIndex = (m.focusIndex + delta + len(m.inputs)) % len(m.inputs)

	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		if i == m.focusIndex {
			cmds[i] = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle
		} else {
			m.inputs[i].Blur()
			m.inputs[i].PromptStyle = blurredStyle
			m.inputs[i].TextStyle = blurredStyle
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) submit() tea.Cmd {
	values := make([]string, len(m.inputs))
	for i := range m.inputs {
		values[i] = strings.TrimSpace(m.inputs[i].Value())
	}
	if len(values) > 0 && values[0] == "" {
		m.err = "Поле '" + strings.TrimSuffix(m.labels[0], ":") + "' не может быть пустым"
		return nil
	}

	m.err = ""
	purpose := m.purpose
	return func() tea.Msg {
		return SubmittedMsg{Purpose: purpose, Values: values}
	}
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for i, in := range m.inputs {
		b.WriteString(labelStyle.Render(m.labels[i]))
		b.WriteString(" ")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Enter: подтвердить • Tab: следующее поле • Esc: отмена"))
	return b.String()
}
