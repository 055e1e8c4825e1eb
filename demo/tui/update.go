package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case ResultsMsg:
		return m.handleResults(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.State {
	case StateInput:
		return m.handleInputKey(msg)
	case StateResults:
		return m.handleResultsKey(msg)
	case StateError:
		m.State = StateInput
		m.Err = nil
		return m, nil
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		key := strings.TrimSpace(m.Input)
		if key == "" {
			return m, nil
		}
		m.History = nil
		return m.lookup(key)
	case tea.KeyTab:
		m.Mode = toggle(m.Mode)
	case tea.KeyBackspace:
		if len(m.Input) > 0 {
			r := []rune(m.Input)
			m.Input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.Input += string(msg.Runes)
	}
	return m, nil
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Results)-1 {
			m.Cursor++
		}
	case "enter":
		sel, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.History = append(m.History, m.ArticleKey)
		return m.lookup(sel.ArticleID)
	case "backspace", "b":
		if len(m.History) == 0 {
			return m, nil
		}
		prev := m.History[len(m.History)-1]
		m.History = m.History[:len(m.History)-1]
		return m.lookup(prev)
	case "tab":
		m.Mode = toggle(m.Mode)
		return m.lookup(m.ArticleKey)
	case "/":
		m.State = StateInput
		m.Input = ""
	}
	return m, nil
}

func (m Model) handleResults(msg ResultsMsg) (tea.Model, tea.Cmd) {
	// a late answer for an abandoned lookup
	if msg.Key != m.ArticleKey || msg.Mode != m.Mode || m.State != StateLoading {
		return m, nil
	}
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.State = StateResults
	m.Results = msg.Results
	m.Cursor = 0
	return m, nil
}

func (m Model) lookup(key string) (tea.Model, tea.Cmd) {
	m.ArticleKey = key
	m.State = StateLoading
	m.Results = nil
	m.Cursor = 0
	return m, fetchRelated(m.Client, key, m.Mode)
}

func toggle(mode Mode) Mode {
	if mode == ModeSimilar {
		return ModePaths
	}
	return ModeSimilar
}
