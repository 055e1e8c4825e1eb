// Package tui is a terminal browser over related articles.
package tui

import (
	"context"
	"fmt"

	"newsgraph/api"
	"newsgraph/types"

	tea "github.com/charmbracelet/bubbletea"
)

// Fetcher loads related articles. demo/client.Client implements it.
type Fetcher interface {
	Similar(ctx context.Context, key string, full bool) (*api.RelatedResponse, error)
	ByPathCount(ctx context.Context, key string, limit int) (*api.RelatedResponse, error)
}

// State represents the application state machine
type State string

const (
	StateInput   State = "input"
	StateLoading State = "loading"
	StateResults State = "results"
	StateError   State = "error"
)

// Mode selects which relation is browsed.
type Mode int

const (
	ModeSimilar Mode = iota
	ModePaths
)

func (m Mode) String() string {
	if m == ModePaths {
		return "shared term paths"
	}
	return "similarity"
}

// PathLimit is how many path-count results are requested.
const PathLimit = 10

// Model represents the TUI client state
type Model struct {
	Client Fetcher

	State      State
	Mode       Mode
	Input      string
	ArticleKey string
	Results    []types.RelatedArticle
	Cursor     int
	// History holds the keys browsed before ArticleKey, most recent last.
	History []string
	Err     error
}

// NewModel creates a new TUI model
func NewModel(client Fetcher) Model {
	return Model{
		Client: client,
		State:  StateInput,
		Mode:   ModeSimilar,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the highlighted article, if any.
func (m Model) Selected() (types.RelatedArticle, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Results) {
		return types.RelatedArticle{}, false
	}
	return m.Results[m.Cursor], true
}

// title picks a display title for an article.
func title(a types.RelatedArticle) string {
	if t, ok := a.Default["title"].(string); ok && t != "" {
		return t
	}
	return a.ArticleID
}

func firstURL(entries []types.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	if u, ok := entries[0]["url"].(string); ok {
		return u
	}
	return ""
}

func (m Model) statusText() string {
	switch m.State {
	case StateInput:
		return StatusStyle.Render(fmt.Sprintf("Article key (%s): ", m.Mode)) + HighlightStyle.Render(m.Input+"_")
	case StateLoading:
		return StatusStyle.Render(fmt.Sprintf("Looking up %s related articles for %s...", m.Mode, m.ArticleKey))
	case StateResults:
		return StatusStyle.Render(fmt.Sprintf("%d %s related articles for %s", len(m.Results), m.Mode, m.ArticleKey))
	case StateError:
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	default:
		return ""
	}
}
