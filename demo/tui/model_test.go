package tui

import (
	"context"
	"errors"
	"testing"

	"newsgraph/api"
	"newsgraph/types"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	similar map[string][]types.RelatedArticle
	paths   map[string][]types.RelatedArticle
	err     error
}

func (s *stubFetcher) Similar(_ context.Context, key string, _ bool) (*api.RelatedResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &api.RelatedResponse{ArticleKey: key, RelatedArticles: s.similar[key]}, nil
}

func (s *stubFetcher) ByPathCount(_ context.Context, key string, _ int) (*api.RelatedResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &api.RelatedResponse{ArticleKey: key, RelatedArticles: s.paths[key]}, nil
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step applies msg and runs any returned command synchronously.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	model := next.(Model)
	if cmd != nil {
		if res, ok := cmd().(ResultsMsg); ok {
			next, _ = model.Update(res)
			model = next.(Model)
		}
	}
	return model
}

func newStub() *stubFetcher {
	return &stubFetcher{
		similar: map[string][]types.RelatedArticle{
			"A1": {
				{ArticleID: "A2", Default: types.Entry{"title": "Budget 2026"}},
				{ArticleID: "A3"},
			},
			"A3": {{ArticleID: "A4"}},
		},
		paths: map[string][]types.RelatedArticle{
			"A1": {{ArticleID: "A9", NoOfPaths: 4}},
		},
	}
}

func TestSearchAndBrowse(t *testing.T) {
	m := NewModel(newStub())
	m = step(t, m, keys("A1"))
	assert.Equal(t, "A1", m.Input)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, StateResults, m.State)
	assert.Equal(t, "A1", m.ArticleKey)
	require.Len(t, m.Results, 2)
	assert.Contains(t, m.View(), "Budget 2026")

	m = step(t, m, keys("j"))
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "A3", sel.ArticleID)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "A3", m.ArticleKey)
	assert.Equal(t, []string{"A1"}, m.History)
	assert.Equal(t, 0, m.Cursor)

	m = step(t, m, keys("b"))
	assert.Equal(t, "A1", m.ArticleKey)
	assert.Empty(t, m.History)
}

func TestTabSwitchesRelation(t *testing.T) {
	m := NewModel(newStub())
	m = step(t, m, keys("A1"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, ModePaths, m.Mode)
	require.Len(t, m.Results, 1)
	assert.Equal(t, "A9", m.Results[0].ArticleID)
	assert.Contains(t, m.View(), "(4 paths)")
}

func TestLookupError(t *testing.T) {
	m := NewModel(&stubFetcher{err: errors.New("API returned 502")})
	m = step(t, m, keys("A1"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, StateError, m.State)
	assert.Contains(t, m.View(), "502")

	m = step(t, m, keys("x"))
	assert.Equal(t, StateInput, m.State)
	assert.NoError(t, m.Err)
}

func TestStaleResultsIgnored(t *testing.T) {
	m := NewModel(newStub())
	m.State = StateLoading
	m.ArticleKey = "A3"

	next, _ := m.Update(ResultsMsg{Key: "A1", Mode: ModeSimilar, Results: []types.RelatedArticle{{ArticleID: "A2"}}})
	assert.Equal(t, StateLoading, next.(Model).State)
}

func TestInputEditing(t *testing.T) {
	m := NewModel(newStub())
	m = step(t, m, keys("A12"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "A1", m.Input)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateLoading, next.(Model).State)
	assert.NotNil(t, cmd)

	_, cmd = NewModel(newStub()).Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "empty input does nothing")
}
