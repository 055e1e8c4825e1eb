package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const lookupTimeout = 30 * time.Second

// fetchRelated creates a command that looks up key in the given mode.
func fetchRelated(client Fetcher, key string, mode Mode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		msg := ResultsMsg{Key: key, Mode: mode}
		if mode == ModePaths {
			resp, err := client.ByPathCount(ctx, key, PathLimit)
			if err != nil {
				msg.Err = err
				return msg
			}
			msg.Results = resp.RelatedArticles
			return msg
		}
		resp, err := client.Similar(ctx, key, false)
		if err != nil {
			msg.Err = err
			return msg
		}
		msg.Results = resp.RelatedArticles
		return msg
	}
}
