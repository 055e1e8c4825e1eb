package tui

import "newsgraph/types"

// ResultsMsg carries the outcome of a lookup.
type ResultsMsg struct {
	Key     string
	Mode    Mode
	Results []types.RelatedArticle
	Err     error
}
