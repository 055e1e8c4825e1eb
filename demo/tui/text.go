package tui

// Footer help lines per state.
const (
	TextFooterInput   = "Type an article key, Enter to look up | Tab switches relation | Esc or Ctrl+C to quit"
	TextFooterResults = "Up/Down to move | Enter opens the article | b goes back | Tab switches relation | / new search | q quits"
	TextFooterLoading = "Ctrl+C to quit"
	TextFooterError   = "Press any key to search again | Ctrl+C to quit"
)
