package tui

import (
	"fmt"
	"strings"

	"newsgraph/types"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("newsgraph related articles"))
	b.WriteString("\n\n")
	b.WriteString(m.statusText())
	b.WriteString("\n\n")

	if m.State == StateResults {
		if len(m.Results) == 0 {
			b.WriteString(InfoStyle.Render("No related articles."))
			b.WriteString("\n\n")
		}
		for i, a := range m.Results {
			line := title(a)
			if a.NoOfPaths > 0 {
				line = fmt.Sprintf("%s (%d paths)", line, a.NoOfPaths)
			}
			if i == m.Cursor {
				b.WriteString(CursorStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if sel, ok := m.Selected(); ok {
			b.WriteString("\n")
			b.WriteString(BoxStyle.Render(details(sel)))
			b.WriteString("\n")
		}
		if len(m.History) > 0 {
			b.WriteString(InfoStyle.Render("Path: " + strings.Join(m.History, " > ") + " > " + m.ArticleKey))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render(footer(m.State)))
	return b.String()
}

func details(a types.RelatedArticle) string {
	var b strings.Builder
	b.WriteString(HighlightStyle.Render(title(a)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Key:         %s\n", a.ArticleID)
	if len(a.Category) > 0 {
		fmt.Fprintf(&b, "Category:    %s\n", strings.Join(a.Category, ", "))
	}
	if len(a.Subcategory) > 0 {
		fmt.Fprintf(&b, "Subcategory: %s\n", strings.Join(a.Subcategory, ", "))
	}
	if a.Tag != "" {
		fmt.Fprintf(&b, "Source:      %s\n", a.Tag)
	} else if len(a.SourceTags) > 0 {
		fmt.Fprintf(&b, "Sources:     %s\n", strings.Join(a.SourceTags, ", "))
	}
	if u := firstURL(a.Read); u != "" {
		fmt.Fprintf(&b, "Read:        %s\n", u)
	}
	if u := firstURL(a.Watch); u != "" {
		fmt.Fprintf(&b, "Watch:       %s\n", u)
	}
	return strings.TrimRight(b.String(), "\n")
}

func footer(s State) string {
	switch s {
	case StateInput:
		return TextFooterInput
	case StateResults:
		return TextFooterResults
	case StateError:
		return TextFooterError
	default:
		return TextFooterLoading
	}
}
