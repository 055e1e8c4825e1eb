// Package aql holds the traversal templates and a small builder that pairs a
// template with its bind parameters, so callers never concatenate query text.
package aql

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnboundParameter is returned when the template references a parameter nobody bound.
	ErrUnboundParameter = errors.New("unbound query parameter")
	// ErrUnusedParameter is returned when a bound parameter does not appear in the template.
	ErrUnusedParameter = errors.New("unused query parameter")
	// ErrInvalidDepth is returned for malformed traversal depth ranges.
	ErrInvalidDepth = errors.New("invalid traversal depth")
)

// Query is a template plus the bind variables it is executed with.
type Query struct {
	Text     string
	BindVars map[string]any
}

// paramRe matches @name and @@name (collection) parameters.
var paramRe = regexp.MustCompile(`@@?[A-Za-z_][A-Za-z0-9_]*`)

// Parameters returns the sorted, de-duplicated bind names a template references.
// Collection parameters keep one leading '@', the form the server expects as bind key.
// Quoted strings, quoted names and comments are not scanned.
func Parameters(text string) []string {
	seen := make(map[string]struct{})
	for _, m := range paramRe.FindAllString(blankLiterals(text), -1) {
		seen[m[1:]] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// blankLiterals replaces string literals, backtick names and comments with
// spaces so an '@' inside them is not taken for a parameter.
func blankLiterals(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			j := i + 1
			for j < len(text) && text[j] != c {
				if text[j] == '\\' {
					j++
				}
				j++
			}
			end := min(j+1, len(text))
			b.WriteString(strings.Repeat(" ", end-i))
			i = end
		case strings.HasPrefix(text[i:], "//"):
			end := len(text)
			if j := strings.IndexByte(text[i:], '\n'); j >= 0 {
				end = i + j
			}
			b.WriteString(strings.Repeat(" ", end-i))
			i = end
		case strings.HasPrefix(text[i:], "/*"):
			end := len(text)
			if j := strings.Index(text[i+2:], "*/"); j >= 0 {
				end = i + 2 + j + 2
			}
			b.WriteString(strings.Repeat(" ", end-i))
			i = end
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// Builder accumulates bind variables for one template.
type Builder struct {
	text string
	vars map[string]any
	err  error
}

// New starts a query from a template.
func New(text string) *Builder {
	return &Builder{text: text, vars: make(map[string]any)}
}

// Bind sets a bind variable. Collection parameters are bound as "@name".
// Binding the same name twice keeps the last value.
func (b *Builder) Bind(name string, value any) *Builder {
	if name == "" && b.err == nil {
		b.err = fmt.Errorf("%w: empty name", ErrUnboundParameter)
	}
	b.vars[name] = value
	return b
}

// BindDepth binds a traversal range as @min_depth and @max_depth.
func (b *Builder) BindDepth(d Depth) *Builder {
	if err := d.Validate(); err != nil && b.err == nil {
		b.err = err
	}
	return b.Bind("min_depth", d.Min).Bind("max_depth", d.Max)
}

// Build checks that the bound names and the template agree exactly.
func (b *Builder) Build() (Query, error) {
	if b.err != nil {
		return Query{}, b.err
	}

	referenced := Parameters(b.text)
	want := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		want[name] = struct{}{}
		if _, ok := b.vars[name]; !ok {
			return Query{}, fmt.Errorf("%w: @%s", ErrUnboundParameter, name)
		}
	}
	for name := range b.vars {
		if _, ok := want[name]; !ok {
			return Query{}, fmt.Errorf("%w: @%s", ErrUnusedParameter, name)
		}
	}

	vars := make(map[string]any, len(b.vars))
	for k, v := range b.vars {
		vars[k] = v
	}
	return Query{Text: b.text, BindVars: vars}, nil
}

// Depth is an inclusive traversal hop range.
type Depth struct {
	Min int
	Max int
}

// ParseDepth accepts "min..max" or a single hop count.
func ParseDepth(s string) (Depth, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Depth{}, fmt.Errorf("%w: empty", ErrInvalidDepth)
	}

	lo, hi, found := strings.Cut(s, "..")
	if !found {
		hi = lo
	}
	minHops, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return Depth{}, fmt.Errorf("%w: %q", ErrInvalidDepth, s)
	}
	maxHops, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return Depth{}, fmt.Errorf("%w: %q", ErrInvalidDepth, s)
	}

	d := Depth{Min: minHops, Max: maxHops}
	if err := d.Validate(); err != nil {
		return Depth{}, err
	}
	return d, nil
}

// Validate rejects negative and inverted ranges.
func (d Depth) Validate() error {
	if d.Min < 0 || d.Max < d.Min {
		return fmt.Errorf("%w: %d..%d", ErrInvalidDepth, d.Min, d.Max)
	}
	return nil
}

func (d Depth) String() string {
	return fmt.Sprintf("%d..%d", d.Min, d.Max)
}
