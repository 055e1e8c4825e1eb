package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one element of an article's read or watch list, or its default
// metadata blob. Keys vary by source, so it stays a generic object.
type Entry map[string]any

// Article is an Article vertex as stored in the news graph.
type Article struct {
	ID           string     `json:"_id"`
	Key          string     `json:"_key"`
	Rev          string     `json:"_rev,omitempty"`
	Category     StringList `json:"category"`
	Subcategory  StringList `json:"subcategory"`
	Default      Entry      `json:"default"`
	DefaultImage any        `json:"default_image"`
	Read         []Entry    `json:"read"`
	Watch        []Entry    `json:"watch"`
	SourceTags   []string   `json:"source_tags"`

	// Extra holds every other vertex attribute, e.g. title or publisher.
	Extra map[string]any `json:"-"`
}

// articleFields is Article without its JSON methods.
type articleFields Article

var articleKeys = []string{
	"_id", "_key", "_rev", "category", "subcategory", "default",
	"default_image", "read", "watch", "source_tags",
}

// UnmarshalJSON decodes the named fields and keeps the rest in Extra.
func (a *Article) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var fields articleFields
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var rest map[string]any
	if err := json.Unmarshal(b, &rest); err != nil {
		return err
	}
	for _, k := range articleKeys {
		delete(rest, k)
	}
	*a = Article(fields)
	a.Extra = nil
	if len(rest) > 0 {
		a.Extra = rest
	}
	return nil
}

// MarshalJSON writes the named fields and every Extra attribute. Named fields
// win over an Extra key of the same name.
func (a Article) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(articleFields(a))
	if err != nil || len(a.Extra) == 0 {
		return b, err
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(b, &known); err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(known)+len(a.Extra))
	for k, v := range a.Extra {
		merged[k] = v
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// RelatedArticle is the record returned by every reshaping retrieval
// operation. Full variants set SourceTags, lighter variants set Tag.
type RelatedArticle struct {
	ArticleID    string     `json:"articleID"`
	Category     StringList `json:"category"`
	Subcategory  StringList `json:"subcategory"`
	Default      Entry      `json:"default"`
	DefaultImage any        `json:"default_image"`
	Read         []Entry    `json:"read"`
	Watch        []Entry    `json:"watch"`
	SourceTags   []string   `json:"source_tags,omitempty"`
	Tag          string     `json:"tag,omitempty"`
	NoOfPaths    int        `json:"no_of_paths,omitempty"`
}

// FromArticle builds a full record, keeping only the first read and watch entries.
func FromArticle(a Article, noOfPaths int) RelatedArticle {
	return RelatedArticle{
		ArticleID:    a.Key,
		Category:     a.Category,
		Subcategory:  a.Subcategory,
		Default:      a.Default,
		DefaultImage: a.DefaultImage,
		Read:         FirstEntry(a.Read),
		Watch:        FirstEntry(a.Watch),
		SourceTags:   a.SourceTags,
		NoOfPaths:    noOfPaths,
	}
}

// FirstEntry returns a list holding at most the first non-null entry.
func FirstEntry(entries []Entry) []Entry {
	if len(entries) == 0 || entries[0] == nil {
		return []Entry{}
	}
	return []Entry{entries[0]}
}

// Without returns a copy of e lacking the named keys. A nil entry stays nil.
func (e Entry) Without(keys ...string) Entry {
	if e == nil {
		return nil
	}
	out := make(Entry, len(e))
	for k, v := range e {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// StringList decodes either a JSON string or a list of strings.
type StringList []string

func (s *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	*s = many
	return nil
}
