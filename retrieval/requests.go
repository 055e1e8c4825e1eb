package retrieval

import (
	"errors"
	"fmt"
	"strings"

	"newsgraph/aql"
)

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidRequest}, args...)...)
}

func checkDepth(d aql.Depth) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// SimilarityRequest selects neighbours reached through one similarity edge collection.
type SimilarityRequest struct {
	ArticleKey     string    `json:"article_key"`
	Depth          aql.Depth `json:"depth"`
	EdgeCollection string    `json:"edge_collection"`
	Threshold      float64   `json:"threshold"`
	Endpoint       string    `json:"-"`
}

func (r SimilarityRequest) Validate() error {
	if strings.TrimSpace(r.ArticleKey) == "" {
		return invalid("article key is required")
	}
	if strings.TrimSpace(r.EdgeCollection) == "" {
		return invalid("edge collection is required")
	}
	return checkDepth(r.Depth)
}

// PathCountRequest selects articles sharing the most term paths, published
// within Window seconds of the query article.
type PathCountRequest struct {
	ArticleKey string    `json:"article_key"`
	Depth      aql.Depth `json:"depth"`
	Limit      int       `json:"limit"`
	Window     int64     `json:"window"`
	Endpoint   string    `json:"-"`
}

func (r PathCountRequest) Validate() error {
	if strings.TrimSpace(r.ArticleKey) == "" {
		return invalid("article key is required")
	}
	if r.Limit <= 0 {
		return invalid("limit must be positive, got %d", r.Limit)
	}
	if r.Window < 0 {
		return invalid("window must not be negative, got %d", r.Window)
	}
	return checkDepth(r.Depth)
}

// CategoryPathRequest counts paths to articles of one category. When Origins
// is empty, each edge's own origin is used as its filter.
type CategoryPathRequest struct {
	ArticleKey string    `json:"article_key"`
	Depth      aql.Depth `json:"depth"`
	Category   string    `json:"category"`
	Window     int64     `json:"window"`
	Limit      int       `json:"limit"`
	Origins    []string  `json:"origins,omitempty"`
	Endpoint   string    `json:"-"`
}

func (r CategoryPathRequest) Validate() error {
	if strings.TrimSpace(r.ArticleKey) == "" {
		return invalid("article key is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		return invalid("category is required")
	}
	if r.Limit <= 0 {
		return invalid("limit must be positive, got %d", r.Limit)
	}
	if r.Window < 0 {
		return invalid("window must not be negative, got %d", r.Window)
	}
	return checkDepth(r.Depth)
}

// EntityRequest selects articles mentioning the same entities as the query article.
type EntityRequest struct {
	ArticleKey string    `json:"article_key"`
	TopTerms   []string  `json:"top_terms"`
	Depth      aql.Depth `json:"depth"`
	EpochTime  float64   `json:"epoch_time"`
	Category   string    `json:"category"`
	Window     int64     `json:"window"`
	Endpoint   string    `json:"-"`
}

func (r EntityRequest) Validate() error {
	if strings.TrimSpace(r.ArticleKey) == "" {
		return invalid("article key is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		return invalid("category is required")
	}
	if r.Window < 0 {
		return invalid("window must not be negative, got %d", r.Window)
	}
	return checkDepth(r.Depth)
}

// DocumentSimilarityRequest resolves the article reading URL and its neighbours.
type DocumentSimilarityRequest struct {
	URL            string    `json:"url"`
	Depth          aql.Depth `json:"depth"`
	EdgeCollection string    `json:"edge_collection"`
	Endpoint       string    `json:"-"`
}

func (r DocumentSimilarityRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return invalid("document url is required")
	}
	if strings.TrimSpace(r.EdgeCollection) == "" {
		return invalid("edge collection is required")
	}
	return checkDepth(r.Depth)
}

// DocumentPathRequest ranks articles by the paths through the edge collection
// that end at them, fewest first.
type DocumentPathRequest struct {
	ArticleID      string    `json:"article_id"`
	Depth          aql.Depth `json:"depth"`
	EdgeCollection string    `json:"edge_collection"`
	Limit          int       `json:"limit"`
	Endpoint       string    `json:"-"`
}

func (r DocumentPathRequest) Validate() error {
	if strings.TrimSpace(r.ArticleID) == "" {
		return invalid("article id is required")
	}
	if strings.TrimSpace(r.EdgeCollection) == "" {
		return invalid("edge collection is required")
	}
	if r.Limit <= 0 {
		return invalid("limit must be positive, got %d", r.Limit)
	}
	return checkDepth(r.Depth)
}
