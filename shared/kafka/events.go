package kafka

import (
	"context"
	"strings"
)

// ArticlePublished announces a new article in the news graph.
type ArticlePublished struct {
	ArticleKey  string `json:"article_key"`
	PublishedAt int64  `json:"published_at,omitempty"`
}

// NewArticlePublishedHandler calls warm for every well-formed event. Events
// without an article key are marked and dropped; failed warms are retried.
func NewArticlePublishedHandler(warm func(ctx context.Context, articleKey string) error) *TypedMessageHandler[ArticlePublished] {
	return &TypedMessageHandler[ArticlePublished]{
		Validate: func(msg *ArticlePublished) bool {
			msg.ArticleKey = strings.TrimSpace(msg.ArticleKey)
			return msg.ArticleKey != ""
		},
		Process: func(ctx context.Context, msg *ArticlePublished) error {
			return warm(ctx, msg.ArticleKey)
		},
		AlwaysMark: true,
	}
}
