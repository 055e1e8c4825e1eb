package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"newsgraph/aql"
	"newsgraph/config"
	"newsgraph/retrieval"
	"newsgraph/types"
)

// Tool is one callable operation as listed by tools/list.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`

	call func(ctx context.Context, args json.RawMessage) (any, error)
}

// EntityOutput is the related_by_entity result. A failed traversal yields an
// empty list with Degraded set.
type EntityOutput struct {
	Articles []types.RelatedArticle `json:"articles"`
	Degraded bool                   `json:"degraded,omitempty"`
	Warning  string                 `json:"warning,omitempty"`
}

func object(required []string, props map[string]any) map[string]any {
	schema := map[string]any{"type": "object", "properties": props, "additionalProperties": false}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func stringList(desc string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": desc}
}

var (
	depthProp     = prop("string", "Traversal depth range min..max, default "+config.DefaultDepth)
	edgeProp      = prop("string", "Similarity edge collection, default "+config.DefaultEdgeCollection)
	articleKey    = prop("string", "Article _key")
	limitProp     = prop("integer", fmt.Sprintf("Maximum results, default %d", config.DefaultLimit))
	windowProp    = prop("integer", fmt.Sprintf("Publication window in seconds either side of the article, default %d", config.DefaultWindow))
	thresholdProp = prop("number", fmt.Sprintf("Keep neighbours whose similarity value is below this, default %v", config.DefaultSimilarityThreshold))
)

func newTools(svc retrieval.Service, endpoint string) []Tool {
	similarity := func(full bool) func(context.Context, json.RawMessage) (any, error) {
		return func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args struct {
				ArticleKey     string   `json:"article_key"`
				Depth          string   `json:"depth"`
				EdgeCollection string   `json:"edge_collection"`
				Threshold      *float64 `json:"threshold"`
			}
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			depth, err := parseDepth(args.Depth)
			if err != nil {
				return nil, err
			}
			req := retrieval.SimilarityRequest{
				ArticleKey:     args.ArticleKey,
				Depth:          depth,
				EdgeCollection: orDefault(args.EdgeCollection, config.DefaultEdgeCollection),
				Threshold:      config.DefaultSimilarityThreshold,
				Endpoint:       endpoint,
			}
			if args.Threshold != nil {
				req.Threshold = *args.Threshold
			}
			if full {
				return svc.RelatedBySimilarityFull(ctx, req)
			}
			return svc.RelatedBySimilarity(ctx, req)
		}
	}

	return []Tool{
		{
			Name:        "related_by_similarity",
			Description: "Articles reached through a similarity edge collection, with heavy attributes removed.",
			InputSchema: object([]string{"article_key"}, map[string]any{
				"article_key": articleKey, "depth": depthProp, "edge_collection": edgeProp, "threshold": thresholdProp,
			}),
			call: similarity(false),
		},
		{
			Name:        "related_by_similarity_full",
			Description: "Articles reached through a similarity edge collection, with whole records and every source tag.",
			InputSchema: object([]string{"article_key"}, map[string]any{
				"article_key": articleKey, "depth": depthProp, "edge_collection": edgeProp, "threshold": thresholdProp,
			}),
			call: similarity(true),
		},
		{
			Name:        "related_by_path_count",
			Description: "Articles sharing the most term paths with the article, published inside the window.",
			InputSchema: object([]string{"article_key"}, map[string]any{
				"article_key": articleKey, "depth": depthProp, "limit": limitProp, "window": windowProp,
			}),
			call: func(ctx context.Context, raw json.RawMessage) (any, error) {
				var args struct {
					ArticleKey string `json:"article_key"`
					Depth      string `json:"depth"`
					Limit      *int   `json:"limit"`
					Window     *int64 `json:"window"`
				}
				if err := decodeArgs(raw, &args); err != nil {
					return nil, err
				}
				depth, err := parseDepth(args.Depth)
				if err != nil {
					return nil, err
				}
				return svc.RelatedByPathCount(ctx, retrieval.PathCountRequest{
					ArticleKey: args.ArticleKey,
					Depth:      depth,
					Limit:      intOr(args.Limit, config.DefaultLimit),
					Window:     int64Or(args.Window, config.DefaultWindow),
					Endpoint:   endpoint,
				})
			},
		},
		{
			Name:        "related_by_category_paths",
			Description: "Articles of one category ranked by connecting paths, optionally following only edges of the given origins.",
			InputSchema: object([]string{"article_key", "category"}, map[string]any{
				"article_key": articleKey,
				"category":    prop("string", "Category the related articles must carry"),
				"depth":       depthProp,
				"limit":       limitProp,
				"window":      windowProp,
				"origins":     stringList("Edge origins to follow; empty uses each edge's own origin"),
			}),
			call: func(ctx context.Context, raw json.RawMessage) (any, error) {
				var args struct {
					ArticleKey string   `json:"article_key"`
					Category   string   `json:"category"`
					Depth      string   `json:"depth"`
					Limit      *int     `json:"limit"`
					Window     *int64   `json:"window"`
					Origins    []string `json:"origins"`
				}
				if err := decodeArgs(raw, &args); err != nil {
					return nil, err
				}
				depth, err := parseDepth(args.Depth)
				if err != nil {
					return nil, err
				}
				return svc.RelatedByCategoryPaths(ctx, retrieval.CategoryPathRequest{
					ArticleKey: args.ArticleKey,
					Depth:      depth,
					Category:   args.Category,
					Window:     int64Or(args.Window, config.DefaultWindow),
					Limit:      intOr(args.Limit, config.DefaultLimit),
					Origins:    args.Origins,
					Endpoint:   endpoint,
				})
			},
		},
		{
			Name:        "related_by_entity",
			Description: "Articles of one category mentioning entities named like the top terms, published inside the window around epoch_time.",
			InputSchema: object([]string{"article_key", "category", "epoch_time"}, map[string]any{
				"article_key": articleKey,
				"top_terms":   stringList("Entity names to pivot on"),
				"category":    prop("string", "Category the related articles must carry"),
				"epoch_time":  prop("number", "Publication time of the article, in epoch seconds"),
				"depth":       depthProp,
				"window":      windowProp,
			}),
			call: func(ctx context.Context, raw json.RawMessage) (any, error) {
				var args struct {
					ArticleKey string   `json:"article_key"`
					TopTerms   []string `json:"top_terms"`
					Category   string   `json:"category"`
					EpochTime  float64  `json:"epoch_time"`
					Depth      string   `json:"depth"`
					Window     *int64   `json:"window"`
				}
				if err := decodeArgs(raw, &args); err != nil {
					return nil, err
				}
				if args.EpochTime <= 0 {
					return nil, fmt.Errorf("%w: epoch_time is required", retrieval.ErrInvalidRequest)
				}
				depth, err := parseDepth(args.Depth)
				if err != nil {
					return nil, err
				}
				res, err := svc.RelatedByEntity(ctx, retrieval.EntityRequest{
					ArticleKey: args.ArticleKey,
					TopTerms:   args.TopTerms,
					Depth:      depth,
					EpochTime:  args.EpochTime,
					Category:   args.Category,
					Window:     int64Or(args.Window, config.DefaultWindow),
					Endpoint:   endpoint,
				})
				if err != nil {
					return nil, err
				}
				out := EntityOutput{Articles: res.Articles, Degraded: res.Degraded()}
				if res.Degraded() {
					out.Warning = res.Err.Error()
				}
				return out, nil
			},
		},
		{
			Name:        "related_documents",
			Description: "The article whose read list contains the url, with every article reached through the edge collection, unshaped.",
			InputSchema: object([]string{"url"}, map[string]any{
				"url": prop("string", "Document url read by the query article"), "depth": depthProp, "edge_collection": edgeProp,
			}),
			call: func(ctx context.Context, raw json.RawMessage) (any, error) {
				var args struct {
					URL            string `json:"url"`
					Depth          string `json:"depth"`
					EdgeCollection string `json:"edge_collection"`
				}
				if err := decodeArgs(raw, &args); err != nil {
					return nil, err
				}
				depth, err := parseDepth(args.Depth)
				if err != nil {
					return nil, err
				}
				return svc.RelatedDocuments(ctx, retrieval.DocumentSimilarityRequest{
					URL:            args.URL,
					Depth:          depth,
					EdgeCollection: orDefault(args.EdgeCollection, config.DefaultEdgeCollection),
					Endpoint:       endpoint,
				})
			},
		},
		{
			Name:        "related_documents_by_path_count",
			Description: "Articles reached from the article _id through the edge collection, fewest paths first, with their path counts.",
			InputSchema: object([]string{"article_id"}, map[string]any{
				"article_id": prop("string", "Article _id, e.g. Article/123"), "depth": depthProp, "edge_collection": edgeProp, "limit": limitProp,
			}),
			call: func(ctx context.Context, raw json.RawMessage) (any, error) {
				var args struct {
					ArticleID      string `json:"article_id"`
					Depth          string `json:"depth"`
					EdgeCollection string `json:"edge_collection"`
					Limit          *int   `json:"limit"`
				}
				if err := decodeArgs(raw, &args); err != nil {
					return nil, err
				}
				depth, err := parseDepth(args.Depth)
				if err != nil {
					return nil, err
				}
				return svc.RelatedDocumentsByPathCount(ctx, retrieval.DocumentPathRequest{
					ArticleID:      args.ArticleID,
					Depth:          depth,
					EdgeCollection: orDefault(args.EdgeCollection, config.DefaultEdgeCollection),
					Limit:          intOr(args.Limit, config.DefaultLimit),
					Endpoint:       endpoint,
				})
			},
		},
	}
}

// decodeArgs rejects arguments the tool schema does not declare.
func decodeArgs(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: arguments: %v", retrieval.ErrInvalidRequest, err)
	}
	return nil
}

func parseDepth(s string) (aql.Depth, error) {
	return aql.ParseDepth(orDefault(s, config.DefaultDepth))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func int64Or(v *int64, def int64) int64 {
	if v == nil {
		return def
	}
	return *v
}
