// Package retrieval implements the related-content lookups over the news graph.
// Each lookup binds its parameters into a fixed traversal, runs it on a fresh
// session, and reshapes the rows for callers.
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"newsgraph/aql"
	"newsgraph/config"
	"newsgraph/graphdb"
	"newsgraph/logger"
	"newsgraph/types"
)

// ErrArticleNotFound is returned when no article reads the requested document url.
var ErrArticleNotFound = errors.New("query article not found")

// Service is the set of retrieval operations. Retriever implements it
// directly; the cache and metrics packages decorate it.
type Service interface {
	RelatedBySimilarity(ctx context.Context, req SimilarityRequest) ([]types.RelatedArticle, error)
	RelatedBySimilarityFull(ctx context.Context, req SimilarityRequest) ([]types.RelatedArticle, error)
	RelatedByPathCount(ctx context.Context, req PathCountRequest) ([]types.RelatedArticle, error)
	RelatedByCategoryPaths(ctx context.Context, req CategoryPathRequest) ([]types.RelatedArticle, error)
	RelatedByEntity(ctx context.Context, req EntityRequest) (EntityResult, error)
	RelatedDocuments(ctx context.Context, req DocumentSimilarityRequest) (DocumentSimilarityResult, error)
	RelatedDocumentsByPathCount(ctx context.Context, req DocumentPathRequest) (DocumentPathResult, error)
}

// EntityResult carries entity-related articles. When the traversal failed,
// Articles is empty and Err holds the cause; callers still get a usable list.
type EntityResult struct {
	Articles []types.RelatedArticle `json:"articles"`
	Err      error                  `json:"-"`
}

// Degraded reports whether the traversal failed and Articles is a fallback.
func (r EntityResult) Degraded() bool { return r.Err != nil }

// DocumentSimilarityResult pairs the resolved query article with its neighbours.
type DocumentSimilarityResult struct {
	QueryArticle    types.Article   `json:"query_article"`
	RelatedArticles []types.Article `json:"related_articles"`
}

// DocumentPathResult holds two parallel lists: PathCounts[i] belongs to RelatedArticles[i].
type DocumentPathResult struct {
	RelatedArticles []types.Article `json:"related_articles"`
	PathCounts      []int           `json:"path_counts"`
}

// Retriever runs every operation against the news database.
type Retriever struct {
	connector graphdb.Connector
	cfg       config.ArangoConfig
}

// NewRetriever creates a retriever. cfg supplies the graph names bound into queries.
func NewRetriever(connector graphdb.Connector, cfg config.ArangoConfig) *Retriever {
	if cfg.NewsGraph == "" {
		cfg.NewsGraph = config.DefaultNewsGraph
	}
	if cfg.EntityGraph == "" {
		cfg.EntityGraph = config.DefaultEntityGraph
	}
	return &Retriever{connector: connector, cfg: cfg}
}

// RelatedBySimilarity returns lightweight records for neighbours under the threshold.
func (r *Retriever) RelatedBySimilarity(ctx context.Context, req SimilarityRequest) ([]types.RelatedArticle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	q, err := aql.New(aql.SimilarityUnset).
		Bind("key", req.ArticleKey).
		BindDepth(req.Depth).
		Bind("graph", r.cfg.NewsGraph).
		Bind("edge_collection", req.EdgeCollection).
		Bind("sim_threshold", req.Threshold).
		Bind("document_unset", aql.DocumentUnsetFields).
		Bind("watch_unset", aql.WatchUnsetFields).
		Build()
	if err != nil {
		return nil, err
	}

	recs, err := r.records(ctx, req.Endpoint, q, config.DefaultBatchSize)
	if err != nil {
		return nil, fmt.Errorf("similarity lookup for %s: %w", req.ArticleKey, err)
	}
	logger.Debug("similarity lookup", "article", req.ArticleKey, "edge", req.EdgeCollection, "results", len(recs))
	return stripRecords(recs), nil
}

// RelatedBySimilarityFull is RelatedBySimilarity with whole sub-objects and all source tags.
func (r *Retriever) RelatedBySimilarityFull(ctx context.Context, req SimilarityRequest) ([]types.RelatedArticle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	q, err := aql.New(aql.SimilarityFull).
		Bind("key", req.ArticleKey).
		BindDepth(req.Depth).
		Bind("graph", r.cfg.NewsGraph).
		Bind("edge_collection", req.EdgeCollection).
		Bind("sim_threshold", req.Threshold).
		Build()
	if err != nil {
		return nil, err
	}

	recs, err := r.records(ctx, req.Endpoint, q, config.DefaultBatchSize)
	if err != nil {
		return nil, fmt.Errorf("similarity lookup for %s: %w", req.ArticleKey, err)
	}
	logger.Debug("similarity lookup (full)", "article", req.ArticleKey, "edge", req.EdgeCollection, "results", len(recs))
	return trimRecords(recs), nil
}

// RelatedByPathCount returns lightweight records ordered by shared term paths, most first.
func (r *Retriever) RelatedByPathCount(ctx context.Context, req PathCountRequest) ([]types.RelatedArticle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	q, err := aql.New(aql.PathCountUnset).
		Bind("key", req.ArticleKey).
		BindDepth(req.Depth).
		Bind("graph", r.cfg.NewsGraph).
		Bind("limit", req.Limit).
		Bind("window", req.Window).
		Bind("document_unset", aql.DocumentUnsetFields).
		Bind("watch_unset", aql.WatchUnsetFields).
		Build()
	if err != nil {
		return nil, err
	}

	recs, err := r.records(ctx, req.Endpoint, q, config.PathCountBatchSize)
	if err != nil {
		return nil, fmt.Errorf("path-count lookup for %s: %w", req.ArticleKey, err)
	}
	logger.Debug("path-count lookup", "article", req.ArticleKey, "results", len(recs))
	return stripRecords(recs), nil
}

// RelatedByCategoryPaths returns full records of same-category articles with their path counts.
func (r *Retriever) RelatedByCategoryPaths(ctx context.Context, req CategoryPathRequest) ([]types.RelatedArticle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var b *aql.Builder
	if len(req.Origins) > 0 {
		b = aql.New(aql.CategoryPathsByOrigin).Bind("origins", req.Origins)
	} else {
		b = aql.New(aql.CategoryPathsByEdgeOrigin)
	}
	q, err := b.
		Bind("key", req.ArticleKey).
		BindDepth(req.Depth).
		Bind("graph", r.cfg.NewsGraph).
		Bind("category", req.Category).
		Bind("window", req.Window).
		Bind("limit", req.Limit).
		Build()
	if err != nil {
		return nil, err
	}

	rows, err := r.run(ctx, req.Endpoint, q, config.DefaultBatchSize)
	if err != nil {
		return nil, fmt.Errorf("category path lookup for %s: %w", req.ArticleKey, err)
	}
	counted, err := decodeRows[struct {
		Article   types.Article `json:"article"`
		NoOfPaths int           `json:"no_of_paths"`
	}](rows)
	if err != nil {
		return nil, fmt.Errorf("category path lookup for %s: %w", req.ArticleKey, err)
	}

	recs := make([]types.RelatedArticle, 0, len(counted))
	for _, c := range counted {
		recs = append(recs, types.FromArticle(c.Article, c.NoOfPaths))
	}
	logger.Debug("category path lookup", "article", req.ArticleKey, "category", req.Category,
		"origins", len(req.Origins), "results", len(recs))
	return recs, nil
}

// RelatedByEntity returns full records of articles sharing an entity with the
// top terms. A failed traversal is not an error: the result is empty and
// carries the cause. Only connection failures are returned as errors.
func (r *Retriever) RelatedByEntity(ctx context.Context, req EntityRequest) (EntityResult, error) {
	empty := EntityResult{Articles: []types.RelatedArticle{}}
	if err := req.Validate(); err != nil {
		return empty, err
	}
	terms := req.TopTerms
	if terms == nil {
		terms = []string{}
	}
	q, err := aql.New(aql.EntityRelated).
		Bind("top_terms", terms).
		Bind("key", req.ArticleKey).
		BindDepth(req.Depth).
		Bind("graph", r.cfg.EntityGraph).
		Bind("category", req.Category).
		Bind("query_epoch", req.EpochTime).
		Bind("window", req.Window).
		Build()
	if err != nil {
		return empty, err
	}

	session, err := r.connector.Connect(ctx, graphdb.NewsDB, req.Endpoint)
	if err != nil {
		return empty, err
	}
	defer closeSession(session)

	rows, err := session.Query(ctx, q, config.DefaultBatchSize)
	if err == nil {
		var recs []types.RelatedArticle
		if recs, err = decodeRows[types.RelatedArticle](rows); err == nil {
			logger.Debug("entity lookup", "article", req.ArticleKey, "terms", len(terms), "results", len(recs))
			return EntityResult{Articles: trimRecords(recs)}, nil
		}
	}

	logger.Warn("entity traversal failed, returning no related articles", "article", req.ArticleKey, "err", err)
	empty.Err = err
	return empty, nil
}

// RelatedDocuments resolves the article whose read list contains req.URL and
// returns it with its neighbours, unshaped.
func (r *Retriever) RelatedDocuments(ctx context.Context, req DocumentSimilarityRequest) (DocumentSimilarityResult, error) {
	if err := req.Validate(); err != nil {
		return DocumentSimilarityResult{}, err
	}
	q, err := aql.New(aql.DocumentSimilarity).
		Bind("url", req.URL).
		BindDepth(req.Depth).
		Bind("graph", r.cfg.NewsGraph).
		Bind("edge_collection", req.EdgeCollection).
		Build()
	if err != nil {
		return DocumentSimilarityResult{}, err
	}

	rows, err := r.run(ctx, req.Endpoint, q, config.DefaultBatchSize)
	if err != nil {
		return DocumentSimilarityResult{}, fmt.Errorf("document lookup for %s: %w", req.URL, err)
	}
	results, err := decodeRows[struct {
		QArticle        []types.Article `json:"qarticle"`
		RelatedArticles []types.Article `json:"related_articles"`
	}](rows)
	if err != nil {
		return DocumentSimilarityResult{}, fmt.Errorf("document lookup for %s: %w", req.URL, err)
	}
	if len(results) == 0 || len(results[0].QArticle) == 0 {
		return DocumentSimilarityResult{}, fmt.Errorf("%w: %s", ErrArticleNotFound, req.URL)
	}

	related := results[0].RelatedArticles
	if related == nil {
		related = []types.Article{}
	}
	return DocumentSimilarityResult{QueryArticle: results[0].QArticle[0], RelatedArticles: related}, nil
}

// RelatedDocumentsByPathCount returns articles and their path counts, fewest paths first.
func (r *Retriever) RelatedDocumentsByPathCount(ctx context.Context, req DocumentPathRequest) (DocumentPathResult, error) {
	if err := req.Validate(); err != nil {
		return DocumentPathResult{}, err
	}
	q, err := aql.New(aql.DocumentPaths).
		Bind("id", req.ArticleID).
		BindDepth(req.Depth).
		Bind("graph", r.cfg.NewsGraph).
		Bind("edge_collection", req.EdgeCollection).
		Bind("limit", req.Limit).
		Build()
	if err != nil {
		return DocumentPathResult{}, err
	}

	rows, err := r.run(ctx, req.Endpoint, q, config.DefaultBatchSize)
	if err != nil {
		return DocumentPathResult{}, fmt.Errorf("document path lookup for %s: %w", req.ArticleID, err)
	}
	counted, err := decodeRows[struct {
		RelatedArticle types.Article `json:"related_article"`
		NoOfPaths      int           `json:"no_of_paths"`
	}](rows)
	if err != nil {
		return DocumentPathResult{}, fmt.Errorf("document path lookup for %s: %w", req.ArticleID, err)
	}

	out := DocumentPathResult{
		RelatedArticles: make([]types.Article, 0, len(counted)),
		PathCounts:      make([]int, 0, len(counted)),
	}
	for _, c := range counted {
		out.RelatedArticles = append(out.RelatedArticles, c.RelatedArticle)
		out.PathCounts = append(out.PathCounts, c.NoOfPaths)
	}
	return out, nil
}

// run opens a news session, runs q and releases the session on every path.
func (r *Retriever) run(ctx context.Context, endpoint string, q aql.Query, batchSize int) ([]json.RawMessage, error) {
	session, err := r.connector.Connect(ctx, graphdb.NewsDB, endpoint)
	if err != nil {
		return nil, err
	}
	defer closeSession(session)

	return session.Query(ctx, q, batchSize)
}

func (r *Retriever) records(ctx context.Context, endpoint string, q aql.Query, batchSize int) ([]types.RelatedArticle, error) {
	rows, err := r.run(ctx, endpoint, q, batchSize)
	if err != nil {
		return nil, err
	}
	return decodeRows[types.RelatedArticle](rows)
}

func closeSession(s graphdb.Session) {
	if err := s.Close(); err != nil {
		logger.Warn("failed to close graph session", "err", err)
	}
}

func decodeRows[T any](rows []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var v T
		if err := json.Unmarshal(row, &v); err != nil {
			return nil, fmt.Errorf("failed to decode result row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
