package cache

import (
	"context"
	"time"

	"newsgraph/config"
	"newsgraph/logger"
	"newsgraph/retrieval"
	"newsgraph/types"
)

type refreshKey struct{}

// WithRefresh marks ctx so lookups skip cached values and overwrite them.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

func refreshing(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}

// Service caches successful results of an inner retrieval.Service. Redis
// failures are logged and the inner service is used directly.
type Service struct {
	inner retrieval.Service
	store *Store
	ttl   time.Duration
}

var _ retrieval.Service = (*Service)(nil)

// NewService wraps inner. A non-positive ttl uses the default.
func NewService(inner retrieval.Service, store *Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = config.DefaultCacheTTL
	}
	return &Service{inner: inner, store: store, ttl: ttl}
}

func (s *Service) RelatedBySimilarity(ctx context.Context, req retrieval.SimilarityRequest) ([]types.RelatedArticle, error) {
	return lookup(ctx, s, "similarity", req.Endpoint, req, nil, func() ([]types.RelatedArticle, error) {
		return s.inner.RelatedBySimilarity(ctx, req)
	})
}

func (s *Service) RelatedBySimilarityFull(ctx context.Context, req retrieval.SimilarityRequest) ([]types.RelatedArticle, error) {
	return lookup(ctx, s, "similarity_full", req.Endpoint, req, nil, func() ([]types.RelatedArticle, error) {
		return s.inner.RelatedBySimilarityFull(ctx, req)
	})
}

func (s *Service) RelatedByPathCount(ctx context.Context, req retrieval.PathCountRequest) ([]types.RelatedArticle, error) {
	return lookup(ctx, s, "path_count", req.Endpoint, req, nil, func() ([]types.RelatedArticle, error) {
		return s.inner.RelatedByPathCount(ctx, req)
	})
}

func (s *Service) RelatedByCategoryPaths(ctx context.Context, req retrieval.CategoryPathRequest) ([]types.RelatedArticle, error) {
	return lookup(ctx, s, "category_paths", req.Endpoint, req, nil, func() ([]types.RelatedArticle, error) {
		return s.inner.RelatedByCategoryPaths(ctx, req)
	})
}

// RelatedByEntity never caches a degraded result.
func (s *Service) RelatedByEntity(ctx context.Context, req retrieval.EntityRequest) (retrieval.EntityResult, error) {
	keep := func(r retrieval.EntityResult) bool { return !r.Degraded() }
	return lookup(ctx, s, "entity", req.Endpoint, req, keep, func() (retrieval.EntityResult, error) {
		return s.inner.RelatedByEntity(ctx, req)
	})
}

func (s *Service) RelatedDocuments(ctx context.Context, req retrieval.DocumentSimilarityRequest) (retrieval.DocumentSimilarityResult, error) {
	keyed := req
	keyed.URL = NormalizeURL(req.URL)
	return lookup(ctx, s, "documents", req.Endpoint, keyed, nil, func() (retrieval.DocumentSimilarityResult, error) {
		return s.inner.RelatedDocuments(ctx, req)
	})
}

func (s *Service) RelatedDocumentsByPathCount(ctx context.Context, req retrieval.DocumentPathRequest) (retrieval.DocumentPathResult, error) {
	return lookup(ctx, s, "document_paths", req.Endpoint, req, nil, func() (retrieval.DocumentPathResult, error) {
		return s.inner.RelatedDocumentsByPathCount(ctx, req)
	})
}

// lookup serves op from the cache or fetches and stores it. keep decides
// whether a fetched value may be cached; nil keeps every successful value.
func lookup[T any](ctx context.Context, s *Service, op, endpoint string, req any, keep func(T) bool, fetch func() (T, error)) (T, error) {
	key, err := Key(op, endpoint, req)
	if err != nil {
		logger.Warn("cache key failed, bypassing cache", "op", op, "err", err)
		return fetch()
	}

	if !refreshing(ctx) {
		var cached T
		hit, err := s.store.Get(ctx, key, &cached)
		switch {
		case err != nil:
			logger.Warn("cache read failed, bypassing cache", "op", op, "err", err)
		case hit:
			logger.Debug("cache hit", "op", op, "key", key)
			return cached, nil
		}
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}
	if keep != nil && !keep(v) {
		return v, nil
	}
	if err := s.store.Set(ctx, key, v, s.ttl); err != nil {
		logger.Warn("cache write failed", "op", op, "err", err)
	}
	return v, nil
}
