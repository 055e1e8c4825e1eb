// Package metrics instruments retrieval operations with Prometheus.
package metrics

import (
	"context"
	"errors"
	"time"

	"newsgraph/graphdb"
	"newsgraph/retrieval"
	"newsgraph/types"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeOK         = "ok"
	OutcomeDegraded   = "degraded"
	OutcomeNotFound   = "not_found"
	OutcomeInvalid    = "invalid"
	OutcomeConnection = "connection_error"
	OutcomeError      = "error"
)

// Collectors holds the retrieval metrics.
type Collectors struct {
	// QueryDuration measures each retrieval operation, labeled by outcome.
	QueryDuration *prometheus.HistogramVec

	// QueryResults counts the records returned per operation.
	QueryResults *prometheus.CounterVec
}

// NewCollectors creates the collectors and registers them on reg.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "newsgraph_query_duration_seconds",
				Help: "Duration of graph retrieval operations in seconds",
				// cache hits land in the first buckets, deep traversals in the last
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation", "outcome"},
		),
		QueryResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsgraph_query_results_total",
				Help: "Total number of related articles returned",
			},
			[]string{"operation"},
		),
	}
	for _, col := range []prometheus.Collector{c.QueryDuration, c.QueryResults} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Service records metrics around an inner retrieval.Service.
type Service struct {
	inner retrieval.Service
	c     *Collectors
}

var _ retrieval.Service = (*Service)(nil)

// NewService wraps inner and registers its collectors on reg.
func NewService(inner retrieval.Service, reg prometheus.Registerer) (*Service, error) {
	c, err := NewCollectors(reg)
	if err != nil {
		return nil, err
	}
	return &Service{inner: inner, c: c}, nil
}

// Outcome classifies an operation error for the outcome label.
func Outcome(err error) string {
	var connErr *graphdb.ConnectionError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &connErr):
		return OutcomeConnection
	case errors.Is(err, retrieval.ErrArticleNotFound):
		return OutcomeNotFound
	case errors.Is(err, retrieval.ErrInvalidRequest):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func (s *Service) observe(op string, start time.Time, outcome string, n int) {
	s.c.QueryDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	if n > 0 {
		s.c.QueryResults.WithLabelValues(op).Add(float64(n))
	}
}

func (s *Service) RelatedBySimilarity(ctx context.Context, req retrieval.SimilarityRequest) ([]types.RelatedArticle, error) {
	start := time.Now()
	recs, err := s.inner.RelatedBySimilarity(ctx, req)
	s.observe("similarity", start, Outcome(err), len(recs))
	return recs, err
}

func (s *Service) RelatedBySimilarityFull(ctx context.Context, req retrieval.SimilarityRequest) ([]types.RelatedArticle, error) {
	start := time.Now()
	recs, err := s.inner.RelatedBySimilarityFull(ctx, req)
	s.observe("similarity_full", start, Outcome(err), len(recs))
	return recs, err
}

func (s *Service) RelatedByPathCount(ctx context.Context, req retrieval.PathCountRequest) ([]types.RelatedArticle, error) {
	start := time.Now()
	recs, err := s.inner.RelatedByPathCount(ctx, req)
	s.observe("path_count", start, Outcome(err), len(recs))
	return recs, err
}

func (s *Service) RelatedByCategoryPaths(ctx context.Context, req retrieval.CategoryPathRequest) ([]types.RelatedArticle, error) {
	start := time.Now()
	recs, err := s.inner.RelatedByCategoryPaths(ctx, req)
	s.observe("category_paths", start, Outcome(err), len(recs))
	return recs, err
}

func (s *Service) RelatedByEntity(ctx context.Context, req retrieval.EntityRequest) (retrieval.EntityResult, error) {
	start := time.Now()
	res, err := s.inner.RelatedByEntity(ctx, req)
	outcome := Outcome(err)
	if err == nil && res.Degraded() {
		outcome = OutcomeDegraded
	}
	s.observe("entity", start, outcome, len(res.Articles))
	return res, err
}

func (s *Service) RelatedDocuments(ctx context.Context, req retrieval.DocumentSimilarityRequest) (retrieval.DocumentSimilarityResult, error) {
	start := time.Now()
	res, err := s.inner.RelatedDocuments(ctx, req)
	s.observe("documents", start, Outcome(err), len(res.RelatedArticles))
	return res, err
}

func (s *Service) RelatedDocumentsByPathCount(ctx context.Context, req retrieval.DocumentPathRequest) (retrieval.DocumentPathResult, error) {
	start := time.Now()
	res, err := s.inner.RelatedDocumentsByPathCount(ctx, req)
	s.observe("document_paths", start, Outcome(err), len(res.RelatedArticles))
	return res, err
}
