// Package retrievaltest provides a configurable retrieval.Service for tests.
package retrievaltest

import (
	"context"
	"sync"

	"newsgraph/retrieval"
	"newsgraph/types"
)

// Stub implements retrieval.Service with overridable functions. Unset
// functions return empty results. Calls are counted per operation.
type Stub struct {
	SimilarityFn     func(retrieval.SimilarityRequest) ([]types.RelatedArticle, error)
	SimilarityFullFn func(retrieval.SimilarityRequest) ([]types.RelatedArticle, error)
	PathCountFn      func(retrieval.PathCountRequest) ([]types.RelatedArticle, error)
	CategoryPathsFn  func(retrieval.CategoryPathRequest) ([]types.RelatedArticle, error)
	EntityFn         func(retrieval.EntityRequest) (retrieval.EntityResult, error)
	DocumentsFn      func(retrieval.DocumentSimilarityRequest) (retrieval.DocumentSimilarityResult, error)
	DocumentPathsFn  func(retrieval.DocumentPathRequest) (retrieval.DocumentPathResult, error)

	mu    sync.Mutex
	calls map[string]int
}

var _ retrieval.Service = (*Stub)(nil)

// Calls returns how often op was invoked. Ops are named after the methods.
func (s *Stub) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Stub) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
}

func (s *Stub) RelatedBySimilarity(_ context.Context, req retrieval.SimilarityRequest) ([]types.RelatedArticle, error) {
	s.record("RelatedBySimilarity")
	if s.SimilarityFn == nil {
		return []types.RelatedArticle{}, nil
	}
	return s.SimilarityFn(req)
}

func (s *Stub) RelatedBySimilarityFull(_ context.Context, req retrieval.SimilarityRequest) ([]types.RelatedArticle, error) {
	s.record("RelatedBySimilarityFull")
	if s.SimilarityFullFn == nil {
		return []types.RelatedArticle{}, nil
	}
	return s.SimilarityFullFn(req)
}

func (s *Stub) RelatedByPathCount(_ context.Context, req retrieval.PathCountRequest) ([]types.RelatedArticle, error) {
	s.record("RelatedByPathCount")
	if s.PathCountFn == nil {
		return []types.RelatedArticle{}, nil
	}
	return s.PathCountFn(req)
}

func (s *Stub) RelatedByCategoryPaths(_ context.Context, req retrieval.CategoryPathRequest) ([]types.RelatedArticle, error) {
	s.record("RelatedByCategoryPaths")
	if s.CategoryPathsFn == nil {
		return []types.RelatedArticle{}, nil
	}
	return s.CategoryPathsFn(req)
}

func (s *Stub) RelatedByEntity(_ context.Context, req retrieval.EntityRequest) (retrieval.EntityResult, error) {
	s.record("RelatedByEntity")
	if s.EntityFn == nil {
		return retrieval.EntityResult{Articles: []types.RelatedArticle{}}, nil
	}
	return s.EntityFn(req)
}

func (s *Stub) RelatedDocuments(_ context.Context, req retrieval.DocumentSimilarityRequest) (retrieval.DocumentSimilarityResult, error) {
	s.record("RelatedDocuments")
	if s.DocumentsFn == nil {
		return retrieval.DocumentSimilarityResult{RelatedArticles: []types.Article{}}, nil
	}
	return s.DocumentsFn(req)
}

func (s *Stub) RelatedDocumentsByPathCount(_ context.Context, req retrieval.DocumentPathRequest) (retrieval.DocumentPathResult, error) {
	s.record("RelatedDocumentsByPathCount")
	if s.DocumentPathsFn == nil {
		return retrieval.DocumentPathResult{RelatedArticles: []types.Article{}, PathCounts: []int{}}, nil
	}
	return s.DocumentPathsFn(req)
}
