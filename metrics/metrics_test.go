package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"newsgraph/graphdb"
	"newsgraph/retrieval"
	"newsgraph/retrieval/retrievaltest"
	"newsgraph/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{fmt.Errorf("lookup: %w", &graphdb.ConnectionError{Stage: "connect", Err: errors.New("refused")}), OutcomeConnection},
		{fmt.Errorf("%w: https://x", retrieval.ErrArticleNotFound), OutcomeNotFound},
		{fmt.Errorf("%w: limit", retrieval.ErrInvalidRequest), OutcomeInvalid},
		{errors.New("AQL: syntax error"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestServiceRecordsDurationsAndResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	stub := &retrievaltest.Stub{
		SimilarityFn: func(retrieval.SimilarityRequest) ([]types.RelatedArticle, error) {
			return []types.RelatedArticle{{ArticleID: "A2"}, {ArticleID: "A3"}}, nil
		},
		PathCountFn: func(retrieval.PathCountRequest) ([]types.RelatedArticle, error) {
			return nil, errors.New("AQL: timeout")
		},
	}
	svc, err := NewService(stub, reg)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.RelatedBySimilarity(ctx, retrieval.SimilarityRequest{})
	require.NoError(t, err)
	_, err = svc.RelatedBySimilarity(ctx, retrieval.SimilarityRequest{})
	require.NoError(t, err)
	_, err = svc.RelatedByPathCount(ctx, retrieval.PathCountRequest{})
	require.Error(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(svc.c.QueryResults.WithLabelValues("similarity")))
	assert.Equal(t, 2, testutil.CollectAndCount(svc.c.QueryDuration))

	count, err := testutil.GatherAndCount(reg, "newsgraph_query_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestServiceMarksDegradedEntityLookups(t *testing.T) {
	reg := prometheus.NewRegistry()
	stub := &retrievaltest.Stub{
		EntityFn: func(retrieval.EntityRequest) (retrieval.EntityResult, error) {
			return retrieval.EntityResult{Articles: []types.RelatedArticle{}, Err: errors.New("no such entity")}, nil
		},
	}
	svc, err := NewService(stub, reg)
	require.NoError(t, err)

	res, err := svc.RelatedByEntity(context.Background(), retrieval.EntityRequest{})
	require.NoError(t, err)
	assert.True(t, res.Degraded())

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var labels []string
	for _, mf := range mfs {
		if mf.GetName() != "newsgraph_query_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" {
					labels = append(labels, lp.GetValue())
				}
			}
		}
	}
	assert.Equal(t, []string{OutcomeDegraded}, labels)
}

func TestNewServiceRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewService(&retrievaltest.Stub{}, reg)
	require.NoError(t, err)

	_, err = NewService(&retrievaltest.Stub{}, reg)
	assert.Error(t, err)
}
