package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsgraph/aql"
	"newsgraph/graphdb"
	"newsgraph/retrieval"
	"newsgraph/retrieval/retrievaltest"
	"newsgraph/types"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	w := serve(t, NewRouter(&retrievaltest.Stub{}, nil), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := NewRouter(&retrievaltest.Stub{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestSimilarDefaults(t *testing.T) {
	var got retrieval.SimilarityRequest
	stub := &retrievaltest.Stub{
		SimilarityFn: func(req retrieval.SimilarityRequest) ([]types.RelatedArticle, error) {
			got = req
			return []types.RelatedArticle{{ArticleID: "A2", Tag: "st"}}, nil
		},
	}
	w := serve(t, NewRouter(stub, nil), http.MethodGet, "/api/articles/A1/related", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "A1", got.ArticleKey)
	assert.Equal(t, aql.Depth{Min: 1, Max: 2}, got.Depth)
	assert.Equal(t, "cr", got.EdgeCollection)
	assert.Equal(t, 0.5, got.Threshold)

	resp := decode[RelatedResponse](t, w)
	assert.Equal(t, "A1", resp.ArticleKey)
	require.Len(t, resp.RelatedArticles, 1)
	assert.Equal(t, "st", resp.RelatedArticles[0].Tag)
	assert.Zero(t, stub.Calls("RelatedBySimilarityFull"))
}

func TestSimilarFull(t *testing.T) {
	stub := &retrievaltest.Stub{}
	w := serve(t, NewRouter(stub, nil), http.MethodGet, "/api/articles/A1/related?full=true&depth=1..3&edge=lr&threshold=0.3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, stub.Calls("RelatedBySimilarityFull"))
	assert.Zero(t, stub.Calls("RelatedBySimilarity"))
}

func TestBadQueryParameters(t *testing.T) {
	router := NewRouter(&retrievaltest.Stub{}, nil)
	for _, target := range []string{
		"/api/articles/A1/related?depth=2..1",
		"/api/articles/A1/related?depth=x",
		"/api/articles/A1/related?threshold=high",
		"/api/articles/A1/related/paths?limit=ten",
		"/api/articles/A1/related/paths?window=1.5",
		"/api/documents/Article%2FA1/related/paths?limit=-",
	} {
		t.Run(target, func(t *testing.T) {
			w := serve(t, router, http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestPathCount(t *testing.T) {
	var got retrieval.PathCountRequest
	stub := &retrievaltest.Stub{
		PathCountFn: func(req retrieval.PathCountRequest) ([]types.RelatedArticle, error) {
			got = req
			return []types.RelatedArticle{{ArticleID: "A4", NoOfPaths: 7}}, nil
		},
	}
	w := serve(t, NewRouter(stub, nil), http.MethodGet, "/api/articles/A1/related/paths?limit=5&window=3600", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, int64(3600), got.Window)
	assert.Contains(t, w.Body.String(), `"no_of_paths":7`)
}

func TestCategoryPathsOrigins(t *testing.T) {
	var got retrieval.CategoryPathRequest
	stub := &retrievaltest.Stub{
		CategoryPathsFn: func(req retrieval.CategoryPathRequest) ([]types.RelatedArticle, error) {
			got = req
			return []types.RelatedArticle{}, nil
		},
	}
	router := NewRouter(stub, nil)

	w := serve(t, router, http.MethodGet, "/api/articles/A1/related/category?category=world&origin=ne&origin=np", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "world", got.Category)
	assert.Equal(t, []string{"ne", "np"}, got.Origins)
	assert.Equal(t, 10, got.Limit)
	assert.JSONEq(t, `{"article_key":"A1","related_articles":[]}`, w.Body.String())

	w = serve(t, router, http.MethodGet, "/api/articles/A1/related/category?category=world", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, got.Origins)
}

func TestEntities(t *testing.T) {
	var got retrieval.EntityRequest
	stub := &retrievaltest.Stub{
		EntityFn: func(req retrieval.EntityRequest) (retrieval.EntityResult, error) {
			got = req
			return retrieval.EntityResult{Articles: []types.RelatedArticle{{ArticleID: "A5"}}}, nil
		},
	}
	body := `{"terms":["singapore","budget"],"epoch_time":1650000000,"category":"world","window":600}`
	w := serve(t, NewRouter(stub, nil), http.MethodPost, "/api/articles/A1/related/entities", body)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"singapore", "budget"}, got.TopTerms)
	assert.Equal(t, 1650000000.0, got.EpochTime)
	assert.Equal(t, int64(600), got.Window)
	assert.Equal(t, aql.Depth{Min: 1, Max: 2}, got.Depth)

	resp := decode[RelatedResponse](t, w)
	assert.False(t, resp.Degraded)
	assert.Equal(t, "A5", resp.RelatedArticles[0].ArticleID)
}

func TestEntitiesDegraded(t *testing.T) {
	stub := &retrievaltest.Stub{
		EntityFn: func(retrieval.EntityRequest) (retrieval.EntityResult, error) {
			return retrieval.EntityResult{Articles: []types.RelatedArticle{}, Err: errors.New("entity 'x' not found")}, nil
		},
	}
	w := serve(t, NewRouter(stub, nil), http.MethodPost, "/api/articles/A1/related/entities", `{"terms":["x"],"category":"world","epoch_time":1650000000}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[RelatedResponse](t, w)
	assert.True(t, resp.Degraded)
	assert.NotNil(t, resp.RelatedArticles)
	assert.Empty(t, resp.RelatedArticles)
	assert.Contains(t, resp.Warning, "not found")
}

func TestEntitiesRequiresCategoryAndEpoch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no category", `{"terms":["x"],"epoch_time":1650000000}`},
		{"no epoch time", `{"terms":["x"],"category":"world"}`},
		{"zero epoch time", `{"terms":["x"],"category":"world","epoch_time":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &retrievaltest.Stub{}
			w := serve(t, NewRouter(stub, nil), http.MethodPost, "/api/articles/A1/related/entities", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, stub.Calls("RelatedByEntity"))
		})
	}
}

func TestRelatedDocuments(t *testing.T) {
	stub := &retrievaltest.Stub{
		DocumentsFn: func(req retrieval.DocumentSimilarityRequest) (retrieval.DocumentSimilarityResult, error) {
			if req.URL != "https://news/a1" {
				return retrieval.DocumentSimilarityResult{}, fmt.Errorf("%w: %s", retrieval.ErrArticleNotFound, req.URL)
			}
			return retrieval.DocumentSimilarityResult{
				QueryArticle:    types.Article{Key: "A1"},
				RelatedArticles: []types.Article{{Key: "A2"}},
			}, nil
		},
	}
	router := NewRouter(stub, nil)

	w := serve(t, router, http.MethodGet, "/api/documents/related?url=https%3A%2F%2Fnews%2Fa1", "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[retrieval.DocumentSimilarityResult](t, w)
	assert.Equal(t, "A1", res.QueryArticle.Key)
	assert.Equal(t, "A2", res.RelatedArticles[0].Key)

	w = serve(t, router, http.MethodGet, "/api/documents/related?url=https%3A%2F%2Fnews%2Fmissing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentPathsEscapedID(t *testing.T) {
	var got retrieval.DocumentPathRequest
	stub := &retrievaltest.Stub{
		DocumentPathsFn: func(req retrieval.DocumentPathRequest) (retrieval.DocumentPathResult, error) {
			got = req
			return retrieval.DocumentPathResult{RelatedArticles: []types.Article{{Key: "A2"}}, PathCounts: []int{3}}, nil
		},
	}
	w := serve(t, NewRouter(stub, nil), http.MethodGet, "/api/documents/Article%2FA1/related/paths?depth=1..3&limit=4", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Article/A1", got.ArticleID)
	assert.Equal(t, aql.Depth{Min: 1, Max: 3}, got.Depth)
	assert.Equal(t, 4, got.Limit)
	res := decode[retrieval.DocumentPathResult](t, w)
	assert.Equal(t, []int{3}, res.PathCounts)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"connection", fmt.Errorf("lookup: %w", &graphdb.ConnectionError{Stage: "authenticate", Err: errors.New("401")}), http.StatusBadGateway},
		{"invalid", fmt.Errorf("%w: edge collection is required", retrieval.ErrInvalidRequest), http.StatusBadRequest},
		{"query", errors.New("AQL: collection not found"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &retrievaltest.Stub{
				SimilarityFn: func(retrieval.SimilarityRequest) ([]types.RelatedArticle, error) { return nil, tt.err },
			}
			w := serve(t, NewRouter(stub, nil), http.MethodGet, "/api/articles/A1/related", "")
			assert.Equal(t, tt.want, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.err.Error()), w.Body.String())
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "newsgraph_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	w := serve(t, NewRouter(&retrievaltest.Stub{}, reg), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newsgraph_test_total 1")

	w = serve(t, NewRouter(&retrievaltest.Stub{}, nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
