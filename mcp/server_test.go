package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"newsgraph/aql"
	"newsgraph/config"
	"newsgraph/retrieval"
	"newsgraph/retrieval/retrievaltest"
	"newsgraph/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcReply struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

func handle(t *testing.T, s *Server, msg string) rpcReply {
	t.Helper()
	resp, ok := s.Handle(context.Background(), []byte(msg))
	require.True(t, ok, "expected a response")
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	var reply rpcReply
	require.NoError(t, json.Unmarshal(b, &reply))
	assert.Equal(t, "2.0", reply.JSONRPC)
	return reply
}

func callTool(t *testing.T, s *Server, name, args string) CallToolResult {
	t.Helper()
	msg := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"` + name + `","arguments":` + args + `}}`
	reply := handle(t, s, msg)
	require.Nil(t, reply.Error)
	var res CallToolResult
	require.NoError(t, json.Unmarshal(reply.Result, &res))
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	return res
}

func TestInitialize(t *testing.T) {
	s := NewServer(&retrievaltest.Stub{}, "")
	reply := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`)
	require.Nil(t, reply.Error)
	assert.JSONEq(t, "1", string(reply.ID))

	var res struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ServerInfo      struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(reply.Result, &res))
	assert.Equal(t, ProtocolVersion, res.ProtocolVersion)
	assert.Contains(t, res.Capabilities, "tools")
	assert.Equal(t, ServerName, res.ServerInfo.Name)
}

func TestToolsList(t *testing.T) {
	s := NewServer(&retrievaltest.Stub{}, "")
	reply := handle(t, s, `{"jsonrpc":"2.0","id":"list","method":"tools/list"}`)
	require.Nil(t, reply.Error)
	assert.JSONEq(t, `"list"`, string(reply.ID))

	var res struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			InputSchema struct {
				Type       string         `json:"type"`
				Properties map[string]any `json:"properties"`
				Required   []string       `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(reply.Result, &res))

	required := map[string][]string{}
	for _, tool := range res.Tools {
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.Equal(t, "object", tool.InputSchema.Type, tool.Name)
		for _, r := range tool.InputSchema.Required {
			assert.Contains(t, tool.InputSchema.Properties, r, tool.Name)
		}
		required[tool.Name] = tool.InputSchema.Required
	}
	assert.Equal(t, map[string][]string{
		"related_by_similarity":           {"article_key"},
		"related_by_similarity_full":      {"article_key"},
		"related_by_path_count":           {"article_key"},
		"related_by_category_paths":       {"article_key", "category"},
		"related_by_entity":               {"article_key", "category", "epoch_time"},
		"related_documents":               {"url"},
		"related_documents_by_path_count": {"article_id"},
	}, required)
}

func TestSimilarityToolDefaults(t *testing.T) {
	var got retrieval.SimilarityRequest
	stub := &retrievaltest.Stub{
		SimilarityFn: func(req retrieval.SimilarityRequest) ([]types.RelatedArticle, error) {
			got = req
			return []types.RelatedArticle{{ArticleID: "9", Tag: "cr"}}, nil
		},
	}
	s := NewServer(stub, "http://arango:8529")

	res := callTool(t, s, "related_by_similarity", `{"article_key":"42"}`)
	assert.False(t, res.IsError, res.Content[0].Text)

	assert.Equal(t, "42", got.ArticleKey)
	assert.Equal(t, aql.Depth{Min: 1, Max: 2}, got.Depth)
	assert.Equal(t, config.DefaultEdgeCollection, got.EdgeCollection)
	assert.Equal(t, float64(config.DefaultSimilarityThreshold), got.Threshold)
	assert.Equal(t, "http://arango:8529", got.Endpoint)

	var articles []types.RelatedArticle
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "9", articles[0].ArticleID)
	assert.Equal(t, 0, stub.Calls("RelatedBySimilarityFull"))
}

func TestSimilarityFullToolArguments(t *testing.T) {
	var got retrieval.SimilarityRequest
	stub := &retrievaltest.Stub{
		SimilarityFullFn: func(req retrieval.SimilarityRequest) ([]types.RelatedArticle, error) {
			got = req
			return []types.RelatedArticle{}, nil
		},
	}
	s := NewServer(stub, "")

	res := callTool(t, s, "related_by_similarity_full", `{"article_key":"42","depth":"2..3","edge_collection":"st","threshold":0.8}`)
	assert.False(t, res.IsError, res.Content[0].Text)
	assert.Equal(t, aql.Depth{Min: 2, Max: 3}, got.Depth)
	assert.Equal(t, "st", got.EdgeCollection)
	assert.Equal(t, 0.8, got.Threshold)
	assert.Equal(t, 1, stub.Calls("RelatedBySimilarityFull"))
	assert.Equal(t, 0, stub.Calls("RelatedBySimilarity"))
}

func TestPathToolsMapArguments(t *testing.T) {
	var pathReq retrieval.PathCountRequest
	var catReq retrieval.CategoryPathRequest
	var docReq retrieval.DocumentSimilarityRequest
	var docPathReq retrieval.DocumentPathRequest
	stub := &retrievaltest.Stub{
		PathCountFn: func(req retrieval.PathCountRequest) ([]types.RelatedArticle, error) {
			pathReq = req
			return nil, nil
		},
		CategoryPathsFn: func(req retrieval.CategoryPathRequest) ([]types.RelatedArticle, error) {
			catReq = req
			return nil, nil
		},
		DocumentsFn: func(req retrieval.DocumentSimilarityRequest) (retrieval.DocumentSimilarityResult, error) {
			docReq = req
			return retrieval.DocumentSimilarityResult{}, nil
		},
		DocumentPathsFn: func(req retrieval.DocumentPathRequest) (retrieval.DocumentPathResult, error) {
			docPathReq = req
			return retrieval.DocumentPathResult{PathCounts: []int{3}}, nil
		},
	}
	s := NewServer(stub, "")

	res := callTool(t, s, "related_by_path_count", `{"article_key":"42"}`)
	assert.False(t, res.IsError, res.Content[0].Text)
	assert.Equal(t, config.DefaultLimit, pathReq.Limit)
	assert.Equal(t, int64(config.DefaultWindow), pathReq.Window)

	res = callTool(t, s, "related_by_category_paths", `{"article_key":"42","category":"Politics","limit":3,"window":600,"origins":["cr","st"]}`)
	assert.False(t, res.IsError, res.Content[0].Text)
	assert.Equal(t, "Politics", catReq.Category)
	assert.Equal(t, 3, catReq.Limit)
	assert.Equal(t, int64(600), catReq.Window)
	assert.Equal(t, []string{"cr", "st"}, catReq.Origins)

	res = callTool(t, s, "related_documents", `{"url":"https://example.com/a"}`)
	assert.False(t, res.IsError, res.Content[0].Text)
	assert.Equal(t, "https://example.com/a", docReq.URL)
	assert.Equal(t, config.DefaultEdgeCollection, docReq.EdgeCollection)

	res = callTool(t, s, "related_documents_by_path_count", `{"article_id":"Article/42","limit":5}`)
	assert.False(t, res.IsError, res.Content[0].Text)
	assert.Equal(t, "Article/42", docPathReq.ArticleID)
	assert.Equal(t, 5, docPathReq.Limit)
	assert.Contains(t, res.Content[0].Text, `"path_counts"`)
}

func TestEntityTool(t *testing.T) {
	var got retrieval.EntityRequest
	stub := &retrievaltest.Stub{
		EntityFn: func(req retrieval.EntityRequest) (retrieval.EntityResult, error) {
			got = req
			return retrieval.EntityResult{Articles: []types.RelatedArticle{}, Err: errors.New("traversal timed out")}, nil
		},
	}
	s := NewServer(stub, "")

	res := callTool(t, s, "related_by_entity", `{"article_key":"42","top_terms":["Budget"],"category":"Politics","epoch_time":1700000000}`)
	assert.False(t, res.IsError, res.Content[0].Text)
	assert.Equal(t, []string{"Budget"}, got.TopTerms)
	assert.Equal(t, float64(1700000000), got.EpochTime)

	var out EntityOutput
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &out))
	assert.True(t, out.Degraded)
	assert.Equal(t, "traversal timed out", out.Warning)
	assert.Empty(t, out.Articles)
}

func TestEntityToolRequiresEpochTime(t *testing.T) {
	stub := &retrievaltest.Stub{}
	s := NewServer(stub, "")

	res := callTool(t, s, "related_by_entity", `{"article_key":"42","category":"Politics"}`)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "epoch_time")
	assert.Equal(t, 0, stub.Calls("RelatedByEntity"))
}

func TestToolErrorsAreResults(t *testing.T) {
	stub := &retrievaltest.Stub{
		PathCountFn: func(retrieval.PathCountRequest) ([]types.RelatedArticle, error) {
			return nil, errors.New("arango unavailable")
		},
	}
	s := NewServer(stub, "")

	tests := []struct {
		name string
		tool string
		args string
		want string
	}{
		{"service failure", "related_by_path_count", `{"article_key":"42"}`, "arango unavailable"},
		{"unknown argument", "related_by_path_count", `{"article_key":"42","limt":3}`, "limt"},
		{"bad depth", "related_by_path_count", `{"article_key":"42","depth":"3..1"}`, "invalid traversal depth"},
		{"wrong type", "related_documents", `{"url":5}`, "invalid request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, res.Content[0].Text, tt.want)
		})
	}
}

func TestProtocolErrors(t *testing.T) {
	s := NewServer(&retrievaltest.Stub{}, "")

	reply := handle(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"drop_database","arguments":{}}}`)
	require.NotNil(t, reply.Error)
	assert.Equal(t, CodeInvalidParams, reply.Error.Code)

	reply = handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"resources/list"}`)
	require.NotNil(t, reply.Error)
	assert.Equal(t, CodeMethodNotFound, reply.Error.Code)

	reply = handle(t, s, `{"jsonrpc":"1.0","id":4,"method":"ping"}`)
	require.NotNil(t, reply.Error)
	assert.Equal(t, CodeInvalidRequest, reply.Error.Code)

	reply = handle(t, s, `{"jsonrpc":`)
	require.NotNil(t, reply.Error)
	assert.Equal(t, CodeParseError, reply.Error.Code)
	assert.Equal(t, "null", string(reply.ID))
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s := NewServer(&retrievaltest.Stub{}, "")

	_, ok := s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.False(t, ok)
	_, ok = s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"no/such/method"}`))
	assert.False(t, ok)
}

func TestServe(t *testing.T) {
	stub := &retrievaltest.Stub{}
	s := NewServer(stub, "")

	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"related_by_similarity","arguments":{"article_key":"42"}}}`,
	}, "\n")
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), strings.NewReader(in), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		var reply rpcReply
		require.NoError(t, json.Unmarshal([]byte(line), &reply))
		assert.Nil(t, reply.Error)
		assert.JSONEq(t, []string{"1", "2", "3"}[i], string(reply.ID))
	}
	assert.Equal(t, 1, stub.Calls("RelatedBySimilarity"))
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewServer(&retrievaltest.Stub{}, "")

	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
