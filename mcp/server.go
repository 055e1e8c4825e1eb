// Package mcp serves the retrieval operations as Model Context Protocol tools
// over newline-delimited JSON-RPC 2.0, the stdio transport chat agents spawn.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"newsgraph/logger"
	"newsgraph/retrieval"
)

const (
	// ProtocolVersion is the MCP revision this server speaks.
	ProtocolVersion = "2024-11-05"

	// ServerName and ServerVersion are reported by initialize.
	ServerName    = "newsgraph"
	ServerVersion = "1.0.0"

	maxMessageSize = 4 << 20
)

// JSON-RPC error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Content is one block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the result of tools/call. Tool failures are reported
// here with IsError set, not as JSON-RPC errors.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Server dispatches JSON-RPC requests to the tools.
type Server struct {
	tools []Tool
	index map[string]Tool
}

// NewServer exposes svc as tools. endpoint is sent with every lookup; empty
// means the configured default.
func NewServer(svc retrieval.Service, endpoint string) *Server {
	tools := newTools(svc, endpoint)
	index := make(map[string]Tool, len(tools))
	for _, t := range tools {
		index[t.Name] = t
	}
	return &Server{tools: tools, index: index}
}

// Tools lists the registered tools in registration order.
func (s *Server) Tools() []Tool {
	return s.tools
}

// Serve reads one request per line from r and writes one response per line
// to w until r is exhausted. Notifications get no response.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		resp, ok := s.Handle(ctx, line)
		if !ok {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	return nil
}

// Handle processes one message. It reports false for notifications.
func (s *Server) Handle(ctx context.Context, msg []byte) (any, bool) {
	var req request
	if err := json.Unmarshal(msg, &req); err != nil {
		return errorResponse(nil, &Error{Code: CodeParseError, Message: err.Error()}), true
	}
	notification := len(req.ID) == 0
	if req.JSONRPC != "2.0" || req.Method == "" {
		if notification {
			return nil, false
		}
		return errorResponse(req.ID, &Error{Code: CodeInvalidRequest, Message: "jsonrpc 2.0 request with a method expected"}), true
	}

	result, rpcErr := s.dispatch(ctx, req.Method, req.Params)
	if notification {
		return nil, false
	}
	if rpcErr != nil {
		return errorResponse(req.ID, rpcErr), true
	}
	return response{JSONRPC: "2.0", ID: req.ID, Result: result}, true
}

func errorResponse(id json.RawMessage, err *Error) response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return response{JSONRPC: "2.0", ID: id, Error: err}
}

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (any, *Error) {
	switch method {
	case "initialize":
		return map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": ServerName, "version": ServerVersion},
		}, nil
	case "notifications/initialized", "initialized", "ping":
		return map[string]any{}, nil
	case "tools/list":
		return map[string]any{"tools": s.tools}, nil
	case "tools/call":
		return s.callTool(ctx, params)
	default:
		return nil, &Error{Code: CodeMethodNotFound, Message: "method not found: " + method}
	}
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	tool, ok := s.index[p.Name]
	if !ok {
		return nil, &Error{Code: CodeInvalidParams, Message: "unknown tool: " + p.Name}
	}

	logger.Debug("tool call", "tool", p.Name)
	out, err := tool.call(ctx, p.Arguments)
	if err != nil {
		logger.Warn("tool call failed", "tool", p.Name, "err", err)
		return CallToolResult{Content: []Content{{Type: "text", Text: err.Error()}}, IsError: true}, nil
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return CallToolResult{Content: []Content{{Type: "text", Text: err.Error()}}, IsError: true}, nil
	}
	return CallToolResult{Content: []Content{{Type: "text", Text: string(b)}}}, nil
}
