// Package graphdb opens sessions against the news graph database and runs
// AQL queries on them.
package graphdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"newsgraph/aql"
	"newsgraph/config"
	"newsgraph/logger"

	driver "github.com/arangodb/go-driver"
	arangohttp "github.com/arangodb/go-driver/http"
)

// Database is the logical database discriminator. NewsDB selects the news
// graph; every other value selects the video graph.
type Database string

const (
	NewsDB  Database = "newsDB"
	VideoDB Database = "videoDB"
)

// GraphName resolves the graph this discriminator opens.
func (d Database) GraphName(cfg config.ArangoConfig) string {
	if d == NewsDB {
		return cfg.NewsGraph
	}
	return cfg.VideoGraph
}

// Session is an open connection to one database and graph.
// Close must be called on every path once the caller is done.
type Session interface {
	Query(ctx context.Context, q aql.Query, batchSize int) ([]json.RawMessage, error)
	Close() error
}

// Connector opens sessions. Retrieval code depends on this rather than on the driver.
type Connector interface {
	Connect(ctx context.Context, db Database, endpoint string) (Session, error)
}

// ConnectionError reports a failure to authenticate, select the database or
// resolve the graph.
type ConnectionError struct {
	Database string
	Graph    string
	Endpoint string
	Stage    string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("graph database connection failed at %s (database %s, graph %s, endpoint %s): %v",
		e.Stage, e.Database, e.Graph, e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ArangoConnector opens ArangoDB sessions with the configured credentials.
type ArangoConnector struct {
	cfg config.ArangoConfig
}

// NewConnector creates a connector for the given settings.
func NewConnector(cfg config.ArangoConfig) *ArangoConnector {
	return &ArangoConnector{cfg: cfg}
}

// Connect implements Connector.
func (c *ArangoConnector) Connect(ctx context.Context, db Database, endpoint string) (Session, error) {
	s, err := Open(ctx, c.cfg, db, endpoint)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ArangoSession owns the HTTP transport of one connection so that Close
// actually releases it.
type ArangoSession struct {
	db        driver.Database
	graph     driver.Graph
	transport *http.Transport
	closeOnce sync.Once
}

// Open authenticates, selects cfg.Database and resolves the graph named by db.
// An empty endpoint falls back to the configured, then the local, endpoint.
func Open(ctx context.Context, cfg config.ArangoConfig, db Database, endpoint string) (*ArangoSession, error) {
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}
	graphName := db.GraphName(cfg)

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	fail := func(stage string, err error) (*ArangoSession, error) {
		transport.CloseIdleConnections()
		logger.Error("Exception occurred while connecting to database",
			"database", cfg.Database, "graph", graphName, "endpoint", endpoint, "stage", stage, "err", err)
		return nil, &ConnectionError{
			Database: cfg.Database,
			Graph:    graphName,
			Endpoint: endpoint,
			Stage:    stage,
			Err:      err,
		}
	}

	if cfg.Username == "" || cfg.Password == "" {
		return fail("authenticate", config.ErrMissingCredentials)
	}

	conn, err := arangohttp.NewConnection(arangohttp.ConnectionConfig{
		Endpoints: []string{endpoint},
		Transport: transport,
	})
	if err != nil {
		return fail("connect", err)
	}

	client, err := driver.NewClient(driver.ClientConfig{
		Connection:     conn,
		Authentication: driver.BasicAuthentication(cfg.Username, cfg.Password),
	})
	if err != nil {
		return fail("authenticate", err)
	}

	adb, err := client.Database(ctx, cfg.Database)
	if err != nil {
		return fail("select database", err)
	}

	g, err := adb.Graph(ctx, graphName)
	if err != nil {
		return fail("resolve graph", err)
	}

	return &ArangoSession{db: adb, graph: g, transport: transport}, nil
}

// Database returns the selected database handle.
func (s *ArangoSession) Database() driver.Database { return s.db }

// Graph returns the resolved graph handle.
func (s *ArangoSession) Graph() driver.Graph { return s.graph }

// Query runs q and drains the cursor. The cursor is closed before returning.
func (s *ArangoSession) Query(ctx context.Context, q aql.Query, batchSize int) ([]json.RawMessage, error) {
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	qctx := driver.WithQueryBatchSize(ctx, batchSize)

	cursor, err := s.db.Query(qctx, q.Text, q.BindVars)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer cursor.Close()

	rows := make([]json.RawMessage, 0, batchSize)
	for {
		var row json.RawMessage
		_, err := cursor.ReadDocument(qctx, &row)
		if driver.IsNoMoreDocuments(err) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read query result: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Close releases the session's connections. Safe to call more than once.
func (s *ArangoSession) Close() error {
	s.closeOnce.Do(s.transport.CloseIdleConnections)
	return nil
}

// Execute is the generic escape hatch: open a session on db, run q, always
// close the session, and return the raw rows.
func Execute(ctx context.Context, connector Connector, q aql.Query, db Database, endpoint string, batchSize int) ([]json.RawMessage, error) {
	session, err := connector.Connect(ctx, db, endpoint)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	rows, err := session.Query(ctx, q, batchSize)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
