package config

import "time"

// Graph database constants
const (
	// DefaultEndpoint is used when no endpoint URL is supplied
	DefaultEndpoint = "http://localhost:8529"

	// DefaultDatabase holds both the news and the video graphs
	DefaultDatabase = "newsDB2022"

	// DefaultNewsGraph is the graph of articles, documents and their relations
	DefaultNewsGraph = "newsGraph"

	// DefaultVideoGraph is the graph used for video-specific queries
	DefaultVideoGraph = "video_Metadata"

	// DefaultEntityGraph links articles to the entities they mention
	DefaultEntityGraph = "articleGraph"
)

// Query Constants
const (
	// DefaultBatchSize is the cursor batch size for generic queries
	DefaultBatchSize = 100

	// PathCountBatchSize is the cursor batch size for the time-windowed path-count query
	PathCountBatchSize = 400

	// DefaultDepth is the traversal depth range used when a caller sends none
	DefaultDepth = "1..2"

	// DefaultLimit caps path-count results when a caller sends no limit
	DefaultLimit = 10

	// DefaultWindow is the symmetric epoch window (8 hours, in seconds)
	DefaultWindow = 8 * 60 * 60

	// DefaultSimilarityThreshold keeps neighbours whose sim_value is below it
	DefaultSimilarityThreshold = 0.5

	// DefaultEdgeCollection connects cr related articles
	DefaultEdgeCollection = "cr"
)

// Cache and warming constants
const (
	// DefaultCacheTTL is how long a retrieval result stays cached
	DefaultCacheTTL = 15 * time.Minute

	// WarmKeyRetention is how long a warmed article key stays eligible for re-warming
	WarmKeyRetention = 24 * time.Hour

	// DefaultWarmCron re-warms recently published articles every 10 minutes
	DefaultWarmCron = "*/10 * * * *"

	// MaxConcurrentWarms limits how many articles are warmed simultaneously
	MaxConcurrentWarms = 4
)

// Kafka Constants
const (
	DefaultKafkaTopic   = "article-published"
	DefaultKafkaGroupID = "newsgraph-warmer"
)
