package api

import (
	"net/http"

	"newsgraph/retrieval"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter constructs a Gin engine with registered routes. A nil gatherer
// leaves /metrics unregistered.
func NewRouter(svc retrieval.Service, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	// article ids contain a slash and arrive escaped
	r.UseRawPath = true
	r.Use(gin.Recovery(), RequestID(), AccessLog())

	// Register resource routers
	RegisterHealthRoutes(r)
	RegisterArticleRoutes(r, svc)
	RegisterDocumentRoutes(r, svc)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

// RegisterHealthRoutes registers the liveness endpoint.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
