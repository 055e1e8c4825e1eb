package api

import (
	"net/http"

	"newsgraph/aql"
	"newsgraph/config"
	"newsgraph/retrieval"
	"newsgraph/types"

	"github.com/gin-gonic/gin"
)

// RegisterArticleRoutes registers related-article lookups keyed by article key.
func RegisterArticleRoutes(r *gin.Engine, svc retrieval.Service) {
	h := &articleHandler{svc: svc}
	g := r.Group("/api/articles/:key/related")
	g.GET("", h.handleSimilar)
	g.GET("/paths", h.handlePathCount)
	g.GET("/category", h.handleCategoryPaths)
	g.POST("/entities", h.handleEntities)
}

type articleHandler struct {
	svc retrieval.Service
}

// RelatedResponse is returned by every article lookup.
type RelatedResponse struct {
	ArticleKey      string                 `json:"article_key"`
	RelatedArticles []types.RelatedArticle `json:"related_articles"`
	Degraded        bool                   `json:"degraded,omitempty"`
	Warning         string                 `json:"warning,omitempty"`
}

// EntityLookupRequest is the body of POST /api/articles/:key/related/entities.
type EntityLookupRequest struct {
	Terms     []string `json:"terms"`
	Depth     string   `json:"depth"`
	EpochTime float64  `json:"epoch_time" binding:"required"`
	Category  string   `json:"category" binding:"required"`
	Window    *int64   `json:"window"`
}

// handleSimilar serves GET /api/articles/:key/related?depth=&edge=&threshold=&full=
func (h *articleHandler) handleSimilar(c *gin.Context) {
	depth, err := depthQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	threshold, err := floatQuery(c, "threshold", config.DefaultSimilarityThreshold)
	if err != nil {
		badRequest(c, err)
		return
	}
	req := retrieval.SimilarityRequest{
		ArticleKey:     c.Param("key"),
		Depth:          depth,
		EdgeCollection: c.DefaultQuery("edge", config.DefaultEdgeCollection),
		Threshold:      threshold,
	}

	var recs []types.RelatedArticle
	if boolQuery(c, "full") {
		recs, err = h.svc.RelatedBySimilarityFull(c.Request.Context(), req)
	} else {
		recs, err = h.svc.RelatedBySimilarity(c.Request.Context(), req)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RelatedResponse{ArticleKey: req.ArticleKey, RelatedArticles: recs})
}

// handlePathCount serves GET /api/articles/:key/related/paths?depth=&limit=&window=
func (h *articleHandler) handlePathCount(c *gin.Context) {
	depth, err := depthQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	limit, err := intQuery(c, "limit", config.DefaultLimit)
	if err != nil {
		badRequest(c, err)
		return
	}
	window, err := int64Query(c, "window", config.DefaultWindow)
	if err != nil {
		badRequest(c, err)
		return
	}
	req := retrieval.PathCountRequest{ArticleKey: c.Param("key"), Depth: depth, Limit: limit, Window: window}

	recs, err := h.svc.RelatedByPathCount(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RelatedResponse{ArticleKey: req.ArticleKey, RelatedArticles: recs})
}

// handleCategoryPaths serves GET /api/articles/:key/related/category?category=&origin=...
func (h *articleHandler) handleCategoryPaths(c *gin.Context) {
	depth, err := depthQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	limit, err := intQuery(c, "limit", config.DefaultLimit)
	if err != nil {
		badRequest(c, err)
		return
	}
	window, err := int64Query(c, "window", config.DefaultWindow)
	if err != nil {
		badRequest(c, err)
		return
	}
	req := retrieval.CategoryPathRequest{
		ArticleKey: c.Param("key"),
		Depth:      depth,
		Category:   c.Query("category"),
		Window:     window,
		Limit:      limit,
		Origins:    c.QueryArray("origin"),
	}

	recs, err := h.svc.RelatedByCategoryPaths(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RelatedResponse{ArticleKey: req.ArticleKey, RelatedArticles: recs})
}

// handleEntities serves POST /api/articles/:key/related/entities. A failed
// traversal still answers 200 with an empty list flagged as degraded.
func (h *articleHandler) handleEntities(c *gin.Context) {
	var body EntityLookupRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Depth == "" {
		body.Depth = config.DefaultDepth
	}
	depth, err := aql.ParseDepth(body.Depth)
	if err != nil {
		badRequest(c, err)
		return
	}
	window := int64(config.DefaultWindow)
	if body.Window != nil {
		window = *body.Window
	}
	req := retrieval.EntityRequest{
		ArticleKey: c.Param("key"),
		TopTerms:   body.Terms,
		Depth:      depth,
		EpochTime:  body.EpochTime,
		Category:   body.Category,
		Window:     window,
	}

	res, err := h.svc.RelatedByEntity(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := RelatedResponse{ArticleKey: req.ArticleKey, RelatedArticles: res.Articles, Degraded: res.Degraded()}
	if res.Degraded() {
		resp.Warning = res.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
