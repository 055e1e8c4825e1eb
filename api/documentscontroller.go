package api

import (
	"net/http"

	"newsgraph/config"
	"newsgraph/retrieval"

	"github.com/gin-gonic/gin"
)

// RegisterDocumentRoutes registers lookups that start from a document url or article id.
func RegisterDocumentRoutes(r *gin.Engine, svc retrieval.Service) {
	h := &documentHandler{svc: svc}
	g := r.Group("/api/documents")
	g.GET("/related", h.handleRelatedDocuments)
	g.GET("/:id/related/paths", h.handleDocumentPaths)
}

type documentHandler struct {
	svc retrieval.Service
}

// handleRelatedDocuments serves GET /api/documents/related?url=&depth=&edge=
func (h *documentHandler) handleRelatedDocuments(c *gin.Context) {
	depth, err := depthQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	req := retrieval.DocumentSimilarityRequest{
		URL:            c.Query("url"),
		Depth:          depth,
		EdgeCollection: c.DefaultQuery("edge", config.DefaultEdgeCollection),
	}

	res, err := h.svc.RelatedDocuments(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleDocumentPaths serves GET /api/documents/:id/related/paths where id is
// an escaped article _id such as Article%2F123.
func (h *documentHandler) handleDocumentPaths(c *gin.Context) {
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
	req := retrieval.DocumentPathRequest{
		ArticleID:      c.Param("id"),
		Depth:          depth,
		EdgeCollection: c.DefaultQuery("edge", config.DefaultEdgeCollection),
		Limit:          limit,
	}

	res, err := h.svc.RelatedDocumentsByPathCount(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
