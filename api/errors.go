package api

import (
	"errors"
	"net/http"

	"newsgraph/aql"
	"newsgraph/graphdb"
	"newsgraph/logger"
	"newsgraph/retrieval"

	"github.com/gin-gonic/gin"
)

// statusFor maps retrieval errors onto HTTP status codes.
func statusFor(err error) int {
	var connErr *graphdb.ConnectionError
	switch {
	case errors.As(err, &connErr):
		return http.StatusBadGateway
	case errors.Is(err, retrieval.ErrArticleNotFound):
		return http.StatusNotFound
	case errors.Is(err, retrieval.ErrInvalidRequest), errors.Is(err, aql.ErrInvalidDepth):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", c.FullPath(), "status", status,
			"request_id", c.GetString(requestIDKey), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
