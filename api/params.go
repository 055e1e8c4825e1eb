package api

import (
	"fmt"
	"strconv"

	"newsgraph/aql"
	"newsgraph/config"
	"newsgraph/retrieval"

	"github.com/gin-gonic/gin"
)

func depthQuery(c *gin.Context) (aql.Depth, error) {
	return aql.ParseDepth(c.DefaultQuery("depth", config.DefaultDepth))
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", retrieval.ErrInvalidRequest, name, raw)
	}
	return v, nil
}

func int64Query(c *gin.Context, name string, def int64) (int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", retrieval.ErrInvalidRequest, name, raw)
	}
	return v, nil
}

func floatQuery(c *gin.Context, name string, def float64) (float64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", retrieval.ErrInvalidRequest, name, raw)
	}
	return v, nil
}

func boolQuery(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}
