package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
)

// Metrics reports each request to hooks as an "http METHOD route" operation.
// Responses below 400 count as success; others carry their status code.
func Metrics(hooks aggregates.Hooks) gin.HandlerFunc {
	if hooks == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := "success"
		if code := c.Writer.Status(); code >= 400 {
			status = strconv.Itoa(code)
		}
		hooks.ObserveOperation("http "+c.Request.Method+" "+route, status, time.Since(start))
	}
}
