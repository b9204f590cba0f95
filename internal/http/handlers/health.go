package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	stats *aggregates.LogHooks
}

func NewHealthHandler(db Pinger, stats *aggregates.LogHooks) *HealthHandler {
	return &HealthHandler{db: db, stats: stats}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	body := gin.H{"status": "ok"}
	if h.stats != nil {
		body["writes"] = h.stats.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}
