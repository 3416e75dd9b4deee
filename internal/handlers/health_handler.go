package handlers

import (
	"net/http"
	"time"

	"courtside/internal/utils"
	"courtside/pkg/cache"
	"courtside/pkg/database"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db    *database.MongoDB
	cache *cache.RedisCache
}

func NewHealthHandler(db *database.MongoDB, cache *cache.RedisCache) *HealthHandler {
	return &HealthHandler{
		db:    db,
		cache: cache,
	}
}

// Health reports liveness plus the state of the backing stores
func (h *HealthHandler) Health(c *gin.Context) {
	checks := map[string]string{
		"mongodb": "ok",
		"redis":   "ok",
	}
	healthy := true

	if err := h.db.Ping(); err != nil {
		checks["mongodb"] = err.Error()
		healthy = false
	}

	if _, err := h.cache.Exists(c.Request.Context(), "health"); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, utils.APIResponse{
		Status:    utils.StatusSuccess,
		Data:      gin.H{"checks": checks, "time": time.Now()},
		Timestamp: time.Now(),
	})
}
