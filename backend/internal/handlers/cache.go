package handlers

import (
	"net/http"
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/cache"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// warmupTTL matches the read-through TTL in the cached dashboard service
// so warmed entries age out on the same schedule.
const warmupTTL = 30 * time.Second

type CacheHandler struct {
	db        *gorm.DB
	cache     cache.Cache
	pool      *cache.WarmPool
	dashboard *services.DashboardServiceImpl
}

func NewCacheHandler(db *gorm.DB, cacheInstance cache.Cache, pool *cache.WarmPool, dashboard *services.DashboardServiceImpl) *CacheHandler {
	return &CacheHandler{
		db:        db,
		cache:     cacheInstance,
		pool:      pool,
		dashboard: dashboard,
	}
}

// WarmDashboards queues a summary recompute for every project.
// POST /admin/cache/warm
func (h *CacheHandler) WarmDashboards(c *gin.Context) {
	if h.pool == nil || !h.pool.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache warming is not running"})
		return
	}

	var projectIDs []uuid.UUID
	if err := h.db.Model(&models.Project{}).Pluck("id", &projectIDs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}

	jobs := make([]cache.WarmupJob, 0, len(projectIDs))
	for _, projectID := range projectIDs {
		projectID := projectID
		jobs = append(jobs, cache.WarmupJob{
			Key: cache.ProjectSummaryKey(projectID),
			TTL: warmupTTL,
			Loader: func() (interface{}, error) {
				return h.dashboard.ComputeProjectSummary(h.db, projectID)
			},
		})
	}

	submitted := h.pool.SubmitAll(jobs)
	c.JSON(http.StatusAccepted, gin.H{
		"message":   "dashboard warmup queued",
		"projects":  len(projectIDs),
		"submitted": submitted,
	})
}

// EvictCacheKey drops a single key, or every key matching a trailing
// wildcard pattern.
// DELETE /admin/cache/keys/:key
func (h *CacheHandler) EvictCacheKey(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key parameter is required"})
		return
	}

	if containsWildcard(key) {
		if err := h.cache.DeletePattern(key); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evict cache pattern"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "cache pattern evicted", "pattern": key})
		return
	}

	if err := h.cache.Delete(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evict cache key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cache key evicted", "key": key})
}

// GetCacheStats reports cache and warm pool counters.
// GET /admin/cache/stats
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	stats := gin.H{"cache": h.cache.Stats()}
	if h.pool != nil {
		stats["warm_pool"] = h.pool.GetStats()
	}
	c.JSON(http.StatusOK, stats)
}

// GetCacheHealth reports whether the cache backend is reachable and the
// warm pool is running.
// GET /admin/cache/health
func (h *CacheHandler) GetCacheHealth(c *gin.Context) {
	health := gin.H{"status": "healthy"}

	if err := h.cache.Health(); err != nil {
		health["status"] = "degraded"
		health["cache_error"] = err.Error()
	}

	running := h.pool != nil && h.pool.IsRunning()
	health["warm_pool_running"] = running
	if !running {
		health["status"] = "degraded"
	}

	c.JSON(http.StatusOK, health)
}

func containsWildcard(s string) bool {
	return len(s) > 0 && (s[len(s)-1] == '*' || s[0] == '*')
}
