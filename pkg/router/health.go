package router

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"virtual-therapy-demo/backend/pkg/health"

	"github.com/gin-gonic/gin"
)

// setupHealthRoutes registers health check endpoints backed by a periodic
// component checker.
func (r *Router) setupHealthRoutes() {
	checker := health.NewChecker(r.Logger, 30*time.Second)

	checker.RegisterDatabaseCheck(func() error {
		if r.Container.DB == nil {
			return errors.New("database not initialized")
		}
		return r.Container.DB.Exec("SELECT 1").Error
	})
	if r.Container.Redis != nil {
		checker.RegisterRedisCheck(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return r.Container.Redis.Ping(ctx)
		})
	}
	if url := r.Config.AI.LocalModelURL; url != "" {
		checker.RegisterAPICheck("local-model", url, &http.Client{Timeout: 5 * time.Second})
	}
	checker.Start()

	healthHandler := func(c *gin.Context) {
		status := "ok"
		code := 200
		if !checker.IsSystemHealthy() {
			status = "degraded"
			code = 503
		}

		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		c.JSON(code, gin.H{
			"status":     status,
			"timestamp":  time.Now().Format(time.RFC3339),
			"uptime":     time.Since(startTime).Round(time.Second).String(),
			"components": checker.GetStatus(),
			"websocket": gin.H{
				"active_connections": r.Hub.ActiveConnections(),
			},
			"memory": gin.H{
				"alloc_mb":  memStats.Alloc / 1024 / 1024,
				"sys_mb":    memStats.Sys / 1024 / 1024,
				"gc_cycles": memStats.NumGC,
			},
		})
	}

	// Register both health endpoint paths for compatibility
	r.Engine.GET("/health", healthHandler)
	r.Engine.GET("/api/health", healthHandler)
}
