package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Gauge reports a point-in-time count shown next to the checks
type Gauge func() int

// HealthController reports gateway readiness
type HealthController struct {
	checks  map[string]HealthCheck
	gauges  map[string]Gauge
	timeout time.Duration
}

// NewHealthController creates a new HealthController. Checks run on every request.
func NewHealthController(checks map[string]HealthCheck, gauges map[string]Gauge) *HealthController {
	return &HealthController{checks: checks, gauges: gauges, timeout: 2 * time.Second}
}

// Ping handles GET /ping
func (c *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
}

// Health handles GET /api/v1/health
func (c *HealthController) Health(ctx *gin.Context) {
	probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), c.timeout)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(c.checks))
	for name, check := range c.checks {
		if err := check(probeCtx); err != nil {
			components[name] = "down: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "up"
	}

	stats := make(map[string]int, len(c.gauges))
	for name, gauge := range c.gauges {
		stats[name] = gauge()
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	ctx.JSON(status, gin.H{"status": overall, "components": components, "stats": stats, "time": time.Now().UTC()})
}
