package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusprint/internal/app/models/dto"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of /health
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
}

// HealthController answers liveness checks
type HealthController struct {
	db Pinger
}

// NewHealthController creates a HealthController. db may be nil for the memory driver.
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Health reports service liveness
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=HealthResponse} "Healthy"
// @Failure 503 {object} dto.APIResponse{data=HealthResponse} "Database unreachable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "memory"}
	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		resp.Database = "ok"
		if err := c.db.Ping(pingCtx); err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			ctx.JSON(http.StatusServiceUnavailable, dto.APIResponse{Data: resp})
			return
		}
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}
