package healthcheck

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"esfilter/internal/config"
	"esfilter/internal/models/dto"
)

var startedAt = time.Now()

// Health - Healthcheck endpoint
// @Summary      Health check
// @Description  Reports whether Elasticsearch answers a ping
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /healthcheck/ [get]
func Health(cfg *config.App) gin.HandlerFunc {

	return func(c *gin.Context) {

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status, code := "OK", http.StatusOK
		checks := map[string]string{"elasticsearch": "up"}

		if err := cfg.ES.Ping(ctx); err != nil {
			cfg.Logger.Error("healthcheck: elasticsearch ping failed", err)
			checks["elasticsearch"] = "down"
			status, code = "DEGRADED", http.StatusServiceUnavailable
		}

		version := ""
		if cfg.Settings != nil {
			version = cfg.Settings.ServiceVersion
		}

		c.JSON(code, dto.NewHealthResponse(c, status, "esfilter", version,
			time.Since(startedAt).Round(time.Second).String(), checks))
	}
}
