package healthcheck_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esfilter/internal/config"
	"esfilter/internal/models/dto"
	"esfilter/internal/repositories/elsearch"
	"esfilter/internal/service/healthcheck"
	"esfilter/pkg/logger"
)

type pingEngine struct {
	elsearch.Engine
	err error
}

func (p pingEngine) Ping(context.Context) error {
	return p.err
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		code   int
		status string
		es     string
	}{
		{"up", nil, http.StatusOK, "OK", "up"},
		{"down", errors.New("connection refused"), http.StatusServiceUnavailable, "DEGRADED", "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.App{
				Settings: &config.Settings{ServiceVersion: "1.2.3"},
				ES:       pingEngine{err: tt.err},
				Logger:   logger.NewNop(),
			}
			r := gin.New()
			r.GET("/healthcheck/", healthcheck.Health(cfg))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck/", nil))
			require.Equal(t, tt.code, rec.Code)

			var resp dto.HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.Equal(t, tt.es, resp.Checks["elasticsearch"])
		})
	}
}
