package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"esfilter/pkg/logger"
)

// setupLogger -
func setupLogger(engine *gin.Engine, log *logger.ElasticsearchLogger) {

	middlewareConfig := MiddlewareConfig{
		LogRequestBody:  true,
		LogResponseBody: false,
		MaxBodySize:     2048,
		ExcludedHeaders: []string{
			"authorization",
			"cookie",
			"x-api-key",
		},
		SkipPaths: []string{
			"/healthcheck/",
			"/metrics",
		},
		ErrorsOnly: false,
	}
	engine.Use(LoggerMiddleware(log, middlewareConfig))
}

// MiddlewareConfig configures the logging middleware
type MiddlewareConfig struct {
	// Whether to log request bodies
	LogRequestBody bool
	// Whether to log response bodies
	LogResponseBody bool
	// Maximum size of bodies to log (in bytes)
	MaxBodySize int
	// Headers to exclude from logging (case-insensitive)
	ExcludedHeaders []string
	// Paths to skip logging (exact match)
	SkipPaths []string
	// Whether to log only errors (4xx, 5xx status codes)
	ErrorsOnly bool
}

// DefaultMiddlewareConfig returns a default configuration
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		LogRequestBody:  true,
		LogResponseBody: true,
		MaxBodySize:     1024,
		ExcludedHeaders: []string{
			"authorization",
			"cookie",
			"set-cookie",
			"x-api-key",
			"x-auth-token",
		},
		SkipPaths: []string{
			"/healthcheck/",
		},
	}
}

// responseBodyWriter wraps gin.ResponseWriter to capture response body
type responseBodyWriter struct {
	gin.ResponseWriter
	body  *bytes.Buffer
	limit int
}

func (w *responseBodyWriter) Write(data []byte) (int, error) {
	if w.body.Len()+len(data) <= w.limit {
		w.body.Write(data)
	}
	return w.ResponseWriter.Write(data)
}

// LoggerMiddleware creates a Gin middleware that logs HTTP requests
func LoggerMiddleware(log *logger.ElasticsearchLogger, config ...MiddlewareConfig) gin.HandlerFunc {
	cfg := DefaultMiddlewareConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	excludedHeaders := make(map[string]bool)
	for _, header := range cfg.ExcludedHeaders {
		excludedHeaders[strings.ToLower(header)] = true
	}

	skipPaths := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()

		var requestBody string
		if cfg.LogRequestBody && c.Request.Body != nil {
			bodyBytes, err := io.ReadAll(c.Request.Body)
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

				if len(bodyBytes) <= cfg.MaxBodySize {
					requestBody = string(bodyBytes)
				} else {
					requestBody = "[BODY TOO LARGE]"
				}
			}
		}

		var responseBodyBuf *bytes.Buffer
		if cfg.LogResponseBody {
			responseBodyBuf = bytes.NewBuffer(make([]byte, 0, cfg.MaxBodySize))
			c.Writer = &responseBodyWriter{
				ResponseWriter: c.Writer,
				body:           responseBodyBuf,
				limit:          cfg.MaxBodySize,
			}
		}

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		if cfg.ErrorsOnly && statusCode < 400 {
			return
		}

		headers := make(map[string]string)
		for name, values := range c.Request.Header {
			if !excludedHeaders[strings.ToLower(name)] && len(values) > 0 {
				headers[name] = values[0]
			}
		}

		var responseBody string
		if responseBodyBuf != nil {
			responseBody = responseBodyBuf.String()
		}

		var (
			message string
			level   logger.LogLevel
		)
		switch {
		case statusCode >= 500:
			message, level = "HTTP Server Error", logger.LevelError
		case statusCode >= 400:
			message, level = "HTTP Client Error", logger.LevelWarn
		case statusCode >= 300:
			message, level = "HTTP Redirect", logger.LevelInfo
		default:
			message, level = "HTTP Request", logger.LevelInfo
		}

		fields := map[string]interface{}{
			"component": "http_middleware",
		}
		if customFields, exists := c.Get(logFieldsKey); exists {
			if fieldMap, ok := customFields.(map[string]interface{}); ok {
				for k, v := range fieldMap {
					fields[k] = v
				}
			}
		}

		var errCtx *logger.ErrorContext
		if last := c.Errors.Last(); last != nil {
			errCtx = &logger.ErrorContext{
				Type:    "gin_error",
				Message: last.Error(),
			}
		}

		log.WithContext(level, message, logger.LogContext{
			HTTP: &logger.HTTPContext{
				Method:       c.Request.Method,
				Path:         c.Request.URL.Path,
				Route:        c.FullPath(),
				Query:        c.Request.URL.RawQuery,
				UserAgent:    c.Request.UserAgent(),
				RemoteIP:     c.ClientIP(),
				Headers:      headers,
				StatusCode:   statusCode,
				ResponseSize: c.Writer.Size(),
				RequestID:    GetRequestID(c),
				RequestBody:  requestBody,
				ResponseBody: responseBody,
			},
			Error: errCtx,
			Performance: &logger.PerformanceContext{
				Duration:   duration,
				DurationMs: float64(duration.Nanoseconds()) / 1e6,
			},
			Fields: fields,
		})
	}
}

const logFieldsKey = "log_fields"

// AddLogFields adds custom fields to be included in logs
func AddLogFields(c *gin.Context, fields map[string]interface{}) {
	existing, exists := c.Get(logFieldsKey)
	if !exists {
		c.Set(logFieldsKey, fields)
		return
	}

	if existingMap, ok := existing.(map[string]interface{}); ok {
		for k, v := range fields {
			existingMap[k] = v
		}
		c.Set(logFieldsKey, existingMap)
	} else {
		c.Set(logFieldsKey, fields)
	}
}
