package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"

	"esfilter/internal/config"
	"esfilter/pkg/logger"
)

// SetupServer sets up a new gin engine with the middleware chain every
// route shares
func SetupServer(cfg *config.App) (engine *gin.Engine) {

	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine = gin.New()

	engine.Use(gin.Recovery())

	setupIds(engine)
	if cfg.Metrics != nil {
		engine.Use(MetricsMiddleware(cfg.Metrics))
	}
	setupSemaphore(engine, cfg.Settings.MaxRequestsInFlight)
	setupCors(engine)
	setupLogger(engine, cfg.Logger)
	setupRateLimiter(engine, cfg)

	if cfg.Settings.TLSEnabled() {
		setupSSL(engine, cfg)
	}

	return engine
}

// setupSSL redirects plain HTTP requests to HTTPS
func setupSSL(engine *gin.Engine, cfg *config.App) {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:          true,
		SSLHost:              cfg.Settings.Address(),
		STSSeconds:           31536000,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		IsDevelopment:        cfg.Settings.Environment == "development",
		SSLProxyHeaders:      map[string]string{"X-Forwarded-Proto": "https"},
		STSIncludeSubdomains: true,
	})
	engine.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			cfg.Logger.Warn("rejected insecure request", map[string]interface{}{
				"error": err.Error(),
				"path":  c.Request.URL.Path,
			})
			c.Abort()
			return
		}
		// secure writes the redirect itself
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	})
}
