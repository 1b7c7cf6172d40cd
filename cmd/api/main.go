package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"esfilter/internal/config"
	"esfilter/internal/middleware"
	"esfilter/internal/routes"
)

// @title                       esfilter API
// @description                 Search gateway compiling compact filters into Elasticsearch bool queries.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {

	envPath := "/app/.env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = ".env"
	}
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}

	cfg, err := config.NewConfig(settings)
	if err != nil {
		log.Fatalf("Error creating config: %v", err)
	}
	defer cfg.CloseAll()

	cfg.Logger.Info("Starting server", map[string]interface{}{
		"execution_id": cfg.Logger.ExecutionID,
		"environment":  settings.Environment,
		"missing":      settings.Missing().String(),
	})

	engine := middleware.SetupServer(cfg)

	routes.InitiateRoutes(engine, cfg)

	startServer(engine, cfg)
}

func startServer(engine *gin.Engine, cfg *config.App) {
	srv := &http.Server{
		Addr:    cfg.Settings.Address(),
		Handler: engine,
	}

	go func() {
		var err error
		if cfg.Settings.TLSEnabled() {
			cfg.Logger.Info("Starting server with TLS on " + srv.Addr)
			err = srv.ListenAndServeTLS(cfg.Settings.CertFile, cfg.Settings.KeyFile)
		} else {
			cfg.Logger.Info("Starting server on " + srv.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Logger.Fatal("Error starting server", err)
			_ = cfg.Logger.Flush()
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cfg.Logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Settings.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		cfg.Logger.Error("Server forced to shutdown", err)
	}
}
