package config

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"esfilter/internal/metrics"
	"esfilter/internal/repositories/elsearch"
	"esfilter/internal/repositories/redis"
	"esfilter/pkg/logger"
)

// App - a struct that holds the clients shared by every handler
type App struct {
	Settings *Settings
	ES       elsearch.Engine
	Redis    redis.Store
	Logger   *logger.ElasticsearchLogger
	Metrics  *metrics.Metrics

	esClient    *elsearch.Client
	redisClient *redis.RedisInternal
}

// NewConfig - a function that returns a new App built from settings
func NewConfig(settings *Settings) (*App, error) {

	cfg := &App{
		Settings: settings,
		Metrics:  metrics.New(),
	}

	executionID := uuid.New().String()[0:5]

	err := cfg.newClientRedis()
	if err != nil {
		return cfg, err
	}

	err = cfg.newClientES()
	if err != nil {
		return cfg, err
	}

	loggerConfig := logger.Config{
		Service:         "esfilter-api",
		Version:         settings.ServiceVersion,
		Environment:     settings.Environment,
		IndexName:       settings.LogIndex,
		FlushInterval:   5 * time.Second,
		BatchSize:       50,
		BufferSize:      1000,
		LogLevel:        settings.Level(),
		EnableCaller:    true,
		SensitiveFields: []string{"password", "token", "secret", "authorization"},
		ExecutionID:     executionID,
	}

	if settings.LogToCluster {
		cfg.Logger = logger.NewLogger(cfg.esClient.ES, loggerConfig)
	} else {
		cfg.Logger = logger.NewLogger(nil, loggerConfig)
	}

	return cfg, nil
}

// CloseAll - a function that closes all connections
func (cfg *App) CloseAll() {
	if cfg.redisClient != nil {
		_ = cfg.redisClient.Close()
	}

	if cfg.Logger != nil {
		_ = cfg.Logger.Close()
	}
}

// newClientRedis is a function that returns a new Redis client
func (cfg *App) newClientRedis() error {
	r, err := redis.NewRedisInternal(context.Background(), redis.Config{
		Addr:      cfg.Settings.RedisAddr,
		Password:  cfg.Settings.RedisPassword,
		DB:        cfg.Settings.RedisDB,
		KeyPrefix: cfg.Settings.RedisPrefix,
	})
	if err != nil {
		return errors.New("creating redis client: " + err.Error())
	}

	cfg.redisClient = r
	cfg.Redis = r
	return nil
}

func (cfg *App) newClientES() error {
	es, err := elsearch.NewClient(&elsearch.Config{
		Addresses:          cfg.Settings.ESAddresses,
		Username:           cfg.Settings.ESUsername,
		Password:           cfg.Settings.ESPassword,
		APIKey:             cfg.Settings.ESAPIKey,
		MaxRetries:         cfg.Settings.ESMaxRetries,
		RetryBackoff:       100 * time.Millisecond,
		Timeout:            cfg.Settings.ESTimeout,
		EnableLogging:      cfg.Settings.ESDebug,
		InsecureSkipVerify: cfg.Settings.ESInsecure,
		IndexName:          cfg.Settings.ESIndex,
		Missing:            cfg.Settings.Missing(),
	})
	if err != nil {
		return errors.New("creating elastic client: " + err.Error())
	}

	cfg.esClient = es
	cfg.ES = es
	return nil
}
