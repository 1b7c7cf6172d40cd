package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"esfilter/pkg/esfilter"
	"esfilter/pkg/logger"
)

// Settings is the process configuration read from the environment
type Settings struct {
	// HTTP server
	Port     string `envconfig:"PORT" default:"8080"`
	CertFile string `envconfig:"CERT_FILE"`
	KeyFile  string `envconfig:"KEY_FILE"`

	// Elasticsearch
	ESAddresses     []string      `envconfig:"ELASTICSEARCH_URLS" default:"http://elasticsearch:9200"`
	ESUsername      string        `envconfig:"ELASTICSEARCH_USERNAME"`
	ESPassword      string        `envconfig:"ELASTICSEARCH_PASSWORD"`
	ESAPIKey        string        `envconfig:"ELASTICSEARCH_API_KEY"`
	ESIndex         string        `envconfig:"ELASTICSEARCH_INDEX"`
	ESMaxRetries    int           `envconfig:"ELASTICSEARCH_MAX_RETRIES" default:"3"`
	ESTimeout       time.Duration `envconfig:"ELASTICSEARCH_TIMEOUT" default:"5s"`
	ESInsecure      bool          `envconfig:"ELASTICSEARCH_INSECURE" default:"true"`
	ESDebug         bool          `envconfig:"ELASTICSEARCH_DEBUG"`
	MissingStyle    string        `envconfig:"FILTER_MISSING_STYLE" default:"exists"`
	LogIndex        string        `envconfig:"LOG_INDEX" default:"esfilter-api-logs"`
	LogToCluster    bool          `envconfig:"LOG_TO_ELASTICSEARCH" default:"true"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	Environment     string        `envconfig:"ENVIRONMENT_APP" default:"development"`
	ServiceVersion  string        `envconfig:"SERVICE_VERSION" default:"1.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Redis
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string        `envconfig:"REDIS_KEY_PREFIX" default:"esfilter:"`
	CacheTTL      time.Duration `envconfig:"SEARCH_CACHE_TTL" default:"30s"`

	// Throttling
	MaxRequestsByIP     int           `envconfig:"MAX_REQUEST_COUNT_BY_IP" default:"60"`
	RateLimitWindow     time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`
	MaxRequestsInFlight int64         `envconfig:"MAX_REQUEST_COUNT_GLOBAL" default:"10"`

	// Auth
	JWTSecret string `envconfig:"JWT_SECRET"`
}

// LoadSettings reads Settings from the environment and validates them
func LoadSettings() (*Settings, error) {
	s := &Settings{}
	if err := envconfig.Process("", s); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return s, nil
}

// Validate checks values envconfig cannot
func (s *Settings) Validate() error {
	if _, err := esfilter.ParseMissingStyle(s.MissingStyle); err != nil {
		return fmt.Errorf("FILTER_MISSING_STYLE: %w", err)
	}
	if s.MaxRequestsByIP <= 0 {
		return fmt.Errorf("MAX_REQUEST_COUNT_BY_IP must be positive")
	}
	if s.MaxRequestsInFlight <= 0 {
		return fmt.Errorf("MAX_REQUEST_COUNT_GLOBAL must be positive")
	}
	if (s.CertFile == "") != (s.KeyFile == "") {
		return fmt.Errorf("CERT_FILE and KEY_FILE must be set together")
	}
	return nil
}

// Missing returns the configured rendering of null filter values
func (s *Settings) Missing() esfilter.MissingStyle {
	style, _ := esfilter.ParseMissingStyle(s.MissingStyle)
	return style
}

// Level returns the minimum log level
func (s *Settings) Level() logger.LogLevel {
	return logger.ParseLevel(s.LogLevel)
}

// TLSEnabled reports whether the server should terminate TLS
func (s *Settings) TLSEnabled() bool {
	return s.CertFile != "" && s.KeyFile != ""
}

// Address is the listen address of the HTTP server
func (s *Settings) Address() string {
	return ":" + s.Port
}
