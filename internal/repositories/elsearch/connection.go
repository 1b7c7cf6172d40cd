package elsearch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"esfilter/pkg/esfilter"
)

type Config struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string

	// Connection settings
	MaxRetries    int
	RetryBackoff  time.Duration
	Timeout       time.Duration
	EnableLogging bool

	// TLS settings
	InsecureSkipVerify bool

	// IndexName is searched when a request names no index
	IndexName string

	// Missing selects how null filter values are rendered
	Missing esfilter.MissingStyle

	// Transport replaces the default HTTP transport (used in tests)
	Transport http.RoundTripper

	// SkipPing disables the connection check in NewClient
	SkipPing bool
}

type Client struct {
	ES       *elasticsearch.Client
	config   *Config
	compiler esfilter.Compiler
}

// NewClient creates a new Elasticsearch client with the provided configuration
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	if len(cfg.Addresses) == 0 {
		cfg.Addresses = []string{"http://elasticsearch:9200"}
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: cfg.Timeout,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify,
			},
		}
	}

	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,

		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff: func(i int) time.Duration {
			return cfg.RetryBackoff * time.Duration(i)
		},
		Transport:         transport,
		EnableMetrics:     cfg.EnableLogging,
		EnableDebugLogger: cfg.EnableLogging,
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	client := &Client{
		ES:       es,
		config:   cfg,
		compiler: esfilter.Compiler{Missing: cfg.Missing},
	}

	if cfg.SkipPing {
		return client, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping elasticsearch: %w", err)
	}

	return client, nil
}

// Compiler returns the filter compiler configured for this cluster
func (c *Client) Compiler() esfilter.Compiler {
	return c.compiler
}

// Ping tests the connection to Elasticsearch
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.ES.Ping(c.ES.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer closeBody(res.Body)

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed with status: %s", res.Status())
	}

	return nil
}

// Health returns the cluster status (green, yellow or red)
func (c *Client) Health(ctx context.Context) (string, error) {
	res, err := c.ES.Cluster.Health(c.ES.Cluster.Health.WithContext(ctx))
	if err != nil {
		return "", err
	}
	defer closeBody(res.Body)

	if res.IsError() {
		return "", fmt.Errorf("cluster health failed with status: %s", res.Status())
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return "", fmt.Errorf("failed to decode cluster health: %w", err)
	}
	return health.Status, nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		fmt.Printf("error closing response body: %v\n", err)
	}
}
