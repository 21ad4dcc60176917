package client

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go"

	"github.com/rx3lixir/event-discovery/pkg/logger"
)

type Client struct {
	client *opensearch.Client
	config *Config
	logger logger.Logger
}

func New(cfg *Config, log logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	osConfig := opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   cfg.MaxIdleConns,
			ResponseHeaderTimeout: cfg.Timeout,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify,
			},
		},
		RetryOnStatus: cfg.RetryOnStatus,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * 100 * time.Millisecond
		},
	}

	osClient, err := opensearch.NewClient(osConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	log.Info("OpenSearch client created",
		"url", cfg.URL,
		"index", cfg.IndexName,
		"max_retries", cfg.MaxRetries,
	)

	return &Client{
		client: osClient,
		config: cfg,
		logger: log,
	}, nil
}

func (c *Client) Native() *opensearch.Client {
	return c.client
}

func (c *Client) IndexName() string {
	return c.config.IndexName
}

// Timeout - таймаут одной операции
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}
