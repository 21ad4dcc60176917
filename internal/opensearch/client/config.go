package client

import (
	"errors"
	"time"
)

type Config struct {
	URL                string        `mapstructure:"url" validate:"required,url"`
	IndexName          string        `mapstructure:"index_name" validate:"required"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	Timeout            time.Duration `mapstructure:"timeout" validate:"required,min=1s"`
	MaxRetries         int           `mapstructure:"max_retries" validate:"min=0,max=5"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	RetryOnStatus      []int         `mapstructure:"retry_on_status"`
}

func DefaultConfig() *Config {
	return &Config{
		IndexName:          "events",
		Timeout:            5 * time.Second,
		MaxRetries:         3,
		MaxIdleConns:       10,
		InsecureSkipVerify: true, // Только в дев режиме
		RetryOnStatus:      []int{502, 503, 504, 429},
	}
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("opensearch url is required")
	}
	if c.IndexName == "" {
		return errors.New("opensearch index name is required")
	}
	if c.Timeout < time.Second {
		return errors.New("opensearch timeout must be at least 1 second")
	}
	if c.Username != "" && c.Password == "" {
		return errors.New("opensearch password is required when username is set")
	}
	return nil
}
