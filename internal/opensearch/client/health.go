package client

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type HealthChecker struct {
	client *Client
}

func NewHealthChecker(client *Client) *HealthChecker {
	return &HealthChecker{
		client: client,
	}
}

// Check проверяет доступность кластера и состояние индекса событий
func (h *HealthChecker) Check(ctx context.Context) error {
	health, err := h.ClusterHealth(ctx)
	if err != nil {
		return err
	}
	if !health.IsHealthy() {
		return fmt.Errorf("opensearch cluster %q is %s", health.ClusterName, health.Status)
	}
	return nil
}

func (h *HealthChecker) WaitForHealthy(ctx context.Context, maxRetries int, retryInterval time.Duration) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if lastErr = h.Check(ctx); lastErr == nil {
			return nil
		}

		h.client.logger.Warn("OpenSearch is not healthy yet",
			"attempt", i+1,
			"max_retries", maxRetries,
			"error", lastErr,
		)

		if i == maxRetries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for OpenSearch: %w", ctx.Err())
		case <-time.After(retryInterval):
		}
	}

	return fmt.Errorf("opensearch not healthy after %d retries: %w", maxRetries, lastErr)
}

// ClusterHealth возвращает состояние кластера с точки зрения индекса событий
func (h *HealthChecker) ClusterHealth(ctx context.Context) (*ClusterHealth, error) {
	native := h.client.Native()

	res, err := native.Cluster.Health(
		native.Cluster.Health.WithContext(ctx),
		native.Cluster.Health.WithIndex(h.client.IndexName()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster health: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("cluster health request failed: %s", res.Status())
	}

	var health ClusterHealth
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode cluster health response: %w", err)
	}

	return &health, nil
}

type ClusterHealth struct {
	ClusterName         string `json:"cluster_name"`
	Status              string `json:"status"`
	NumberOfNodes       int    `json:"number_of_nodes"`
	NumberOfDataNodes   int    `json:"number_of_data_nodes"`
	ActivePrimaryShards int    `json:"active_primary_shards"`
	ActiveShards        int    `json:"active_shards"`
	UnassignedShards    int    `json:"unassigned_shards"`
	TimedOut            bool   `json:"timed_out"`
}

// IsHealthy - yellow допустим для одноузлового кластера без реплик
func (ch *ClusterHealth) IsHealthy() bool {
	return ch.Status == "green" || ch.Status == "yellow"
}
