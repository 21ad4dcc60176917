package mapping

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/event-discovery/internal/opensearch/client"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

func Test_EventsMapping_IsValidJSON(t *testing.T) {
	data, err := EventsMapping()
	require.NoError(t, err)

	var body struct {
		Mappings struct {
			Properties map[string]struct {
				Type string `json:"type"`
			} `json:"properties"`
		} `json:"mappings"`
	}
	require.NoError(t, jsoniter.Unmarshal(data, &body))

	props := body.Mappings.Properties
	assert.Equal(t, "geo_point", props["location"].Type)
	assert.Equal(t, "date", props["start_time"].Type)
	assert.Equal(t, "keyword", props["tags"].Type)
	assert.Equal(t, "keyword", props["channels"].Type)
}

type indexServer struct {
	mu      sync.Mutex
	exists  bool
	created bool
}

func (s *indexServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/" {
		_, _ = io.WriteString(w, `{"version":{"number":"2.11.0","distribution":"opensearch"},"tagline":"The OpenSearch Project: https://opensearch.org/"}`)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodHead:
		if s.exists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case http.MethodPut:
		s.created = true
		s.exists = true
		_, _ = io.WriteString(w, `{"acknowledged":true,"index":"events"}`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func Test_Manager_EnsureIndex(t *testing.T) {
	fake := &indexServer{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := client.DefaultConfig()
	cfg.URL = srv.URL
	c, err := client.New(cfg, logger.NewNop())
	require.NoError(t, err)

	m := NewManager(c, logger.NewNop())

	require.NoError(t, m.EnsureIndex(context.Background()))
	assert.True(t, fake.created)

	// Повторный вызов не пересоздает индекс
	fake.created = false
	require.NoError(t, m.EnsureIndex(context.Background()))
	assert.False(t, fake.created)
}
