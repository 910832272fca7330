package database

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectDescs(c *PoolStatsCollector) []*prometheus.Desc {
	ch := make(chan *prometheus.Desc, 16)
	c.Describe(ch)
	close(ch)

	descs := make([]*prometheus.Desc, 0, 16)
	for d := range ch {
		descs = append(descs, d)
	}
	return descs
}

func TestNewPoolStatsCollector_NotNil(t *testing.T) {
	// Describe works with a nil pool; only Collect touches pool.Stat().
	c := NewPoolStatsCollector(nil, "test-service")
	require.NotNil(t, c)
	assert.Equal(t, "test-service", c.service)
}

func TestPoolStatsCollector_ImplementsCollector(t *testing.T) {
	var _ prometheus.Collector = NewPoolStatsCollector(nil, "test-service")
}

func TestPoolStatsCollector_DescribeCount(t *testing.T) {
	descs := collectDescs(NewPoolStatsCollector(nil, "test-service"))
	assert.Len(t, descs, 8)
}

func TestPoolStatsCollector_DescriptorNames(t *testing.T) {
	descs := collectDescs(NewPoolStatsCollector(nil, "test-service"))

	expected := []string{
		"db_pool_acquired_connections",
		"db_pool_idle_connections",
		"db_pool_total_connections",
		"db_pool_max_connections",
		"db_pool_acquire_count_total",
		"db_pool_acquire_duration_seconds_total",
		"db_pool_empty_acquire_count_total",
		"db_pool_new_connections_total",
	}

	for _, name := range expected {
		found := false
		for _, d := range descs {
			if strings.Contains(d.String(), name) {
				found = true
				break
			}
		}
		assert.True(t, found, "expected descriptor containing %q", name)
	}
}
