//go:build integration

package api

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a throwaway redis container
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})

	t.Cleanup(func() {
		client.Close()           //nolint:errcheck
		container.Terminate(ctx) //nolint:errcheck
	})

	return client
}

func TestCachedClientServesRepeatPagesFromRedis(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	mock := &MockIncidentClient{Incidents: SampleIncidents(8)}
	c := NewCachedClient(mock, rdb, "test", time.Minute)

	first, err := c.ListAvailableIncidentsWithContext(ctx, 1)
	require.NoError(t, err)

	second, err := c.ListAvailableIncidentsWithContext(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []int{1}, mock.Calls(), "second request should not reach the wrapped client")

	require.NoError(t, c.Purge(ctx))

	_, err = c.ListAvailableIncidentsWithContext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, mock.Calls(), "purge should force a fresh fetch")
}

func TestCachedClientDoesNotCacheFailures(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	mock := &MockIncidentClient{Incidents: SampleIncidents(8), FailPages: map[int]bool{2: true}}
	c := NewCachedClient(mock, rdb, "test", time.Minute)

	_, err := c.ListAvailableIncidentsWithContext(ctx, 2)
	assert.ErrorIs(t, err, ErrMockError)

	mock.FailPages = nil
	p, err := c.ListAvailableIncidentsWithContext(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, p.Incidents, 3)
	assert.Equal(t, []int{2, 2}, mock.Calls())
}

func TestCachedClientPurgeKeepsOtherNamespaces(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	// Unquoted, "api[1]" would be a pattern matching "api1" too
	purged := &MockIncidentClient{Incidents: SampleIncidents(3)}
	other := &MockIncidentClient{Incidents: SampleIncidents(3)}
	a := NewCachedClient(purged, rdb, "http://api[1]", time.Minute)
	b := NewCachedClient(other, rdb, "http://api1", time.Minute)

	for _, c := range []*CachedClient{a, b} {
		_, err := c.ListAvailableIncidentsWithContext(ctx, 1)
		require.NoError(t, err)
	}

	require.NoError(t, a.Purge(ctx))

	exists, err := rdb.Exists(ctx, a.key(1), b.key(1)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	_, err = b.ListAvailableIncidentsWithContext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, other.Calls(), "other namespace should still be cached")

	_, err = a.ListAvailableIncidentsWithContext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, purged.Calls())
}

func TestCachedClientPurgeEmptyNamespace(t *testing.T) {
	rdb := setupRedis(t)

	c := NewCachedClient(&MockIncidentClient{}, rdb, "nothing-cached", time.Minute)
	assert.NoError(t, c.Purge(context.Background()))
}
