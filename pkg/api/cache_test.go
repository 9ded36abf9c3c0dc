package api

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCachedClientPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewCachedClient(nil, redis.NewClient(&redis.Options{}), "ns", time.Minute)
	})
	assert.Panics(t, func() {
		NewCachedClient(&MockIncidentClient{}, nil, "ns", time.Minute)
	})
}

func TestCachedClientKey(t *testing.T) {
	c := NewCachedClient(&MockIncidentClient{}, redis.NewClient(&redis.Options{}), "http://localhost:3333", 0)
	assert.Equal(t, "heroes:http://localhost:3333:incidents/available:page=2", c.key(2))
	assert.Equal(t, defaultCacheTTL, c.ttl)
}

func TestCachedClientPurgePattern(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		expected  string
	}{
		{name: "plain base url", namespace: "http://localhost:3333", expected: "heroes:http://localhost:3333:*"},
		{name: "wildcards are quoted", namespace: "http://api/*?", expected: `heroes:http://api/\*\?:*`},
		{name: "character classes are quoted", namespace: "http://api[1]", expected: `heroes:http://api\[1\]:*`},
		{name: "backslashes are quoted", namespace: `a\b`, expected: `heroes:a\\b:*`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewCachedClient(&MockIncidentClient{}, redis.NewClient(&redis.Options{}), test.namespace, 0)
			assert.Equal(t, test.expected, c.purgePattern())
		})
	}
}

func TestCachedClientFallsThroughWhenRedisIsDown(t *testing.T) {
	// Nothing listens on port 1, so every redis call fails fast
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close() //nolint:errcheck

	mock := &MockIncidentClient{Incidents: SampleIncidents(3)}
	c := NewCachedClient(mock, rdb, "test", time.Minute)

	p, err := c.ListAvailableIncidentsWithContext(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, p.Incidents, 3)
	assert.Equal(t, []int{1}, mock.Calls())
}

func TestCachedClientPurgeReportsRedisErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close() //nolint:errcheck

	c := NewCachedClient(&MockIncidentClient{}, rdb, "test", time.Minute)
	assert.ErrorContains(t, c.Purge(context.Background()), "api.Purge(): redis scan")
}
