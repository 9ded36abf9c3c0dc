package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/clcollins/heroes/pkg/api"
	"github.com/clcollins/heroes/pkg/launcher"
	"github.com/clcollins/heroes/pkg/money"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const redisPingTimeout = 2 * time.Second

// newIncidentClient builds the API client from the config, wrapped in the redis page
// cache when redis_addr is set and reachable. The returned func releases the cache
// connection.
func newIncidentClient(ctx context.Context, v *viper.Viper) (api.IncidentClient, func(), error) {
	noop := func() {}

	c, err := api.NewClient(api.Config{
		BaseURL:   v.GetString("base_url"),
		UserAgent: v.GetString("user_agent"),
		Timeout:   v.GetDuration("request_timeout"),
	})
	if err != nil {
		return nil, noop, fmt.Errorf("cmd.newIncidentClient(): %w", err)
	}

	addr := v.GetString("redis_addr")
	if addr == "" {
		return c, noop, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable; page cache disabled", "redis_addr", addr, "error", err)
		rdb.Close() //nolint:errcheck
		return c, noop, nil
	}

	log.Debug("newIncidentClient", "redis_addr", addr, "cache_ttl", v.GetDuration("cache_ttl"))

	cached := api.NewCachedClient(c, rdb, c.BaseURL(), v.GetDuration("cache_ttl"))
	return cached, func() {
		rdb.Close() //nolint:errcheck
	}, nil
}

func newFormatter(v *viper.Viper) (*money.Formatter, error) {
	f, err := money.NewFormatter(v.GetString("locale"), v.GetString("currency"))
	if err != nil {
		return nil, fmt.Errorf("cmd.newFormatter(): %w", err)
	}
	return f.WithSymbol(v.GetString("currency_symbol")), nil
}

// newLauncher returns a disabled launcher when detail_command is unset or invalid
func newLauncher(v *viper.Viper) launcher.DetailLauncher {
	command := v.GetString("detail_command")
	if command == "" {
		return launcher.DetailLauncher{}
	}

	l, err := launcher.NewDetailLauncher(command, v.GetString("base_url"))
	if err != nil {
		log.Warn("Invalid detail_command; opening incidents is disabled", "error", err)
		return launcher.DetailLauncher{}
	}
	return l
}
