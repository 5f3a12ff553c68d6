package dashboard

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/geodash/pkg/httpserver"
	"github.com/dmitrymomot/geodash/pkg/kv"
	"github.com/dmitrymomot/geodash/pkg/redis"
)

// openStorage builds the kv.Store for the configured driver. The returned
// close func releases driver resources; health is nil unless the driver
// has a remote dependency.
func openStorage(ctx context.Context, cfg Config) (kv.Store, func() error, httpserver.Check, error) {
	noop := func() error { return nil }
	switch cfg.StorageDriver {
	case StorageMemory:
		return kv.NewMemoryStore(), noop, nil, nil
	case StorageRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("dashboard: connect redis: %w", err)
		}
		st := redis.NewStorage(client, cfg.Redis.KeyPrefix)
		return st, st.Close, st.Healthcheck, nil
	default:
		st, err := kv.NewFileStore(cfg.StateDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("dashboard: open state dir: %w", err)
		}
		return st, noop, nil, nil
	}
}
