// Package redis wraps go-redis with a retrying Connect, a healthcheck helper
// and Storage, a namespaced key/value adapter used to persist client state.
//
//	client, err := redis.Connect(ctx, redis.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  2 * time.Second,
//	    ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	storage := redis.NewStorage(client, "geodash:")
//
// Config fields carry caarlos0/env tags so the struct can be embedded into a
// larger configuration and filled by pkg/config.
package redis
