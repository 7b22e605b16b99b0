package main

import (
	"fmt"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence/badger"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence/file"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence/redis"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

type storeConfig struct {
	Type         persistence.StoreType
	DataPath     string
	RedisAddress string
}

func storeConfigFromFlags(c *cli.Context) storeConfig {
	return storeConfig{
		Type:         persistence.StoreType(c.String("store")),
		DataPath:     c.String("data-path"),
		RedisAddress: c.String("redis-address"),
	}
}

// newStore opens one of the durable backends. Every CLI invocation is its
// own process, so the memory backend is refused.
func newStore(cfg storeConfig, l *zap.Logger) (persistence.IBatchPersistence, error) {
	if cfg.Type.IsValid() && !cfg.Type.IsDurable() {
		return nil, fmt.Errorf("the %s store does not outlive the process, use file, badger or redis", cfg.Type)
	}
	switch cfg.Type {
	case persistence.StoreTypeFile:
		return file.NewFilePersistence(cfg.DataPath, l)
	case persistence.StoreTypeBadger:
		return badger.NewBadgerPersistence(cfg.DataPath, l)
	case persistence.StoreTypeRedis:
		return redis.NewRedisPersistence(&redis.RedisConfig{Address: cfg.RedisAddress}, l)
	case "":
		return nil, fmt.Errorf("a --store is required")
	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Type)
	}
}
