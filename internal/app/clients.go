package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sheetshare-backend/internal/platform/admindir"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
	"github.com/yungbote/sheetshare-backend/internal/realtime/bus"
)

type Clients struct {
	// Redis is nil when REDIS_ADDR is unset.
	Redis     goredis.UniversalClient
	Bus       bus.Bus
	Directory admindir.Directory
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Administrator directory
	if cfg.AdminDirectoryPath != "" {
		dir, err := admindir.LoadFile(cfg.AdminDirectoryPath)
		if err != nil {
			return Clients{}, fmt.Errorf("load admin directory: %w", err)
		}
		out.Directory = dir
	}

	// Redis
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, realtime events stay in-process and rate limiting is off")
		out.Bus = bus.NewLocalBus()
		return out, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("redis ping: %w", err)
	}
	b, err := bus.NewRedisBus(log, rdb, cfg.RedisChannel)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
	}
	out.Redis = rdb
	out.Bus = b
	return out, nil
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
