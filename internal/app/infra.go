package app

import (
	"context"
	"errors"

	"identity-service/internal/config"
	"identity-service/internal/db"
	"identity-service/internal/logger"
	"identity-service/internal/redis"
)

// Infra holds the connections shared by the HTTP layer.
// Redis is nil when REDIS_ADDR is not configured.
type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

// OpenInfra connects to the database, migrates it and, when configured,
// connects to Redis.
func OpenInfra(ctx context.Context, cfg *config.Config) (*Infra, error) {
	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, database); err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("database ready", map[string]any{
		"dialect": database.Dialect().Name().String(),
	})

	infra := &Infra{DB: database}

	if cfg.RedisAddr == "" {
		logger.Info("redis not configured, login state kept in memory", nil)
		return infra, nil
	}

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	infra.Redis = redisClient

	logger.Info("redis ready", nil)

	return infra, nil
}

func (i *Infra) Close() error {
	var errs []error
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	return errors.Join(errs...)
}
