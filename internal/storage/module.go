// Package storage selects the persistence backends for the application.
package storage

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/healthmart/internal/config"
	"github.com/polkiloo/healthmart/internal/domain/repository"
	"github.com/polkiloo/healthmart/internal/storage/postgres"
	"github.com/polkiloo/healthmart/internal/storage/redisstore"
)

// Module wires PostgreSQL repositories and the reset token store.
var Module = fx.Options(
	postgres.Module,
	fx.Provide(newResetTokens),
)

type resetParams struct {
	fx.In

	Ctx       context.Context
	Config    *config.Config
	Postgres  *postgres.Storage
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle
}

// newResetTokens keeps reset tokens in Redis when REDIS_URL is configured and
// in PostgreSQL otherwise.
func newResetTokens(p resetParams) (repository.ResetTokenRepository, error) {
	if p.Config.RedisURL == "" {
		return p.Postgres.ResetTokens(), nil
	}

	client, err := redisstore.Connect(p.Ctx, p.Config.RedisURL)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	p.Logger.Info("reset tokens stored in redis")
	return redisstore.NewResetTokenStore(client), nil
}
