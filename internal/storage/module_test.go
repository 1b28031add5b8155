package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/healthmart/internal/config"
	"github.com/polkiloo/healthmart/internal/storage/postgres"
	"github.com/polkiloo/healthmart/internal/storage/redisstore"
	testhelpers "github.com/polkiloo/healthmart/internal/test"
)

func newParams(cfg *config.Config, lc *testhelpers.LifecycleRecorder) resetParams {
	return resetParams{
		Ctx:       context.Background(),
		Config:    cfg,
		Postgres:  &postgres.Storage{},
		Logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Lifecycle: lc,
	}
}

func TestNewResetTokensDefaultsToPostgres(t *testing.T) {
	lc := &testhelpers.LifecycleRecorder{}
	repo, err := newResetTokens(newParams(&config.Config{}, lc))
	require.NoError(t, err)

	_, isRedis := repo.(*redisstore.ResetTokenStore)
	assert.False(t, isRedis)
	assert.Empty(t, lc.Hooks)
}

func TestNewResetTokensUsesRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	lc := &testhelpers.LifecycleRecorder{}

	repo, err := newResetTokens(newParams(&config.Config{RedisURL: "redis://" + srv.Addr()}, lc))
	require.NoError(t, err)

	_, isRedis := repo.(*redisstore.ResetTokenStore)
	assert.True(t, isRedis)
	require.Len(t, lc.Hooks, 1)
	assert.NoError(t, lc.Stop(context.Background()))
}

func TestNewResetTokensRedisUnavailable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := newResetTokens(newParams(&config.Config{RedisURL: "redis://" + addr}, &testhelpers.LifecycleRecorder{}))
	assert.Error(t, err)
}
