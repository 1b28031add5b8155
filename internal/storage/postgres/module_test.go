package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/healthmart/internal/domain/repository"
	testhelpers "github.com/polkiloo/healthmart/internal/test"
)

func TestRegisterLifecyclePingsAndCloses(t *testing.T) {
	storage, mock := newMockStorage(t)
	mock.ExpectPing()
	mock.ExpectClose()

	lc := &testhelpers.LifecycleRecorder{}
	registerLifecycle(lc, storage)
	require.Len(t, lc.Hooks, 1)

	require.NoError(t, lc.Start(context.Background()))
	require.NoError(t, lc.Stop(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterLifecycleFailsWhenDatabaseIsDown(t *testing.T) {
	storage, mock := newMockStorage(t)
	down := errors.New("connection refused")
	mock.ExpectPing().WillReturnError(down)

	lc := &testhelpers.LifecycleRecorder{}
	registerLifecycle(lc, storage)

	err := lc.Start(context.Background())
	assert.ErrorIs(t, err, down)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageIsRepositoryFactory(t *testing.T) {
	storage, _ := newMockStorage(t)
	var f repository.Factory = storage

	assert.NotNil(t, f.Users())
	assert.NotNil(t, f.Products())
	assert.NotNil(t, f.Orders())
	assert.NotNil(t, f.ResetTokens())
	assert.Same(t, storage, f.Transactor())
}
