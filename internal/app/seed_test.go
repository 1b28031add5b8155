package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/healthmart/internal/config"
	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
	testhelpers "github.com/polkiloo/healthmart/internal/test"
	"github.com/polkiloo/healthmart/internal/usecase"
)

const seedPath = "testdata/catalog.yaml"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestDecodeSeed(t *testing.T) {
	f, err := os.Open(seedPath)
	require.NoError(t, err)
	defer f.Close()

	products, err := decodeSeed(f)
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "Vitamin D3 2000 IU", products[0].Name)
	assert.Equal(t, model.Money(1299), products[0].Price)
	assert.Equal(t, model.CategoryHealthSupplements, products[0].Category)
	assert.Equal(t, []string{"https://cdn.example.com/img/vitamin-d3.png"}, products[0].Images)
	assert.True(t, products[0].IsActive)

	assert.Equal(t, model.Money(850), products[1].Price)
	assert.Equal(t, 15.0, products[1].Discount.Percentage)
	require.NotNil(t, products[1].Discount.ValidUntil)
	assert.Equal(t, 2030, products[1].Discount.ValidUntil.Year())

	assert.False(t, products[2].IsActive)
}

func TestDecodeSeedRejectsUnknownFields(t *testing.T) {
	_, err := decodeSeed(strings.NewReader("products:\n  - name: x\n    colour: red\n"))
	assert.Error(t, err)
}

func TestDecodeSeedEmptyFile(t *testing.T) {
	products, err := decodeSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSeedCatalogPopulatesEmptyCatalog(t *testing.T) {
	repo := testhelpers.NewProductRepositoryStub()
	catalog := usecase.NewCatalogUseCase(repo)

	require.NoError(t, seedCatalog(context.Background(), seedPath, repo, catalog, discardLogger()))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSeedCatalogSkipsPopulatedCatalog(t *testing.T) {
	repo := testhelpers.NewProductRepositoryStub(model.Product{ID: 1, Name: "existing"})
	catalog := usecase.NewCatalogUseCase(repo)

	require.NoError(t, seedCatalog(context.Background(), "does-not-exist.yaml", repo, catalog, discardLogger()))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSeedCatalogFailures(t *testing.T) {
	ctx := context.Background()

	repo := testhelpers.NewProductRepositoryStub()
	repo.Err = errors.New("db down")
	err := seedCatalog(ctx, seedPath, repo, usecase.NewCatalogUseCase(repo), discardLogger())
	assert.ErrorContains(t, err, "count products")

	repo = testhelpers.NewProductRepositoryStub()
	err = seedCatalog(ctx, filepath.Join(t.TempDir(), "missing.yaml"), repo, usecase.NewCatalogUseCase(repo), discardLogger())
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("products:\n  - name: Broken\n    description: no category\n    price: 1\n"), 0o600))
	repo = testhelpers.NewProductRepositoryStub()
	err = seedCatalog(ctx, bad, repo, usecase.NewCatalogUseCase(repo), discardLogger())
	assert.ErrorIs(t, err, domainErrors.ErrInvalidRequest)
}

func TestRegisterSeed(t *testing.T) {
	repo := testhelpers.NewProductRepositoryStub()
	params := seedParams{
		Config:   &config.Config{},
		Products: repo,
		Catalog:  usecase.NewCatalogUseCase(repo),
		Logger:   discardLogger(),
	}

	recorder := &testhelpers.LifecycleRecorder{}
	params.Lifecycle = recorder
	registerSeed(params)
	assert.Empty(t, recorder.Hooks, "no hook without a seed file")

	params.Config = &config.Config{SeedFile: seedPath}
	registerSeed(params)
	require.Len(t, recorder.Hooks, 1)
	require.NoError(t, recorder.Start(context.Background()))
	assert.Equal(t, 3, len(mustList(t, repo)))
}

func mustList(t *testing.T, repo *testhelpers.ProductRepositoryStub) []model.Product {
	t.Helper()
	items, _, err := repo.List(context.Background(), model.ProductFilter{Page: model.NewPage(1, 100)})
	require.NoError(t, err)
	return items
}
