package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/polkiloo/healthmart/internal/config"
	"github.com/polkiloo/healthmart/internal/domain/model"
	"github.com/polkiloo/healthmart/internal/domain/repository"
	"github.com/polkiloo/healthmart/internal/usecase"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Price       float64       `yaml:"price"`
	Category    string        `yaml:"category"`
	Subcategory string        `yaml:"subcategory"`
	Brand       string        `yaml:"brand"`
	Stock       int           `yaml:"stock"`
	Images      []string      `yaml:"images"`
	Discount    *seedDiscount `yaml:"discount"`
	IsActive    *bool         `yaml:"isActive"`
}

type seedDiscount struct {
	Percentage float64    `yaml:"percentage"`
	ValidUntil *time.Time `yaml:"validUntil"`
}

func (s seedProduct) toModel() model.Product {
	p := model.Product{
		Name:        s.Name,
		Description: s.Description,
		Price:       model.MoneyFromFloat(s.Price),
		Category:    model.Category(s.Category),
		Subcategory: s.Subcategory,
		Brand:       s.Brand,
		Stock:       s.Stock,
		Images:      s.Images,
		IsActive:    true,
	}
	if s.Discount != nil {
		p.Discount = model.Discount{Percentage: s.Discount.Percentage, ValidUntil: s.Discount.ValidUntil}
	}
	if s.IsActive != nil {
		p.IsActive = *s.IsActive
	}
	return p
}

// decodeSeed reads a YAML catalog. Unknown keys are rejected to surface typos.
func decodeSeed(r io.Reader) ([]model.Product, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file seedFile
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	out := make([]model.Product, 0, len(file.Products))
	for _, p := range file.Products {
		out = append(out, p.toModel())
	}
	return out, nil
}

type productCounter interface {
	Count(ctx context.Context) (int, error)
}

type productCreator interface {
	Create(ctx context.Context, p model.Product) (*model.Product, error)
}

// seedCatalog loads products from path when the catalog is empty.
func seedCatalog(ctx context.Context, path string, counter productCounter, creator productCreator, logger *slog.Logger) error {
	count, err := counter.Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		logger.InfoContext(ctx, "catalog already populated, skipping seed", slog.Int("products", count))
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	products, err := decodeSeed(f)
	if err != nil {
		return err
	}
	for i, p := range products {
		if _, err := creator.Create(ctx, p); err != nil {
			return fmt.Errorf("seed product %d (%s): %w", i, p.Name, err)
		}
	}
	logger.InfoContext(ctx, "catalog seeded", slog.Int("products", len(products)), slog.String("file", path))
	return nil
}

type seedParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Products  repository.ProductRepository
	Catalog   *usecase.CatalogUseCase
	Logger    *slog.Logger
}

func registerSeed(p seedParams) {
	if p.Config.SeedFile == "" {
		return
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return seedCatalog(ctx, p.Config.SeedFile, p.Products, p.Catalog, p.Logger)
		},
	})
}
