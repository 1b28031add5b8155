package di

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/healthmart/internal/app"
	"github.com/polkiloo/healthmart/internal/config"
	"github.com/polkiloo/healthmart/internal/domain/repository"
	"github.com/polkiloo/healthmart/internal/server/http/handlers"
	"github.com/polkiloo/healthmart/internal/storage/postgres"
	"github.com/polkiloo/healthmart/internal/test"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:                ":0",
		DatabaseURI:               "postgres://stub",
		JWTSecret:                 "secret",
		TokenTTL:                  time.Hour,
		ResetTokenTTL:             time.Minute,
		ShutdownTimeout:           time.Millisecond,
		CheckoutLookupConcurrency: 2,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var (
		facade      *app.StoreFacade
		httpFacade  handlers.StoreFacade
		engine      *gin.Engine
		server      *http.Server
		resetTokens repository.ResetTokenRepository
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(fx.Annotate(context.Background(), fx.As(new(context.Context)))),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(fx.Annotate(test.NewUserRepositoryStub(), fx.As(new(repository.UserRepository)))),
			fx.Replace(fx.Annotate(test.NewProductRepositoryStub(), fx.As(new(repository.ProductRepository)))),
			fx.Replace(fx.Annotate(test.NewOrderRepositoryStub(), fx.As(new(repository.OrderRepository)))),
			fx.Replace(fx.Annotate(&test.TransactorStub{}, fx.As(new(repository.Transactor)))),
		),
		fx.Populate(&facade, &httpFacade, &engine, &server, &resetTokens),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil || httpFacade == nil {
		t.Fatal("expected store facade instance")
	}
	if engine == nil || server == nil || server.Addr != ":0" {
		t.Fatalf("expected http server wired to config, got %+v", server)
	}
	if resetTokens == nil {
		t.Fatal("expected reset tokens to fall back to postgres")
	}
}
