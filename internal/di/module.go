package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/healthmart/internal/app"
	"github.com/polkiloo/healthmart/internal/config"
	"github.com/polkiloo/healthmart/internal/logger"
	"github.com/polkiloo/healthmart/internal/pkg/auth"
	"github.com/polkiloo/healthmart/internal/pkg/mail"
	"github.com/polkiloo/healthmart/internal/server/http/router"
	"github.com/polkiloo/healthmart/internal/storage"
	"github.com/polkiloo/healthmart/internal/usecase"
)

// Module composes the application graph. opts are appended last so tests can
// replace any provided value.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		mail.Module,
		storage.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
