package usecase

import (
	"github.com/polkiloo/healthmart/internal/config"
	"go.uber.org/fx"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		newAuthSettings,
		newCheckoutSettings,
		NewAuthUseCase,
		NewCatalogUseCase,
		NewCheckoutUseCase,
		NewOrderUseCase,
	),
)

func newAuthSettings(cfg *config.Config) AuthSettings {
	return AuthSettings{
		ResetTokenTTL: cfg.ResetTokenTTL,
		AdminEmails:   cfg.AdminEmails,
		PublicURL:     cfg.PublicURL,
	}
}

func newCheckoutSettings(cfg *config.Config) CheckoutSettings {
	return CheckoutSettings{LookupConcurrency: cfg.CheckoutLookupConcurrency}
}
