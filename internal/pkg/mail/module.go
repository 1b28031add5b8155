package mail

import "go.uber.org/fx"

// Module provides the Mailer implementation.
var Module = fx.Provide(
	fx.Annotate(NewLogMailer, fx.As(new(Mailer))),
)
