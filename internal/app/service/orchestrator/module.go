package orchestrator

import (
	"go.uber.org/fx"

	"github.com/shulefund/payments/internal/platform/backend"
)

func newBackend(c *backend.Client) Backend { return c }

// Module exposes the payment orchestrator via Fx.
var Module = fx.Options(
	fx.Provide(newBackend),
	fx.Provide(NewService),
)
