package provider

import (
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/topupshop/internal/config"
)

// Module exposes the configured provider gateway to fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) (Gateway, error) {
	logger := p.Logger.With(slog.String("provider", p.Config.Provider.Kind))
	switch p.Config.Provider.Kind {
	case config.ProviderPaySeller:
		return NewPaySeller(p.Config.Provider, logger)
	case config.ProviderG2Bulk:
		return NewG2Bulk(p.Config.Provider, logger)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", p.Config.Provider.Kind)
	}
}
