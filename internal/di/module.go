package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/topupshop/internal/adapter/provider"
	"github.com/polkiloo/topupshop/internal/app"
	"github.com/polkiloo/topupshop/internal/config"
	"github.com/polkiloo/topupshop/internal/logger"
	"github.com/polkiloo/topupshop/internal/notify"
	"github.com/polkiloo/topupshop/internal/pkg/auth"
	"github.com/polkiloo/topupshop/internal/pkg/clock"
	"github.com/polkiloo/topupshop/internal/server/http/handlers"
	"github.com/polkiloo/topupshop/internal/server/http/router"
	"github.com/polkiloo/topupshop/internal/storage/postgres"
	"github.com/polkiloo/topupshop/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		provider.Module,
		notify.Module,
		usecase.Module,
		fx.Provide(
			clock.NewSystem,
			func(g provider.Gateway) usecase.ProviderGateway { return g },
			func(h *notify.Hub) usecase.OrderNotifier { return h },
			func(s *postgres.Storage) handlers.HealthChecker { return s },
			func(f *app.ShopFacade) handlers.ShopFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
