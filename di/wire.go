//go:build wireinject
// +build wireinject

package di

import (
	"todolist/config"
	"todolist/infras/database"
	"todolist/infras/kafka"
	"todolist/infras/otel"
	"todolist/infras/redis"
	todoHandler "todolist/internal/handlers/todo"
	"todolist/shared/cache"
	"todolist/transport/http"
	"todolist/transport/http/middleware"
	"todolist/transport/http/router"

	todoRepository "todolist/internal/domains/todo/repository"
	todoService "todolist/internal/domains/todo/service"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	database.New,
	otel.New,
	redis.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewMetrics,
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var todoDomain = wire.NewSet(
	todoRepository.New,
	todoService.New,
)

var domains = wire.NewSet(
	todoDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	todoHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
