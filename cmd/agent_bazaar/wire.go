//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"agent_bazaar/internal/biz"
	"agent_bazaar/internal/conf"
	"agent_bazaar/internal/p2p"
	"agent_bazaar/internal/server"
	"agent_bazaar/internal/service"
	"agent_bazaar/internal/transport"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Bootstrap, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		// Extract individual configs from Bootstrap
		wire.FieldsOf(new(*conf.Bootstrap), "Server"),

		// Core providers
		server.ProviderSet,
		biz.ProviderSet,
		service.ProviderSet,

		// P2P and Transport providers (they use full bootstrap config)
		p2p.ProviderSet,
		transport.ProviderSet,

		// Zap logger provider
		NewZapLogger,

		newApp,
	))
}
