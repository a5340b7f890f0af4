package main

import (
	"context"
	"flag"
	"os"

	"agent_bazaar/internal/conf"
	"agent_bazaar/internal/p2p"
	"agent_bazaar/internal/transport"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/tracing"
	"github.com/go-kratos/kratos/v2/transport/http"
	"go.uber.org/zap"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "agent_bazaar"
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs", "config path, eg: -conf config.yaml")
}

// NewZapLogger creates a zap logger for the p2p and transport layers
func NewZapLogger(logger log.Logger) *zap.Logger {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		logger.Log(log.LevelWarn, "msg", "Failed to build production zap logger, using nop", "error", err)
		return zap.NewNop()
	}
	return zapLogger
}

func newApp(
	logger log.Logger,
	hs *http.Server,
	networkManager p2p.NetworkManager,
	notifier *transport.EventNotifier,
	hostConfig *p2p.HostConfig,
	pubsubConfig *transport.PubSubConfig,
	zapLogger *zap.Logger,
	bootstrap *conf.Bootstrap,
) *kratos.App {
	// Created in BeforeStart once the libp2p host exists
	var publisher transport.Publisher

	gossipEnabled := bootstrap.Bazaar != nil && bootstrap.Bazaar.EnableEvents &&
		bootstrap.Transport != nil && bootstrap.Transport.EnableGossipSub

	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
		),
		kratos.BeforeStart(func(ctx context.Context) error {
			if !gossipEnabled {
				logger.Log(log.LevelInfo, "msg", "Gossip events disabled, running HTTP only")
				return nil
			}

			if err := networkManager.Start(ctx, hostConfig); err != nil {
				logger.Log(log.LevelError, "msg", "Failed to start P2P network", "error", err)
				return err
			}
			logger.Log(log.LevelInfo, "msg", "P2P network started successfully")

			hostManager := networkManager.GetHostManager()
			if hostManager == nil || hostManager.GetHost() == nil {
				logger.Log(log.LevelError, "msg", "P2P host unavailable after start")
				return p2p.ErrHostNotRunning
			}

			publisher = transport.NewPublisher(hostManager.GetHost(), zapLogger)
			if err := publisher.Start(ctx, pubsubConfig); err != nil {
				logger.Log(log.LevelError, "msg", "Failed to start event publisher", "error", err)
				return err
			}
			logger.Log(log.LevelInfo, "msg", "Event publisher started successfully")

			notifier.SetPublisher(publisher)
			return nil
		}),
		kratos.AfterStop(func(ctx context.Context) error {
			if publisher != nil {
				if err := publisher.Stop(); err != nil {
					logger.Log(log.LevelError, "msg", "Failed to stop event publisher", "error", err)
				}
			}

			if gossipEnabled {
				if err := networkManager.Stop(); err != nil {
					logger.Log(log.LevelError, "msg", "Failed to stop P2P network", "error", err)
				}
			}

			return nil
		}),
	)
}

func main() {
	flag.Parse()
	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
		"trace.id", tracing.TraceID(),
		"span.id", tracing.SpanID(),
	)
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}
	bc.Normalize()

	app, cleanup, err := wireApp(&bc, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
