// Command server wires the chain gateway, pool catalog, router usecase,
// group builder, and HTTP delivery into a running process, grounded on
// app/main.go's and app/sidecar_query_server.go's split (config load,
// signal-driven shutdown, echo server start), with the ingest pipeline,
// Redis repositories, and Sentry/OTEL wiring dropped. This service has no
// persisted state and carries structured logging instead of a tracing
// backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/voinetwork/swaprouter/amm"
	"github.com/voinetwork/swaprouter/amm/humbleswap"
	"github.com/voinetwork/swaprouter/amm/nomadex"
	"github.com/voinetwork/swaprouter/catalog"
	"github.com/voinetwork/swaprouter/chain"
	"github.com/voinetwork/swaprouter/domain"
	"github.com/voinetwork/swaprouter/group"
	"github.com/voinetwork/swaprouter/log"
	"github.com/voinetwork/swaprouter/middleware"
	routerhttp "github.com/voinetwork/swaprouter/router/delivery/http"
	"github.com/voinetwork/swaprouter/router/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file location")
	isDebug := flag.Bool("debug", false, "debug mode")
	flag.Parse()

	viper.SetConfigFile(*configPath)
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("reading config: %w", err))
	}
	viper.AutomaticEnv()

	var config domain.Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("unmarshalling config: %w", err))
	}
	if config.Router == (domain.RouterConfig{}) {
		config.Router = domain.DefaultRouterConfig
	}
	if *isDebug {
		config.Logger.Level = "debug"
	}

	logger, err := log.New(config.Logger.IsProduction, config.Logger.Level)
	if err != nil {
		panic(fmt.Errorf("creating logger: %w", err))
	}
	logger.Info("starting swaprouter")

	gateway, err := chain.New(config.Chain.NodeURL, config.Chain.IndexerURL)
	if err != nil {
		logger.Error("failed to build chain gateway", zap.Error(err))
		os.Exit(1)
	}

	poolCatalog, err := catalog.Load(config.PoolsFile, config.TokensFile)
	if err != nil {
		logger.Error("failed to load pool catalog", zap.Error(err))
		os.Exit(1)
	}

	registry := amm.NewRegistry(map[domain.Dex]domain.AMMAdapter{
		domain.DexHumbleSwap: humbleswap.New(gateway, config.Chain.BeaconAppId),
		domain.DexNomadex:    nomadex.New(gateway, config.Chain.FactoryAppId),
	})

	routerUsecase := usecase.NewRouterUsecase(poolCatalog, registry, config.Router, config.Platform, logger)
	groupBuilder := group.NewBuilder(registry, gateway)

	e := echo.New()
	e.HideBanner = true

	mw := middleware.InitMiddleware(config.CORS, logger)
	e.Use(mw.CORS)
	e.Use(mw.InstrumentMiddleware)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	routerhttp.NewHandler(e, routerUsecase, poolCatalog, groupBuilder, logger)

	ctx, cancel := context.WithCancel(context.Background())

	exitChan := make(chan os.Signal, 1)
	signal.Notify(exitChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-exitChan
		cancel()
		logger.Info("shutting down")
		if err := e.Shutdown(ctx); err != nil {
			logger.Error("error during shutdown", zap.Error(err))
		}
		os.Exit(0)
	}()

	if err := e.Start(config.ServerAddress); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
