package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"route-divergence-service/internal/adapters/alerts"
	"route-divergence-service/internal/adapters/providers"
	"route-divergence-service/internal/adapters/storage"
	"route-divergence-service/internal/api"
	"route-divergence-service/internal/config"
	"route-divergence-service/internal/platform/db"
	"route-divergence-service/internal/platform/logging"
	"route-divergence-service/internal/ports"
	"route-divergence-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters behind ports, starts the poller and serves the query API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Init("route-divergence", "development")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init("route-divergence", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	routes, err := storage.LoadRoutes(cfg.RoutesPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.RoutesPath).Msg("load routes")
	}

	sink, closeSink, err := openSink(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("sink", cfg.Sink).Msg("open record sink")
	}
	defer closeSink()

	routeProviders, err := buildProviders(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build providers")
	}

	notifier, closeNotifier, err := buildNotifier(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("alerts", cfg.Alerts).Msg("build divergence notifier")
	}
	defer closeNotifier()

	poller, err := services.NewPoller(routeProviders, sink, notifier, services.PollerConfig{
		Reference:       cfg.ReferenceProvider,
		Divergence:      cfg.Divergence,
		ProviderTimeout: cfg.ProviderTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build poller")
	}

	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(ctx, routes, cfg.PollInterval)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(sink, routes, poller.ProviderNames()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	<-pollerDone
}

func openSink(ctx context.Context, cfg *config.Config) (ports.RecordSink, func(), error) {
	switch cfg.Sink {
	case "file":
		return storage.NewFileRecordSink(cfg.DataDir), func() {}, nil

	case "sqlite":
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return storage.NewSqliteRecordSink(conn), closer(conn), nil

	case "postgres":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.InitPostgresSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return storage.NewSQLRecordSink(conn), closer(conn), nil

	case "redis":
		client, err := storage.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisRecordSink(client), closer(client), nil
	}

	return nil, nil, fmt.Errorf("unknown sink %q", cfg.Sink)
}

func buildProviders(cfg *config.Config) ([]ports.RouteProvider, error) {
	out := make([]ports.RouteProvider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		var (
			p   ports.RouteProvider
			err error
		)
		switch name {
		case "google":
			p, err = providers.NewGoogleProvider(cfg.GoogleAPIKey)
		case "tomtom":
			p, err = providers.NewTomTomProvider(cfg.TomTomAPIKey)
		case "ola":
			p, err = providers.NewOlaProvider(cfg.OlaAPIKey)
		default:
			err = fmt.Errorf("unknown provider %q", name)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func buildNotifier(cfg *config.Config) (ports.DivergenceNotifier, func(), error) {
	switch cfg.Alerts {
	case "log":
		return alerts.NewLogNotifier(), func() {}, nil

	case "rabbitmq":
		n, err := alerts.NewRabbitMQNotifier(cfg.RabbitMQURL)
		if err != nil {
			return nil, nil, err
		}
		return n, closer(n), nil

	case "kafka":
		n := alerts.NewKafkaNotifier(cfg.KafkaBrokers, cfg.AlertTopic)
		return n, closer(n), nil
	}

	return nil, nil, fmt.Errorf("unknown alerts transport %q", cfg.Alerts)
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}
