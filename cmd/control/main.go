package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"auctiondesk/internal/httpapi"
	"auctiondesk/internal/live/broadcast"
	"auctiondesk/internal/live/bus"
	"auctiondesk/internal/storage"
	"auctiondesk/internal/tournament"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	setupLogging()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := setupStorage(ctx, config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up storage")
	}
	defer cleanup()

	liveBus, err := setupBus(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up live channel")
	}
	defer liveBus.Close()

	app := tournament.NewApp(store)
	app.Load(ctx)

	publisher, err := broadcast.NewPublisher(liveBus, app)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to attach live publisher")
	}
	defer publisher.Close()

	handlers := httpapi.NewHandlers(app, publisher)
	server := setupServer(config, handlers)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("control service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if getEnv("LOG_PRETTY", "") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(level)
	}
}

func setupStorage(ctx context.Context, config *Config) (storage.Store, func(), error) {
	switch config.Storage.Driver {
	case "postgres":
		store, err := storage.NewPGStore(ctx, postgresDSN())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("using postgres storage")
		return store, store.Close, nil
	default:
		store, err := storage.NewFileStore(config.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", config.Storage.Dir).Msg("using file storage")
		return store, func() {}, nil
	}
}

func setupBus(config *Config) (bus.Bus, error) {
	if config.Live.Driver != "nats" {
		log.Info().Msg("using in-process live channel, spectators must run in-process")
		return bus.NewInMemory(), nil
	}

	natsConfig := bus.DefaultNATSConfig()
	if config.Live.URL != "" {
		natsConfig.URL = config.Live.URL
	}
	if config.Live.Subject != "" {
		natsConfig.Subject = config.Live.Subject
	}
	b, err := bus.ConnectNATS(natsConfig)
	if err != nil {
		return nil, err
	}
	log.Info().Str("url", natsConfig.URL).Str("subject", natsConfig.Subject).Msg("live channel on NATS")
	return b, nil
}
