package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dchamindu826/Rider-App/internal/config"
	"github.com/dchamindu826/Rider-App/internal/deps"
	"github.com/dchamindu826/Rider-App/internal/feed"
	"github.com/dchamindu826/Rider-App/internal/server"
	"github.com/dchamindu826/Rider-App/internal/session"
	"github.com/dchamindu826/Rider-App/internal/sound"
	"github.com/dchamindu826/Rider-App/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := config.NewConfig()
	logger := config.Logger
	defer logger.Sync()

	storage, err := storage.NewPostgreStorage(ctx, config.DatabaseURI, logger)
	if err != nil {
		logger.Fatal(err)
	}
	defer storage.Close()

	var upstream feed.Source = storage
	if config.NATSURL != "" {
		natsFeed, err := feed.NewNATSFeed(config.NATSURL, config.NATSSubject, logger)
		if err != nil {
			logger.Fatal(err)
		}
		defer natsFeed.Close()
		upstream = natsFeed
	}

	hub := feed.NewHub(upstream, logger)
	if err := hub.Start(ctx); err != nil {
		logger.Fatalf("order feed: %v", err)
	}
	defer hub.Close()

	var sessions session.Store = session.NewMemoryStore()
	if config.RedisAddr != "" {
		redisStore := session.NewRedisStore(config.RedisAddr, "rider")
		if err := redisStore.Ping(ctx); err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
	}

	newPlayer := func() sound.Player {
		return sound.New(config.Sound, os.Stdout, logger)
	}
	deps := deps.NewDependencies(logger, config.SecretKey, sessions)

	srv := server.NewServer(storage, hub, newPlayer, config, deps)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal(err)
	}
}
