package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-laundry/internal/config"
	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/obs"
	"github.com/noah-isme/backend-laundry/internal/store"
)

var errWorkspaceExists = errors.New("workspace already exists, rerun with -force to overwrite")

func main() {
	force := flag.Bool("force", false, "overwrite an existing workspace snapshot")
	flag.Parse()

	logger := obs.NewLogger("console", "info")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if !cfg.UseRedis() {
		logger.Fatal().Msg("REDIS_URL is not set; the in-memory store cannot be seeded from outside the server")
	}
	if err := run(cfg, *force, logger); err != nil {
		if errors.Is(err, errWorkspaceExists) {
			logger.Warn().Str("key", cfg.StoreKey).Msg(err.Error())
			os.Exit(1)
		}
		logger.Fatal().Err(err).Msg("seeding failed")
	}
}

func run(cfg *config.Config, force bool, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	settings := laundry.Settings{TaxRate: cfg.TaxRate, Currency: cfg.CurrencyCode, CurrencySymbol: cfg.CurrencySymbol}
	ws, err := store.NewWorkspace(store.WorkspaceConfig{
		Store:    store.NewRedis(client, cfg.StoreKey),
		Locker:   store.RedisLock{Client: client},
		Settings: settings,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("initialise workspace: %w", err)
	}

	sample := func() *laundry.Dataset { return laundry.SampleDataset(time.Now().In(cfg.Location)) }
	if force {
		ds := sample()
		ds.Settings = settings
		if err := ds.RetotalAll(); err != nil {
			return fmt.Errorf("price sample data: %w", err)
		}
		if err := ws.Replace(ctx, ds); err != nil {
			return fmt.Errorf("replace workspace: %w", err)
		}
		logger.Info().Str("key", cfg.StoreKey).Msg("workspace replaced with sample data")
		return nil
	}

	seeded, err := ws.Init(ctx, sample)
	if err != nil {
		return fmt.Errorf("seed workspace: %w", err)
	}
	if !seeded {
		return errWorkspaceExists
	}
	logger.Info().Str("key", cfg.StoreKey).Msg("seeding completed")
	return nil
}
