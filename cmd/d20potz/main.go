// cmd/d20potz/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/d20potz/internal/bot"
	"github.com/jason-s-yu/d20potz/internal/cache"
	"github.com/jason-s-yu/d20potz/internal/cards"
	"github.com/jason-s-yu/d20potz/internal/config"
	"github.com/jason-s-yu/d20potz/internal/database"
	"github.com/jason-s-yu/d20potz/internal/dice"
	"github.com/jason-s-yu/d20potz/internal/game"
	"github.com/jason-s-yu/d20potz/internal/handlers"
	"github.com/jason-s-yu/d20potz/internal/telegram"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatalf("LOG_LEVEL: %v", err)
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal(err)
	}
	logger.Info("Shut down")
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	store, err := openStore(ctx, cfg.Env)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.WithField("store", cfg.Store).Info("Store opened")

	catalog, err := cards.Load(cfg.CardsDir)
	if err != nil {
		return err
	}

	b := bot.New(cfg, game.NewState(store, cfg), catalog, dice.NewRandRoller(), logger)

	switch cfg.Transport {
	case config.TransportTelegram:
		t, err := telegram.New(cfg.TelegramToken, b, logger)
		if err != nil {
			return err
		}
		return t.Run(ctx)
	case config.TransportWS:
		return handlers.NewTableServer(b, catalog, logger).Run(ctx, ":"+cfg.Port)
	default:
		return fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func openStore(ctx context.Context, e config.Env) (database.Store, error) {
	switch e.Store {
	case config.StoreMemory:
		return database.NewMemoryStore(), nil
	case config.StoreSQLite:
		return database.OpenSQLite(e.DBDir)
	case config.StoreRedis:
		return cache.Open(ctx, e.RedisAddr, e.RedisDB)
	case config.StorePostgres:
		return database.OpenPostgres(ctx, e.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown store %q", e.Store)
	}
}
