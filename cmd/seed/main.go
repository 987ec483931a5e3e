package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sojus/helpdesk/internal/auth"
	"github.com/sojus/helpdesk/internal/config"
	"github.com/sojus/helpdesk/internal/observability"
	"github.com/sojus/helpdesk/internal/persistence"
	"github.com/sojus/helpdesk/internal/seed"
)

func main() {
	envFiles := pflag.StringSlice("env-file", nil, "dotenv files to load before reading the environment (default .env)")
	fixturePath := pflag.StringP("file", "f", "", "YAML fixture to load (default: built-in demo data)")
	printTokens := pflag.Bool("tokens", true, "print a bearer token for every seeded user")
	pflag.Parse()

	cfg, err := config.Load(*envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	fixture, err := loadFixture(*fixturePath)
	if err != nil {
		logger.Fatal("failed to read fixture", zap.Error(err))
	}

	ctx := context.Background()
	store, err := persistence.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.Error(err))
	}
	defer store.Close()

	users, err := seed.NewLoader(store.DirectoryWriter(), cfg.Auth.BcryptCost).Apply(ctx, fixture)
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("seed applied",
		zap.Int("courts", len(fixture.Courts)),
		zap.Int("hardware", len(fixture.Hardware)),
		zap.Int("users", len(users)),
	)

	if !*printTokens {
		return
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	for i := range users {
		token, expiresAt, err := tokens.GenerateToken(&users[i])
		if err != nil {
			logger.Fatal("sign token", zap.String("user", users[i].Username), zap.Error(err))
		}
		fmt.Printf("%-10s %-14s expires %s\n  %s\n", users[i].Username, users[i].Role, expiresAt.Format("2006-01-02 15:04"), token)
	}
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.Demo()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.Decode(f)
}
