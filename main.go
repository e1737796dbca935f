package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fragmede/trackside/internal/api"
	"github.com/fragmede/trackside/internal/auth"
	"github.com/fragmede/trackside/internal/cache"
	"github.com/fragmede/trackside/internal/config"
	"github.com/fragmede/trackside/internal/mockapi"
	"github.com/fragmede/trackside/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trackside",
		Short: "Terminal client for the Athletics Northern Territory club",
		Long: `trackside shows club events, community posts and membership plans,
and lets members log in, register and manage event registrations.
Settings come from config.yaml in the cache dir, .env, TRACKSIDE_*
environment variables and the flags below.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	config.RegisterFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	if cfg.MockAPI {
		srv, err := mockapi.New(mockapi.Config{
			Secret:   cfg.JWTSecret,
			TokenTTL: cfg.TokenTTL,
			Logger:   logger.With("component", "mockapi"),
		})
		if err != nil {
			return fmt.Errorf("starting mock api: %w", err)
		}
		go func() {
			if err := srv.Listen(cfg.MockAddr); err != nil {
				logger.Error("mock api stopped", "addr", cfg.MockAddr, "error", err)
			}
		}()
		defer srv.Shutdown()
	}

	store := cache.NewTokenStore(db, logger)
	client := api.NewClient(cfg.APIBase(), store,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger.With("component", "api")),
	)
	session := auth.NewSession(client, store, logger.With("component", "auth"))

	// Prefetch public data into cache on startup.
	go prefetch(client, db, logger)

	app := ui.NewApp(cfg, client, db, session, logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	ui.ForwardSessionExpiry(client, p.Send)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

func prefetch(client *api.Client, db *cache.DB, logger *slog.Logger) {
	ctx := context.Background()
	if plans, err := client.GetPlans(ctx); err == nil {
		if err := db.PutPlans(plans); err != nil {
			logger.Warn("prefetch: caching plans", "error", err)
		}
	} else {
		logger.Debug("prefetch: plans", "error", err)
	}

	events, err := client.GetEvents(ctx, api.EventsUpcoming)
	if err != nil {
		logger.Debug("prefetch: events", "error", err)
		return
	}
	if err := db.PutEventList(api.EventsUpcoming, events); err != nil {
		logger.Warn("prefetch: caching events", "error", err)
	}
}
