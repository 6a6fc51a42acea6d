package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ZLeader/internal/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type AppConfig struct {
	Addr       string
	ConfigPath string
	AdminToken string
	Overrides  Overrides
	Logger     zerolog.Logger
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		Addr:       ":8080",
		ConfigPath: "configs/leader.json",
		Logger:     log.Logger,
	}
}

func resolveSettings(cfg AppConfig) Settings {
	settings := DefaultSettings()
	loaded, err := loadSettingsFromFile(cfg.ConfigPath, settings)
	if err != nil {
		log.Warn().Err(err).Msg("config: using defaults")
	} else {
		settings = loaded
	}
	return cfg.Overrides.apply(settings)
}

func newHub(settings Settings, logger zerolog.Logger) *game.Hub {
	return game.NewHub(game.RoomConfig{
		TickRate: settings.TickRate,
		Bots:     settings.Bots,
		Leader:   settings.Leader,
		Logger:   logger.With().Str("component", "leader").Logger(),
	})
}

// StartApp serves until ctx is cancelled.
func StartApp(ctx context.Context, cfg AppConfig) error {
	settings := resolveSettings(cfg)
	hub := newHub(settings, cfg.Logger)

	go hub.Run(ctx)

	// Periodic cleanup of empty rooms (every 60 seconds)
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := hub.CleanupEmptyRooms(); n > 0 {
					log.Debug().Int("rooms", n).Msg("removed empty rooms")
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(hub, cfg.AdminToken),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", cfg.Addr).
		Float64("tickRate", settings.TickRate).
		Int("bots", settings.Bots).
		Bool("leaderEnabled", settings.Leader.Enabled).
		Float64("voteRatio", settings.Leader.VoteRatio).
		Msg("starting web server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
