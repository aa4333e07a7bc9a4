package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/ytsync/internal/services"
	"github.com/desertthunder/ytsync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	ctx := context.Background()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var source services.SourceProvider
	var dest services.DestinationProvider

	spotifyCreds := config.Credentials.Spotify
	if spotifyCreds.ClientID != "" && spotifyCreds.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(map[string]string{
			"client_id":     spotifyCreds.ClientID,
			"client_secret": spotifyCreds.ClientSecret,
		}); err == nil {
			if err := svc.Authenticate(ctx, map[string]string{
				"access_token":  spotifyCreds.AccessToken,
				"refresh_token": spotifyCreds.RefreshToken,
			}); err == nil {
				source = svc
			} else {
				logger.Warn("spotify authentication not configured", "err", err)
			}
		}
	}

	youtubeCreds := config.Credentials.YouTube
	if youtubeCreds.ClientID != "" && youtubeCreds.ClientSecret != "" {
		svc := services.NewYouTubeService(services.YouTubeOpts{
			RateLimit: config.Sync.RateLimit,
			Logger:    logger,
		})
		if err := svc.Authenticate(ctx, map[string]string{
			"client_id":     youtubeCreds.ClientID,
			"client_secret": youtubeCreds.ClientSecret,
			"refresh_token": youtubeCreds.RefreshToken,
		}); err == nil {
			dest = svc
		} else {
			logger.Warn("youtube authentication not configured", "err", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Source: source,
		Dest:   dest,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "ytsync",
		Usage:    "Mirror a Spotify playlist to YouTube with minimal quota spend",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrLockHeld) {
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
