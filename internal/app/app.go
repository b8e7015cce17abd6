package app

import (
	"context"
	"io"
	"log/slog"

	"book-finder/internal/adapter"
	"book-finder/internal/config"
	"book-finder/internal/core"
	"book-finder/pkg/http_client"
)

// App is everything a surface (HTTP or CLI) needs, wired from config.
type App struct {
	Service *core.Service
	Log     *slog.Logger
	closer  io.Closer
}

// New opens storage, loads favorites and theme, and builds the catalog
// gateway.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	kv, err := adapter.OpenKV(ctx, cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	opts := []adapter.GoogleBooksOption{
		adapter.WithAPIKey(cfg.Catalog.APIKey),
		adapter.WithRateLimit(cfg.Catalog.RequestsPerSecond, cfg.Catalog.Burst),
	}
	if cfg.Display.SanitizeDescriptions {
		opts = append(opts, adapter.WithSanitizer(adapter.NewDescriptionSanitizer()))
	}
	gw := adapter.NewGoogleBooksClient(cfg.Catalog.BaseURL, http_client.CreateHTTPClient(cfg.Catalog.Timeout), logger, opts...)

	favs := core.NewFavoritesStore(ctx, kv, logger)
	theme := core.NewThemeStore(ctx, kv, logger)
	svc := core.NewService(gw, favs, theme, cfg.Display.WindowSize, logger)

	logger.Debug("app: ready", "storage", cfg.Storage.Driver, "favorites", favs.Len(), "theme", theme.Get())
	return &App{Service: svc, Log: logger, closer: kv}, nil
}

func (a *App) Close() error {
	return a.closer.Close()
}
