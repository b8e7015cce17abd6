package cli

import (
	"context"
	"encoding/json"
	"os"

	"book-finder/internal/app"
	"book-finder/internal/config"
)

// open returns the injected app, or builds one from the config file.
// The returned func releases storage.
func (e *commandEnv) open(ctx context.Context) (*app.App, func(), error) {
	if e.app != nil {
		return e.app, func() {}, nil
	}

	cfg, err := config.Load(e.globals.Config)
	if err != nil {
		return nil, nil, err
	}
	logCfg := cfg.Logging
	logCfg.Format = "text"
	if e.globals.Verbose {
		logCfg.Level = "debug"
	}
	logger := config.NewLogger(logCfg, os.Stderr)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, func() { _ = a.Close() }, nil
}

func (e *commandEnv) writeJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
