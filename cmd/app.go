package cmd

import (
	"fmt"
	"log/slog"

	"github.com/sitewizard/sitewizard/internal/config"
	"github.com/sitewizard/sitewizard/internal/gateway"
	"github.com/sitewizard/sitewizard/internal/images"
	"github.com/sitewizard/sitewizard/internal/storage"
	"github.com/sitewizard/sitewizard/internal/wizard"
)

// app holds the wired components shared by every command
type app struct {
	cfg     *config.Config
	backend storage.Backend
	wizard  *wizard.Wizard
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	slog.Debug("Session store opened", "driver", cfg.StoreDriver, "path", cfg.StorePath)

	client := gateway.NewClient(cfg.GatewayURL, cfg.GatewayTimeout)
	wiz := wizard.New(backend, client, images.NewFetcher(), wizard.Options{
		PurgeOnHome:     cfg.PurgeOnHome,
		DefaultLanguage: cfg.DefaultLanguage,
		DefaultTone:     cfg.DefaultTone,
		ArticleLength:   cfg.ArticleLength,
		DetailLevel:     cfg.DetailLevel,
		Illustrate:      cfg.Illustrate,
	})
	return &app{cfg: cfg, backend: backend, wizard: wiz}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		slog.Error("Failed to close session store", "err", err)
	}
}
