// Package app wires the feedbot services together from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/yoyofushi/feedbot/src/arkclient"
	"github.com/yoyofushi/feedbot/src/config"
	"github.com/yoyofushi/feedbot/src/convstore"
	"github.com/yoyofushi/feedbot/src/executor"
	"github.com/yoyofushi/feedbot/src/feedagent"
	"github.com/yoyofushi/feedbot/src/storage"
)

// App holds the assembled services.
type App struct {
	Config        *config.Config
	DB            *storage.DB
	Store         *storage.Store
	Provider      *arkclient.Client
	Conversations *convstore.Store
	Engine        *executor.Service
	Logger        *slog.Logger
}

// New opens storage, seeds the food catalog when configured, and wires
// up the provider, the conversation cache, and the turn engine.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Provider.APIKey == "" {
		logger.Warn("provider api key not configured, set ARK_API_KEY or provider.api_key")
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	store := storage.NewStore(db)

	if cfg.Database.FoodCatalog != "" {
		added, err := storage.SeedFoods(ctx, db.DB(), afero.NewOsFs(), cfg.Database.FoodCatalog)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to seed food catalog: %w", err)
		}
		logger.Info("seeded food catalog", "path", cfg.Database.FoodCatalog, "added", added)
	}

	provider := arkclient.NewClient(arkclient.Config{
		APIKey:  cfg.Provider.APIKey,
		BaseURL: cfg.Provider.BaseURL,
		Logger:  logger,
	})

	conversations := convstore.New(convstore.Config{
		TTL:        time.Duration(cfg.Conversations.TTLSeconds) * time.Second,
		MaxEntries: cfg.Conversations.MaxEntries,
	})

	engine, err := executor.NewService(executor.ServiceConfig{
		Provider:      provider,
		Conversations: conversations,
		Toolbox:       feedagent.NewToolset(store, logger),
		Context:       feedagent.NewContextCollector(store, logger),
		Prompts: executor.PromptSet{
			System:  feedagent.SystemPrompt,
			Advisor: feedagent.AdvisorPrompt,
		},
		Models: executor.Models{
			Fast:     cfg.Provider.FastModel,
			Advanced: cfg.Provider.AdvancedModel,
		},
		RequestTimeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		Logger:         logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	return &App{
		Config:        cfg,
		DB:            db,
		Store:         store,
		Provider:      provider,
		Conversations: conversations,
		Engine:        engine,
		Logger:        logger,
	}, nil
}

// Close releases the resources held by the app.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
