package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"wordladder/internal/config"
	"wordladder/internal/database"
	"wordladder/internal/logging"
	"wordladder/internal/repository"
	"wordladder/internal/service"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	store *store
}

// store bundles the repositories and services a command works with
type store struct {
	db        *database.DB
	words     *repository.WordRepository
	sessions  *repository.SessionRepository
	screening *repository.ScreeningRepository
	graph     *service.WordGraphService
	analyzer  *service.MissedItemAnalyzer
	backup    *service.BackupService
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

// openStore connects to the configured database and applies migrations
func (c *commandContext) openStore(ctx context.Context, logOutput io.Writer) (*store, error) {
	if c.store != nil {
		return c.store, nil
	}

	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: logOutput})
	if err != nil {
		return nil, err
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	words := repository.NewWordRepository(db)
	sessions := repository.NewSessionRepository(db)
	screening := repository.NewScreeningRepository(db)
	graph := service.NewWordGraphService(db, words, logger)
	c.store = &store{
		db:        db,
		words:     words,
		sessions:  sessions,
		screening: screening,
		graph:     graph,
		analyzer:  service.NewMissedItemAnalyzer(sessions),
		backup:    service.NewBackupService(words, screening, graph, logger),
	}
	return c.store, nil
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.db.Close()
	c.store = nil
	return err
}
