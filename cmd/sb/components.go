package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/zulandar/switchboard/internal/agents"
	"github.com/zulandar/switchboard/internal/commerce"
	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/llm"
	"github.com/zulandar/switchboard/internal/notify"
	"github.com/zulandar/switchboard/internal/orchestrator"
)

const defaultConfigPath = "switchboard.yaml"

// loadConfig reads the config file, falling back to built-in defaults when
// the default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, err
}

// buildOrchestrator assembles the pipeline from config over an open
// database connection. The language model and commerce collaborators are
// wired only when configured.
func buildOrchestrator(cfg *config.Config, gormDB *gorm.DB) (*orchestrator.Orchestrator, error) {
	store, err := loadKnowledge(cfg)
	if err != nil {
		return nil, err
	}

	var commerceClient commerce.Client
	if cfg.Shopify.Domain != "" {
		commerceClient = commerce.NewShopify(cfg.Shopify)
	}

	var llmClient llm.Client
	if cfg.OpenAI.APIKey != "" {
		llmClient = llm.NewOpenAI(cfg.OpenAI)
	}

	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		return nil, err
	}

	registry := agents.NewRegistry(store,
		agents.NewSBDR(store),
		agents.NewAccountManager(store, commerceClient),
		agents.NewCustomerSuccess(store, cfg.Qualification.EngagementCeiling))

	return orchestrator.New(orchestrator.Opts{
		DB:         gormDB,
		Store:      store,
		Config:     cfg.Qualification,
		Registry:   registry,
		LLM:        llmClient,
		Notifier:   notifier,
		LLMTimeout: time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
	})
}

func loadKnowledge(cfg *config.Config) (*knowledge.Store, error) {
	if cfg.Knowledge.Path == "" {
		return knowledge.Default(), nil
	}
	store, err := knowledge.Load(cfg.Knowledge.Path)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	return store, nil
}
