package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/MMMZZYz/aitest/internal/config"
	"github.com/MMMZZYz/aitest/internal/extract"
	"github.com/MMMZZYz/aitest/internal/llm"
	"github.com/MMMZZYz/aitest/internal/outline"
	"github.com/MMMZZYz/aitest/internal/storage"
)

// Components is a fully wired pipeline built from configuration.
type Components struct {
	Runner    *Runner
	Generator *llm.Generator
	Extractor *extract.Extractor
	// Cache is nil when caching is disabled.
	Cache *storage.SQLiteStore
}

// Build creates the model client, extractor and optional case cache
// described by cfg and wires them into a Runner.
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tables, err := outline.ParseTableMode(cfg.MindMap.Tables)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(ctx, llm.Options{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	gen := llm.NewGenerator(client, llm.GeneratorOptions{
		VisionModel:     cfg.LLM.VisionModel,
		CasesModel:      cfg.CasesModel(),
		Temperature:     &cfg.LLM.Temperature,
		MaxAttempts:     cfg.LLM.MaxAttempts,
		BusinessContext: cfg.BusinessContext(),
	})
	ext := extract.New(gen)

	c := &Components{Generator: gen, Extractor: ext}

	var cache storage.CaseStore
	if cfg.Cases.Cache != "" {
		store, err := storage.NewSQLiteStore(cfg.Cases.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to open case cache: %w", err)
		}
		c.Cache = store
		cache = store
	}

	c.Runner = NewRunner(gen, ext, cache, Options{
		OutputDir:     cfg.Output.Dir,
		SavePrompt:    cfg.Output.SavePrompt,
		RootTitle:     cfg.MindMap.RootTitle,
		Tables:        tables,
		Rules:         cfg.Modules,
		Placeholders:  cfg.MindMap.Placeholders,
		Template:      cfg.Cases.Template,
		TemplateSheet: cfg.Cases.Sheet,
		Concurrency:   cfg.Cases.Concurrency,
		Model:         cfg.CasesModel(),
	})
	return c, nil
}

func (c *Components) Close() {
	if c == nil || c.Cache == nil {
		return
	}
	if err := c.Cache.Close(); err != nil {
		log.Printf("⚠️ failed to close case cache: %v", err)
	}
}
