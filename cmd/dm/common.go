package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/config"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/db"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/llm"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/narrator"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/parser"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/resolver"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/rules"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/srd"
)

func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}

func openStore(cfg config.Config) (*sql.DB, *db.Store, func(), error) {
	path := cfg.Store.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, func() {}, fmt.Errorf("create store dir: %w", err)
	}
	storeDB, err := db.Open(path)
	if err != nil {
		return nil, nil, func() {}, err
	}
	return storeDB, db.NewStore(storeDB), func() { _ = storeDB.Close() }, nil
}

// buildPipeline assembles the resolution pipeline the config asks for: the
// full parse/evaluate/narrate chain, or the reduced narration-only mode.
// The returned cache is shared with the caller for reference inspection.
func buildPipeline(ctx context.Context, cfg config.Config) (resolver.Pipeline, *srd.Cache, error) {
	cache := srd.NewCache(srd.NewClient(cfg.SRD), cfg.SRD.MaxRecords)

	narratorGen, err := llm.New(ctx, cfg.Models.Narrator)
	if err != nil {
		return nil, nil, fmt.Errorf("narrator model: %w", err)
	}

	if cfg.Pipeline.Mode == config.PipelineNarration {
		pipeline := resolver.NewNarrationOnly(narratorGen, cfg.Models.Narrator.Temperature, cfg.Models.Narrator.MaxTokens)
		return pipeline, cache, nil
	}

	parserGen, err := llm.New(ctx, cfg.Models.Parser)
	if err != nil {
		return nil, nil, fmt.Errorf("parser model: %w", err)
	}

	selector := parser.NewCategorySelector(parserGen, cfg.Models.Parser.Temperature, cfg.Models.Parser.MaxTokens)
	interpreter := parser.NewActionInterpreter(parserGen, selector, cache, cfg.Models.Parser.Temperature, cfg.Models.Parser.MaxTokens)
	evaluator := rules.NewEvaluator(cache)
	synthesizer := narrator.NewSynthesizer(narratorGen, cfg.Models.Narrator.Temperature, cfg.Models.Narrator.MaxTokens)

	return resolver.New(interpreter, evaluator, synthesizer), cache, nil
}
