package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/slangspace/internal/cache"
	"github.com/ppiankov/slangspace/internal/llm"
	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/source"
	"github.com/ppiankov/slangspace/internal/store"
)

// app bundles what most commands need
type app struct {
	cfg   *model.Config
	log   *zap.Logger
	store *store.SQLiteStore
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &app{cfg: cfg, log: log}, nil
}

// openStore opens the slang collection lazily
func (a *app) openStore() (*store.SQLiteStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := store.Open(a.cfg.Store, a.log)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// newSearcher wires the collection, LLM provider, Reddit fetcher and result
// cache. A missing API key is not an error here: searches of unsaved terms
// fail with source.ErrNoProvider instead.
func (a *app) newSearcher() (*source.Searcher, error) {
	slangs, err := a.openStore()
	if err != nil {
		return nil, err
	}

	var provider llm.Provider
	if a.cfg.LLM.Provider != "" {
		provider, err = llm.NewProvider(llm.ConfigFromModel(a.cfg.LLM, a.cfg.Reddit))
		if err != nil {
			return nil, fmt.Errorf("create LLM provider: %w", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "⚠️  No LLM provider configured (set OPENROUTER_API_KEY to search new terms)\n")
	}

	var results *cache.Results
	if a.cfg.Cache.Enabled {
		results = cache.NewResults(cache.NewLayeredCache(a.cfg.Cache), 0)
	}

	return source.NewSearcher(slangs, provider, source.NewFetcher(a.cfg.Reddit, a.log), results, a.log), nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("close store", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

func banner(title string) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
}
