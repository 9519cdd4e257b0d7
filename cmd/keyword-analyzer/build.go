package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/vidgap/internal/collect"
	"github.com/cognicore/vidgap/internal/llm"
	"github.com/cognicore/vidgap/pkg/vidgap"
	"github.com/cognicore/vidgap/pkg/vidgap/cache"
	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/decide"
)

type buildOptions struct {
	cachePath string
	noCache   bool
	withLLM   bool
	log       logrus.FieldLogger
}

// buildAnalyzer wires collectors, cache, and the optional completer into an
// Analyzer. The returned cleanup closes the cache.
func buildAnalyzer(ctx context.Context, cfg config.Config, opts buildOptions) (*vidgap.Analyzer, func(), error) {
	collector := vidgap.Collector(collect.New(collect.Options{
		Config: cfg,
		APIKey: os.Getenv("YOUTUBE_API_KEY"),
		Log:    opts.log,
	}))

	cleanup := func() {}
	if !opts.noCache && opts.cachePath != "" {
		store, err := cache.Open(ctx, opts.cachePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open signal cache: %w", err)
		}
		cleanup = func() { store.Close() }
		collector = collect.WithCache(collector, store, cfg, opts.log)
	}

	var completer decide.Completer
	if opts.withLLM {
		baseURL := os.Getenv("LLM_BASE_URL")
		model := os.Getenv("LLM_MODEL")
		if baseURL == "" || model == "" {
			cleanup()
			return nil, nil, fmt.Errorf("LLM_BASE_URL and LLM_MODEL required for decision synthesis")
		}
		completer = &llm.Client{
			BaseURL: baseURL,
			APIKey:  os.Getenv("LLM_API_KEY"),
			Model:   model,
		}
	}

	analyzer := vidgap.New(vidgap.Options{
		Collector: collector,
		Completer: completer,
		Config:    cfg,
		Log:       opts.log,
	})
	return analyzer, cleanup, nil
}
