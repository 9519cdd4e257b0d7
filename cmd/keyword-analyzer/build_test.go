package main

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cognicore/vidgap/internal/logger"
	"github.com/cognicore/vidgap/pkg/vidgap/config"
)

func TestSplitKeywords(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" go tutorial ,  rust ", []string{"go tutorial", "rust"}},
		{"solo", []string{"solo"}},
		{"a,,b,", []string{"a", "b"}},
	}
	for _, c := range cases {
		if got := splitKeywords(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitKeywords(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gap.GoldenMin != config.Default().Gap.GoldenMin {
		t.Error("defaults not applied")
	}
}

func TestBuildAnalyzer(t *testing.T) {
	ctx := context.Background()
	analyzer, cleanup, err := buildAnalyzer(ctx, config.Default(), buildOptions{
		cachePath: filepath.Join(t.TempDir(), "cache.db"),
		log:       logger.NewQuiet(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if analyzer == nil {
		t.Fatal("nil analyzer")
	}
}

func TestBuildAnalyzer_NoCache(t *testing.T) {
	ctx := context.Background()
	analyzer, cleanup, err := buildAnalyzer(ctx, config.Default(), buildOptions{
		noCache: true,
		log:     logger.NewQuiet(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if analyzer == nil {
		t.Fatal("nil analyzer")
	}
}

func TestBuildAnalyzer_LLMNeedsEnv(t *testing.T) {
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("LLM_MODEL", "")

	_, _, err := buildAnalyzer(context.Background(), config.Default(), buildOptions{
		noCache: true,
		withLLM: true,
		log:     logger.NewQuiet(),
	})
	if err == nil {
		t.Fatal("expected error without LLM environment")
	}
}

func TestBuildAnalyzer_LLMFromEnv(t *testing.T) {
	t.Setenv("LLM_BASE_URL", "https://api.test/v1/chat/completions")
	t.Setenv("LLM_MODEL", "gpt-test")

	analyzer, cleanup, err := buildAnalyzer(context.Background(), config.Default(), buildOptions{
		noCache: true,
		withLLM: true,
		log:     logger.NewQuiet(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if analyzer == nil {
		t.Fatal("nil analyzer")
	}
}
