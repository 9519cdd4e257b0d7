package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/cognicore/vidgap/internal/collect"
	"github.com/cognicore/vidgap/internal/logger"
	"github.com/cognicore/vidgap/pkg/vidgap"
	"github.com/cognicore/vidgap/pkg/vidgap/cache"
	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/export"
)

func main() {
	var (
		seed       = flag.String("seed", "", "Seed keyword to expand (required)")
		minScore   = flag.Float64("min-score", 5.0, "Minimum gap score to include")
		maxResults = flag.Int("max", 20, "Maximum results to return")
		configPath = flag.String("config", "", "YAML config file (optional)")
		dbPath     = flag.String("db", "vidgap-cache.db", "Signal cache database path")
		noCache    = flag.Bool("no-cache", false, "Bypass the signal cache")
		csvPath    = flag.String("csv", "", "Export results to CSV file")
		logLevel   = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	if *seed == "" {
		log.Fatal("--seed required")
	}

	_ = godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	logg := logger.New(*logLevel)

	ctx := context.Background()

	collector := vidgap.Collector(collect.New(collect.Options{
		Config: cfg,
		APIKey: os.Getenv("YOUTUBE_API_KEY"),
		Log:    logg,
	}))
	if !*noCache {
		store, err := cache.Open(ctx, *dbPath)
		if err != nil {
			log.Fatalf("open signal cache: %v", err)
		}
		defer store.Close()
		collector = collect.WithCache(collector, store, cfg, logg)
	}

	analyzer := vidgap.New(vidgap.Options{Collector: collector, Config: cfg, Log: logg})

	logg.Infof("expanding seed keyword %q", *seed)
	results, err := analyzer.FindOpportunities(ctx, *seed, *minScore, *maxResults)
	if err != nil {
		log.Fatal(err)
	}

	if len(results) == 0 {
		fmt.Printf("No opportunities at or above gap score %.1f\n", *minScore)
		return
	}

	fmt.Printf("%-40s %9s %-20s %s\n", "KEYWORD", "GAP", "TIER", "TOP INSIGHT")
	for _, r := range results {
		topInsight := ""
		if len(r.Insights) > 0 {
			topInsight = r.Insights[0]
		}
		fmt.Printf("%-40s %9.2f %-20s %s\n", r.Keyword, r.Gap.Score, r.Gap.Tier, topInsight)
	}

	if *csvPath != "" {
		if err := export.ExportCSV(*csvPath, export.NewRecords(results)); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nCSV written to %s\n", *csvPath)
	}
}
