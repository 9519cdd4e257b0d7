package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cognicore/vidgap/internal/logger"
	"github.com/cognicore/vidgap/pkg/vidgap"
	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/export"
)

func main() {
	var (
		keywords    = flag.String("keywords", "", "Comma-separated keywords to analyze (required)")
		configPath  = flag.String("config", "", "YAML config file (optional, defaults apply)")
		dbPath      = flag.String("db", "vidgap-cache.db", "Signal cache database path")
		noCache     = flag.Bool("no-cache", false, "Bypass the signal cache")
		suggest     = flag.Bool("suggest", false, "Include autocomplete suggestions")
		expand      = flag.Bool("expand", false, "Expand suggestions with prefixes/suffixes")
		suggestOnly = flag.Bool("suggest-only", false, "Autocomplete-only mode: skip the quota-consuming estimators")
		decide      = flag.Bool("decide", false, "Run AI decision synthesis (needs LLM_* env)")
		channelSize = flag.String("channel-size", "small", "Your channel size, used by decision synthesis")
		csvPath     = flag.String("csv", "", "Export results to CSV file ('auto' for a timestamped name)")
		jsonPath    = flag.String("json", "", "Export results to JSON file ('auto' for a timestamped name)")
		pgTable     = flag.String("pg-table", "keyword_analyses", "Postgres table for -pg export")
		pgExport    = flag.Bool("pg", false, "Export to Postgres (needs POSTGRES_DSN env)")
		notion      = flag.Bool("notion", false, "Export to Notion (needs NOTION_API_KEY and NOTION_DATABASE_ID env)")
		logLevel    = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	if *keywords == "" {
		log.Fatal("--keywords required")
	}

	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	logg := logger.New(*logLevel)

	ctx := context.Background()
	analyzer, cleanup, err := buildAnalyzer(ctx, cfg, buildOptions{
		cachePath: *dbPath,
		noCache:   *noCache,
		withLLM:   *decide,
		log:       logg,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	kws := splitKeywords(*keywords)

	if *suggestOnly {
		for _, kw := range kws {
			suggestions, err := analyzer.Suggest(ctx, kw, *expand)
			if err != nil {
				log.Fatalf("suggest %q: %v", kw, err)
			}
			fmt.Printf("%s (%d suggestions)\n", kw, len(suggestions))
			for _, s := range suggestions {
				fmt.Printf("  %2d. %s\n", s.Position, s.Keyword)
			}
		}
		return
	}

	results, err := analyzer.AnalyzeKeywords(ctx, kws, vidgap.AnalyzeOptions{
		IncludeSuggestions: *suggest,
		ExpandSuggestions:  *expand,
		WithDecision:       *decide,
		ChannelSize:        *channelSize,
	}, func(current, total int, kw string) {
		logg.Infof("analyzing %d/%d: %s", current, total, kw)
	})
	if err != nil {
		log.Fatal(err)
	}

	displayResults(results)

	records := export.NewRecords(results)
	if *csvPath != "" {
		path := *csvPath
		if path == "auto" {
			path = export.CSVFilename("keywords_analysis")
		}
		if err := export.ExportCSV(path, records); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nCSV written to %s\n", path)
	}
	if *jsonPath != "" {
		path := *jsonPath
		if path == "auto" {
			path = export.JSONFilename("keywords_analysis")
		}
		if err := export.ExportJSON(path, records); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nJSON written to %s\n", path)
	}
	if *pgExport {
		dsn := os.Getenv("POSTGRES_DSN")
		if dsn == "" {
			log.Fatal("POSTGRES_DSN required for -pg")
		}
		exporter, err := export.OpenPostgres(ctx, dsn, *pgTable)
		if err != nil {
			log.Fatal(err)
		}
		defer exporter.Close()
		if err := exporter.Export(ctx, records); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\n%d rows exported to Postgres table %s\n", len(records), *pgTable)
	}
	if *notion {
		apiKey := os.Getenv("NOTION_API_KEY")
		dbID := os.Getenv("NOTION_DATABASE_ID")
		if apiKey == "" || dbID == "" {
			log.Fatal("NOTION_API_KEY and NOTION_DATABASE_ID required for -notion")
		}
		exporter := &export.NotionExporter{APIKey: apiKey, DatabaseID: dbID}
		if err := exporter.ExportAll(ctx, records); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\n%d pages exported to Notion\n", len(records))
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func splitKeywords(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func displayResults(results []*vidgap.Analysis) {
	for _, r := range results {
		fmt.Println()
		fmt.Printf("=== %s ===\n", r.Keyword)
		fmt.Printf("Gap Score: %.2f (%s)\n", r.Gap.Score, r.Gap.Tier)
		fmt.Printf("  demand %.2f (trend %.2f, views %.2f) / supply %.2f (volume %.2f, channels %.2f)\n",
			r.Demand.Score, r.Demand.TrendScore, r.Demand.ViewScore,
			r.Supply.Score, r.Supply.VolumeScore, r.Supply.ChannelScore)
		fmt.Printf("  bonuses: freshness x%.2f, small-channel x%.2f, rising-trend x%.2f\n",
			r.Gap.FreshnessBonus, r.Gap.SmallChannelBonus, r.Gap.RisingTrendBonus)
		fmt.Printf("  trend %.0f | avg views %.0f | videos/30d %d | avg channel %.0f | avg age %.1fy\n",
			r.Metrics.TrendIndex, r.Metrics.AvgViewsTop10, r.Metrics.VideosLast30Days,
			r.Metrics.AvgChannelSize, r.Metrics.AvgVideoAgeYears)
		for _, ins := range r.Insights {
			fmt.Printf("  * %s\n", ins)
		}
		if r.Partial() {
			fmt.Printf("  (partial result, missing: %s)\n", strings.Join(r.MissingSignals, ", "))
		}
		if r.Decision != nil {
			verdict := "NO"
			if r.Decision.ShouldMake {
				verdict = "GO"
			}
			fmt.Printf("  Decision: %s (confidence %.2f) - %s\n", verdict, r.Decision.Confidence, r.Decision.Summary)
			for _, t := range r.Decision.Titles {
				fmt.Printf("    title #%d: %s\n", t.AppealRank, t.Title)
			}
		}
	}
}
