package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/vidgap/pkg/vidgap/internalerr"
)

// Config holds every threshold and weight used by the analysis pipeline.
// Constructed once per run and read-only afterwards; every entry point
// receives it explicitly.
type Config struct {
	Demand   DemandConfig   `yaml:"demand"`
	Supply   SupplyConfig   `yaml:"supply"`
	Gap      GapConfig      `yaml:"gap"`
	Trend    TrendConfig    `yaml:"trend"`
	Insight  InsightConfig  `yaml:"insight"`
	Collect  CollectConfig  `yaml:"collect"`
	Decision DecisionConfig `yaml:"decision"`
	Cache    CacheConfig    `yaml:"cache"`
}

// DemandConfig controls the demand score (0-10).
type DemandConfig struct {
	// TrendWeight and ViewWeight combine the trend and view sub-scores.
	// Defaults: 0.4 / 0.6.
	TrendWeight float64 `yaml:"trend_weight"`
	ViewWeight  float64 `yaml:"view_weight"`

	// ViewLogCeiling is the log10 reference ceiling for view counts.
	// Default 7 (10M views saturates the view sub-score).
	ViewLogCeiling float64 `yaml:"view_log_ceiling"`
}

// SupplyConfig controls the supply score (0-10).
type SupplyConfig struct {
	// VolumeWeight and ChannelWeight combine publishing velocity and
	// incumbent channel size. Defaults: 0.5 / 0.5.
	VolumeWeight  float64 `yaml:"volume_weight"`
	ChannelWeight float64 `yaml:"channel_weight"`

	// VolumeLogScale multiplies log10(videos30+1). Default 3.
	VolumeLogScale float64 `yaml:"volume_log_scale"`

	// ChannelLogCeiling is the log10 reference ceiling for subscriber
	// counts. Default 6 (1M subscribers saturates the channel sub-score).
	ChannelLogCeiling float64 `yaml:"channel_log_ceiling"`

	// SmallChannelSubscribers is the "small channel" threshold.
	// Default 10000.
	SmallChannelSubscribers int64 `yaml:"small_channel_subscribers"`

	// WindowDays is the lookback for publishing velocity. Default 30.
	WindowDays int `yaml:"window_days"`
}

// GapConfig controls the gap score and tier boundaries.
type GapConfig struct {
	// Epsilon is the floor applied to supply before dividing, so a zero
	// supply yields a large but finite score. Default 0.1.
	Epsilon float64 `yaml:"epsilon"`

	// Scale multiplies the demand/supply ratio. Default 5.
	Scale float64 `yaml:"scale"`

	// Max caps the final score. Default 10.
	Max float64 `yaml:"max"`

	// StaleAgeYears is the competing-content age above which the
	// freshness bonus applies. Default 1.
	StaleAgeYears float64 `yaml:"stale_age_years"`

	// FreshnessBonus applies when average competitor age exceeds
	// StaleAgeYears. Default 1.2.
	FreshnessBonus float64 `yaml:"freshness_bonus"`

	// SmallChannelMin is the minimum small channels in the top 10 for
	// SmallChannelBonus. Defaults: 2 and 1.15.
	SmallChannelMin   int     `yaml:"small_channel_min"`
	SmallChannelBonus float64 `yaml:"small_channel_bonus"`

	// RisingTrendBonus applies when the trend direction exceeds the
	// rising threshold. Default 1.1.
	RisingTrendBonus float64 `yaml:"rising_trend_bonus"`

	// SolidMin and GoldenMin are the tier boundaries. A score of exactly
	// GoldenMin is still "solid"; golden requires strictly more.
	// Defaults: 4 and 7.
	SolidMin  float64 `yaml:"solid_min"`
	GoldenMin float64 `yaml:"golden_min"`
}

// TrendConfig controls trend interpretation.
type TrendConfig struct {
	// RisingPct and FallingPct classify the half-over-half direction
	// change. Defaults: +5 / -5.
	RisingPct  float64 `yaml:"rising_pct"`
	FallingPct float64 `yaml:"falling_pct"`
}

// InsightConfig controls the rule-based insight triggers.
type InsightConfig struct {
	// HighEngagementPct marks an audience as active. Default 5.
	HighEngagementPct float64 `yaml:"high_engagement_pct"`

	// LowUploadVolume marks a niche as unsaturated. Default 50/month.
	LowUploadVolume int `yaml:"low_upload_volume"`
}

// CollectConfig controls the collection layer.
type CollectConfig struct {
	Language string `yaml:"language"`
	Region   string `yaml:"region"`

	// TopVideoLimit is how many ranked videos to fetch. Default 10.
	TopVideoLimit int `yaml:"top_video_limit"`

	// MaxSuggestions bounds opportunity expansion. Default 30.
	MaxSuggestions int `yaml:"max_suggestions"`

	// RequestsPerMinute throttles each upstream provider. Default 60.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// DecisionConfig controls the decision synthesizer.
type DecisionConfig struct {
	// TimeoutSeconds bounds each text-completion call. Default 30.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// MaxRetries is how many times a malformed completion is retried
	// before the caller falls back to the score-only path. Default 2.
	MaxRetries int `yaml:"max_retries"`

	// CommentSample caps how many comments go into sentiment analysis.
	// Default 100.
	CommentSample int `yaml:"comment_sample"`

	// TitleCount is how many title candidates to request. Default 5.
	TitleCount int `yaml:"title_count"`
}

// CacheConfig holds per-namespace TTLs in hours.
type CacheConfig struct {
	SearchTTLHours       int `yaml:"search_ttl_hours"`
	VideoTTLHours        int `yaml:"video_ttl_hours"`
	ChannelTTLHours      int `yaml:"channel_ttl_hours"`
	TrendsTTLHours       int `yaml:"trends_ttl_hours"`
	AutocompleteTTLHours int `yaml:"autocomplete_ttl_hours"`
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Demand: DemandConfig{
			TrendWeight:    0.4,
			ViewWeight:     0.6,
			ViewLogCeiling: 7,
		},
		Supply: SupplyConfig{
			VolumeWeight:            0.5,
			ChannelWeight:           0.5,
			VolumeLogScale:          3,
			ChannelLogCeiling:       6,
			SmallChannelSubscribers: 10000,
			WindowDays:              30,
		},
		Gap: GapConfig{
			Epsilon:           0.1,
			Scale:             5,
			Max:               10,
			StaleAgeYears:     1,
			FreshnessBonus:    1.2,
			SmallChannelMin:   2,
			SmallChannelBonus: 1.15,
			RisingTrendBonus:  1.1,
			SolidMin:          4,
			GoldenMin:         7,
		},
		Trend: TrendConfig{
			RisingPct:  5,
			FallingPct: -5,
		},
		Insight: InsightConfig{
			HighEngagementPct: 5,
			LowUploadVolume:   50,
		},
		Collect: CollectConfig{
			Language:          "en",
			Region:            "us",
			TopVideoLimit:     10,
			MaxSuggestions:    30,
			RequestsPerMinute: 60,
		},
		Decision: DecisionConfig{
			TimeoutSeconds: 30,
			MaxRetries:     2,
			CommentSample:  100,
			TitleCount:     5,
		},
		Cache: CacheConfig{
			SearchTTLHours:       12,
			VideoTTLHours:        24,
			ChannelTTLHours:      48,
			TrendsTTLHours:       24,
			AutocompleteTTLHours: 24,
		},
	}
}

// Load reads a YAML file over the defaults, so a partial file only
// overrides what it names.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects configurations that would break score invariants.
func (c Config) Validate() error {
	if c.Demand.TrendWeight < 0 || c.Demand.ViewWeight < 0 {
		return fmt.Errorf("%w: demand weights must be non-negative", internalerr.ErrInvalidConfig)
	}
	if c.Demand.ViewLogCeiling <= 0 {
		return fmt.Errorf("%w: view log ceiling must be positive", internalerr.ErrInvalidConfig)
	}
	if c.Supply.VolumeWeight < 0 || c.Supply.ChannelWeight < 0 {
		return fmt.Errorf("%w: supply weights must be non-negative", internalerr.ErrInvalidConfig)
	}
	if c.Supply.ChannelLogCeiling <= 0 {
		return fmt.Errorf("%w: channel log ceiling must be positive", internalerr.ErrInvalidConfig)
	}
	if c.Supply.SmallChannelSubscribers < 0 {
		return fmt.Errorf("%w: small channel threshold must be non-negative", internalerr.ErrInvalidConfig)
	}
	if c.Gap.Epsilon <= 0 {
		return fmt.Errorf("%w: gap epsilon must be positive", internalerr.ErrInvalidConfig)
	}
	if c.Gap.Max <= 0 {
		return fmt.Errorf("%w: gap max must be positive", internalerr.ErrInvalidConfig)
	}
	if c.Gap.SolidMin > c.Gap.GoldenMin {
		return fmt.Errorf("%w: tier boundaries out of order", internalerr.ErrInvalidConfig)
	}
	if c.Gap.FreshnessBonus <= 0 || c.Gap.SmallChannelBonus <= 0 || c.Gap.RisingTrendBonus <= 0 {
		return fmt.Errorf("%w: bonus multipliers must be positive", internalerr.ErrInvalidConfig)
	}
	if c.Supply.WindowDays <= 0 {
		return fmt.Errorf("%w: supply window must be positive", internalerr.ErrInvalidConfig)
	}
	return nil
}
