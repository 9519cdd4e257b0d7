// Package insight derives short human-readable observations from normalized
// metrics. Rule-based, not scoring: each rule checks one or two metrics and
// either emits one fixed-template sentence or stays silent. Rules run in a
// fixed priority order, so output order is stable; an empty list is valid.
package insight

import (
	"fmt"

	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

type rule func(m signal.Metrics, cfg config.Config) (string, bool)

// Rule order is part of the contract; append only.
var rules = []rule{
	staleCompetition,
	smallChannelWins,
	trendDirection,
	highEngagement,
	lowUploadVolume,
}

// Generate runs every rule once over the metrics.
func Generate(m signal.Metrics, cfg config.Config) []string {
	var out []string
	for _, r := range rules {
		if s, ok := r(m, cfg); ok {
			out = append(out, s)
		}
	}
	return out
}

func staleCompetition(m signal.Metrics, cfg config.Config) (string, bool) {
	if m.NoVideos || m.AvgVideoAgeYears <= cfg.Gap.StaleAgeYears {
		return "", false
	}
	return fmt.Sprintf("Top 10 dominated by old videos (avg %.1f years) - opportunity for fresh content!",
		m.AvgVideoAgeYears), true
}

func smallChannelWins(m signal.Metrics, cfg config.Config) (string, bool) {
	if m.SmallChannelCount < 1 {
		return "", false
	}
	return fmt.Sprintf("%d small channels (<%d subs) in Top 10 - you can compete!",
		m.SmallChannelCount, cfg.Supply.SmallChannelSubscribers), true
}

func trendDirection(m signal.Metrics, cfg config.Config) (string, bool) {
	if m.TrendUnavailable {
		return "", false
	}
	switch {
	case m.TrendDirection > cfg.Trend.RisingPct:
		return fmt.Sprintf("Trend: rising (+%.0f%% vs earlier period)", m.TrendDirection), true
	case m.TrendDirection < cfg.Trend.FallingPct:
		return fmt.Sprintf("Trend: falling (%.0f%% vs earlier period)", m.TrendDirection), true
	}
	return "", false
}

func highEngagement(m signal.Metrics, cfg config.Config) (string, bool) {
	if m.NoVideos || m.AvgEngagementRate <= cfg.Insight.HighEngagementPct {
		return "", false
	}
	return fmt.Sprintf("High engagement rate (%.1f%%) - audience is active!", m.AvgEngagementRate), true
}

func lowUploadVolume(m signal.Metrics, cfg config.Config) (string, bool) {
	if m.VideosLast30Days >= cfg.Insight.LowUploadVolume {
		return "", false
	}
	return fmt.Sprintf("Low upload volume (%d videos/month) - not saturated!", m.VideosLast30Days), true
}
