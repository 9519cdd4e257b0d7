package score

import (
	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

// Tier classifies a gap score for display.
type Tier string

const (
	TierGolden        Tier = "golden opportunity"
	TierSolid         Tier = "solid opportunity"
	TierOversaturated Tier = "oversaturated"
)

// Gap is the final opportunity score with full provenance: inputs, base
// ratio, each applied multiplier, and whether the cap kicked in. Never just
// the number.
type Gap struct {
	Score float64
	Tier  Tier

	Demand Demand
	Supply Supply

	// BaseRatio is (demand / max(epsilon, supply)) * scale before bonuses.
	BaseRatio float64

	// Applied multipliers; 1.0 means the bonus did not trigger.
	FreshnessBonus    float64
	SmallChannelBonus float64
	RisingTrendBonus  float64

	// Capped is set when the configured maximum truncated the score,
	// which is also how a zero supply stays finite.
	Capped bool
}

// CalculateGap combines demand and supply with the modifier bonuses.
func CalculateGap(d Demand, s Supply, m signal.Metrics, cfg config.Config) Gap {
	g := Gap{
		Demand:            d,
		Supply:            s,
		FreshnessBonus:    1,
		SmallChannelBonus: 1,
		RisingTrendBonus:  1,
	}

	supply := s.Score
	if supply < cfg.Gap.Epsilon {
		supply = cfg.Gap.Epsilon
	}
	g.BaseRatio = d.Score / supply * cfg.Gap.Scale

	if m.AvgVideoAgeYears > cfg.Gap.StaleAgeYears {
		g.FreshnessBonus = cfg.Gap.FreshnessBonus
	}
	if m.SmallChannelCount >= cfg.Gap.SmallChannelMin {
		g.SmallChannelBonus = cfg.Gap.SmallChannelBonus
	}
	if !m.TrendUnavailable && m.TrendDirection > cfg.Trend.RisingPct {
		g.RisingTrendBonus = cfg.Gap.RisingTrendBonus
	}

	g.Score = g.BaseRatio * g.FreshnessBonus * g.SmallChannelBonus * g.RisingTrendBonus
	if g.Score > cfg.Gap.Max {
		g.Score = cfg.Gap.Max
		g.Capped = true
	}
	if g.Score < 0 {
		g.Score = 0
	}

	g.Tier = TierFor(g.Score, cfg.Gap)
	return g
}

// TierFor maps a numeric gap score to its tier. Pure function of the
// number: a score of exactly GoldenMin is still solid, golden requires
// strictly more; SolidMin is inclusive.
func TierFor(score float64, cfg config.GapConfig) Tier {
	switch {
	case score > cfg.GoldenMin:
		return TierGolden
	case score >= cfg.SolidMin:
		return TierSolid
	default:
		return TierOversaturated
	}
}
