package score

import (
	"math"

	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

// Demand is the audience-interest score on a 0-10 scale, reported with the
// sub-scores that produced it.
type Demand struct {
	Score float64

	// TrendScore is the 0-10 trend sub-score before weighting.
	TrendScore float64

	// ViewScore is the 0-10 log-compressed view sub-score before
	// weighting. Raw view counts span orders of magnitude; the log keeps
	// a single viral outlier from saturating the score.
	ViewScore float64
}

// EstimateDemand derives the demand score. Monotonically non-decreasing in
// both trend index and average views; zero trend and zero views map to 0.
func EstimateDemand(m signal.Metrics, cfg config.Config) Demand {
	trendScore := m.TrendIndex / 10

	viewScore := 0.0
	if m.AvgViewsTop10 >= 1 {
		viewScore = math.Log10(m.AvgViewsTop10) / cfg.Demand.ViewLogCeiling * 10
	}
	viewScore = clamp(viewScore, 0, 10)

	s := trendScore*cfg.Demand.TrendWeight + viewScore*cfg.Demand.ViewWeight
	return Demand{
		Score:      clamp(s, 0, 10),
		TrendScore: trendScore,
		ViewScore:  viewScore,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
