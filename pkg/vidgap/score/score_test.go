package score

import (
	"math"
	"testing"

	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

func TestEstimateDemand_ZeroInputsScoreZero(t *testing.T) {
	d := EstimateDemand(signal.Metrics{}, config.Default())
	if d.Score != 0 {
		t.Errorf("expected 0 for zero trend and zero views, got %f", d.Score)
	}
}

func TestEstimateDemand_Bounded(t *testing.T) {
	m := signal.Metrics{TrendIndex: 100, AvgViewsTop10: 1e12}
	d := EstimateDemand(m, config.Default())
	if d.Score < 0 || d.Score > 10 {
		t.Errorf("demand out of [0,10]: %f", d.Score)
	}
	if d.Score != 10 {
		t.Errorf("expected saturated demand 10, got %f", d.Score)
	}
}

func TestEstimateDemand_MonotonicInViews(t *testing.T) {
	cfg := config.Default()
	prev := -1.0
	for _, views := range []float64{0, 100, 10_000, 1_000_000, 100_000_000} {
		d := EstimateDemand(signal.Metrics{TrendIndex: 40, AvgViewsTop10: views}, cfg)
		if d.Score < prev {
			t.Errorf("demand decreased at views=%.0f: %f < %f", views, d.Score, prev)
		}
		prev = d.Score
	}
}

func TestEstimateSupply_ZeroInputsScoreZero(t *testing.T) {
	s := EstimateSupply(signal.Metrics{}, config.Default())
	if s.Score != 0 {
		t.Errorf("expected 0 for zero activity and zero channel size, got %f", s.Score)
	}
}

func TestEstimateSupply_MonotonicInVolume(t *testing.T) {
	cfg := config.Default()
	prev := -1.0
	for _, videos := range []int{0, 10, 100, 1000, 100000} {
		s := EstimateSupply(signal.Metrics{VideosLast30Days: videos, AvgChannelSize: 20000}, cfg)
		if s.Score < prev {
			t.Errorf("supply decreased at videos=%d: %f < %f", videos, s.Score, prev)
		}
		prev = s.Score
	}
}

func TestEstimateSupply_Bounded(t *testing.T) {
	s := EstimateSupply(signal.Metrics{VideosLast30Days: 1 << 30, AvgChannelSize: 1e12}, config.Default())
	if s.Score < 0 || s.Score > 10 {
		t.Errorf("supply out of [0,10]: %f", s.Score)
	}
}

// Worked scenario: strong demand against a moderately saturated field with
// stale competition and small incumbents.
func TestCalculateGap_WorkedScenario(t *testing.T) {
	cfg := config.Default()
	m := signal.Metrics{
		TrendIndex:        78,
		AvgViewsTop10:     1_234_567,
		VideosLast30Days:  127,
		AvgChannelSize:    45_000,
		AvgVideoAgeYears:  2.3,
		SmallChannelCount: 3,
	}

	d := EstimateDemand(m, cfg)
	if d.Score < 8.3 || d.Score > 8.4 {
		t.Errorf("demand = %f, want ~8.34", d.Score)
	}

	s := EstimateSupply(m, cfg)
	if s.Score < 7.0 || s.Score > 7.1 {
		t.Errorf("supply = %f, want ~7.04", s.Score)
	}

	g := CalculateGap(d, s, m, cfg)
	if g.FreshnessBonus != cfg.Gap.FreshnessBonus {
		t.Errorf("freshness bonus not applied: %f", g.FreshnessBonus)
	}
	if g.SmallChannelBonus != cfg.Gap.SmallChannelBonus {
		t.Errorf("small-channel bonus not applied: %f", g.SmallChannelBonus)
	}
	if g.Score < 8.1 || g.Score > 8.3 {
		t.Errorf("gap = %f, want ~8.18", g.Score)
	}
	if g.Tier != TierGolden {
		t.Errorf("tier = %q, want golden", g.Tier)
	}
	if g.Capped {
		t.Error("unexpected cap")
	}
}

func TestCalculateGap_ZeroSupplyFiniteAndCapped(t *testing.T) {
	cfg := config.Default()
	m := signal.Metrics{TrendIndex: 80, AvgViewsTop10: 500000, NoVideos: true}

	d := EstimateDemand(m, cfg)
	g := CalculateGap(d, Supply{}, m, cfg)

	if math.IsInf(g.Score, 0) || math.IsNaN(g.Score) {
		t.Fatalf("gap not finite: %f", g.Score)
	}
	if g.Score != cfg.Gap.Max {
		t.Errorf("expected cap %f for zero supply, got %f", cfg.Gap.Max, g.Score)
	}
	if !g.Capped {
		t.Error("expected Capped flag")
	}
}

func TestCalculateGap_RisingTrendBonus(t *testing.T) {
	cfg := config.Default()
	m := signal.Metrics{TrendIndex: 50, AvgViewsTop10: 10000, TrendDirection: 12, VideosLast30Days: 500, AvgChannelSize: 1e6}

	d := EstimateDemand(m, cfg)
	s := EstimateSupply(m, cfg)
	g := CalculateGap(d, s, m, cfg)
	if g.RisingTrendBonus != cfg.Gap.RisingTrendBonus {
		t.Errorf("rising-trend bonus not applied: %f", g.RisingTrendBonus)
	}

	m.TrendUnavailable = true
	g = CalculateGap(d, s, m, cfg)
	if g.RisingTrendBonus != 1 {
		t.Errorf("rising-trend bonus should not apply without trend data: %f", g.RisingTrendBonus)
	}
}

func TestTierFor_ExactBoundaries(t *testing.T) {
	cfg := config.Default().Gap

	cases := []struct {
		score float64
		want  Tier
	}{
		{0, TierOversaturated},
		{3.9999, TierOversaturated},
		{4.0, TierSolid},
		{5.5, TierSolid},
		{7.0, TierSolid},
		{7.0001, TierGolden},
		{10, TierGolden},
	}
	for _, c := range cases {
		if got := TierFor(c.score, cfg); got != c.want {
			t.Errorf("TierFor(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestCalculateGap_ReportsComponents(t *testing.T) {
	cfg := config.Default()
	m := signal.Metrics{TrendIndex: 30, AvgViewsTop10: 5000, VideosLast30Days: 40, AvgChannelSize: 3000}

	d := EstimateDemand(m, cfg)
	s := EstimateSupply(m, cfg)
	g := CalculateGap(d, s, m, cfg)

	if g.Demand != d || g.Supply != s {
		t.Error("gap must carry the demand and supply that produced it")
	}
	if g.BaseRatio == 0 {
		t.Error("base ratio missing from breakdown")
	}
}
