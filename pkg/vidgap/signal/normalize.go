package signal

import (
	"fmt"
	"time"

	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/internalerr"
)

// topRankCount is how many ranked videos feed the top-of-results averages.
const topRankCount = 10

// Metrics is the canonical, unit-consistent measurement set derived from a
// bundle. Derived once per query; downstream stages recompute rather than
// patch.
type Metrics struct {
	// TrendIndex is the most recent valid point of the interest series
	// within the query window, 0-100. Zero when TrendUnavailable.
	TrendIndex float64

	// TrendDirection is the half-over-half percentage change of the
	// interest series. Positive = rising.
	TrendDirection float64

	AvgViewsTop10     float64
	AvgChannelSize    float64
	AvgEngagementRate float64
	VideosLast30Days  int
	AvgVideoAgeYears  float64

	// SmallChannelCount counts ranked videos whose channel size is known
	// and below the configured threshold.
	SmallChannelCount int

	// KnownChannelCount is how many ranked videos had a known channel
	// size (the denominator behind AvgChannelSize).
	KnownChannelCount int

	// TrendUnavailable is set when the interest series held no valid
	// point; TrendIndex defaults to 0 rather than erroring.
	TrendUnavailable bool

	// NoVideos is set when the ranked video list was empty. Estimators
	// treat "no competition found" as signal, not failure.
	NoVideos bool
}

// Normalize converts a raw bundle into Metrics. Pure: identical inputs give
// identical outputs, and the bundle is never mutated.
//
// The only error besides invalid data is a wrapped ErrInsufficientData for
// an empty video list; the returned Metrics are still fully populated, so
// callers choose between proceeding with demand 0 or aborting.
func Normalize(b Bundle, cfg config.Config, now time.Time) (Metrics, error) {
	if err := b.Validate(); err != nil {
		return Metrics{}, err
	}

	var m Metrics

	m.TrendIndex, m.TrendUnavailable = latestInterest(b.Trend, b.Query.Window, now)
	m.TrendDirection = trendDirection(b.Trend)
	m.VideosLast30Days = recentVideoCount(b, cfg.Supply.WindowDays, now)

	top := b.TopVideos
	if len(top) > topRankCount {
		top = top[:topRankCount]
	}

	if len(top) == 0 {
		m.NoVideos = true
		return m, fmt.Errorf("%w: no competing videos for %q", internalerr.ErrInsufficientData, b.Query.Keyword)
	}

	var views, engagement, ageYears float64
	var subsSum float64
	for _, v := range top {
		views += float64(v.Views)
		engagement += v.EngagementRate()
		ageYears += v.AgeYears(now)
		if v.SubscriberKnown {
			subsSum += float64(v.Subscribers)
			m.KnownChannelCount++
			if v.Subscribers < cfg.Supply.SmallChannelSubscribers {
				m.SmallChannelCount++
			}
		}
	}

	n := float64(len(top))
	m.AvgViewsTop10 = views / n
	m.AvgEngagementRate = engagement / n
	m.AvgVideoAgeYears = ageYears / n
	if m.KnownChannelCount > 0 {
		m.AvgChannelSize = subsSum / float64(m.KnownChannelCount)
	}

	return m, nil
}

// latestInterest picks the most recent valid point (0-100) within the
// window. Returns (0, true) when nothing qualifies.
func latestInterest(series []TrendPoint, window time.Duration, now time.Time) (float64, bool) {
	var best TrendPoint
	found := false
	for _, p := range series {
		if p.Interest < 0 || p.Interest > 100 {
			continue
		}
		if window > 0 && now.Sub(p.Time) > window {
			continue
		}
		if !found || p.Time.After(best.Time) {
			best = p
			found = true
		}
	}
	if !found {
		return 0, true
	}
	return float64(best.Interest), false
}

// trendDirection compares the mean of the second half of the series against
// the first half, as a percentage change.
func trendDirection(series []TrendPoint) float64 {
	valid := make([]float64, 0, len(series))
	for _, p := range series {
		if p.Interest >= 0 && p.Interest <= 100 {
			valid = append(valid, float64(p.Interest))
		}
	}
	if len(valid) < 2 {
		return 0
	}

	mid := len(valid) / 2
	first := mean(valid[:mid])
	second := mean(valid[mid:])
	if first == 0 {
		return 0
	}
	return (second - first) / first * 100
}

func recentVideoCount(b Bundle, windowDays int, now time.Time) int {
	if len(b.SupplySample) == 0 {
		return b.RecentVideoCount
	}
	cutoff := now.AddDate(0, 0, -windowDays)
	count := 0
	for _, v := range b.SupplySample {
		if !v.PublishedAt.Before(cutoff) {
			count++
		}
	}
	return count
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
