// Package export flattens analysis results into one record per keyword and
// ships them to tabular, structured-file, and remote-database consumers.
package export

import (
	"time"

	"github.com/cognicore/vidgap/pkg/vidgap"
)

// Record is the flat export row for one analyzed keyword.
type Record struct {
	Keyword        string   `json:"keyword"`
	GapScore       float64  `json:"gap_score"`
	Tier           string   `json:"tier"`
	DemandScore    float64  `json:"demand_score"`
	SupplyScore    float64  `json:"supply_score"`
	TrendIndex     float64  `json:"trend_index"`
	TrendDirection float64  `json:"trend_direction"`
	AvgViewsTop10  int64    `json:"avg_views_top_10"`
	AvgChannelSize int64    `json:"avg_channel_size"`
	Videos30Days   int      `json:"videos_last_30_days"`
	SmallChannels  int      `json:"small_channels_in_top_10"`
	AvgAgeYears    float64  `json:"avg_video_age_years"`
	Suggestions    int      `json:"suggestions_count"`
	Insights       []string `json:"insights"`
	MissingSignals []string `json:"missing_signals,omitempty"`

	ShouldMake      *bool    `json:"should_make,omitempty"`
	Confidence      *float64 `json:"confidence,omitempty"`
	DecisionSummary string   `json:"decision_summary,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// NewRecord flattens an analysis.
func NewRecord(a *vidgap.Analysis) Record {
	r := Record{
		Keyword:        a.Keyword,
		GapScore:       a.Gap.Score,
		Tier:           string(a.Gap.Tier),
		DemandScore:    a.Demand.Score,
		SupplyScore:    a.Supply.Score,
		TrendIndex:     a.Metrics.TrendIndex,
		TrendDirection: a.Metrics.TrendDirection,
		AvgViewsTop10:  int64(a.Metrics.AvgViewsTop10),
		AvgChannelSize: int64(a.Metrics.AvgChannelSize),
		Videos30Days:   a.Metrics.VideosLast30Days,
		SmallChannels:  a.Metrics.SmallChannelCount,
		AvgAgeYears:    a.Metrics.AvgVideoAgeYears,
		Suggestions:    len(a.Suggestions),
		Insights:       a.Insights,
		MissingSignals: a.MissingSignals,
		AnalyzedAt:     a.AnalyzedAt,
	}
	if a.Decision != nil {
		should := a.Decision.ShouldMake
		conf := a.Decision.Confidence
		r.ShouldMake = &should
		r.Confidence = &conf
		r.DecisionSummary = a.Decision.Summary
	}
	return r
}

// NewRecords flattens a batch in order.
func NewRecords(analyses []*vidgap.Analysis) []Record {
	records := make([]Record, len(analyses))
	for i, a := range analyses {
		records[i] = NewRecord(a)
	}
	return records
}
