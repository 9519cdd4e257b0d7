package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{
	"keyword", "gap_score", "tier", "demand_score", "supply_score",
	"trend_index", "trend_direction", "avg_views_top_10", "avg_channel_size",
	"videos_last_30_days", "small_channels_in_top_10", "avg_video_age_years",
	"suggestions_count", "insights", "missing_signals",
	"should_make", "confidence", "decision_summary", "analyzed_at",
}

// WriteCSV writes records as CSV with a header row. List fields are joined
// with "; " so the file stays one row per keyword.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Keyword,
			formatFloat(r.GapScore),
			r.Tier,
			formatFloat(r.DemandScore),
			formatFloat(r.SupplyScore),
			formatFloat(r.TrendIndex),
			formatFloat(r.TrendDirection),
			strconv.FormatInt(r.AvgViewsTop10, 10),
			strconv.FormatInt(r.AvgChannelSize, 10),
			strconv.Itoa(r.Videos30Days),
			strconv.Itoa(r.SmallChannels),
			formatFloat(r.AvgAgeYears),
			strconv.Itoa(r.Suggestions),
			strings.Join(r.Insights, "; "),
			strings.Join(r.MissingSignals, "; "),
			formatBoolPtr(r.ShouldMake),
			formatFloatPtr(r.Confidence),
			r.DecisionSummary,
			r.AnalyzedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV writes records to a file.
func ExportCSV(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, records); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}

// CSVFilename returns a timestamped filename for a batch.
func CSVFilename(prefix string) string {
	return fmt.Sprintf("%s_%s.csv", prefix, time.Now().Format("20060102_150405"))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatBoolPtr(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
