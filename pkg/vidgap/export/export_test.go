package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/vidgap/pkg/vidgap"
	"github.com/cognicore/vidgap/pkg/vidgap/decide"
	"github.com/cognicore/vidgap/pkg/vidgap/score"
	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

func testAnalysis() *vidgap.Analysis {
	return &vidgap.Analysis{
		ID:      "01J0TEST",
		Keyword: "home coffee roasting",
		Suggestions: []signal.Suggestion{
			{Keyword: "home coffee roasting for beginners", Position: 1},
		},
		Metrics: signal.Metrics{
			TrendIndex:        78,
			TrendDirection:    12.5,
			AvgViewsTop10:     1234567.8,
			AvgChannelSize:    45000.2,
			VideosLast30Days:  127,
			SmallChannelCount: 3,
			AvgVideoAgeYears:  2.3,
		},
		Demand:         score.Demand{Score: 8.34},
		Supply:         score.Supply{Score: 7.04},
		Gap:            score.Gap{Score: 8.18, Tier: score.TierGolden},
		Insights:       []string{"first insight", "second insight"},
		MissingSignals: []string{"trend"},
		AnalyzedAt:     time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestNewRecord(t *testing.T) {
	a := testAnalysis()
	r := NewRecord(a)

	if r.Keyword != "home coffee roasting" || r.GapScore != 8.18 {
		t.Errorf("basic fields wrong: %+v", r)
	}
	if r.Tier != "golden opportunity" {
		t.Errorf("tier = %q", r.Tier)
	}
	if r.AvgViewsTop10 != 1234567 {
		t.Errorf("avg views not truncated to int: %d", r.AvgViewsTop10)
	}
	if r.Suggestions != 1 {
		t.Errorf("suggestion count = %d", r.Suggestions)
	}
	if r.ShouldMake != nil || r.Confidence != nil {
		t.Error("decision fields must stay nil without a decision")
	}
}

func TestNewRecord_WithDecision(t *testing.T) {
	a := testAnalysis()
	a.Decision = &decide.Decision{ShouldMake: true, Confidence: 0.8, Summary: "Make it."}

	r := NewRecord(a)
	if r.ShouldMake == nil || !*r.ShouldMake {
		t.Error("should_make not carried over")
	}
	if r.Confidence == nil || *r.Confidence != 0.8 {
		t.Error("confidence not carried over")
	}
	if r.DecisionSummary != "Make it." {
		t.Errorf("summary = %q", r.DecisionSummary)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, NewRecords([]*vidgap.Analysis{testAnalysis()})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output not valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	if len(rows[0]) != len(rows[1]) {
		t.Fatalf("header has %d columns, row has %d", len(rows[0]), len(rows[1]))
	}

	header := rows[0]
	row := rows[1]
	col := func(name string) string {
		for i, h := range header {
			if h == name {
				return row[i]
			}
		}
		t.Fatalf("column %q missing from header %v", name, header)
		return ""
	}

	if col("keyword") != "home coffee roasting" {
		t.Errorf("keyword column = %q", col("keyword"))
	}
	if col("gap_score") != "8.18" {
		t.Errorf("gap_score column = %q", col("gap_score"))
	}
	if col("insights") != "first insight; second insight" {
		t.Errorf("insights column = %q", col("insights"))
	}
	if col("should_make") != "" {
		t.Errorf("should_make column should be empty, got %q", col("should_make"))
	}
	if col("analyzed_at") != "2026-09-01T10:30:00Z" {
		t.Errorf("analyzed_at column = %q", col("analyzed_at"))
	}
}

func TestExportCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := ExportCSV(path, NewRecords([]*vidgap.Analysis{testAnalysis()})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "keyword,") {
		t.Errorf("file does not start with header: %q", string(data[:40]))
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewRecords([]*vidgap.Analysis{testAnalysis()})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var env struct {
		ExportedAt time.Time        `json:"exported_at"`
		Total      int              `json:"total"`
		Results    []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if env.Total != 1 || len(env.Results) != 1 {
		t.Fatalf("envelope wrong: total=%d results=%d", env.Total, len(env.Results))
	}

	r := env.Results[0]
	if r["keyword"] != "home coffee roasting" {
		t.Errorf("keyword = %v", r["keyword"])
	}
	if r["avg_views_top_10"] != float64(1234567) {
		t.Errorf("avg_views_top_10 = %v", r["avg_views_top_10"])
	}
	if _, ok := r["should_make"]; ok {
		t.Error("should_make must be omitted without a decision")
	}
	if r["tier"] != "golden opportunity" {
		t.Errorf("tier = %v", r["tier"])
	}
}

func TestFilenames(t *testing.T) {
	if !strings.HasPrefix(CSVFilename("vidgap"), "vidgap_") || !strings.HasSuffix(CSVFilename("vidgap"), ".csv") {
		t.Errorf("csv filename = %q", CSVFilename("vidgap"))
	}
	if !strings.HasSuffix(JSONFilename("vidgap"), ".json") {
		t.Errorf("json filename = %q", JSONFilename("vidgap"))
	}
}
