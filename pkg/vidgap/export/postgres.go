package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresExporter writes one row per analyzed keyword into a Postgres
// table, creating the table on first use.
type PostgresExporter struct {
	db    *sql.DB
	table string
}

// OpenPostgres connects and ensures the target table exists. The table name
// is interpolated into DDL/DML, so it must come from configuration, not
// user input.
func OpenPostgres(ctx context.Context, dsn, table string) (*PostgresExporter, error) {
	if table == "" {
		table = "keyword_analyses"
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id SERIAL PRIMARY KEY,
	keyword TEXT NOT NULL,
	gap_score DOUBLE PRECISION NOT NULL,
	tier TEXT NOT NULL,
	demand_score DOUBLE PRECISION NOT NULL,
	supply_score DOUBLE PRECISION NOT NULL,
	trend_index DOUBLE PRECISION NOT NULL,
	trend_direction DOUBLE PRECISION NOT NULL,
	avg_views_top_10 BIGINT NOT NULL,
	avg_channel_size BIGINT NOT NULL,
	videos_last_30_days INTEGER NOT NULL,
	small_channels_in_top_10 INTEGER NOT NULL,
	avg_video_age_years DOUBLE PRECISION NOT NULL,
	suggestions_count INTEGER NOT NULL,
	insights TEXT[] NOT NULL DEFAULT '{}',
	missing_signals TEXT[] NOT NULL DEFAULT '{}',
	should_make BOOLEAN,
	confidence DOUBLE PRECISION,
	decision_summary TEXT,
	analyzed_at TIMESTAMPTZ NOT NULL,
	UNIQUE (keyword, analyzed_at)
)`, pq.QuoteIdentifier(table))

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init postgres schema: %w", err)
	}

	return &PostgresExporter{db: db, table: table}, nil
}

// Close releases the connection pool.
func (e *PostgresExporter) Close() error {
	return e.db.Close()
}

// Export inserts the records, skipping rows already present for the same
// keyword and analysis time.
func (e *PostgresExporter) Export(ctx context.Context, records []Record) error {
	stmt := fmt.Sprintf(`
INSERT INTO %s (
	keyword, gap_score, tier, demand_score, supply_score,
	trend_index, trend_direction, avg_views_top_10, avg_channel_size,
	videos_last_30_days, small_channels_in_top_10, avg_video_age_years,
	suggestions_count, insights, missing_signals,
	should_make, confidence, decision_summary, analyzed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
ON CONFLICT (keyword, analyzed_at) DO NOTHING`, pq.QuoteIdentifier(e.table))

	for _, r := range records {
		_, err := e.db.ExecContext(ctx, stmt,
			r.Keyword, r.GapScore, r.Tier, r.DemandScore, r.SupplyScore,
			r.TrendIndex, r.TrendDirection, r.AvgViewsTop10, r.AvgChannelSize,
			r.Videos30Days, r.SmallChannels, r.AvgAgeYears,
			r.Suggestions, pq.Array(r.Insights), pq.Array(r.MissingSignals),
			r.ShouldMake, r.Confidence, nullableString(r.DecisionSummary), r.AnalyzedAt,
		)
		if err != nil {
			return fmt.Errorf("insert %q: %w", r.Keyword, err)
		}
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
