package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// NotionExporter pushes one page per analyzed keyword into a Notion
// database.
type NotionExporter struct {
	APIKey     string
	DatabaseID string

	HTTPClient *http.Client
}

const (
	notionBaseURL = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"
)

type notionError struct {
	Object  string `json:"object"`
	Message string `json:"message"`
}

// CreateDatabase creates the target database under a parent page and
// returns its ID. Call once during setup; subsequent exports reuse the ID.
func (e *NotionExporter) CreateDatabase(ctx context.Context, parentPageID, title string) (string, error) {
	body := map[string]any{
		"parent": map[string]any{"type": "page_id", "page_id": parentPageID},
		"title":  []map[string]any{{"type": "text", "text": map[string]any{"content": title}}},
		"properties": map[string]any{
			"Keyword":          map[string]any{"title": map[string]any{}},
			"Gap Score":        map[string]any{"number": map[string]any{"format": "number"}},
			"Tier":             map[string]any{"select": map[string]any{"options": tierOptions()}},
			"Demand":           map[string]any{"number": map[string]any{"format": "number"}},
			"Supply":           map[string]any{"number": map[string]any{"format": "number"}},
			"Trend Index":      map[string]any{"number": map[string]any{"format": "number"}},
			"Videos/30d":       map[string]any{"number": map[string]any{"format": "number"}},
			"Avg Channel Size": map[string]any{"number": map[string]any{"format": "number"}},
			"Insights":         map[string]any{"rich_text": map[string]any{}},
			"Analyzed At":      map[string]any{"date": map[string]any{}},
		},
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := e.post(ctx, "/databases", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ExportRecord creates one page for the record.
func (e *NotionExporter) ExportRecord(ctx context.Context, r Record) error {
	props := map[string]any{
		"Keyword": map[string]any{
			"title": []map[string]any{{"text": map[string]any{"content": r.Keyword}}},
		},
		"Gap Score":        numberProp(r.GapScore),
		"Tier":             map[string]any{"select": map[string]any{"name": r.Tier}},
		"Demand":           numberProp(r.DemandScore),
		"Supply":           numberProp(r.SupplyScore),
		"Trend Index":      numberProp(r.TrendIndex),
		"Videos/30d":       numberProp(float64(r.Videos30Days)),
		"Avg Channel Size": numberProp(float64(r.AvgChannelSize)),
		"Insights": map[string]any{
			"rich_text": []map[string]any{{"text": map[string]any{"content": truncate(strings.Join(r.Insights, "; "), 2000)}}},
		},
		"Analyzed At": map[string]any{
			"date": map[string]any{"start": r.AnalyzedAt.Format(time.RFC3339)},
		},
	}

	body := map[string]any{
		"parent":     map[string]any{"database_id": e.DatabaseID},
		"properties": props,
	}
	return e.post(ctx, "/pages", body, nil)
}

// ExportAll pushes the records in order, stopping on the first failure.
func (e *NotionExporter) ExportAll(ctx context.Context, records []Record) error {
	for _, r := range records {
		if err := e.ExportRecord(ctx, r); err != nil {
			return fmt.Errorf("export %q to notion: %w", r.Keyword, err)
		}
	}
	return nil
}

func (e *NotionExporter) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notionBaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := e.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var nerr notionError
		if err := json.NewDecoder(resp.Body).Decode(&nerr); err == nil && nerr.Message != "" {
			return fmt.Errorf("notion: %s (status %d)", nerr.Message, resp.StatusCode)
		}
		return fmt.Errorf("notion: status %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (e *NotionExporter) httpClient() *http.Client {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func numberProp(v float64) map[string]any {
	return map[string]any{"number": v}
}

func tierOptions() []map[string]any {
	return []map[string]any{
		{"name": "golden opportunity", "color": "green"},
		{"name": "solid opportunity", "color": "yellow"},
		{"name": "oversaturated", "color": "red"},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
