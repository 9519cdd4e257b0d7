package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

// Unofficial trends endpoints. The protocol is two-step: explore issues a
// per-widget token, widgetdata/multiline returns the interest series. Both
// responses carry an anti-hijacking prefix before the JSON.
var (
	trendsExploreURL  = "https://trends.google.com/trends/api/explore"
	trendsTimelineURL = "https://trends.google.com/trends/api/widgetdata/multiline"
)

// trendProperty scopes interest to video-platform search.
const trendProperty = "youtube"

type exploreWidget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type exploreResponse struct {
	Widgets []exploreWidget `json:"widgets"`
}

type timelineResponse struct {
	Default struct {
		TimelineData []struct {
			Time  string `json:"time"` // epoch seconds as string
			Value []int  `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

// FetchTrend returns the sparse interest series (0-100 per bucket) for a
// keyword. The window maps onto the provider's coarse timeframes; the
// default is twelve months.
func (c *HTTPCollector) FetchTrend(ctx context.Context, keyword string, window time.Duration) ([]signal.TrendPoint, error) {
	widget, err := c.exploreTimeseries(ctx, keyword, timeframeFor(window))
	if err != nil {
		return nil, err
	}
	if widget == nil {
		return nil, nil
	}
	return c.fetchTimeline(ctx, *widget)
}

func timeframeFor(window time.Duration) string {
	switch {
	case window == 0 || window > 90*24*time.Hour:
		return "today 12-m"
	case window > 30*24*time.Hour:
		return "today 3-m"
	default:
		return "today 1-m"
	}
}

func (c *HTTPCollector) exploreTimeseries(ctx context.Context, keyword, timeframe string) (*exploreWidget, error) {
	req := map[string]any{
		"comparisonItem": []map[string]any{
			{"keyword": keyword, "geo": "", "time": timeframe},
		},
		"category": 0,
		"property": trendProperty,
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"hl":  {c.cfg.Collect.Language},
		"tz":  {"0"},
		"req": {string(reqJSON)},
	}

	body, err := c.trendsGet(ctx, trendsExploreURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var explore exploreResponse
	if err := json.Unmarshal(stripAntiHijack(body), &explore); err != nil {
		return nil, collectionErr("trends", err)
	}

	for _, w := range explore.Widgets {
		if w.ID == "TIMESERIES" {
			widget := w
			return &widget, nil
		}
	}
	return nil, nil
}

func (c *HTTPCollector) fetchTimeline(ctx context.Context, widget exploreWidget) ([]signal.TrendPoint, error) {
	params := url.Values{
		"hl":    {c.cfg.Collect.Language},
		"tz":    {"0"},
		"req":   {string(widget.Request)},
		"token": {widget.Token},
	}

	body, err := c.trendsGet(ctx, trendsTimelineURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var timeline timelineResponse
	if err := json.Unmarshal(stripAntiHijack(body), &timeline); err != nil {
		return nil, collectionErr("trends", err)
	}

	points := make([]signal.TrendPoint, 0, len(timeline.Default.TimelineData))
	for _, d := range timeline.Default.TimelineData {
		if len(d.Value) == 0 {
			continue
		}
		secs, err := strconv.ParseInt(d.Time, 10, 64)
		if err != nil {
			continue
		}
		points = append(points, signal.TrendPoint{
			Time:     time.Unix(secs, 0).UTC(),
			Interest: d.Value[0],
		})
	}
	return points, nil
}

func (c *HTTPCollector) trendsGet(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.trendsLimit.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, collectionErr("trends", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, collectionErr("trends", fmt.Errorf("status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, collectionErr("trends", err)
	}
	return body, nil
}

// stripAntiHijack drops the )]}' guard line preceding the JSON body.
func stripAntiHijack(body []byte) []byte {
	if i := bytes.IndexByte(body, '\n'); i >= 0 && bytes.Contains(body[:i], []byte(")]}'")) {
		return body[i+1:]
	}
	return body
}
