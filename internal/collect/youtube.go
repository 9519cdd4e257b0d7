package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

var dataAPIBase = "https://www.googleapis.com/youtube/v3"

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
	PageInfo struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string    `json:"title"`
			ChannelID    string    `json:"channelId"`
			ChannelTitle string    `json:"channelTitle"`
			PublishedAt  time.Time `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type channelsResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			SubscriberCount       string `json:"subscriberCount"`
			HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// FetchTopVideos returns the ranked competing videos for a keyword with
// view statistics and, where the channel exposes it, subscriber counts.
// Hidden subscriber counts stay unknown rather than zero.
func (c *HTTPCollector) FetchTopVideos(ctx context.Context, keyword string, limit int) ([]signal.Video, error) {
	if limit <= 0 {
		limit = 10
	}

	var search searchResponse
	err := c.dataAPIGet(ctx, "search", url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"q":          {keyword},
		"maxResults": {strconv.Itoa(limit)},
		"order":      {"relevance"},
	}, quotaSearch, &search)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var details videosResponse
	err = c.dataAPIGet(ctx, "videos", url.Values{
		"part": {"snippet,statistics"},
		"id":   {strings.Join(ids, ",")},
	}, quotaVideos, &details)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]signal.Video, len(details.Items))
	channelIDs := make([]string, 0, len(details.Items))
	seenChannels := make(map[string]bool)
	for _, item := range details.Items {
		byID[item.ID] = signal.Video{
			ID:           item.ID,
			Title:        item.Snippet.Title,
			ChannelID:    item.Snippet.ChannelID,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
			Views:        parseCount(item.Statistics.ViewCount),
			Likes:        parseCount(item.Statistics.LikeCount),
			Comments:     parseCount(item.Statistics.CommentCount),
		}
		if !seenChannels[item.Snippet.ChannelID] {
			seenChannels[item.Snippet.ChannelID] = true
			channelIDs = append(channelIDs, item.Snippet.ChannelID)
		}
	}

	subscribers := c.fetchChannelSubscribers(ctx, channelIDs)

	videos := make([]signal.Video, 0, len(ids))
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			continue
		}
		if subs, ok := subscribers[v.ChannelID]; ok {
			v.Subscribers = subs
			v.SubscriberKnown = true
		}
		v.Rank = len(videos) + 1
		videos = append(videos, v)
	}
	return videos, nil
}

// FetchRecentVideoCount counts videos published for the keyword within the
// trailing window, using the provider-side result total.
func (c *HTTPCollector) FetchRecentVideoCount(ctx context.Context, keyword string, days int) (int, error) {
	after := time.Now().AddDate(0, 0, -days).UTC().Format(time.RFC3339)

	var search searchResponse
	err := c.dataAPIGet(ctx, "search", url.Values{
		"part":           {"snippet"},
		"type":           {"video"},
		"q":              {keyword},
		"maxResults":     {"1"},
		"publishedAfter": {after},
	}, quotaSearch, &search)
	if err != nil {
		return 0, err
	}
	return search.PageInfo.TotalResults, nil
}

// fetchChannelSubscribers resolves subscriber counts for a channel batch.
// Failures degrade to "unknown" for the whole batch; callers already treat
// unknown as excluded, not zero.
func (c *HTTPCollector) fetchChannelSubscribers(ctx context.Context, channelIDs []string) map[string]int64 {
	out := make(map[string]int64, len(channelIDs))
	if len(channelIDs) == 0 {
		return out
	}

	var channels channelsResponse
	err := c.dataAPIGet(ctx, "channels", url.Values{
		"part": {"statistics"},
		"id":   {strings.Join(channelIDs, ",")},
	}, quotaChannel, &channels)
	if err != nil {
		c.log.Warnf("channel lookup failed: %v", err)
		return out
	}

	for _, item := range channels.Items {
		if item.Statistics.HiddenSubscriberCount {
			continue
		}
		out[item.ID] = parseCount(item.Statistics.SubscriberCount)
	}
	return out
}

func (c *HTTPCollector) dataAPIGet(ctx context.Context, resource string, params url.Values, quotaCost int, out any) error {
	if c.apiKey == "" {
		return collectionErr(resource, fmt.Errorf("no API key configured"))
	}
	if err := c.videoLimit.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?%s", dataAPIBase, resource, params.Encode()), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return collectionErr(resource, err)
	}
	defer resp.Body.Close()

	c.trackQuota(quotaCost)

	if resp.StatusCode != http.StatusOK {
		return collectionErr(resource, fmt.Errorf("status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return collectionErr(resource, err)
	}
	return nil
}

// parseCount tolerates the API's string-encoded counters.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
