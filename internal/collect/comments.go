package collect

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

type commentThreadsResponse struct {
	Items []struct {
		Snippet struct {
			TopLevelComment struct {
				Snippet struct {
					TextDisplay string `json:"textDisplay"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// FetchComments returns up to limit top-level comments for a video as plain
// text. The API serves display text as HTML, so markup is stripped here and
// downstream consumers only ever see clean snippets.
func (c *HTTPCollector) FetchComments(ctx context.Context, videoID string, limit int) ([]string, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var threads commentThreadsResponse
	err := c.dataAPIGet(ctx, "commentThreads", url.Values{
		"part":       {"snippet"},
		"videoId":    {videoID},
		"maxResults": {strconv.Itoa(limit)},
		"order":      {"relevance"},
		"textFormat": {"html"},
	}, quotaVideos, &threads)
	if err != nil {
		return nil, err
	}

	comments := make([]string, 0, len(threads.Items))
	for _, item := range threads.Items {
		text := stripHTML(item.Snippet.TopLevelComment.Snippet.TextDisplay)
		if text != "" {
			comments = append(comments, text)
		}
	}
	return comments, nil
}

// stripHTML flattens markup to text, turning <br> into spaces.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	tok := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.TextToken:
			b.Write(tok.Text())
		case html.SelfClosingTagToken, html.StartTagToken:
			name, _ := tok.TagName()
			if string(name) == "br" {
				b.WriteByte(' ')
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
