package signal

import (
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/vidgap/pkg/vidgap/internalerr"
)

// Query is the immutable keyword being analyzed.
type Query struct {
	Keyword  string
	Language string
	Region   string

	// Window bounds which trend points count as current. Zero means the
	// whole series.
	Window time.Duration
}

// Suggestion is one autocomplete result.
type Suggestion struct {
	Keyword  string
	Position int // 1-based; lower = more popular
	Source   string
}

// TrendPoint is one bucket of a search-interest series (0-100 scale).
type TrendPoint struct {
	Time     time.Time
	Interest int
}

// Video is one ranked competing video.
type Video struct {
	ID           string
	Title        string
	ChannelID    string
	ChannelTitle string
	PublishedAt  time.Time
	Views        int64
	Likes        int64
	Comments     int64

	// Subscribers is only meaningful when SubscriberKnown is true.
	// Unknown channel sizes are excluded from averages, not zeroed.
	Subscribers     int64
	SubscriberKnown bool

	// Rank is the 1-based position in the search results.
	Rank int

	CommentSample []string
}

// AgeYears returns the video age at the given instant, in fractional years.
func (v Video) AgeYears(now time.Time) float64 {
	age := now.Sub(v.PublishedAt).Hours() / 24 / 365.25
	if age < 0 {
		return 0
	}
	return age
}

// EngagementRate returns likes per 100 views.
func (v Video) EngagementRate() float64 {
	if v.Views == 0 {
		return 0
	}
	return float64(v.Likes) / float64(v.Views) * 100
}

// Bundle is the read-only evidence for one query: everything the collection
// layer gathered, handed to the normalizer exactly once.
type Bundle struct {
	Query       Query
	Suggestions []Suggestion
	Trend       []TrendPoint
	TopVideos   []Video

	// SupplySample is an optional larger sample used for publishing
	// velocity. When empty, RecentVideoCount (a provider-side count over
	// the supply window) is used instead.
	SupplySample     []Video
	RecentVideoCount int

	// MissingSignals names fields the collection layer could not fill
	// (provider unreachable). The pipeline proceeds best-effort and the
	// tags travel with the result.
	MissingSignals []string
}

// Validate rejects structurally invalid bundles. Absent data is fine;
// negative counts and duplicate ranks are not.
func (b Bundle) Validate() error {
	if b.RecentVideoCount < 0 {
		return fmt.Errorf("%w: negative recent video count", internalerr.ErrInvalidSignal)
	}
	seen := make(map[int]bool, len(b.TopVideos))
	for _, v := range b.TopVideos {
		if v.Views < 0 || v.Likes < 0 || v.Comments < 0 {
			return fmt.Errorf("%w: negative counter on video %q", internalerr.ErrInvalidSignal, v.ID)
		}
		if v.SubscriberKnown && v.Subscribers < 0 {
			return fmt.Errorf("%w: negative subscriber count on video %q", internalerr.ErrInvalidSignal, v.ID)
		}
		if v.Rank != 0 {
			if v.Rank < 1 {
				return fmt.Errorf("%w: rank must be 1-based", internalerr.ErrInvalidSignal)
			}
			if seen[v.Rank] {
				return fmt.Errorf("%w: duplicate rank %d", internalerr.ErrInvalidSignal, v.Rank)
			}
			seen[v.Rank] = true
		}
	}
	return nil
}

const (
	minKeywordLen = 1
	maxKeywordLen = 100
)

// ValidateKeyword trims and validates a keyword, returning the sanitized
// form. Rejection happens here, before any estimation.
func ValidateKeyword(keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if len(keyword) < minKeywordLen {
		return "", fmt.Errorf("%w: keyword cannot be empty", internalerr.ErrInvalidKeyword)
	}
	if len(keyword) > maxKeywordLen {
		return "", fmt.Errorf("%w: keyword longer than %d characters", internalerr.ErrInvalidKeyword, maxKeywordLen)
	}
	if i := strings.IndexAny(keyword, `<>"{}[]\`); i >= 0 {
		return "", fmt.Errorf("%w: keyword contains reserved character %q", internalerr.ErrInvalidKeyword, keyword[i])
	}
	return keyword, nil
}

// ValidateKeywords validates a batch, deduplicating case-insensitively
// while preserving order and original casing.
func ValidateKeywords(keywords []string) ([]string, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: at least one keyword required", internalerr.ErrInvalidKeyword)
	}

	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		clean, err := ValidateKeyword(kw)
		if err != nil {
			return nil, err
		}
		lower := strings.ToLower(clean)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, clean)
	}
	return out, nil
}
