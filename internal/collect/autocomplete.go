package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

// autocompleteURL is the public suggestion endpoint; no key required.
var autocompleteURL = "https://suggestqueries-clients6.youtube.com/complete/search"

// jsonpBody extracts the JSON array from a JSONP wrapper like
// window.google.ac.h([...]).
var jsonpBody = regexp.MustCompile(`\[.*\]`)

// expansion vocab for ExpandAutocomplete
var (
	expansionSuffixes = "abcdefghijklmnopqrstuvwxyz0123456789"
	expansionPrefixes = []string{"how to", "best", "why", "what is"}
)

// FetchAutocomplete returns suggestions for one keyword, positions 1-based
// in popularity order.
func (c *HTTPCollector) FetchAutocomplete(ctx context.Context, keyword string) ([]signal.Suggestion, error) {
	raw, err := c.fetchSuggestionStrings(ctx, keyword)
	if err != nil {
		return nil, err
	}

	suggestions := make([]signal.Suggestion, 0, len(raw))
	for i, s := range raw {
		suggestions = append(suggestions, signal.Suggestion{
			Keyword:  s,
			Position: i + 1,
			Source:   "autocomplete",
		})
	}
	return suggestions, nil
}

// ExpandAutocomplete widens the seed with letter/digit suffixes and common
// question prefixes, deduplicating across batches. A failed batch is
// skipped rather than failing the expansion; only a failed seed batch is
// fatal.
func (c *HTTPCollector) ExpandAutocomplete(ctx context.Context, keyword string) ([]signal.Suggestion, error) {
	base, err := c.FetchAutocomplete(ctx, keyword)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	seen[strings.ToLower(keyword)] = true
	out := make([]signal.Suggestion, 0, len(base))
	add := func(raw []string, source string) {
		for _, s := range raw {
			lower := strings.ToLower(s)
			if seen[lower] {
				continue
			}
			seen[lower] = true
			out = append(out, signal.Suggestion{
				Keyword:  s,
				Position: len(out) + 1,
				Source:   source,
			})
		}
	}
	add(suggestionStrings(base), "autocomplete")

	for _, r := range expansionSuffixes {
		if len(out) >= c.cfg.Collect.MaxSuggestions {
			break
		}
		raw, err := c.fetchSuggestionStrings(ctx, keyword+" "+string(r))
		if err != nil {
			c.log.Debugf("expansion batch %q failed: %v", string(r), err)
			continue
		}
		add(raw, "autocomplete-suffix")
	}

	for _, p := range expansionPrefixes {
		if len(out) >= c.cfg.Collect.MaxSuggestions {
			break
		}
		raw, err := c.fetchSuggestionStrings(ctx, p+" "+keyword)
		if err != nil {
			c.log.Debugf("expansion prefix %q failed: %v", p, err)
			continue
		}
		add(raw, "autocomplete-prefix")
	}

	if len(out) > c.cfg.Collect.MaxSuggestions {
		out = out[:c.cfg.Collect.MaxSuggestions]
	}
	return out, nil
}

func (c *HTTPCollector) fetchSuggestionStrings(ctx context.Context, query string) ([]string, error) {
	if err := c.autocompleteLimit.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"client": {"youtube"},
		"ds":     {"yt"},
		"q":      {query},
		"hl":     {c.cfg.Collect.Language},
		"gl":     {c.cfg.Collect.Region},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, autocompleteURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, collectionErr("autocomplete", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, collectionErr("autocomplete", fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, collectionErr("autocomplete", err)
	}

	return parseSuggestionPayload(body)
}

// parseSuggestionPayload unwraps the JSONP envelope. Payload structure:
// [query, [[suggestion, ...], [suggestion, ...], ...], ...]
func parseSuggestionPayload(body []byte) ([]string, error) {
	match := jsonpBody.Find(body)
	if match == nil {
		return nil, nil
	}

	var payload []json.RawMessage
	if err := json.Unmarshal(match, &payload); err != nil {
		return nil, collectionErr("autocomplete", err)
	}
	if len(payload) < 2 {
		return nil, nil
	}

	var entries [][]json.RawMessage
	if err := json.Unmarshal(payload[1], &entries); err != nil {
		return nil, collectionErr("autocomplete", err)
	}

	var out []string
	for _, entry := range entries {
		if len(entry) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(entry[0], &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func suggestionStrings(suggestions []signal.Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Keyword
	}
	return out
}
