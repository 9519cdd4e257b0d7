// Package vidgap estimates demand versus supply for video keywords and
// reduces noisy, partially-missing provider signals to a bounded,
// explainable opportunity score.
package vidgap

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/decide"
	"github.com/cognicore/vidgap/pkg/vidgap/insight"
	"github.com/cognicore/vidgap/pkg/vidgap/internalerr"
	"github.com/cognicore/vidgap/pkg/vidgap/score"
	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

// Collector is the collection-layer contract. Implementations return empty
// results on no-data and a wrapped internalerr.ErrCollection on transport
// failure; they own rate limiting and caching.
type Collector interface {
	FetchAutocomplete(ctx context.Context, keyword string) ([]signal.Suggestion, error)
	ExpandAutocomplete(ctx context.Context, keyword string) ([]signal.Suggestion, error)
	FetchTrend(ctx context.Context, keyword string, window time.Duration) ([]signal.TrendPoint, error)
	FetchTopVideos(ctx context.Context, keyword string, limit int) ([]signal.Video, error)
	FetchRecentVideoCount(ctx context.Context, keyword string, days int) (int, error)
	FetchComments(ctx context.Context, videoID string, limit int) ([]string, error)
}

// Analysis is the terminal aggregate for one keyword: immutable once
// constructed, independently reproducible from its bundle plus config.
type Analysis struct {
	// ID is assigned when the analysis came through the collecting path;
	// Evaluate leaves it empty so identical bundles produce identical
	// results.
	ID      string
	Keyword string

	Suggestions []signal.Suggestion
	TopVideos   []signal.Video
	Metrics     signal.Metrics

	Demand score.Demand
	Supply score.Supply
	Gap    score.Gap

	Insights []string

	// MissingSignals tags which inputs the collection layer could not
	// provide; a non-empty list marks a best-effort, partial result.
	MissingSignals []string

	// Sentiment and Decision are only set when the synthesizer ran.
	Sentiment *decide.CommentSummary
	Decision  *decide.Decision

	AnalyzedAt time.Time
}

// Partial reports whether any signal was missing.
func (a *Analysis) Partial() bool { return len(a.MissingSignals) > 0 }

// Options configures an Analyzer.
type Options struct {
	Collector Collector

	// Completer enables decision synthesis; nil disables it.
	Completer decide.Completer

	Config config.Config
	Log    logrus.FieldLogger
}

// Analyzer runs the full pipeline. Stateless between invocations apart from
// ID generation, which is internally synchronized; concurrent analyses need
// no external locking.
type Analyzer struct {
	collector Collector
	synth     *decide.Synthesizer
	cfg       config.Config
	log       logrus.FieldLogger
	entropy   *ulid.LockedMonotonicReader
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	a := &Analyzer{
		collector: opts.Collector,
		cfg:       opts.Config,
		log:       log,
		entropy:   &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.Reader, 0)},
	}
	if opts.Completer != nil {
		a.synth = decide.New(opts.Completer, opts.Config)
	}
	return a
}

// AnalyzeOptions tunes a single analysis.
type AnalyzeOptions struct {
	IncludeSuggestions bool
	ExpandSuggestions  bool

	// WithDecision runs comment sentiment and the go/no-go synthesizer.
	// Requires a Completer; failures there degrade to a score-only
	// result instead of aborting.
	WithDecision bool
	ChannelSize  string
}

// AnalyzeKeyword collects signals for one keyword and evaluates them.
func (a *Analyzer) AnalyzeKeyword(ctx context.Context, keyword string, opts AnalyzeOptions) (*Analysis, error) {
	clean, err := signal.ValidateKeyword(keyword)
	if err != nil {
		return nil, err
	}
	a.log.Debugf("analyzing keyword %q", clean)

	bundle, missing := a.collect(ctx, clean, opts)

	now := time.Now()
	res, err := a.Evaluate(bundle, now)
	if err != nil {
		return nil, err
	}
	res.ID = a.newID(now)
	res.MissingSignals = dedupe(append(res.MissingSignals, missing...))

	if opts.WithDecision && a.synth != nil {
		a.decide(ctx, res, opts)
	}

	a.log.Debugf("analysis complete for %q: gap=%.2f", clean, res.Gap.Score)
	return res, nil
}

// Evaluate runs the pure pipeline over a pre-fetched bundle. This is the
// engine's only input contract: no I/O happens here, so repeated calls with
// an identical bundle and config yield identical results.
func (a *Analyzer) Evaluate(bundle signal.Bundle, now time.Time) (*Analysis, error) {
	metrics, err := signal.Normalize(bundle, a.cfg, now)
	if err != nil && !errors.Is(err, internalerr.ErrInsufficientData) {
		return nil, err
	}

	demand := score.EstimateDemand(metrics, a.cfg)
	supply := score.EstimateSupply(metrics, a.cfg)
	gap := score.CalculateGap(demand, supply, metrics, a.cfg)

	res := &Analysis{
		Keyword:     bundle.Query.Keyword,
		Suggestions: bundle.Suggestions,
		TopVideos:   bundle.TopVideos,
		Metrics:     metrics,
		Demand:      demand,
		Supply:      supply,
		Gap:         gap,
		Insights:    insight.Generate(metrics, a.cfg),
		AnalyzedAt:  now,
	}
	res.MissingSignals = append(res.MissingSignals, bundle.MissingSignals...)
	if metrics.TrendUnavailable {
		res.MissingSignals = append(res.MissingSignals, "trend")
	}
	if metrics.NoVideos {
		res.MissingSignals = append(res.MissingSignals, "top_videos")
	}
	return res, nil
}

// AnalyzeKeywords analyzes a batch sequentially. The optional progress
// callback receives (current, total, keyword) before each analysis.
func (a *Analyzer) AnalyzeKeywords(ctx context.Context, keywords []string, opts AnalyzeOptions, progress func(int, int, string)) ([]*Analysis, error) {
	clean, err := signal.ValidateKeywords(keywords)
	if err != nil {
		return nil, err
	}

	results := make([]*Analysis, 0, len(clean))
	for i, kw := range clean {
		if progress != nil {
			progress(i+1, len(clean), kw)
		}
		res, err := a.AnalyzeKeyword(ctx, kw, opts)
		if err != nil {
			return nil, fmt.Errorf("analyze %q: %w", kw, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// FindOpportunities expands a seed keyword through autocomplete, analyzes
// the variants, and returns those at or above minGap, best first.
func (a *Analyzer) FindOpportunities(ctx context.Context, seed string, minGap float64, maxResults int) ([]*Analysis, error) {
	clean, err := signal.ValidateKeyword(seed)
	if err != nil {
		return nil, err
	}

	suggestions, err := a.collector.ExpandAutocomplete(ctx, clean)
	if err != nil {
		return nil, err
	}

	keywords := []string{clean}
	for _, s := range suggestions {
		if len(keywords) > a.cfg.Collect.MaxSuggestions {
			break
		}
		keywords = append(keywords, s.Keyword)
	}

	results, err := a.AnalyzeKeywords(ctx, keywords, AnalyzeOptions{}, nil)
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, r := range results {
		if r.Gap.Score >= minGap {
			filtered = append(filtered, r)
		}
	}
	sortByGap(filtered)
	if maxResults > 0 && len(filtered) > maxResults {
		filtered = filtered[:maxResults]
	}
	return filtered, nil
}

// CompareKeywords analyzes each keyword and returns them best first.
func (a *Analyzer) CompareKeywords(ctx context.Context, keywords []string) ([]*Analysis, error) {
	results, err := a.AnalyzeKeywords(ctx, keywords, AnalyzeOptions{}, nil)
	if err != nil {
		return nil, err
	}
	sortByGap(results)
	return results, nil
}

// Suggest is the autocomplete-only mode: suggestions and expanded variants
// without touching the quota-consuming estimators.
func (a *Analyzer) Suggest(ctx context.Context, keyword string, expand bool) ([]signal.Suggestion, error) {
	clean, err := signal.ValidateKeyword(keyword)
	if err != nil {
		return nil, err
	}
	if expand {
		return a.collector.ExpandAutocomplete(ctx, clean)
	}
	return a.collector.FetchAutocomplete(ctx, clean)
}

// collect gathers the bundle best-effort: a failed provider is tagged and
// the pipeline proceeds with whatever arrived.
func (a *Analyzer) collect(ctx context.Context, keyword string, opts AnalyzeOptions) (signal.Bundle, []string) {
	bundle := signal.Bundle{
		Query: signal.Query{
			Keyword:  keyword,
			Language: a.cfg.Collect.Language,
			Region:   a.cfg.Collect.Region,
		},
	}
	var missing []string

	if opts.IncludeSuggestions {
		var err error
		if opts.ExpandSuggestions {
			bundle.Suggestions, err = a.collector.ExpandAutocomplete(ctx, keyword)
		} else {
			bundle.Suggestions, err = a.collector.FetchAutocomplete(ctx, keyword)
		}
		if err != nil {
			a.log.Warnf("autocomplete failed for %q: %v", keyword, err)
			missing = append(missing, "suggestions")
		}
	}

	trend, err := a.collector.FetchTrend(ctx, keyword, bundle.Query.Window)
	if err != nil {
		a.log.Warnf("trend fetch failed for %q: %v", keyword, err)
		missing = append(missing, "trend")
	}
	bundle.Trend = trend

	videos, err := a.collector.FetchTopVideos(ctx, keyword, a.cfg.Collect.TopVideoLimit)
	if err != nil {
		a.log.Warnf("video search failed for %q: %v", keyword, err)
		missing = append(missing, "top_videos")
	}
	bundle.TopVideos = videos

	count, err := a.collector.FetchRecentVideoCount(ctx, keyword, a.cfg.Supply.WindowDays)
	if err != nil {
		a.log.Warnf("recent video count failed for %q: %v", keyword, err)
		missing = append(missing, "recent_video_count")
	}
	bundle.RecentVideoCount = count

	return bundle, missing
}

// decide runs sentiment and synthesis, degrading to the score-only result
// if the capability misbehaves.
func (a *Analyzer) decide(ctx context.Context, res *Analysis, opts AnalyzeOptions) {
	var comments []string
	for i, v := range res.TopVideos {
		if i >= 3 {
			break
		}
		if len(v.CommentSample) > 0 {
			comments = append(comments, v.CommentSample...)
			continue
		}
		fetched, err := a.collector.FetchComments(ctx, v.ID, a.cfg.Decision.CommentSample)
		if err != nil {
			a.log.Warnf("comment fetch failed for %s: %v", v.ID, err)
			continue
		}
		comments = append(comments, fetched...)
	}

	if len(comments) > 0 {
		sentiment, err := a.synth.AnalyzeComments(ctx, res.Keyword, comments)
		if err != nil {
			a.log.Warnf("sentiment analysis failed for %q: %v", res.Keyword, err)
			res.MissingSignals = append(res.MissingSignals, "sentiment")
		} else {
			res.Sentiment = &sentiment
		}
	}

	decision, err := a.synth.Synthesize(ctx, decide.Input{
		Keyword:     res.Keyword,
		Gap:         res.Gap,
		Insights:    res.Insights,
		TopVideos:   res.TopVideos,
		ChannelSize: opts.ChannelSize,
		Sentiment:   res.Sentiment,
	})
	if err != nil {
		a.log.Warnf("decision synthesis failed for %q: %v", res.Keyword, err)
		res.MissingSignals = append(res.MissingSignals, "decision")
		return
	}

	titles, err := a.synth.SuggestTitles(ctx, res.Keyword, videoTitles(res.TopVideos))
	if err != nil {
		a.log.Warnf("title suggestion failed for %q: %v", res.Keyword, err)
	} else {
		decision.Titles = titles
	}
	res.Decision = &decision
}

func (a *Analyzer) newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), a.entropy).String()
}

func sortByGap(results []*Analysis) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Gap.Score > results[j].Gap.Score
	})
}

func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func videoTitles(videos []signal.Video) []string {
	titles := make([]string, 0, len(videos))
	for _, v := range videos {
		titles = append(titles, v.Title)
	}
	return titles
}
