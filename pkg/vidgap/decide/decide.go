// Package decide turns a finished analysis into a go/no-go recommendation
// by delegating free-text reasoning to an injected text-completion
// capability. The package owns prompt construction (deterministic templates
// over structured inputs) and response validation; it never touches the gap
// computation that already succeeded.
package decide

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/internalerr"
	"github.com/cognicore/vidgap/pkg/vidgap/score"
	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

// Completer is the injected text-completion capability. One method, so the
// synthesizer is testable with a deterministic stub.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Theme is one recurring topic in comment text.
type Theme struct {
	Name     string   `json:"name"`
	Polarity string   `json:"polarity"` // positive, negative, neutral
	Quotes   []string `json:"quotes"`
}

// CommentSummary is the structured sentiment derived from comment text.
type CommentSummary struct {
	OverallSentiment string   `json:"overall_sentiment"` // positive, negative, neutral, mixed
	SentimentScore   float64  `json:"sentiment_score"`   // -1.0 to 1.0
	PositivePct      int      `json:"positive_percentage"`
	NegativePct      int      `json:"negative_percentage"`
	NeutralPct       int      `json:"neutral_percentage"`
	Themes           []Theme  `json:"themes"`
	PainPoints       []string `json:"pain_points"`
	Wishes           []string `json:"wishes"`
	Questions        []string `json:"questions"`
	Summary          string   `json:"summary"`
}

// TitleCandidate is one suggested title. AppealRank is an ordinal ranking
// within the returned batch (1 = strongest), not a calibrated probability.
type TitleCandidate struct {
	Title      string `json:"title"`
	Reason     string `json:"reason"`
	AppealRank int    `json:"appeal_rank"`
}

// Decision is the synthesized recommendation.
type Decision struct {
	ShouldMake       bool     `json:"should_make"`
	Confidence       float64  `json:"confidence"` // 0.0 to 1.0
	ReasonsFor       []string `json:"reasons_for"`
	ReasonsAgainst   []string `json:"reasons_against"`
	RecommendedAngle string   `json:"recommended_angle"`
	ContentGaps      []string `json:"content_gaps"`
	Summary          string   `json:"summary"`

	Titles []TitleCandidate `json:"titles,omitempty"`
}

// Input is everything a decision is built from.
type Input struct {
	Keyword     string
	Gap         score.Gap
	Insights    []string
	TopVideos   []signal.Video
	ChannelSize string // caller's own channel, e.g. "small"

	// Sentiment is optional; nil means no comment data was collected.
	Sentiment *CommentSummary
}

// Synthesizer drives the completion calls.
type Synthesizer struct {
	completer Completer
	cfg       config.Config
}

// New creates a Synthesizer around the given capability.
func New(c Completer, cfg config.Config) *Synthesizer {
	return &Synthesizer{completer: c, cfg: cfg}
}

// AnalyzeComments summarizes comment text into structured sentiment.
// Empty input short-circuits to a neutral summary without a call.
func (s *Synthesizer) AnalyzeComments(ctx context.Context, keyword string, comments []string) (CommentSummary, error) {
	if len(comments) == 0 {
		return CommentSummary{
			OverallSentiment: "neutral",
			NeutralPct:       100,
			Summary:          "No comments to analyze",
		}, nil
	}

	sample := comments
	if len(sample) > s.cfg.Decision.CommentSample {
		sample = sample[:s.cfg.Decision.CommentSample]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these viewer comments for the topic %q and respond with ONLY valid JSON.\n\n", keyword)
	fmt.Fprintf(&b, "Comments (%d of %d):\n", len(sample), len(comments))
	for _, c := range sample {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString(`
JSON shape:
{
  "overall_sentiment": "positive|negative|neutral|mixed",
  "sentiment_score": <float -1.0 to 1.0>,
  "positive_percentage": <int 0-100>,
  "negative_percentage": <int 0-100>,
  "neutral_percentage": <int 0-100>,
  "themes": [{"name": "...", "polarity": "positive|negative|neutral", "quotes": ["..."]}],
  "pain_points": ["what people complain about"],
  "wishes": ["what people want"],
  "questions": ["unanswered questions"],
  "summary": "2-3 sentence summary"
}`)

	var out CommentSummary
	if err := s.complete(ctx, b.String(), &out); err != nil {
		return CommentSummary{}, err
	}
	return out, nil
}

// Synthesize produces the recommendation. The justification references the
// specific inputs that drove it; callers that receive an error fall back to
// the score-only result.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (Decision, error) {
	var out Decision
	if err := s.complete(ctx, decisionPrompt(in), &out); err != nil {
		return Decision{}, err
	}
	return out, nil
}

// SuggestTitles asks for title candidates differentiated from the existing
// top-ranked titles. The returned ranking is ordinal only.
func (s *Synthesizer) SuggestTitles(ctx context.Context, keyword string, existing []string) ([]TitleCandidate, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d video title candidates for: %q\n\n", s.cfg.Decision.TitleCount, keyword)
	b.WriteString("Existing titles to differentiate from:\n")
	if len(existing) == 0 {
		b.WriteString("(none)\n")
	}
	for i, t := range existing {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "- %s\n", t)
	}
	b.WriteString(`
Rules: keyword near the front, max 60 characters, specific over generic.
Respond with ONLY valid JSON:
{"titles": [{"title": "...", "reason": "...", "appeal_rank": <int, 1 = strongest>}]}`)

	var out struct {
		Titles []TitleCandidate `json:"titles"`
	}
	if err := s.complete(ctx, b.String(), &out); err != nil {
		return nil, err
	}
	return out.Titles, nil
}

func decisionPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Should a %s channel make a video about %q?\n\n", orDefault(in.ChannelSize, "small"), in.Keyword)
	fmt.Fprintf(&b, "Gap score: %.2f (%s)\n", in.Gap.Score, in.Gap.Tier)
	fmt.Fprintf(&b, "Demand %.2f (trend %.2f, views %.2f); supply %.2f (volume %.2f, channels %.2f)\n",
		in.Gap.Demand.Score, in.Gap.Demand.TrendScore, in.Gap.Demand.ViewScore,
		in.Gap.Supply.Score, in.Gap.Supply.VolumeScore, in.Gap.Supply.ChannelScore)

	if len(in.Insights) > 0 {
		b.WriteString("\nObservations:\n")
		for _, s := range in.Insights {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	if len(in.TopVideos) > 0 {
		b.WriteString("\nTop ranking videos:\n")
		for i, v := range in.TopVideos {
			if i >= 10 {
				break
			}
			subs := "unknown subs"
			if v.SubscriberKnown {
				subs = fmt.Sprintf("%d subs", v.Subscribers)
			}
			fmt.Fprintf(&b, "- %s: %d views, %s\n", v.Title, v.Views, subs)
		}
	}

	if in.Sentiment != nil {
		fmt.Fprintf(&b, "\nComment sentiment: %s (%.2f)\n", in.Sentiment.OverallSentiment, in.Sentiment.SentimentScore)
		for i, th := range in.Sentiment.Themes {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- theme: %s (%s)\n", th.Name, th.Polarity)
		}
		if len(in.Sentiment.PainPoints) > 0 {
			fmt.Fprintf(&b, "- pain points: %s\n", strings.Join(in.Sentiment.PainPoints, "; "))
		}
		if len(in.Sentiment.Wishes) > 0 {
			fmt.Fprintf(&b, "- wishes: %s\n", strings.Join(in.Sentiment.Wishes, "; "))
		}
	}

	b.WriteString(`
Reference the specific numbers and observations above in your reasons.
Respond with ONLY valid JSON:
{
  "should_make": true|false,
  "confidence": <float 0.0-1.0>,
  "reasons_for": ["..."],
  "reasons_against": ["..."],
  "recommended_angle": "...",
  "content_gaps": ["..."],
  "summary": "2-3 sentence recommendation"
}`)
	return b.String()
}

const systemPrompt = "You are a JSON generator. Output only a JSON object, no markdown."

// complete runs one bounded completion call per retry attempt, parsing the
// response into v. Malformed responses retry up to the configured limit and
// then surface as ErrMalformedResponse so the caller can degrade.
func (s *Synthesizer) complete(ctx context.Context, prompt string, v any) error {
	if s.completer == nil {
		return fmt.Errorf("%w: no completer configured", internalerr.ErrMalformedResponse)
	}

	timeout := time.Duration(s.cfg.Decision.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= s.cfg.Decision.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		raw, err := s.completer.Complete(callCtx, systemPrompt, prompt)
		cancel()
		if err != nil {
			return fmt.Errorf("completion: %w", err)
		}

		if err := parseJSON(raw, v); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// parseJSON strips optional markdown fences and decodes.
func parseJSON(raw string, v any) error {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrMalformedResponse, err)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
