package analyze

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/newslens/internal/bias"
	"github.com/hyperifyio/newslens/internal/budget"
	"github.com/hyperifyio/newslens/internal/extract"
	"github.com/hyperifyio/newslens/internal/readtime"
	"github.com/hyperifyio/newslens/internal/template"
)

// ErrModelNotConfigured is returned by Analyze when no model credential is set.
var ErrModelNotConfigured = errors.New("model credential not configured")

// InputError is a client-caused failure. Message is safe to show to users.
type InputError struct {
	Message string
	Err     error
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return e.Err }

func inputErr(msg string) error { return &InputError{Message: msg} }

// ArticleExtractor fetches a URL and isolates its article. *extract.URLExtractor satisfies it.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) (extract.Article, error)
}

// Summarizer is satisfied by *summarize.Summarizer.
type Summarizer interface {
	Summarize(ctx context.Context, content string, tone template.Tone) string
}

// BiasAnalyzer is satisfied by *bias.Analyzer.
type BiasAnalyzer interface {
	Analyze(ctx context.Context, content string) bias.Report
}

// Request is the body of an analyze call. When URL is set the extracted text
// replaces Content.
type Request struct {
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
	Tone    string `json:"tone"`
}

// Result is the assembled analysis of one article.
type Result struct {
	Summary      string      `json:"summary"`
	BiasAnalysis bias.Report `json:"biasAnalysis"`
	ReadingTime  string      `json:"readingTime"`
	Title        string      `json:"title,omitempty"`
}

// Validation reports whether a URL yields an extractable article.
type Validation struct {
	Valid         bool   `json:"valid"`
	Title         string `json:"title,omitempty"`
	ContentLength int    `json:"contentLength,omitempty"`
}

// Service wires the extractor, summarizer and bias analyzer into one request flow.
type Service struct {
	Extractor  ArticleExtractor
	Summarizer Summarizer
	Analyzer   BiasAnalyzer
	// ModelConfigured is false when no model credential was supplied.
	ModelConfigured bool
	// ContentTokenLimit caps the article text placed into each prompt.
	// Zero disables the cap. Reading time always uses the full text.
	ContentTokenLimit int
}

// Analyze validates req, extracts the article when a URL is given, then runs
// the summarizer and bias analyzer concurrently on the same text.
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	if !s.ModelConfigured {
		return Result{}, ErrModelNotConfigured
	}
	if req.Content == "" && strings.TrimSpace(req.URL) == "" {
		return Result{}, inputErr("Content or URL is required")
	}
	tone := template.Tone(req.Tone)
	if !tone.Valid() {
		return Result{}, inputErr("Invalid tone. Must be neutral, facts, or simple")
	}

	content := req.Content
	var title string
	if rawURL := strings.TrimSpace(req.URL); rawURL != "" {
		if !ValidURL(rawURL) {
			return Result{}, inputErr("Invalid URL format")
		}
		art, err := s.Extractor.Extract(ctx, rawURL)
		if err != nil {
			return Result{}, &InputError{Message: "Failed to extract content from URL: " + err.Error(), Err: err}
		}
		content, title = art.Content, art.Title
	}
	if utf8.RuneCountInString(content) < extract.MinContentChars {
		return Result{}, inputErr("Article content must be at least 100 characters")
	}

	promptText, truncated := budget.Truncate(content, s.ContentTokenLimit)
	if truncated {
		log.Info().Int("limit", s.ContentTokenLimit).Int("estimatedTokens", budget.EstimateTokens(content)).Msg("article truncated to fit the model context")
	}

	start := time.Now()
	var (
		summary string
		report  bias.Report
		g       errgroup.Group
	)
	g.Go(func() error {
		summary = s.Summarizer.Summarize(ctx, promptText, tone)
		return nil
	})
	g.Go(func() error {
		report = s.Analyzer.Analyze(ctx, promptText)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	log.Debug().Str("tone", req.Tone).Bool("fromURL", title != "").Dur("took", time.Since(start)).Msg("analysis complete")

	return Result{
		Summary:      summary,
		BiasAnalysis: report,
		ReadingTime:  readtime.Estimate(content),
		Title:        title,
	}, nil
}

// ValidateURL runs a full extraction purely to report whether rawURL is usable.
func (s *Service) ValidateURL(ctx context.Context, rawURL string) (Validation, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Validation{}, inputErr("URL is required")
	}
	if !ValidURL(rawURL) {
		return Validation{}, inputErr("Invalid URL format")
	}
	art, err := s.Extractor.Extract(ctx, rawURL)
	if err != nil {
		return Validation{}, &InputError{Message: err.Error(), Err: err}
	}
	return Validation{Valid: true, Title: art.Title, ContentLength: utf8.RuneCountInString(art.Content)}, nil
}

// ValidURL reports whether raw is an absolute http(s) URL with a host.
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
