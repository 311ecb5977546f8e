package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/hyperifyio/newslens/internal/fetch"
)

// Extractor defines a minimal interface for content extraction strategies.
// Implementations can swap readability tactics without changing callers.
type Extractor interface {
	// Extract converts raw HTML bytes into an Article or fails with
	// ErrInsufficientContent.
	Extract(input []byte, pageURL string) (Article, error)
}

// HeuristicExtractor uses FromHTML: container candidates, longest text wins,
// paragraph fallback.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(input []byte, _ string) (Article, error) {
	return FromHTML(input)
}

// ReadabilityExtractor delegates body detection to go-readability and applies
// the same title cleanup, normalization and minimum length.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Extract(input []byte, pageURL string) (Article, error) {
	var base *url.URL
	if pageURL != "" {
		base, _ = url.Parse(pageURL)
	}
	doc, err := readability.FromReader(bytes.NewReader(input), base)
	if err != nil {
		return Article{}, fmt.Errorf("readability: %w", err)
	}
	content := normalizeWhitespace(doc.TextContent)
	if charCount(content) < MinContentChars {
		return Article{}, ErrInsufficientContent
	}
	title := UntitledArticle
	if t := collapseSpaces(doc.Title); t != "" {
		title = cleanTitle(t)
	}
	return Article{Title: title, Content: content}, nil
}

// Strategy names accepted by New.
const (
	StrategyHeuristic   = "heuristic"
	StrategyReadability = "readability"
)

// New returns the Extractor registered under name. An empty name selects the
// heuristic strategy.
func New(name string) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyHeuristic:
		return HeuristicExtractor{}, nil
	case StrategyReadability:
		return ReadabilityExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown extract strategy %q", name)
	}
}

// Error is returned by URLExtractor when the page cannot be fetched or holds
// too little readable text.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	if errors.Is(e.Err, ErrInsufficientContent) {
		return e.Err.Error()
	}
	var se *fetch.StatusError
	if errors.As(e.Err, &se) {
		return "Failed to extract article content: Failed to fetch article: " + se.Reason()
	}
	return "Failed to extract article content: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// PageGetter fetches a page. *fetch.Client satisfies it.
type PageGetter interface {
	Get(ctx context.Context, url string) (fetch.Page, error)
}

// URLExtractor fetches a URL and runs an Extractor over the body.
type URLExtractor struct {
	Client    PageGetter
	Extractor Extractor
}

// Extract fetches rawURL and returns its article content. Every failure is an *Error.
func (u *URLExtractor) Extract(ctx context.Context, rawURL string) (Article, error) {
	if u.Client == nil {
		return Article{}, &Error{URL: rawURL, Err: errors.New("extractor not configured")}
	}
	page, err := u.Client.Get(ctx, rawURL)
	if err != nil {
		return Article{}, &Error{URL: rawURL, Err: err}
	}
	ex := u.Extractor
	if ex == nil {
		ex = HeuristicExtractor{}
	}
	art, err := ex.Extract(page.Body, page.URL)
	if err != nil {
		return Article{}, &Error{URL: rawURL, Err: err}
	}
	return art, nil
}
