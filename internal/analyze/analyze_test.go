package analyze

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/hyperifyio/newslens/internal/bias"
	"github.com/hyperifyio/newslens/internal/extract"
	"github.com/hyperifyio/newslens/internal/fetch"
	"github.com/hyperifyio/newslens/internal/template"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

var longText = strings.TrimSpace(strings.Repeat("Officials confirmed the bridge will reopen next week. ", 5))

type fakeExtractor struct {
	art     extract.Article
	err     error
	lastURL string
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (extract.Article, error) {
	f.lastURL = url
	return f.art, f.err
}

// barrier makes each half of the fan-out wait for the other so the test
// fails (by timeout) when they run sequentially.
type barrier struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	contents []string
}

func newBarrier() *barrier {
	b := &barrier{}
	b.wg.Add(2)
	return b
}

func (b *barrier) arrive(content string) {
	b.mu.Lock()
	b.contents = append(b.contents, content)
	b.mu.Unlock()
	b.wg.Done()
	done := make(chan struct{})
	go func() { b.wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type fakeSummarizer struct {
	b        *barrier
	lastTone template.Tone
}

func (f *fakeSummarizer) Summarize(ctx context.Context, content string, tone template.Tone) string {
	f.lastTone = tone
	if f.b != nil {
		f.b.arrive(content)
	}
	return "summary:" + string(tone)
}

type fakeAnalyzer struct{ b *barrier }

func (f *fakeAnalyzer) Analyze(ctx context.Context, content string) bias.Report {
	if f.b != nil {
		f.b.arrive(content)
	}
	return bias.Fallback()
}

func newService(ex *fakeExtractor) (*Service, *barrier) {
	b := newBarrier()
	return &Service{
		Extractor:       ex,
		Summarizer:      &fakeSummarizer{b: b},
		Analyzer:        &fakeAnalyzer{b: b},
		ModelConfigured: true,
	}, b
}

func TestAnalyze_PastedContentRunsBothConcurrently(t *testing.T) {
	svc, b := newService(&fakeExtractor{})
	start := time.Now()
	res, err := svc.Analyze(context.Background(), Request{Content: longText, Tone: "facts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("summarizer and analyzer did not run concurrently")
	}
	if res.Summary != "summary:facts" || res.ReadingTime != "1 min read" || res.Title != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.BiasAnalysis.OverallScore != 25 {
		t.Fatalf("expected analyzer report, got %+v", res.BiasAnalysis)
	}
	if len(b.contents) != 2 || b.contents[0] != longText || b.contents[1] != longText {
		t.Fatalf("both components must see the same text")
	}
}

func TestAnalyze_URLReplacesContent(t *testing.T) {
	ex := &fakeExtractor{art: extract.Article{Title: "Bridge Reopens", Content: longText}}
	svc, b := newService(ex)
	res, err := svc.Analyze(context.Background(), Request{Content: "ignored pasted text", URL: "https://news.example/bridge", Tone: "neutral"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.lastURL != "https://news.example/bridge" {
		t.Fatalf("extractor not called with URL, got %q", ex.lastURL)
	}
	if res.Title != "Bridge Reopens" {
		t.Fatalf("expected extracted title, got %q", res.Title)
	}
	for _, c := range b.contents {
		if c != longText {
			t.Fatalf("expected extracted text to drive analysis, got %q", c)
		}
	}
}

func TestAnalyze_InputErrors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		ex   *fakeExtractor
		want string
	}{
		{"missing content and url", Request{Tone: "neutral"}, &fakeExtractor{}, "Content or URL is required"},
		{"invalid tone", Request{Content: longText, Tone: "angry"}, &fakeExtractor{}, "Invalid tone. Must be neutral, facts, or simple"},
		{"empty tone", Request{Content: longText}, &fakeExtractor{}, "Invalid tone. Must be neutral, facts, or simple"},
		{"short content", Request{Content: "Too short to analyze.", Tone: "simple"}, &fakeExtractor{}, "Article content must be at least 100 characters"},
		{"whitespace content", Request{Content: "  \n\t  ", Tone: "neutral"}, &fakeExtractor{}, "Article content must be at least 100 characters"},
		{"malformed url", Request{URL: "not a url", Tone: "neutral"}, &fakeExtractor{}, "Invalid URL format"},
		{"extraction failure", Request{URL: "https://news.example/x", Tone: "neutral"},
			&fakeExtractor{err: &extract.Error{Err: extract.ErrInsufficientContent}},
			"Failed to extract content from URL: " + extract.ErrInsufficientContent.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(tt.ex)
			svc.Summarizer = &fakeSummarizer{}
			svc.Analyzer = &fakeAnalyzer{}
			_, err := svc.Analyze(context.Background(), tt.req)
			var ie *InputError
			if !errors.As(err, &ie) {
				t.Fatalf("expected InputError, got %v", err)
			}
			if ie.Message != tt.want {
				t.Fatalf("message = %q, want %q", ie.Message, tt.want)
			}
		})
	}
}

func TestAnalyze_ExtractionErrorIsWrapped(t *testing.T) {
	svc, _ := newService(&fakeExtractor{err: &extract.Error{Err: extract.ErrInsufficientContent}})
	_, err := svc.Analyze(context.Background(), Request{URL: "https://news.example/x", Tone: "facts"})
	if !errors.Is(err, extract.ErrInsufficientContent) {
		t.Fatalf("expected wrapped extraction error, got %v", err)
	}
}

func TestAnalyze_ModelNotConfigured(t *testing.T) {
	svc, _ := newService(&fakeExtractor{})
	svc.ModelConfigured = false
	_, err := svc.Analyze(context.Background(), Request{Content: longText, Tone: "neutral"})
	if !errors.Is(err, ErrModelNotConfigured) {
		t.Fatalf("expected ErrModelNotConfigured, got %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	ex := &fakeExtractor{art: extract.Article{Title: "Bridge Reopens", Content: "héllo wörld " + longText}}
	svc, _ := newService(ex)
	v, err := svc.ValidateURL(context.Background(), " https://news.example/bridge ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Valid || v.Title != "Bridge Reopens" || v.ContentLength != len([]rune(ex.art.Content)) {
		t.Fatalf("unexpected validation: %+v", v)
	}

	for raw, want := range map[string]string{
		"":                      "URL is required",
		"ftp://files.example/a": "Invalid URL format",
		"/relative/path":        "Invalid URL format",
	} {
		_, err := svc.ValidateURL(context.Background(), raw)
		var ie *InputError
		if !errors.As(err, &ie) || ie.Message != want {
			t.Fatalf("ValidateURL(%q) = %v, want %q", raw, err, want)
		}
	}

	svc.Extractor = &fakeExtractor{err: &extract.Error{Err: &fetch.StatusError{Code: 404, Status: "404 Not Found"}}}
	_, err = svc.ValidateURL(context.Background(), "https://news.example/gone")
	if err == nil || err.Error() != "Failed to extract article content: Failed to fetch article: Not Found" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyze_CanceledContext(t *testing.T) {
	svc, _ := newService(&fakeExtractor{})
	svc.Summarizer = &fakeSummarizer{}
	svc.Analyzer = &fakeAnalyzer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Analyze(ctx, Request{Content: longText, Tone: "neutral"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidURL(t *testing.T) {
	for raw, want := range map[string]bool{
		"https://example.com/a": true,
		"HTTP://example.com":    true,
		"example.com/a":         false,
		"mailto:a@example.com":  false,
		"https://":              false,
	} {
		if got := ValidURL(raw); got != want {
			t.Errorf("ValidURL(%q) = %v, want %v", raw, got, want)
		}
	}
}

type recordingSummarizer struct {
	mu  sync.Mutex
	got string
}

func (r *recordingSummarizer) Summarize(ctx context.Context, content string, tone template.Tone) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = content
	return "ok"
}

func TestAnalyze_TruncatesPromptTextOnly(t *testing.T) {
	para := strings.TrimSpace(strings.Repeat("word ", 100))
	content := strings.Join([]string{para, para, para, para, para}, "\n\n") // 500 words
	rec := &recordingSummarizer{}
	svc := &Service{
		Summarizer:        rec,
		Analyzer:          &fakeAnalyzer{},
		ModelConfigured:   true,
		ContentTokenLimit: 300, // 1200 runes: two 499-rune paragraphs fit
	}
	res, err := svc.Analyze(context.Background(), Request{Content: content, Tone: "neutral"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.got != para+"\n\n"+para {
		t.Fatalf("prompt text not cut at a paragraph boundary: %d runes", len(rec.got))
	}
	if res.ReadingTime != "3 min read" {
		t.Fatalf("reading time must use the full text, got %q", res.ReadingTime)
	}
}
