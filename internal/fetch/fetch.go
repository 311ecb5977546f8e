package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// DefaultUserAgent mimics a desktop browser. Some news origins reject
// requests that do not look like they come from one.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultMaxBytes caps how much of a page body is read.
const DefaultMaxBytes = 5 << 20

// Page is a fetched HTML document with its body decoded to UTF-8.
type Page struct {
	URL         string
	ContentType string
	Body        []byte
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return "unexpected status: " + e.Status
	}
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// Reason returns the reason phrase of the status line, e.g. "Not Found".
func (e *StatusError) Reason() string {
	if r := strings.TrimSpace(strings.TrimPrefix(e.Status, strconv.Itoa(e.Code))); r != "" {
		return r
	}
	if r := http.StatusText(e.Code); r != "" {
		return r
	}
	return strconv.Itoa(e.Code)
}

// ErrTooLarge is returned when the body exceeds Client.MaxBytes.
var ErrTooLarge = errors.New("response body too large")

// Client wraps http.Client with a fixed user agent, a per-request timeout,
// a redirect cap and a gate that refuses binary bodies. It never retries.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// PerRequestTimeout bounds each request, body read included.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxBytes caps the body size. Zero means DefaultMaxBytes.
	MaxBytes int64
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET with context and user-agent and returns the decoded page.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("new request: %w", err)
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(req.URL) {
		return Page{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	contentType := resp.Header.Get("Content-Type")

	limit := c.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Page{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > limit {
		return Page{}, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	if !isTextual(contentType, raw) {
		return Page{}, fmt.Errorf("unsupported content type: %s", contentType)
	}
	body, err := decodeUTF8(raw, contentType)
	if err != nil {
		return Page{}, fmt.Errorf("decode body: %w", err)
	}
	return Page{URL: resp.Request.URL.String(), ContentType: contentType, Body: body}, nil
}

// decodeUTF8 converts the body to UTF-8 using the declared or sniffed charset.
func decodeUTF8(raw []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		// Unknown charset labels fall back to the raw bytes.
		return raw, nil
	}
	return io.ReadAll(r)
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isTextual accepts any declared text or XHTML type. Other labels fall back
// to sniffing the body, which refuses binary payloads such as PDFs or images.
func isTextual(ct string, body []byte) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if strings.HasPrefix(ct, "text/") || strings.HasPrefix(ct, "application/xhtml+xml") {
		return true
	}
	return strings.HasPrefix(http.DetectContentType(body), "text/")
}
