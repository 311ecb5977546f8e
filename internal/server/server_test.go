package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperifyio/newslens/internal/analyze"
	"github.com/hyperifyio/newslens/internal/bias"
)

type fakeService struct {
	res       analyze.Result
	err       error
	valid     analyze.Validation
	validErr  error
	gotReq    analyze.Request
	gotURL    string
}

func (f *fakeService) Analyze(ctx context.Context, req analyze.Request) (analyze.Result, error) {
	f.gotReq = req
	return f.res, f.err
}

func (f *fakeService) ValidateURL(ctx context.Context, rawURL string) (analyze.Validation, error) {
	f.gotURL = rawURL
	return f.valid, f.validErr
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m messageBody
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return m.Message
}

func TestAnalyze_OK(t *testing.T) {
	svc := &fakeService{res: analyze.Result{Summary: "s", BiasAnalysis: bias.Fallback(), ReadingTime: "1 min read"}}
	h := (&Server{Service: svc}).Handler()

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"content":"text","tone":"facts"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type=%q", ct)
	}
	if svc.gotReq.Content != "text" || svc.gotReq.Tone != "facts" {
		t.Fatalf("request not decoded: %+v", svc.gotReq)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"summary", "biasAnalysis", "readingTime"} {
		if _, ok := got[k]; !ok {
			t.Fatalf("missing key %q in %s", k, rec.Body.String())
		}
	}
	if _, ok := got["title"]; ok {
		t.Fatalf("empty title should be omitted")
	}
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"input", &analyze.InputError{Message: "Content or URL is required"}, http.StatusBadRequest, "Content or URL is required"},
		{"not configured", analyze.ErrModelNotConfigured, http.StatusInternalServerError, MissingKeyMessage},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Failed to analyze article"},
	}
	for _, tc := range cases {
		h := (&Server{Service: &fakeService{err: tc.err}}).Handler()
		rec := do(t, h, http.MethodPost, "/api/analyze", `{"content":"x","tone":"neutral"}`)
		if rec.Code != tc.status {
			t.Fatalf("%s: status=%d, want %d", tc.name, rec.Code, tc.status)
		}
		if got := decodeMessage(t, rec); got != tc.message {
			t.Fatalf("%s: message=%q, want %q", tc.name, got, tc.message)
		}
	}
}

func TestAnalyze_MalformedJSON(t *testing.T) {
	h := (&Server{Service: &fakeService{}}).Handler()
	rec := do(t, h, http.MethodPost, "/api/analyze", `{"content":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
	if decodeMessage(t, rec) != "Invalid JSON body" {
		t.Fatalf("unexpected message: %s", rec.Body.String())
	}
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	h := (&Server{Service: &fakeService{}, MaxBodyBytes: 64}).Handler()
	body := `{"content":"` + strings.Repeat("a", 200) + `"}`
	rec := do(t, h, http.MethodPost, "/api/analyze", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d, want 413", rec.Code)
	}
}

func TestValidateURL(t *testing.T) {
	svc := &fakeService{valid: analyze.Validation{Valid: true, Title: "T", ContentLength: 321}}
	h := (&Server{Service: svc}).Handler()
	rec := do(t, h, http.MethodPost, "/api/validate-url", `{"url":"https://example.com/a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if svc.gotURL != "https://example.com/a" {
		t.Fatalf("url=%q", svc.gotURL)
	}
	want := `{"valid":true,"title":"T","contentLength":321}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Fatalf("body=%s, want %s", got, want)
	}
}

func TestValidateURL_Invalid(t *testing.T) {
	svc := &fakeService{validErr: &analyze.InputError{Message: "Invalid URL format"}}
	h := (&Server{Service: svc}).Handler()
	rec := do(t, h, http.MethodPost, "/api/validate-url", `{"url":"nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
	want := `{"valid":false,"message":"Invalid URL format"}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Fatalf("body=%s, want %s", got, want)
	}
}

func TestCORSAndPreflight(t *testing.T) {
	h := (&Server{Service: &fakeService{}, CORSOrigin: "https://app.example"}).Handler()
	rec := do(t, h, http.MethodOptions, "/api/analyze", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status=%d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("allow-origin=%q", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Fatalf("allow-methods missing POST")
	}

	h = (&Server{Service: &fakeService{}}).Handler()
	rec = do(t, h, http.MethodPost, "/api/analyze", `{}`)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("default allow-origin=%q, want *", got)
	}
}

func TestRouting_NotFoundAndMethod(t *testing.T) {
	h := (&Server{Service: &fakeService{}}).Handler()
	rec := do(t, h, http.MethodGet, "/api/unknown", "")
	if rec.Code != http.StatusNotFound || decodeMessage(t, rec) != "Not found" {
		t.Fatalf("unknown route: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/api/analyze", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method: status=%d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") == "" {
		t.Fatalf("405 should carry Allow header")
	}
}

func TestRequestID(t *testing.T) {
	h := (&Server{Service: &fakeService{}}).Handler()
	rec := do(t, h, http.MethodPost, "/api/validate-url", `{"url":"x"}`)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/validate-url", strings.NewReader(`{}`))
	req.Header.Set("X-Request-ID", "abc-123")
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("request id not echoed: %q", got)
	}
}
