package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newslens/internal/analyze"
)

// DefaultMaxBodyBytes limits request bodies; pasted articles can be large.
const DefaultMaxBodyBytes = 10 << 20

// MissingKeyMessage is returned when the analyze endpoint has no model credential.
const MissingKeyMessage = "API key not configured. Please add GEMINI_API_KEY to your .env file."

// Service is the request flow behind the API. *analyze.Service satisfies it.
type Service interface {
	Analyze(ctx context.Context, req analyze.Request) (analyze.Result, error)
	ValidateURL(ctx context.Context, rawURL string) (analyze.Validation, error)
}

// Server exposes Service over HTTP.
type Server struct {
	Service Service
	// CORSOrigin is sent as Access-Control-Allow-Origin. Empty means "*".
	CORSOrigin   string
	MaxBodyBytes int64
}

type messageBody struct {
	Message string `json:"message"`
}

type invalidURLBody struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type validateRequest struct {
	URL string `json:"url"`
}

// Handler returns the routed handler wrapped in request-id, logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/validate-url", s.handleValidateURL)
	mux.HandleFunc("/api/analyze", methodNotAllowed)
	mux.HandleFunc("/api/validate-url", methodNotAllowed)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, messageBody{Message: "Not found"})
	})
	return withRequestID(withAccessLog(withCORS(s.CORSOrigin, mux)))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyze.Request
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.Service.Analyze(r.Context(), req)
	if err != nil {
		var ie *analyze.InputError
		switch {
		case errors.As(err, &ie):
			writeJSON(w, http.StatusBadRequest, messageBody{Message: ie.Message})
		case errors.Is(err, analyze.ErrModelNotConfigured):
			writeJSON(w, http.StatusInternalServerError, messageBody{Message: MissingKeyMessage})
		case errors.Is(err, context.Canceled):
			log.Debug().Str("request_id", requestID(r)).Msg("client went away during analysis")
		default:
			log.Error().Err(err).Str("request_id", requestID(r)).Msg("analysis failed")
			writeJSON(w, http.StatusInternalServerError, messageBody{Message: "Failed to analyze article"})
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleValidateURL(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.Service.ValidateURL(r.Context(), req.URL)
	if err != nil {
		msg := err.Error()
		var ie *analyze.InputError
		if errors.As(err, &ie) {
			msg = ie.Message
		}
		writeJSON(w, http.StatusBadRequest, invalidURLBody{Valid: false, Message: msg})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// decode reads a JSON body into dst, writing a 4xx response and returning
// false when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	limit := s.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, messageBody{Message: "Request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, messageBody{Message: "Invalid JSON body"})
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "POST, OPTIONS")
	writeJSON(w, http.StatusMethodNotAllowed, messageBody{Message: "Method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func withCORS(origin string, next http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("request_id", requestID(r)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
