// Package llmstub serves canned OpenAI-compatible chat completions for the
// summary and bias prompts so the pipeline can run without a real model.
package llmstub

import (
	"encoding/json"
	"net/http"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// Canned answers, exported so callers can assert on them.
const (
	NeutralSummary = "The article reports the main events in a balanced way and lists the key facts."
	FactsSummary   = "- Key fact one\n- Key fact two\n- Key fact three"
	SimpleSummary  = "This story is about something that happened. It is explained in simple words."
	GenericSummary = "A short summary of the article."
)

// BiasReport is the JSON the stub returns for bias prompts, wrapped in a code
// fence the way hosted models often answer.
const BiasReport = "```json\n" + `{
  "overallScore": 40,
  "level": "Medium",
  "indicators": {
    "languageTone": {"score": 55, "status": "Caution", "description": "Some loaded adjectives."},
    "sourceDiversity": {"score": 70, "status": "Good", "description": "Several independent sources."},
    "factVerification": {"score": 65, "status": "Good", "description": "Most claims are attributed."}
  },
  "recommendations": ["Compare with another outlet", "Check the cited figures"]
}` + "\n```"

// Handler returns the stub's routes: GET /v1/models and POST /v1/chat/completions.
func Handler(model string) http.Handler {
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		prompt := ""
		if len(req.Messages) > 0 {
			prompt = req.Messages[len(req.Messages)-1].Content
		}
		content, ok := Answer(prompt)
		if !ok {
			http.Error(w, "unexpected prompt", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "stub-1",
			"object":  "chat.completion",
			"model":   model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	return mux
}

// Answer picks the canned reply for prompt. It reports false for prompts the
// stub does not recognize.
func Answer(prompt string) (string, bool) {
	switch {
	case strings.HasPrefix(prompt, "You are a journalism expert"):
		return BiasReport, true
	case strings.HasPrefix(prompt, "Please summarize the following news article in a balanced"):
		return NeutralSummary, true
	case strings.HasPrefix(prompt, "Extract only the key facts"):
		return FactsSummary, true
	case strings.HasPrefix(prompt, "Explain this news article in very simple language"):
		return SimpleSummary, true
	case strings.HasPrefix(prompt, "Please summarize the following news article"):
		return GenericSummary, true
	}
	return "", false
}
