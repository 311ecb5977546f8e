package summarize

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newslens/internal/llm"
	"github.com/hyperifyio/newslens/internal/template"
)

// Fallback is returned whenever the model produces no usable summary.
const Fallback = "Unable to generate summary."

// Summarizer asks the model for a tone-adjusted summary of an article.
type Summarizer struct {
	Generator llm.Generator
	// Timeout bounds the model call. Zero leaves it to the caller's context.
	Timeout time.Duration
}

// Summarize returns the model's summary verbatim. Errors, timeouts and blank
// output all degrade to Fallback.
func (s *Summarizer) Summarize(ctx context.Context, content string, tone template.Tone) string {
	if s == nil || s.Generator == nil {
		return Fallback
	}
	prompt := template.GetProfile(string(tone)).Prompt(content)

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	start := time.Now()
	out, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("tone", string(tone)).Msg("summary generation failed; using fallback")
		return Fallback
	}
	if strings.TrimSpace(out) == "" {
		log.Warn().Str("tone", string(tone)).Msg("empty summary from model; using fallback")
		return Fallback
	}
	log.Debug().Str("tone", string(tone)).Dur("took", time.Since(start)).Int("chars", len(out)).Msg("summary generated")
	return out
}
