// Package budget estimates prompt sizes and trims article text so that a
// prompt fits the model's context window.
package budget

import (
    "math"
    "strings"
    "unicode/utf8"
)

// EstimateTokensFromChars converts a character count into an estimated token
// count using a conservative heuristic (~4 chars per token in English). The
// result is always at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
    if charCount <= 0 {
        return 0
    }
    return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
    return EstimateTokensFromChars(utf8.RuneCountInString(s))
}

// ModelContextTokens returns an estimated maximum context window for a given
// model name. Unknown models fall back to a sensible default.
func ModelContextTokens(modelName string) int {
    name := strings.ToLower(strings.TrimSpace(modelName))
    if name == "" {
        return 8192
    }
    if v, ok := knownModelMax[name]; ok {
        return v
    }
    if strings.HasPrefix(name, "gemini-") {
        return 1_048_576
    }
    // Heuristics based on common suffixes present in model names
    for _, s := range sizeSuffixes {
        if strings.HasSuffix(name, s.suffix) {
            return s.tokens
        }
    }
    if strings.Contains(name, "-mini") {
        // Many "mini" models expose large contexts nowadays, assume 128k.
        return 128_000
    }
    // Default conservative context if unknown.
    return 8192
}

// RemainingContext computes the remaining input token budget given a model,
// a desired reservation for output generation, and the estimated prompt tokens.
// The result is never negative.
func RemainingContext(modelName string, reservedForOutput int, promptTokens int) int {
    maxCtx := ModelContextTokens(modelName)
    if reservedForOutput < 0 {
        reservedForOutput = 0
    }
    remaining := maxCtx - reservedForOutput - promptTokens
    if remaining < 0 {
        return 0
    }
    return remaining
}

// HeadroomTokens returns a safety margin subtracted from the model context
// for tokenizer and message framing overheads: the larger of 5% of the model
// context or 512 tokens.
func HeadroomTokens(modelName string) int {
    max := ModelContextTokens(modelName)
    dyn := int(math.Ceil(float64(max) * 0.05))
    if dyn < 512 {
        return 512
    }
    return dyn
}

// ContentLimit returns how many tokens of article text fit into a prompt for
// modelName once instructionTokens, the output reservation and headroom are
// taken out.
func ContentLimit(modelName string, reservedForOutput int, instructionTokens int) int {
    headroom := HeadroomTokens(modelName)
    return RemainingContext(modelName, reservedForOutput+headroom, instructionTokens)
}

// Truncate shortens s to at most maxTokens estimated tokens. It cuts at the
// last paragraph break inside the budget, else the last space, else mid-word.
// It reports whether s was shortened. maxTokens <= 0 disables truncation.
func Truncate(s string, maxTokens int) (string, bool) {
    if maxTokens <= 0 || EstimateTokens(s) <= maxTokens {
        return s, false
    }
    maxRunes := maxTokens * 4
    cut := 0
    for i := range s {
        if maxRunes == 0 {
            cut = i
            break
        }
        maxRunes--
    }
    head := s[:cut]
    if i := strings.LastIndex(head, "\n\n"); i > 0 {
        return strings.TrimSpace(head[:i]), true
    }
    if i := strings.LastIndexByte(head, ' '); i > 0 {
        return strings.TrimSpace(head[:i]), true
    }
    return head, true
}

// knownModelMax contains rough context sizes for common model identifiers.
// These are best-effort and do not need to be exhaustive.
var knownModelMax = map[string]int{
    // Gemini family
    "gemini-2.5-flash": 1_048_576,
    "gemini-2.5-pro":   1_048_576,
    "gemini-2.0-flash": 1_048_576,
    "gemini-1.5-pro":   2_097_152,
    "gemini-1.5-flash": 1_048_576,

    // OpenAI family (approximate)
    "gpt-4o":        128_000,
    "gpt-4o-mini":   128_000,
    "gpt-4-turbo":   128_000,
    "gpt-3.5-turbo": 16_384,

    // Llama and other popular OSS defaults (high variance in practice)
    "llama-3":   8_192,
    "llama-3.1": 128_000,

    // Common OSS OpenAI-compatible backends seen in the wild
    "openai/gpt-oss-20b": 4_096,
    "gpt-oss-20b":        4_096,
}

var sizeSuffixes = []struct {
    suffix string
    tokens int
}{
    {"1m", 1_000_000},
    {"512k", 512_000},
    {"200k", 200_000},
    {"180k", 180_000},
    {"128k", 128_000},
    {"32k", 32_768},
}
