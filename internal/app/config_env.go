package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when the
// corresponding env vars are set. Env takes precedence over the config file
// while flags remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
        if strings.Contains(v, ":") {
            cfg.Addr = v
        } else {
            cfg.Addr = ":" + v
        }
    }
    if v := os.Getenv("CORS_ORIGIN"); v != "" { cfg.CORSOrigin = v }

    if v := os.Getenv("LLM_PROVIDER"); v != "" { cfg.LLMProvider = strings.ToLower(strings.TrimSpace(v)) }
    if v := os.Getenv("LLM_MODEL"); v != "" { cfg.LLMModel = v }
    if v := os.Getenv("LLM_BASE_URL"); v != "" { cfg.LLMBaseURL = v }
    // GEMINI_API_KEY wins over the generic name when both are set
    if v := os.Getenv("LLM_API_KEY"); v != "" { cfg.LLMAPIKey = v }
    if v := os.Getenv("GEMINI_API_KEY"); v != "" { cfg.LLMAPIKey = v }

    if v := os.Getenv("FETCH_USER_AGENT"); v != "" { cfg.FetchUserAgent = v }
    if v := os.Getenv("EXTRACT_STRATEGY"); v != "" { cfg.ExtractStrategy = strings.ToLower(strings.TrimSpace(v)) }
    if v := strings.TrimSpace(os.Getenv("FETCH_MAX_BYTES")); v != "" {
        if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
            cfg.FetchMaxBytes = n
        }
    }

    setDuration := func(dst *time.Duration, envKey string) {
        if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
            if d, err := time.ParseDuration(s); err == nil && d > 0 {
                *dst = d
            }
        }
    }
    setDuration(&cfg.LLMTimeout, "LLM_TIMEOUT")
    setDuration(&cfg.FetchTimeout, "FETCH_TIMEOUT")

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.Verbose, "VERBOSE")
}
