package app

import (
    "time"

    "github.com/hyperifyio/newslens/internal/extract"
    "github.com/hyperifyio/newslens/internal/fetch"
    "github.com/hyperifyio/newslens/internal/llm"
)

// Config holds runtime configuration for the application.
type Config struct {
    // Server
    Addr       string
    CORSOrigin string

    // LLM
    LLMProvider string
    LLMModel    string
    LLMAPIKey   string
    LLMBaseURL  string
    LLMTimeout  time.Duration

    // Fetch / extraction
    FetchTimeout    time.Duration
    FetchUserAgent  string
    FetchMaxBytes   int64
    ExtractStrategy string

    // Behavior
    Verbose    bool
    ConfigPath string
}

const (
    defaultAddr         = ":5000"
    defaultLLMTimeout   = 60 * time.Second
    defaultFetchTimeout = 15 * time.Second
)

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
    return Config{
        Addr:            defaultAddr,
        CORSOrigin:      "*",
        LLMProvider:     llm.ProviderGemini,
        LLMModel:        llm.DefaultModel,
        LLMTimeout:      defaultLLMTimeout,
        FetchTimeout:    defaultFetchTimeout,
        FetchUserAgent:  fetch.DefaultUserAgent,
        FetchMaxBytes:   fetch.DefaultMaxBytes,
        ExtractStrategy: extract.StrategyHeuristic,
    }
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
    ConfigPath string
    EnvFiles   []string
}

// Load builds a Config from defaults, an optional config file, dotenv files
// and the process environment, in increasing order of precedence. Flags are
// applied on top by the caller.
func Load(opts LoadOptions) (Config, error) {
    cfg := Defaults()
    if err := LoadEnvFiles(opts.EnvFiles...); err != nil {
        return cfg, err
    }
    if opts.ConfigPath != "" {
        fc, err := LoadConfigFile(opts.ConfigPath)
        if err != nil {
            return cfg, err
        }
        ApplyFileConfig(&cfg, fc)
        cfg.ConfigPath = opts.ConfigPath
    }
    ApplyEnvOverrides(&cfg)
    return cfg, nil
}
