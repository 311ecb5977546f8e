package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/newslens/internal/extract"
    "github.com/hyperifyio/newslens/internal/llm"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags/env.
type FileConfig struct {
    Addr string `yaml:"addr" json:"addr"`

    LLM struct {
        Provider string   `yaml:"provider" json:"provider"`
        Model    string   `yaml:"model" json:"model"`
        APIKey   string   `yaml:"key" json:"key"`
        BaseURL  string   `yaml:"base" json:"base"`
        Timeout  Duration `yaml:"timeout" json:"timeout"`
    } `yaml:"llm" json:"llm"`

    Fetch struct {
        Timeout   Duration `yaml:"timeout" json:"timeout"`
        UserAgent string   `yaml:"userAgent" json:"userAgent"`
        MaxBytes  int64    `yaml:"maxBytes" json:"maxBytes"`
    } `yaml:"fetch" json:"fetch"`

    Extract struct {
        Strategy string `yaml:"strategy" json:"strategy"`
    } `yaml:"extract" json:"extract"`

    CORS struct {
        Origin string `yaml:"origin" json:"origin"`
    } `yaml:"cors" json:"cors"`

    Verbose bool `yaml:"verbose" json:"verbose"`
}

// Duration accepts Go duration strings ("30s") in YAML and JSON.
type Duration time.Duration

func (d *Duration) parse(s string) error {
    s = strings.TrimSpace(s)
    if s == "" {
        *d = 0
        return nil
    }
    v, err := time.ParseDuration(s)
    if err != nil {
        return err
    }
    *d = Duration(v)
    return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
    return d.parse(n.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return fmt.Errorf("duration must be a string like \"30s\": %w", err)
    }
    return d.parse(s)
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. Zero values in the
// file leave cfg untouched.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if fc.Addr != "" { cfg.Addr = fc.Addr }
    if fc.CORS.Origin != "" { cfg.CORSOrigin = fc.CORS.Origin }

    if fc.LLM.Provider != "" { cfg.LLMProvider = strings.ToLower(strings.TrimSpace(fc.LLM.Provider)) }
    if fc.LLM.Model != "" { cfg.LLMModel = fc.LLM.Model }
    if fc.LLM.APIKey != "" { cfg.LLMAPIKey = fc.LLM.APIKey }
    if fc.LLM.BaseURL != "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
    if fc.LLM.Timeout > 0 { cfg.LLMTimeout = time.Duration(fc.LLM.Timeout) }

    if fc.Fetch.Timeout > 0 { cfg.FetchTimeout = time.Duration(fc.Fetch.Timeout) }
    if fc.Fetch.UserAgent != "" { cfg.FetchUserAgent = fc.Fetch.UserAgent }
    if fc.Fetch.MaxBytes > 0 { cfg.FetchMaxBytes = fc.Fetch.MaxBytes }
    if fc.Extract.Strategy != "" { cfg.ExtractStrategy = strings.ToLower(strings.TrimSpace(fc.Extract.Strategy)) }

    if fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig performs minimal schema validation. A missing API key is not
// an error here; the server starts and reports it per request.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.Addr) == "" {
        return errors.New("config: addr is required (or set PORT)")
    }
    switch cfg.LLMProvider {
    case llm.ProviderGemini, llm.ProviderOpenAI:
    default:
        return fmt.Errorf("config: unknown llm.provider %q (want %s or %s)", cfg.LLMProvider, llm.ProviderGemini, llm.ProviderOpenAI)
    }
    if strings.TrimSpace(cfg.LLMModel) == "" {
        return errors.New("config: llm.model is required (or set LLM_MODEL)")
    }
    if _, err := extract.New(cfg.ExtractStrategy); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    if cfg.LLMTimeout < 0 || cfg.FetchTimeout < 0 || cfg.FetchMaxBytes < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    return nil
}
