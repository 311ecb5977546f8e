package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/newslens/internal/app"
)

// NewRootCmd creates the root command with the shared configuration flags.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newslens",
		Short: "Summarize news articles and assess their bias",
		Long: `NewsLens extracts the article text from a URL or takes pasted text,
writes a tone-adjusted summary and a structured bias assessment with a
generative model, and estimates the reading time.

Configuration is read from an optional --config file, then .env files and the
environment, then flags.`,
		Version:       app.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML or JSON config file")
	pf.StringSlice("env-file", []string{".env"}, "Dotenv files to load (later files override earlier ones)")
	pf.BoolP("verbose", "v", false, "Verbose logging")
	pf.String("llm.provider", "", "Model provider: gemini or openai")
	pf.String("llm.model", "", "Model name")
	pf.String("llm.key", "", "Model API key")
	pf.String("llm.base", "", "Model base URL (OpenAI-compatible endpoint or Gemini override)")
	pf.Duration("llm.timeout", 0, "Timeout for each model call")
	pf.Duration("fetch.timeout", 0, "Timeout for each article fetch")
	pf.String("fetch.userAgent", "", "User-Agent sent when fetching articles")
	pf.String("extract.strategy", "", "Extraction strategy: heuristic or readability")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// setupLogging points the global zerolog logger at w with the console writer.
func setupLogging(w io.Writer, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// loadConfig layers config file, dotenv, environment and changed flags, then
// validates the result and configures logging.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	envFiles, _ := flags.GetStringSlice("env-file")

	cfg, err := app.Load(app.LoadOptions{ConfigPath: configPath, EnvFiles: envFiles})
	if err != nil {
		return cfg, err
	}

	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}
	str := func(name string, dst *string) {
		if changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	dur := func(name string, dst *time.Duration) {
		if changed(name) {
			*dst, _ = flags.GetDuration(name)
		}
	}
	str("llm.provider", &cfg.LLMProvider)
	str("llm.model", &cfg.LLMModel)
	str("llm.key", &cfg.LLMAPIKey)
	str("llm.base", &cfg.LLMBaseURL)
	dur("llm.timeout", &cfg.LLMTimeout)
	dur("fetch.timeout", &cfg.FetchTimeout)
	str("fetch.userAgent", &cfg.FetchUserAgent)
	str("extract.strategy", &cfg.ExtractStrategy)
	str("addr", &cfg.Addr)
	str("cors.origin", &cfg.CORSOrigin)
	if changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}

	setupLogging(cmd.ErrOrStderr(), cfg.Verbose)
	if err := app.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
