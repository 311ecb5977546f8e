package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/newslens/internal/analyze"
	"github.com/hyperifyio/newslens/internal/app"
	"github.com/hyperifyio/newslens/internal/report"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one article and print the result",
		Long: `Analyze one article given by --url, --file or standard input and print the
summary, bias assessment and reading time as JSON or Markdown.`,
		Example: `  newslens analyze --url https://example.com/news/story --tone facts
  newslens analyze --file article.txt --format markdown --pdf analysis.pdf
  pbpaste | newslens analyze --tone simple`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}
	f := cmd.Flags()
	f.String("url", "", "Article URL to fetch and extract")
	f.String("file", "", "Path to a text file with the article content")
	f.StringP("tone", "t", "neutral", "Summary tone: neutral, facts or simple")
	f.StringP("format", "f", formatJSON, "Output format: json or markdown")
	f.String("pdf", "", "Also write the result as a PDF to this path")
	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	rawURL, _ := flags.GetString("url")
	file, _ := flags.GetString("file")
	tone, _ := flags.GetString("tone")
	format, _ := flags.GetString("format")
	pdfPath, _ := flags.GetString("pdf")

	if format != formatJSON && format != formatMarkdown {
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatJSON, formatMarkdown)
	}
	if rawURL != "" && file != "" {
		return errors.New("use either --url or --file, not both")
	}

	req := analyze.Request{URL: rawURL, Tone: tone}
	if rawURL == "" {
		content, err := readContent(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}
		req.Content = content
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	res, err := a.Service().Analyze(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case formatMarkdown:
		if _, err := io.WriteString(out, report.Markdown(res)); err != nil {
			return err
		}
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	if pdfPath != "" {
		if err := report.WritePDF(res, pdfPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", pdfPath).Msg("wrote PDF")
	}
	return nil
}

func readContent(stdin io.Reader, file string) (string, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read article: %w", err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}
