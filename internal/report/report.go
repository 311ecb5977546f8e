// Package report renders an analysis result as Markdown or PDF for the CLI.
package report

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/newslens/internal/analyze"
	"github.com/hyperifyio/newslens/internal/bias"
)

// DefaultTitle heads reports for pasted text that carries no title.
const DefaultTitle = "Article Analysis"

// Markdown formats res as a small Markdown document.
func Markdown(res analyze.Result) string {
	title := strings.TrimSpace(res.Title)
	if title == "" {
		title = DefaultTitle
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "**Reading time:** %s\n\n", res.ReadingTime)

	sb.WriteString("## Summary\n\n")
	sb.WriteString(strings.TrimSpace(res.Summary))
	sb.WriteString("\n\n")

	b := res.BiasAnalysis
	sb.WriteString("## Bias Analysis\n\n")
	fmt.Fprintf(&sb, "**Overall score:** %d/100 (%s)\n\n", b.OverallScore, b.Level)
	writeIndicator(&sb, "Language tone", b.Indicators.LanguageTone)
	writeIndicator(&sb, "Source diversity", b.Indicators.SourceDiversity)
	writeIndicator(&sb, "Fact verification", b.Indicators.FactVerification)

	if len(b.Recommendations) > 0 {
		sb.WriteString("\n### Recommendations\n\n")
		for _, r := range b.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}
	return sb.String()
}

func writeIndicator(sb *strings.Builder, name string, ind bias.Indicator) {
	fmt.Fprintf(sb, "- **%s:** %d (%s) %s\n", name, ind.Score, ind.Status, ind.Description)
}
