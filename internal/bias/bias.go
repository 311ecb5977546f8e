package bias

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newslens/internal/llm"
)

// Level grades the overall bias score.
type Level string

const (
	LevelVeryLow  Level = "Very Low"
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelHigh     Level = "High"
	LevelVeryHigh Level = "Very High"
)

// Levels lists every accepted level from least to most biased.
var Levels = []Level{LevelVeryLow, LevelLow, LevelMedium, LevelHigh, LevelVeryHigh}

// Status is the traffic-light verdict of a single indicator.
type Status string

const (
	StatusGood    Status = "Good"
	StatusCaution Status = "Caution"
	StatusWarning Status = "Warning"
)

// Statuses lists every accepted indicator status.
var Statuses = []Status{StatusGood, StatusCaution, StatusWarning}

// Indicator scores one dimension of the analysis.
type Indicator struct {
	Score       int    `json:"score"`
	Status      Status `json:"status"`
	Description string `json:"description"`
}

// Indicators holds the three dimensions every report carries.
type Indicators struct {
	LanguageTone     Indicator `json:"languageTone"`
	SourceDiversity  Indicator `json:"sourceDiversity"`
	FactVerification Indicator `json:"factVerification"`
}

// Report is a fully populated bias assessment. Reports returned by Analyzer
// never have missing fields and Recommendations is never nil.
type Report struct {
	OverallScore    int        `json:"overallScore"`
	Level           Level      `json:"level"`
	Indicators      Indicators `json:"indicators"`
	Recommendations []string   `json:"recommendations"`
}

// Fallback returns the fixed report used when the model is unavailable or its
// output cannot be decoded.
func Fallback() Report {
	return Report{
		OverallScore: 25,
		Level:        LevelLow,
		Indicators: Indicators{
			LanguageTone:     Indicator{Score: 80, Status: StatusGood, Description: "Neutral language detected"},
			SourceDiversity:  Indicator{Score: 75, Status: StatusGood, Description: "Multiple perspectives present"},
			FactVerification: Indicator{Score: 85, Status: StatusGood, Description: "Claims appear verifiable"},
		},
		Recommendations: []string{
			"Cross-reference with additional sources",
			"Look for opposing viewpoints",
			"Verify factual claims independently",
		},
	}
}

// Analyzer elicits a structured bias report from the model and repairs its
// output, falling back to a fixed report so callers always get a valid one.
type Analyzer struct {
	Generator llm.Generator
	// Timeout bounds the model call. Zero leaves it to the caller's context.
	Timeout time.Duration
}

// Analyze never fails: any model, timeout or decoding error yields Fallback().
func (a *Analyzer) Analyze(ctx context.Context, content string) Report {
	if a == nil || a.Generator == nil {
		return Fallback()
	}
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	raw, err := a.Generator.Generate(ctx, buildPrompt(content))
	if err != nil {
		log.Warn().Err(err).Msg("bias analysis call failed; using fallback report")
		return Fallback()
	}
	if strings.TrimSpace(raw) == "" {
		log.Warn().Msg("empty bias analysis response; using fallback report")
		return Fallback()
	}
	log.Debug().Str("raw", raw).Msg("bias analysis response")
	rep, err := ParseReport(raw)
	if err != nil {
		log.Warn().Err(err).Msg("bias analysis response not decodable; using fallback report")
		return Fallback()
	}
	return rep
}

const systemPreamble = `You are a journalism expert specializing in bias detection.
Analyze articles objectively and provide constructive feedback.
Respond with JSON in this format:
{'overallScore': number, 'level': string, 'indicators': object, 'recommendations': array}`

const instructions = `Analyze the following news article for potential bias. Consider language tone, source diversity, emotional language, and factual accuracy. Return your analysis as JSON with this exact structure:

{
  "overallScore": number (0-100, where 0 is no bias, 100 is very biased),
  "level": "Very Low" | "Low" | "Medium" | "High" | "Very High",
  "indicators": {
    "languageTone": {
      "score": number (0-100),
      "status": "Good" | "Caution" | "Warning",
      "description": "brief description of the language tone analysis"
    },
    "sourceDiversity": {
      "score": number (0-100),
      "status": "Good" | "Caution" | "Warning",
      "description": "brief description of source diversity"
    },
    "factVerification": {
      "score": number (0-100),
      "status": "Good" | "Caution" | "Warning",
      "description": "brief description of fact verification"
    }
  },
  "recommendations": ["recommendation 1", "recommendation 2", "recommendation 3"]
}

Article to analyze:
`

func buildPrompt(content string) string {
	var sb strings.Builder
	sb.Grow(len(systemPreamble) + len(instructions) + len(content) + 2)
	sb.WriteString(systemPreamble)
	sb.WriteString("\n\n")
	sb.WriteString(instructions)
	sb.WriteString(content)
	return sb.String()
}
