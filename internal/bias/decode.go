package bias

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Defaults applied when a decoded response omits a field.
const (
	defaultOverallScore   = 25
	defaultLevel          = LevelLow
	defaultIndicatorScore = 80
	defaultStatus         = StatusGood
	defaultDescription    = "Analysis complete"
)

// ErrNotObject is returned when the response is valid JSON but not an object.
var ErrNotObject = errors.New("bias response is not a JSON object")

var fenceRe = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \t]*\r?\n?(.*?)\r?\n?[ \t]*```")

// stripCodeFence returns the body of the first fenced block in s, or s
// trimmed when there is none.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ParseReport repairs and decodes a model response. Every field falls back to
// its default when absent or of the wrong type; only a response that is not a
// JSON object at all is rejected.
func ParseReport(raw string) (Report, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &fields); err != nil {
		return Report{}, fmt.Errorf("parse bias json: %w", err)
	}
	if fields == nil {
		return Report{}, ErrNotObject
	}

	var indicators map[string]json.RawMessage
	if !absent(fields["indicators"]) {
		// a non-object value counts as an empty mapping
		_ = json.Unmarshal(fields["indicators"], &indicators)
	}
	return Report{
		OverallScore: decodeScore(fields["overallScore"], defaultOverallScore),
		Level:        decodeLevel(fields["level"]),
		Indicators: Indicators{
			LanguageTone:     decodeIndicator(indicators["languageTone"]),
			SourceDiversity:  decodeIndicator(indicators["sourceDiversity"]),
			FactVerification: decodeIndicator(indicators["factVerification"]),
		},
		Recommendations: decodeRecommendations(fields["recommendations"]),
	}, nil
}

func absent(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// decodeScore accepts numbers and numeric strings, rounds, and clamps to 0..100.
func decodeScore(raw json.RawMessage, def int) int {
	if absent(raw) {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return def
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return def
		}
		f = v
	}
	if math.IsNaN(f) {
		return def
	}
	return int(math.Max(0, math.Min(100, math.Round(f))))
}

func decodeString(raw json.RawMessage) string {
	if absent(raw) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func decodeLevel(raw json.RawMessage) Level {
	s := decodeString(raw)
	for _, l := range Levels {
		if strings.EqualFold(s, string(l)) {
			return l
		}
	}
	return defaultLevel
}

func decodeStatus(raw json.RawMessage) Status {
	s := decodeString(raw)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st
		}
	}
	return defaultStatus
}

func decodeIndicator(raw json.RawMessage) Indicator {
	var fields map[string]json.RawMessage
	if absent(raw) || json.Unmarshal(raw, &fields) != nil || fields == nil {
		return Indicator{Score: defaultIndicatorScore, Status: defaultStatus, Description: defaultDescription}
	}
	desc := decodeString(fields["description"])
	if desc == "" {
		desc = defaultDescription
	}
	return Indicator{
		Score:       decodeScore(fields["score"], defaultIndicatorScore),
		Status:      decodeStatus(fields["status"]),
		Description: desc,
	}
}

// decodeRecommendations keeps the non-empty string entries in order.
func decodeRecommendations(raw json.RawMessage) []string {
	out := []string{}
	if absent(raw) {
		return out
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		if s := decodeString(raw); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range items {
		if s := decodeString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
