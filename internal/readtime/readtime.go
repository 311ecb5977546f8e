// Package readtime estimates how long an article takes to read.
package readtime

import (
	"strconv"
	"strings"
)

// WordsPerMinute is the assumed reading speed.
const WordsPerMinute = 200

// Minutes returns the whole minutes needed to read content, at least 1.
func Minutes(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Estimate formats Minutes as "1 min read" or "N min read".
func Estimate(content string) string {
	m := Minutes(content)
	if m == 1 {
		return "1 min read"
	}
	return strconv.Itoa(m) + " min read"
}
