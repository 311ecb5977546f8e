package template

import "strings"

// Tone selects the style of a summary.
type Tone string

const (
	// Neutral is a balanced, professional summary without commentary
	Neutral Tone = "neutral"
	// Facts lists only concrete facts, figures and dates
	Facts Tone = "facts"
	// Simple explains the article in plain language for a young reader
	Simple Tone = "simple"
	// Default is the generic prompt used for unrecognized tones
	Default Tone = ""
)

// Tones lists the tones accepted from callers, in display order.
var Tones = []Tone{Neutral, Facts, Simple}

// Valid reports whether t is one of the accepted tones. The comparison is exact.
func (t Tone) Valid() bool {
	for _, v := range Tones {
		if t == v {
			return true
		}
	}
	return false
}

// Profile defines the prompt used for a specific tone
type Profile struct {
	Tone        Tone
	Name        string
	Instruction string
}

// Prompt joins the instruction and the article content into a single-turn prompt.
func (p Profile) Prompt(content string) string {
	return p.Instruction + ":\n\n" + content
}

// GetProfile returns the profile for the given tone. Unknown tones get the
// generic profile.
func GetProfile(tone string) Profile {
	switch Tone(strings.ToLower(strings.TrimSpace(tone))) {
	case Neutral:
		return neutralProfile()
	case Facts:
		return factsProfile()
	case Simple:
		return simpleProfile()
	default:
		return defaultProfile()
	}
}

func neutralProfile() Profile {
	return Profile{
		Tone:        Neutral,
		Name:        "Neutral",
		Instruction: "Please summarize the following news article in a balanced, professional manner. Focus on the key facts and main points without editorial commentary. Keep it concise but comprehensive",
	}
}

func factsProfile() Profile {
	return Profile{
		Tone:        Facts,
		Name:        "Just the facts",
		Instruction: "Extract only the key facts, figures, dates, and concrete information from the following news article. Avoid opinions, analysis, or commentary. Present as clear bullet points or concise statements",
	}
}

func simpleProfile() Profile {
	return Profile{
		Tone:        Simple,
		Name:        "Simple",
		Instruction: "Explain this news article in very simple language that a 10-year-old could understand. Use short sentences, common words, and explain any complex terms. Write plain text without any markdown syntax. Make it engaging but easy to follow",
	}
}

func defaultProfile() Profile {
	return Profile{
		Tone:        Default,
		Name:        "Summary",
		Instruction: "Please summarize the following news article",
	}
}
