package extract

import (
	"bytes"
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// UntitledArticle is used when no title heuristic matches.
const UntitledArticle = "Untitled Article"

// MinContentChars is the minimum length of usable article text.
const MinContentChars = 100

// candidateMinChars is the length a container must reach before the
// paragraph fallback is skipped.
const candidateMinChars = 200

// ErrInsufficientContent indicates that no heuristic produced enough text.
var ErrInsufficientContent = errors.New("could not extract sufficient article content from the provided URL")

// Article is the best-effort readable content of a page.
type Article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Candidate is a container selector tried during content resolution. When two
// candidates yield text of equal length, the higher Priority wins.
type Candidate struct {
	Selector string
	Priority int
}

// Candidates is the ordered list of containers that commonly hold an article body.
var Candidates = []Candidate{
	{Selector: "article", Priority: 90},
	{Selector: `[role="main"]`, Priority: 80},
	{Selector: ".article-content", Priority: 70},
	{Selector: ".post-content", Priority: 65},
	{Selector: ".entry-content", Priority: 60},
	{Selector: ".story-body", Priority: 55},
	{Selector: ".article-body", Priority: 50},
	{Selector: "main", Priority: 40},
	{Selector: ".content", Priority: 30},
}

// NoiseSelector matches subtrees stripped from a candidate before reading its text.
const NoiseSelector = "script, style, noscript, iframe, nav, header, footer, aside, .ad, .advertisement, .social-share"

var (
	noiseMatcher     = cascadia.MustCompile(NoiseSelector)
	paragraphMatcher = cascadia.MustCompile("p")
	blankLineRe      = regexp.MustCompile(`\n\s*\n`)
)

// FromHTML isolates the title and article body of an HTML page using layered
// heuristics: container candidates with noise stripped, longest text wins,
// and a paragraph fallback when no container looks complete.
func FromHTML(input []byte) (Article, error) {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil {
		return Article{}, err
	}
	doc := goquery.NewDocumentFromNode(node)

	// Title first: noise stripping may remove the header holding the <h1>.
	title := resolveTitle(doc)

	results := make([]candidateText, 0, len(Candidates))
	for _, c := range Candidates {
		m, err := cascadia.Compile(c.Selector)
		if err != nil {
			continue
		}
		sel := doc.FindMatcher(m)
		if sel.Length() == 0 {
			continue
		}
		stripNoise(sel)
		results = append(results, candidateText{Candidate: c, Text: selectionText(sel)})
	}
	content := pickLongest(results)

	if charCount(content) < candidateMinChars {
		content = paragraphText(doc)
	}
	if charCount(content) < MinContentChars {
		return Article{}, ErrInsufficientContent
	}
	return Article{Title: title, Content: content}, nil
}

type candidateText struct {
	Candidate
	Text string
}

// pickLongest returns the longest candidate text, preferring higher priority on ties.
func pickLongest(results []candidateText) string {
	sorted := append([]candidateText(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })
	best := ""
	for _, r := range sorted {
		if charCount(r.Text) > charCount(best) {
			best = r.Text
		}
	}
	return best
}

func resolveTitle(doc *goquery.Document) string {
	options := []string{
		doc.Find("h1").First().Text(),
		doc.Find("title").First().Text(),
		doc.Find(`meta[property="og:title"]`).AttrOr("content", ""),
	}
	for _, t := range options {
		if t = collapseSpaces(t); t != "" {
			return cleanTitle(t)
		}
	}
	return UntitledArticle
}

// cleanTitle drops a trailing site name such as "Story - Site" or "Story | Site".
func cleanTitle(t string) string {
	t, _, _ = strings.Cut(t, " - ")
	t, _, _ = strings.Cut(t, " | ")
	t = strings.TrimSpace(t)
	if t == "" {
		return UntitledArticle
	}
	return t
}

func stripNoise(sel *goquery.Selection) {
	sel.FindMatcher(noiseMatcher).Remove()
	sel.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return isBoilerplateContainer(s.Get(0))
	}).Remove()
}

// selectionText renders the text of every outermost node in sel. Nested
// matches are skipped so their text is not counted twice.
func selectionText(sel *goquery.Selection) string {
	in := make(map[*html.Node]bool, len(sel.Nodes))
	for _, n := range sel.Nodes {
		in[n] = true
	}
	var b strings.Builder
	for _, n := range sel.Nodes {
		if hasAncestorIn(n, in) {
			continue
		}
		collectText(&b, n)
		b.WriteString("\n\n")
	}
	return normalizeWhitespace(b.String())
}

func hasAncestorIn(n *html.Node, set map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if set[p] {
			return true
		}
	}
	return false
}

func paragraphText(doc *goquery.Document) string {
	parts := make([]string, 0, 16)
	doc.FindMatcher(paragraphMatcher).Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(s.Text()))
	})
	return normalizeWhitespace(strings.Join(parts, "\n\n"))
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch name {
		case "script", "style", "noscript", "template":
			return
		case "br", "hr":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "blockquote", "figcaption":
			// Add a newline before block starts to ensure separation
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "figcaption", "pre":
			b.WriteString("\n\n")
		case "li":
			b.WriteString("\n")
		}
	}
}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		if containsAny(strings.ToLower(attr.Val), []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// normalizeWhitespace keeps paragraph breaks as exactly one blank line and
// collapses every other whitespace run to a single space.
func normalizeWhitespace(s string) string {
	blocks := blankLineRe.Split(s, -1)
	out := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if collapsed := collapseSpaces(block); collapsed != "" {
			out = append(out, collapsed)
		}
	}
	return norm.NFC.String(strings.Join(out, "\n\n"))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func charCount(s string) int {
	return utf8.RuneCountInString(s)
}
