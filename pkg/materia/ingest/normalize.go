package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Normalizer cleans raw article text for comparison and token mining.
// It strips HTML markup, drops everything but letters, digits and
// whitespace (Hangul and other non-Latin scripts included), collapses
// runs of whitespace and lowercases the result.
type Normalizer struct {
	stopwords map[string]struct{}
}

// NewNormalizer creates a normalizer with the given stopword list.
// Stopwords only affect Tokenize; Normalize keeps them.
func NewNormalizer(stopwords []string) *Normalizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopwords: stops}
}

// Normalize returns the cleaned, lowercased form of text.
func (n *Normalizer) Normalize(text string) string {
	text = StripTags(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize normalizes text and splits it on whitespace, filtering
// stopwords and tokens of fewer than minLen runes. minLen <= 0 keeps
// every token.
func (n *Normalizer) Tokenize(text string, minLen int) []string {
	var tokens []string
	for _, tok := range strings.Fields(n.Normalize(text)) {
		if minLen > 0 && len([]rune(tok)) < minLen {
			continue
		}
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// AddStopword adds a token to the stopword set. Call it while setting
// the normalizer up; it must not race with Tokenize on a shared
// normalizer.
func (n *Normalizer) AddStopword(token string) {
	n.stopwords[strings.ToLower(token)] = struct{}{}
}

// StripTags removes HTML markup, returning the concatenated text
// content. Plain text passes through unchanged apart from entity
// decoding.
func StripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(b.String())
}
