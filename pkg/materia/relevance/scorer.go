package relevance

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/esglens/materia/pkg/materia/ingest"
	"github.com/esglens/materia/pkg/materia/news"
)

// Weights controls how the per-article relevance score is assembled.
// All values are injected so deployments can tune matching behavior
// without code changes.
type Weights struct {
	// Title and Content are the base weights for matches found in the
	// article title and body respectively.
	Title   float64
	Content float64

	// ExactMatch multiplies word-boundary keyword matches; PartialMatch
	// multiplies substring-only matches.
	ExactMatch   float64
	PartialMatch float64

	// CompanyMention is a flat bonus applied once when the company name
	// appears anywhere in the article.
	CompanyMention float64

	// SentimentPositive and SentimentNegative multiply the accumulated
	// score depending on the classifier label. Neutral is 1.0.
	SentimentPositive float64
	SentimentNegative float64

	// Recency multiplies the score for articles published within
	// RecencyWindow of the analysis time.
	Recency       float64
	RecencyWindow time.Duration

	// KeywordDensity scales the additive occurrences-per-word term.
	KeywordDensity float64
}

// DefaultWeights returns the tuned production weights.
func DefaultWeights() Weights {
	return Weights{
		Title:             5.0,
		Content:           2.0,
		ExactMatch:        3.0,
		PartialMatch:      1.0,
		CompanyMention:    2.0,
		SentimentPositive: 1.3,
		SentimentNegative: 0.9,
		Recency:           1.5,
		RecencyWindow:     30 * 24 * time.Hour,
		KeywordDensity:    2.5,
	}
}

// Scorer computes how relevant a single article is to a topic's
// keyword set.
type Scorer struct {
	weights Weights
	norm    *ingest.Normalizer
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w Weights, norm *ingest.Normalizer) *Scorer {
	return &Scorer{weights: w, norm: norm}
}

// Score returns a non-negative relevance score for the article against
// the keyword set. An empty keyword set or an empty article scores 0.
//
// score = (title exact/partial + body exact/partial + company bonus)
//         x sentiment x recency + density term
func (s *Scorer) Score(article news.Article, keywords []string, companyName string, now time.Time) float64 {
	if len(keywords) == 0 || article.Empty() {
		return 0
	}

	title := strings.ToLower(ingest.StripTags(article.Title))
	body := strings.ToLower(ingest.StripTags(article.Body()))

	score := s.keywordScore(title, keywords, s.weights.Title)
	score += s.keywordScore(body, keywords, s.weights.Content)

	if companyName != "" {
		company := strings.ToLower(companyName)
		if strings.Contains(title, company) || strings.Contains(body, company) {
			score += s.weights.CompanyMention
		}
	}

	switch article.Sentiment {
	case news.SentimentPositive:
		score *= s.weights.SentimentPositive
	case news.SentimentNegative:
		score *= s.weights.SentimentNegative
	}

	if !article.PublishedAt.IsZero() && now.Sub(article.PublishedAt) <= s.weights.RecencyWindow {
		score *= s.weights.Recency
	}

	score += s.density(title+" "+body, keywords) * s.weights.KeywordDensity

	if score < 0 {
		return 0
	}
	return score
}

// MatchedKeywords returns the keywords that occur anywhere in the
// article text, preserving keyword order.
func (s *Scorer) MatchedKeywords(article news.Article, keywords []string) []string {
	text := strings.ToLower(ingest.StripTags(article.Title + " " + article.Body()))
	var matched []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// keywordScore sums exact and partial keyword matches for one text
// field at its base weight. Exact means the keyword occurs on word
// boundaries; partial means it occurs only inside a longer word.
func (s *Scorer) keywordScore(text string, keywords []string, baseWeight float64) float64 {
	if text == "" {
		return 0
	}

	exact, partial := 0, 0
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" || !strings.Contains(text, kw) {
			continue
		}
		if hasBoundaryMatch(text, kw) {
			exact++
		} else {
			partial++
		}
	}

	return float64(exact)*baseWeight*s.weights.ExactMatch +
		float64(partial)*baseWeight*s.weights.PartialMatch
}

// density is total keyword occurrences divided by the word count of
// the combined text.
func (s *Scorer) density(text string, keywords []string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}

	occurrences := 0
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		occurrences += strings.Count(text, kw)
	}

	return float64(occurrences) / float64(words)
}

// hasBoundaryMatch reports whether needle occurs in haystack with
// non-word runes (or the text edge) on both sides. Implemented by hand
// because regexp \b is ASCII-only and topic keywords are frequently
// Hangul.
func hasBoundaryMatch(haystack, needle string) bool {
	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start

		if boundaryBefore(haystack, idx) && boundaryAfter(haystack, idx+len(needle)) {
			return true
		}
		start = idx + len(needle)
		if start >= len(haystack) {
			return false
		}
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return !isWordRune(r)
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}
