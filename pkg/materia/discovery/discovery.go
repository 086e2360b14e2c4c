// Package discovery mines keyword frequency across an article set for
// sustainability issues that are not yet tracked as assessment topics.
package discovery

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/esglens/materia/pkg/materia/ingest"
	"github.com/esglens/materia/pkg/materia/news"
)

// Config controls candidate mining and filtering.
type Config struct {
	// MinTokenLen is the minimum keyword length in runes.
	MinTokenLen int

	// TopKeywords is how many of the most frequent tokens are examined.
	TopKeywords int

	// MinFrequency is the minimum corpus-wide occurrence count for a
	// keyword to stay a candidate.
	MinFrequency int

	// ScoreThreshold is the strict lower bound on the issue score.
	ScoreThreshold float64

	// MaxCandidates caps the returned list.
	MaxCandidates int

	// RecencyWindow bounds the "recent" fraction of related articles.
	RecencyWindow time.Duration

	// RelatedArticleCap is the related-article count at which that
	// score component saturates.
	RelatedArticleCap int
}

// DefaultConfig returns the production mining parameters.
func DefaultConfig() Config {
	return Config{
		MinTokenLen:       3,
		TopKeywords:       20,
		MinFrequency:      3,
		ScoreThreshold:    0.4,
		MaxCandidates:     5,
		RecencyWindow:     30 * 24 * time.Hour,
		RelatedArticleCap: 10,
	}
}

// Candidate is a keyword proposed as a new assessment topic.
type Candidate struct {
	Keyword       string   `json:"keyword"`
	Frequency     int      `json:"frequency"`
	IssueScore    float64  `json:"issue_score"`
	Confidence    float64  `json:"confidence"`
	RelatedURLs   []string `json:"related_urls,omitempty"`
	RelatedCount  int      `json:"related_count"`
	SASBCode      string   `json:"sasb_code,omitempty"`
	SASBAlignment string   `json:"sasb_alignment"`
}

// Discoverer mines new-issue candidates from article text.
type Discoverer struct {
	cfg  Config
	norm *ingest.Normalizer
}

// New creates a discoverer. The normalizer's stopword list keeps
// boilerplate words out of the frequency table.
func New(cfg Config, norm *ingest.Normalizer) *Discoverer {
	def := DefaultConfig()
	if cfg.TopKeywords <= 0 {
		cfg.TopKeywords = def.TopKeywords
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	if cfg.RelatedArticleCap <= 0 {
		cfg.RelatedArticleCap = def.RelatedArticleCap
	}
	return &Discoverer{cfg: cfg, norm: norm}
}

// Discover returns scored candidates not covered by existingTopics,
// ordered by descending issue score. Keywords that contain or are
// contained in an existing topic name are rejected so known topics are
// not rediscovered.
//
// issueScore = 0.3*freq + 0.3*related + 0.2*recent + 0.2*sentiment mix
func (d *Discoverer) Discover(articles []news.Article, existingTopics []string, now time.Time) []Candidate {
	freq := make(map[string]int)
	for _, art := range articles {
		for _, tok := range d.norm.Tokenize(art.Title+" "+art.Body(), d.cfg.MinTokenLen) {
			freq[tok]++
		}
	}
	if len(freq) == 0 {
		return nil
	}

	keywords := topKeywords(freq, d.cfg.TopKeywords)

	lowerTopics := make([]string, len(existingTopics))
	for i, t := range existingTopics {
		lowerTopics[i] = strings.ToLower(t)
	}

	var candidates []Candidate
	for _, kw := range keywords {
		if freq[kw] < d.cfg.MinFrequency {
			continue
		}
		if coveredByTopic(kw, lowerTopics) {
			continue
		}

		related := relatedArticles(articles, kw)
		score := d.score(freq[kw], related, now)
		if score <= d.cfg.ScoreThreshold {
			continue
		}

		cand := Candidate{
			Keyword:       kw,
			Frequency:     freq[kw],
			IssueScore:    score,
			Confidence:    round3(math.Min(score/2, 1.0)),
			RelatedCount:  len(related),
			SASBAlignment: "unmapped",
		}
		for _, art := range related {
			if art.URL != "" {
				cand.RelatedURLs = append(cand.RelatedURLs, art.URL)
			}
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].IssueScore != candidates[j].IssueScore {
			return candidates[i].IssueScore > candidates[j].IssueScore
		}
		return candidates[i].Keyword < candidates[j].Keyword
	})

	if len(candidates) > d.cfg.MaxCandidates {
		candidates = candidates[:d.cfg.MaxCandidates]
	}
	return candidates
}

func (d *Discoverer) score(frequency int, related []news.Article, now time.Time) float64 {
	freqScore := math.Log(float64(frequency)+1) / 10

	relatedScore := math.Min(float64(len(related))/float64(d.cfg.RelatedArticleCap), 1.0)

	recent := 0
	labels := make(map[news.Sentiment]struct{})
	for _, art := range related {
		if !art.PublishedAt.IsZero() && now.Sub(art.PublishedAt) <= d.cfg.RecencyWindow {
			recent++
		}
		switch art.Sentiment {
		case news.SentimentPositive, news.SentimentNegative:
			labels[art.Sentiment] = struct{}{}
		default:
			labels[news.SentimentNeutral] = struct{}{}
		}
	}

	recentFraction := 0.0
	if len(related) > 0 {
		recentFraction = float64(recent) / float64(len(related))
	}
	diversity := float64(len(labels)) / 3

	return round3(0.3*freqScore + 0.3*relatedScore + 0.2*recentFraction + 0.2*diversity)
}

// topKeywords returns the n most frequent tokens, ties broken
// alphabetically so output order is deterministic.
func topKeywords(freq map[string]int, n int) []string {
	keywords := make([]string, 0, len(freq))
	for kw := range freq {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if freq[keywords[i]] != freq[keywords[j]] {
			return freq[keywords[i]] > freq[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	if len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}

// coveredByTopic rejects keywords in a containment relation with any
// existing topic name, case-insensitively in both directions.
func coveredByTopic(keyword string, lowerTopics []string) bool {
	kw := strings.ToLower(keyword)
	for _, topic := range lowerTopics {
		if topic == "" {
			continue
		}
		if strings.Contains(topic, kw) || strings.Contains(kw, topic) {
			return true
		}
	}
	return false
}

func relatedArticles(articles []news.Article, keyword string) []news.Article {
	var related []news.Article
	for _, art := range articles {
		text := strings.ToLower(art.Title + " " + art.Body())
		if strings.Contains(text, keyword) {
			related = append(related, art)
		}
	}
	return related
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
