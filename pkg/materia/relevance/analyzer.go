package relevance

import (
	"math"
	"sort"
	"time"

	"github.com/esglens/materia/pkg/materia/news"
)

// Trend directions for a topic's month-over-month coverage.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// AnalyzerConfig controls per-topic aggregation.
type AnalyzerConfig struct {
	// RelevanceThreshold is the strict lower bound an article's score
	// must exceed to count as relevant to the topic.
	RelevanceThreshold float64

	// TopArticles caps how many of the highest-scored articles are
	// retained as supporting evidence.
	TopArticles int

	// CoverageGrowth and CoverageDrop are the month-over-month count
	// ratios beyond which the trend is called increasing or decreasing.
	CoverageGrowth float64
	CoverageDrop   float64
}

// DefaultAnalyzerConfig returns the production thresholds.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		RelevanceThreshold: 0.3,
		TopArticles:        10,
		CoverageGrowth:     1.5,
		CoverageDrop:       0.5,
	}
}

// ScoredArticle pairs an article with its relevance score and the
// keywords that matched it.
type ScoredArticle struct {
	Article         news.Article `json:"article"`
	Score           float64      `json:"score"`
	MatchedKeywords []string     `json:"matched_keywords"`
}

// TopicAnalysis is the aggregate view of one topic's news coverage.
type TopicAnalysis struct {
	TopicName          string                 `json:"topic_name"`
	TotalArticles      int                    `json:"total_articles"`
	RelevantArticles   int                    `json:"relevant_articles"`
	ComprehensiveScore float64                `json:"comprehensive_score"`
	MatchedKeywords    []string               `json:"matched_keywords"`
	KeywordCoverage    float64                `json:"keyword_coverage"`
	TrendDirection     string                 `json:"trend_direction"`
	RecentIncrease     bool                   `json:"recent_increase"`
	PeakPeriod         string                 `json:"peak_period,omitempty"`
	DominantSentiment  news.Sentiment         `json:"dominant_sentiment"`
	SentimentCounts    map[news.Sentiment]int `json:"sentiment_counts"`
	TopArticles        []ScoredArticle        `json:"top_articles,omitempty"`
}

// Analyzer rolls per-article relevance scores up into one
// comprehensive score plus a trend summary per topic.
type Analyzer struct {
	cfg    AnalyzerConfig
	scorer *Scorer
}

// NewAnalyzer creates an analyzer over the given scorer.
func NewAnalyzer(cfg AnalyzerConfig, scorer *Scorer) *Analyzer {
	if cfg.TopArticles <= 0 {
		cfg.TopArticles = DefaultAnalyzerConfig().TopArticles
	}
	return &Analyzer{cfg: cfg, scorer: scorer}
}

// Analyze scores every article against the topic keywords and
// aggregates the relevant ones.
//
// comprehensive = 0.4*avg(relevance) + 0.3*ln(1+relevant) + 0.3*coverage
func (a *Analyzer) Analyze(topicName string, articles []news.Article, keywords []string, companyName string, now time.Time) TopicAnalysis {
	analysis := TopicAnalysis{
		TopicName:         topicName,
		TotalArticles:     len(articles),
		TrendDirection:    TrendStable,
		DominantSentiment: news.SentimentNeutral,
		SentimentCounts:   make(map[news.Sentiment]int),
	}

	var relevant []ScoredArticle
	for _, art := range articles {
		score := a.scorer.Score(art, keywords, companyName, now)
		if score <= a.cfg.RelevanceThreshold {
			continue
		}
		relevant = append(relevant, ScoredArticle{
			Article:         art,
			Score:           score,
			MatchedKeywords: a.scorer.MatchedKeywords(art, keywords),
		})
	}

	analysis.RelevantArticles = len(relevant)
	if len(relevant) == 0 {
		return analysis
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].Score > relevant[j].Score
	})

	sum := 0.0
	matched := make(map[string]struct{})
	for _, sa := range relevant {
		sum += sa.Score
		for _, kw := range sa.MatchedKeywords {
			if _, ok := matched[kw]; !ok {
				matched[kw] = struct{}{}
				analysis.MatchedKeywords = append(analysis.MatchedKeywords, kw)
			}
		}
		analysis.SentimentCounts[normalizeSentiment(sa.Article.Sentiment)]++
	}
	sort.Strings(analysis.MatchedKeywords)

	avg := sum / float64(len(relevant))
	coverage := 0.0
	if len(keywords) > 0 {
		coverage = float64(len(matched)) / float64(len(keywords))
	}
	analysis.KeywordCoverage = coverage
	analysis.ComprehensiveScore = round3(0.4*avg + 0.3*math.Log(1+float64(len(relevant))) + 0.3*coverage)

	a.fillTrend(&analysis, relevant)
	analysis.DominantSentiment = dominantSentiment(analysis.SentimentCounts)

	top := a.cfg.TopArticles
	if top > len(relevant) {
		top = len(relevant)
	}
	analysis.TopArticles = relevant[:top]

	return analysis
}

// fillTrend buckets relevant articles by publication month and compares
// the two most recent non-empty buckets.
func (a *Analyzer) fillTrend(analysis *TopicAnalysis, relevant []ScoredArticle) {
	buckets := make(map[string]int)
	for _, sa := range relevant {
		if sa.Article.PublishedAt.IsZero() {
			continue
		}
		buckets[sa.Article.PublishedAt.Format("2006-01")]++
	}
	if len(buckets) == 0 {
		return
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	peak := months[0]
	for _, m := range months[1:] {
		if buckets[m] > buckets[peak] {
			peak = m
		}
	}
	analysis.PeakPeriod = peak

	if len(months) < 2 {
		return
	}

	latest := float64(buckets[months[len(months)-1]])
	prior := float64(buckets[months[len(months)-2]])

	switch {
	case latest > prior*a.cfg.CoverageGrowth:
		analysis.TrendDirection = TrendIncreasing
		analysis.RecentIncrease = true
	case latest < prior*a.cfg.CoverageDrop:
		analysis.TrendDirection = TrendDecreasing
	default:
		analysis.TrendDirection = TrendStable
	}
}

func normalizeSentiment(s news.Sentiment) news.Sentiment {
	switch s {
	case news.SentimentPositive, news.SentimentNegative:
		return s
	default:
		return news.SentimentNeutral
	}
}

// dominantSentiment is a majority vote, neutral on ties or no votes.
func dominantSentiment(counts map[news.Sentiment]int) news.Sentiment {
	pos := counts[news.SentimentPositive]
	neg := counts[news.SentimentNegative]
	neu := counts[news.SentimentNeutral]

	switch {
	case pos > neg && pos > neu:
		return news.SentimentPositive
	case neg > pos && neg > neu:
		return news.SentimentNegative
	default:
		return news.SentimentNeutral
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
