// Package recommend merges topic changes, new-issue candidates and the
// overall trend into a ranked, confidence-scored recommendation list.
package recommend

import (
	"crypto/rand"
	"fmt"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/esglens/materia/pkg/materia/change"
	"github.com/esglens/materia/pkg/materia/discovery"
	"github.com/esglens/materia/pkg/materia/news"
)

// Recommendation types.
const (
	TypePriorityReview = "priority_review"
	TypeOverallReview  = "overall_review"
	TypeNewIssue       = "new_issue"
)

// Config controls recommendation generation.
type Config struct {
	// SignificantChange is the |magnitude| a topic change must exceed
	// to produce a priority-review recommendation.
	SignificantChange float64

	// MaxRecommendations caps the final list.
	MaxRecommendations int
}

// DefaultConfig returns the production parameters.
func DefaultConfig() Config {
	return Config{
		SignificantChange:  0.3,
		MaxRecommendations: 10,
	}
}

// Evidence carries the supporting counts behind a recommendation.
type Evidence struct {
	ArticleCount      int            `json:"article_count"`
	DominantSentiment news.Sentiment `json:"dominant_sentiment,omitempty"`
}

// Recommendation is one suggested action for the next assessment cycle.
type Recommendation struct {
	ID         string   `json:"id"`
	Subject    string   `json:"subject"`
	Type       string   `json:"type"`
	Action     string   `json:"action"`
	Rationale  string   `json:"rationale"`
	Confidence float64  `json:"confidence"`
	Evidence   Evidence `json:"evidence"`
}

// Engine generates recommendations. Safe for concurrent use.
type Engine struct {
	cfg Config

	mu      sync.Mutex // guards entropy
	entropy *ulid.MonotonicEntropy
}

// New creates an engine.
func New(cfg Config) *Engine {
	if cfg.MaxRecommendations <= 0 {
		cfg.MaxRecommendations = DefaultConfig().MaxRecommendations
	}
	return &Engine{
		cfg:     cfg,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Recommend builds the final list: one entry per significant topic
// change, one per accepted new issue, and a comprehensive-review entry
// when update necessity is high. The result is sorted by descending
// confidence, deduplicated by subject (first wins) and truncated to
// MaxRecommendations.
func (e *Engine) Recommend(changes []change.TopicChange, issues []discovery.Candidate, trend change.OverallTrend) []Recommendation {
	var recs []Recommendation

	for _, c := range changes {
		mag := c.ChangeMagnitude
		if mag < 0 {
			mag = -mag
		}
		if mag <= e.cfg.SignificantChange {
			continue
		}

		direction := "upward"
		if c.ChangeMagnitude < 0 {
			direction = "downward"
		}

		recs = append(recs, Recommendation{
			ID:      e.newID(),
			Subject: c.TopicName,
			Type:    TypePriorityReview,
			Action:  fmt.Sprintf("%s priority review for %q", direction, c.TopicName),
			Rationale: fmt.Sprintf("relevance moved %+.3f against its prior rank of %d (%s)",
				c.ChangeMagnitude, c.PreviousPriority, c.ChangeType),
			Confidence: c.Confidence,
			Evidence: Evidence{
				ArticleCount:      c.MentionCount,
				DominantSentiment: c.DominantSentiment,
			},
		})
	}

	for _, issue := range issues {
		recs = append(recs, Recommendation{
			ID:      e.newID(),
			Subject: issue.Keyword,
			Type:    TypeNewIssue,
			Action:  fmt.Sprintf("review %q for inclusion in the next assessment", issue.Keyword),
			Rationale: fmt.Sprintf("mentioned %d times across %d articles (issue score %.3f, %s alignment %s)",
				issue.Frequency, issue.RelatedCount, issue.IssueScore, "SASB", issue.SASBAlignment),
			Confidence: issue.Confidence,
			Evidence:   Evidence{ArticleCount: issue.RelatedCount},
		})
	}

	if trend.UpdateNecessity == change.NecessityHigh {
		recs = append(recs, Recommendation{
			ID:         e.newID(),
			Subject:    "materiality assessment",
			Type:       TypeOverallReview,
			Action:     "run a comprehensive review of the materiality assessment",
			Rationale:  fmt.Sprintf("update necessity is high: %s", trend.Summary),
			Confidence: trend.AvgConfidence,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Confidence != recs[j].Confidence {
			return recs[i].Confidence > recs[j].Confidence
		}
		return recs[i].Subject < recs[j].Subject
	})

	seen := make(map[string]struct{}, len(recs))
	out := recs[:0]
	for _, r := range recs {
		if _, dup := seen[r.Subject]; dup {
			continue
		}
		seen[r.Subject] = struct{}{}
		out = append(out, r)
	}

	if len(out) > e.cfg.MaxRecommendations {
		out = out[:e.cfg.MaxRecommendations]
	}
	return out
}

func (e *Engine) newID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}
