package change

import (
	"fmt"
	"math"

	"github.com/esglens/materia/pkg/materia/news"
	"github.com/esglens/materia/pkg/materia/relevance"
)

// Change types for a topic between two assessment cycles.
const (
	TypeEmerging  = "emerging"
	TypeOngoing   = "ongoing"
	TypeMaturing  = "maturing"
	TypeDeclining = "declining"
)

// ReasonNoCoverage is the single reason attached when a topic had no
// relevant articles at all.
const ReasonNoCoverage = "insufficient news coverage"

// DetectorConfig holds the change classification thresholds.
type DetectorConfig struct {
	// SignificantChange is the magnitude beyond which a topic is called
	// emerging (positive) or declining (negative).
	SignificantChange float64

	// EmergingIssueThreshold is the comprehensive score above which a
	// topic with small magnitude still counts as ongoing.
	EmergingIssueThreshold float64

	// ConfidenceArticleCap is the relevant-article count at which the
	// article-count component of confidence saturates.
	ConfidenceArticleCap int
}

// DefaultDetectorConfig returns the production thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		SignificantChange:      0.3,
		EmergingIssueThreshold: 0.5,
		ConfidenceArticleCap:   10,
	}
}

// TopicChange describes how one topic moved relative to its prior
// assessment rank.
type TopicChange struct {
	TopicName         string         `json:"topic_name"`
	PreviousPriority  int            `json:"previous_priority"`
	CurrentScore      float64        `json:"current_score"`
	MentionCount      int            `json:"mention_count"`
	MentionRank       int            `json:"mention_rank,omitempty"`
	ChangeMagnitude   float64        `json:"change_magnitude"`
	ChangeType        string         `json:"change_type"`
	TrendDirection    string         `json:"trend_direction"`
	DominantSentiment news.Sentiment `json:"dominant_sentiment"`
	Confidence        float64        `json:"confidence"`
	Reasons           []string       `json:"reasons"`
	SASBCode          string         `json:"sasb_code,omitempty"`
	SASBAlignment     string         `json:"sasb_alignment,omitempty"`
}

// Detector compares a topic's prior rank against its current
// comprehensive score.
type Detector struct {
	cfg DetectorConfig
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.ConfidenceArticleCap <= 0 {
		cfg.ConfidenceArticleCap = DefaultDetectorConfig().ConfidenceArticleCap
	}
	return &Detector{cfg: cfg}
}

// Detect produces the TopicChange for one topic. maxPriorityRank is
// the lowest (largest-number) rank in the prior assessment and is used
// to normalize the prior priority into a [0,1] score.
//
// A topic with zero relevant articles never fails; it degrades to a
// declining change with magnitude -1 and low confidence.
func (d *Detector) Detect(topic news.Topic, analysis relevance.TopicAnalysis, maxPriorityRank int) TopicChange {
	if analysis.RelevantArticles == 0 {
		return TopicChange{
			TopicName:         topic.Name,
			PreviousPriority:  topic.Priority,
			CurrentScore:      0,
			ChangeMagnitude:   -1.0,
			ChangeType:        TypeDeclining,
			TrendDirection:    relevance.TrendStable,
			DominantSentiment: news.SentimentNeutral,
			Confidence:        0.3,
			Reasons:           []string{ReasonNoCoverage},
		}
	}

	if maxPriorityRank <= 0 {
		maxPriorityRank = topic.Priority
	}
	priorScore := float64(maxPriorityRank-topic.Priority+1) / float64(maxPriorityRank)

	magnitude := analysis.ComprehensiveScore - priorScore
	magnitude = math.Max(-1, math.Min(1, magnitude))
	magnitude = round3(magnitude)

	changeType := d.classify(magnitude, analysis.ComprehensiveScore)

	tc := TopicChange{
		TopicName:         topic.Name,
		PreviousPriority:  topic.Priority,
		CurrentScore:      analysis.ComprehensiveScore,
		MentionCount:      analysis.RelevantArticles,
		ChangeMagnitude:   magnitude,
		ChangeType:        changeType,
		TrendDirection:    analysis.TrendDirection,
		DominantSentiment: analysis.DominantSentiment,
		Confidence:        d.confidence(analysis),
	}
	tc.Reasons = reasons(tc, analysis)

	return tc
}

// classify keeps the historical boundary behavior: a high absolute
// score can classify as ongoing even when the magnitude is negative,
// as long as it stays above -SignificantChange.
func (d *Detector) classify(magnitude, score float64) string {
	switch {
	case magnitude > d.cfg.SignificantChange:
		return TypeEmerging
	case magnitude < -d.cfg.SignificantChange:
		return TypeDeclining
	case score > d.cfg.EmergingIssueThreshold:
		return TypeOngoing
	default:
		return TypeMaturing
	}
}

// confidence blends article volume, the relevant/total ratio and the
// comprehensive score, weights 0.3/0.4/0.3.
func (d *Detector) confidence(analysis relevance.TopicAnalysis) float64 {
	volume := math.Min(float64(analysis.RelevantArticles)/float64(d.cfg.ConfidenceArticleCap), 1.0)

	ratio := 0.0
	if analysis.TotalArticles > 0 {
		ratio = float64(analysis.RelevantArticles) / float64(analysis.TotalArticles)
	}

	score := math.Min(analysis.ComprehensiveScore, 1.0)

	return round3(0.3*volume + 0.4*ratio + 0.3*score)
}

func reasons(tc TopicChange, analysis relevance.TopicAnalysis) []string {
	var out []string

	switch tc.ChangeType {
	case TypeEmerging:
		out = append(out, fmt.Sprintf("relevance score rose against prior rank (%+.2f)", tc.ChangeMagnitude))
		if analysis.RecentIncrease {
			out = append(out, "news coverage increasing in recent months")
		}
		if analysis.DominantSentiment == news.SentimentPositive {
			out = append(out, "coverage is predominantly positive")
		}
	case TypeDeclining:
		out = append(out, fmt.Sprintf("relevance score fell against prior rank (%+.2f)", tc.ChangeMagnitude))
		if analysis.RelevantArticles < 5 {
			out = append(out, "few relevant articles found")
		}
		if analysis.DominantSentiment == news.SentimentNegative {
			out = append(out, "coverage is predominantly negative")
		}
	case TypeOngoing:
		out = append(out, "sustained news exposure")
		if analysis.RelevantArticles > 10 {
			out = append(out, "broad article base")
		}
	default:
		out = append(out, "stable issue profile")
		if analysis.TrendDirection == relevance.TrendStable {
			out = append(out, "no month-over-month coverage shift")
		}
	}

	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
