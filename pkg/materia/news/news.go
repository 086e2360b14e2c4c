package news

import (
	"strings"
	"time"
)

// Sentiment is the label assigned to an article by the upstream classifier.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Article is a single news item as delivered by the retrieval layer.
// Sentiment is already applied upstream; articles are never mutated by
// the pipeline except for duplicate merging, which only touches
// MatchedKeywords and MentionCount on the surviving representative.
type Article struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Content         string    `json:"content"`
	Source          string    `json:"source"`
	PublishedAt     time.Time `json:"published_at"`
	Sentiment       Sentiment `json:"sentiment"`
	SentimentScore  float64   `json:"sentiment_score"`
	MatchedKeywords []string  `json:"matched_keywords,omitempty"`
	MentionCount    int       `json:"mention_count,omitempty"`
}

// Body returns the best available body text for scoring: content when
// present, otherwise the description.
func (a Article) Body() string {
	if strings.TrimSpace(a.Content) != "" {
		return a.Content
	}
	return a.Description
}

// Empty reports whether the article carries no usable text at all.
func (a Article) Empty() bool {
	return strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Body()) == ""
}

// Topic is one entry of a prior materiality assessment.
type Topic struct {
	Name     string `yaml:"name" json:"name"`
	Priority int    `yaml:"priority" json:"priority"` // 1 = most important
	SASBCode string `yaml:"sasb_code,omitempty" json:"sasb_code,omitempty"`
}

// Assessment is the ranked topic list for a company in a given year.
type Assessment struct {
	Company string  `yaml:"company" json:"company"`
	Year    int     `yaml:"year" json:"year"`
	Topics  []Topic `yaml:"topics" json:"topics"`
}

// MaxPriority returns the largest priority rank in the assessment,
// used to normalize prior ranks into [0,1] scores.
func (a Assessment) MaxPriority() int {
	max := 0
	for _, t := range a.Topics {
		if t.Priority > max {
			max = t.Priority
		}
	}
	return max
}
