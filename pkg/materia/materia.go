// Package materia is the materiality news analysis engine: it takes a
// company's prior materiality assessment and a batch of classified news
// articles, and produces ranked recommendations for the next assessment
// cycle.
package materia

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/esglens/materia/pkg/materia/change"
	"github.com/esglens/materia/pkg/materia/config"
	"github.com/esglens/materia/pkg/materia/discovery"
	"github.com/esglens/materia/pkg/materia/ingest"
	"github.com/esglens/materia/pkg/materia/internalerr"
	"github.com/esglens/materia/pkg/materia/news"
	"github.com/esglens/materia/pkg/materia/recommend"
	"github.com/esglens/materia/pkg/materia/relevance"
	"github.com/esglens/materia/pkg/materia/standards"
)

// Engine runs the full analysis pipeline. It is safe for concurrent
// use; each Run owns its own inputs and intermediate state.
type Engine struct {
	scoring   config.ScoringConfig
	keywords  *config.KeywordDict
	standards *standards.Table
	norm      *ingest.Normalizer
	dedup     *ingest.Deduplicator
	analyzer  *relevance.Analyzer
	detector  *change.Detector
	trends    *change.Aggregator
	miner     *discovery.Discoverer
	recs      *recommend.Engine

	mu      sync.Mutex // guards entropy
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine.
type Options struct {
	Scoring   config.ScoringConfig
	Keywords  *config.KeywordDict
	Stopwords []string
	Standards *standards.Table
}

// New creates an Engine from the given options. Zero-valued scoring
// fields take the documented defaults.
func New(opts Options) *Engine {
	if opts.Keywords == nil {
		opts.Keywords = &config.KeywordDict{}
	}
	if opts.Standards == nil {
		opts.Standards = standards.NewTable(nil)
	}

	scoring := opts.Scoring
	scoring.ApplyDefaults()

	norm := ingest.NewNormalizer(opts.Stopwords)
	scorer := relevance.NewScorer(scoring.RelevanceWeights(), norm)

	return &Engine{
		scoring:   scoring,
		keywords:  opts.Keywords,
		standards: opts.Standards,
		norm:      norm,
		dedup:     ingest.NewDeduplicator(norm, scoring.DedupThreshold),
		analyzer:  relevance.NewAnalyzer(scoring.AnalyzerConfig(), scorer),
		detector:  change.NewDetector(scoring.DetectorConfig()),
		trends:    change.NewAggregator(change.DefaultAggregatorConfig()),
		miner:     discovery.New(scoring.DiscoveryConfig(), norm),
		recs:      recommend.New(scoring.RecommendConfig()),
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Input is everything one analysis run needs. Articles must already
// carry sentiment labels from the upstream classifier.
type Input struct {
	Assessment news.Assessment
	Articles   []news.Article

	// Now anchors recency checks; zero means time.Now().
	Now time.Time
}

// SkippedArticle records an article dropped before analysis.
type SkippedArticle struct {
	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
}

// UpdatePriority ranks one subject by how urgently it needs attention
// in the next assessment cycle.
type UpdatePriority struct {
	Subject       string  `json:"subject"`
	Kind          string  `json:"kind"` // "topic_change" or "new_issue"
	ChangeType    string  `json:"change_type"`
	PriorityScore float64 `json:"priority_score"`
}

// Report is the full result of one analysis run.
type Report struct {
	RunID            string                     `json:"run_id"`
	Company          string                     `json:"company"`
	GeneratedAt      time.Time                  `json:"generated_at"`
	ArticleCount     int                        `json:"article_count"`
	DedupedCount     int                        `json:"deduped_count"`
	Skipped          []SkippedArticle           `json:"skipped,omitempty"`
	TopicChanges     []change.TopicChange       `json:"topic_changes"`
	NewIssues        []discovery.Candidate      `json:"new_issues"`
	OverallTrend     change.OverallTrend        `json:"overall_trend"`
	Recommendations  []recommend.Recommendation `json:"recommendations"`
	UpdatePriorities []UpdatePriority           `json:"update_priorities"`
}

// Run executes the pipeline: dedup, per-topic analysis, change
// detection, new-issue discovery, trend rollup and recommendation
// generation. It fails only when no articles are supplied at all;
// every per-topic or per-article problem degrades to a lower-confidence
// result instead.
func (e *Engine) Run(ctx context.Context, in Input) (Report, error) {
	if len(in.Articles) == 0 {
		return Report{}, internalerr.ErrInsufficientData
	}
	if len(in.Assessment.Topics) == 0 {
		return Report{}, fmt.Errorf("%w: assessment has no topics", internalerr.ErrInvalidConfig)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	report := Report{
		RunID:        e.newRunID(now),
		Company:      in.Assessment.Company,
		GeneratedAt:  now,
		ArticleCount: len(in.Articles),
	}

	usable := make([]news.Article, 0, len(in.Articles))
	for _, art := range in.Articles {
		if art.Empty() {
			report.Skipped = append(report.Skipped, SkippedArticle{
				URL:    art.URL,
				Title:  art.Title,
				Reason: internalerr.ErrMalformedArticle.Error(),
			})
			continue
		}
		usable = append(usable, art)
	}
	if len(usable) == 0 {
		return Report{}, fmt.Errorf("%w: all %d articles malformed", internalerr.ErrInsufficientData, len(in.Articles))
	}

	articles := e.dedup.Dedupe(usable)
	report.DedupedCount = len(articles)

	analyses, err := e.analyzeTopics(ctx, in.Assessment, articles, now)
	if err != nil {
		return Report{}, err
	}

	maxRank := in.Assessment.MaxPriority()
	changes := make([]change.TopicChange, len(in.Assessment.Topics))
	for i, topic := range in.Assessment.Topics {
		tc := e.detector.Detect(topic, analyses[i], maxRank)
		e.alignStandard(&tc, topic)
		changes[i] = tc
	}
	applyMentionRanks(changes)

	topicNames := make([]string, len(in.Assessment.Topics))
	for i, t := range in.Assessment.Topics {
		topicNames[i] = t.Name
	}
	issues := e.miner.Discover(articles, topicNames, now)
	for i := range issues {
		if m, err := e.standards.Map(issues[i].Keyword); err == nil {
			issues[i].SASBCode = m.Code
			issues[i].SASBAlignment = m.Category
		}
	}

	report.TopicChanges = changes
	report.NewIssues = issues
	report.OverallTrend = e.trends.Aggregate(changes, len(issues))
	report.Recommendations = e.recs.Recommend(changes, issues, report.OverallTrend)
	report.UpdatePriorities = updatePriorities(changes, issues)

	return report, nil
}

// newRunID issues a ULID under the entropy lock; the monotonic reader
// is not goroutine-safe on its own.
func (e *Engine) newRunID(now time.Time) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), e.entropy).String()
}

// analyzeTopics scores every topic concurrently. Topics share no
// mutable state, so a plain fork/join per topic is safe.
func (e *Engine) analyzeTopics(ctx context.Context, assessment news.Assessment, articles []news.Article, now time.Time) ([]relevance.TopicAnalysis, error) {
	analyses := make([]relevance.TopicAnalysis, len(assessment.Topics))

	g, ctx := errgroup.WithContext(ctx)
	for i, topic := range assessment.Topics {
		i, topic := i, topic
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			keywords := e.keywords.TopicKeywords(topic.Name, assessment.Company)
			analyses[i] = e.analyzer.Analyze(topic.Name, articles, keywords, assessment.Company, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return analyses, nil
}

// alignStandard fills the SASB code for a change, preferring the code
// recorded on the prior assessment topic over a table lookup.
func (e *Engine) alignStandard(tc *change.TopicChange, topic news.Topic) {
	if topic.SASBCode != "" {
		tc.SASBCode = topic.SASBCode
		tc.SASBAlignment = "assessment"
		return
	}
	m, err := e.standards.Map(topic.Name)
	if err != nil {
		tc.SASBAlignment = standards.AlignmentUnmapped
		return
	}
	tc.SASBCode = m.Code
	tc.SASBAlignment = m.Category
}

// applyMentionRanks ranks topics by relevant-article count within the
// run, most-mentioned first. Ties keep assessment order.
func applyMentionRanks(changes []change.TopicChange) {
	idx := make([]int, len(changes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return changes[idx[a]].MentionCount > changes[idx[b]].MentionCount
	})
	for rank, i := range idx {
		changes[i].MentionRank = rank + 1
	}
}

// updatePriorities orders subjects by |magnitude|*confidence for
// emerging/declining topics and issueScore*confidence for new issues.
func updatePriorities(changes []change.TopicChange, issues []discovery.Candidate) []UpdatePriority {
	var out []UpdatePriority

	for _, c := range changes {
		if c.ChangeType != change.TypeEmerging && c.ChangeType != change.TypeDeclining {
			continue
		}
		mag := c.ChangeMagnitude
		if mag < 0 {
			mag = -mag
		}
		out = append(out, UpdatePriority{
			Subject:       c.TopicName,
			Kind:          "topic_change",
			ChangeType:    c.ChangeType,
			PriorityScore: round3(mag * c.Confidence),
		})
	}

	for _, issue := range issues {
		out = append(out, UpdatePriority{
			Subject:       issue.Keyword,
			Kind:          "new_issue",
			ChangeType:    "new",
			PriorityScore: round3(issue.IssueScore * issue.Confidence),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		return out[i].Subject < out[j].Subject
	})

	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
