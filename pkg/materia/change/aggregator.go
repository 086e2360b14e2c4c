package change

import (
	"fmt"
	"math"
	"strings"
)

// Overall directions for an assessment's topic set.
const (
	DirectionExpanding   = "expanding"
	DirectionContracting = "contracting"
	DirectionStable      = "stable"
)

// Update necessity levels.
const (
	NecessityHigh   = "high"
	NecessityMedium = "medium"
	NecessityLow    = "low"
)

// AggregatorConfig holds the rollup thresholds for update necessity.
type AggregatorConfig struct {
	HighEmerging  int     // emerging topics for "high"
	HighNewIssues int     // new issues for "high"
	HighMagnitude float64 // mean |magnitude| for "high"

	MediumEmerging  int
	MediumDeclining int
	MediumMagnitude float64
}

// DefaultAggregatorConfig returns the production thresholds.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		HighEmerging:    3,
		HighNewIssues:   2,
		HighMagnitude:   0.5,
		MediumEmerging:  1,
		MediumDeclining: 2,
		MediumMagnitude: 0.3,
	}
}

// OverallTrend rolls all topic changes and new-issue candidates up
// into one direction and an update-necessity level.
type OverallTrend struct {
	OverallDirection   string         `json:"overall_direction"`
	ChangeDistribution map[string]int `json:"change_distribution"`
	AvgChangeMagnitude float64        `json:"avg_change_magnitude"`
	AvgConfidence      float64        `json:"avg_confidence"`
	NewIssueCount      int            `json:"new_issue_count"`
	UpdateNecessity    string         `json:"update_necessity"`
	Summary            string         `json:"summary"`
}

// Aggregator computes the overall trend across an analysis run.
type Aggregator struct {
	cfg AggregatorConfig
}

// NewAggregator creates an aggregator with the given thresholds.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate summarizes the run. newIssueCount is the number of
// accepted new-issue candidates.
func (a *Aggregator) Aggregate(changes []TopicChange, newIssueCount int) OverallTrend {
	trend := OverallTrend{
		ChangeDistribution: make(map[string]int),
		NewIssueCount:      newIssueCount,
	}

	magSum, confSum := 0.0, 0.0
	for _, c := range changes {
		trend.ChangeDistribution[c.ChangeType]++
		magSum += math.Abs(c.ChangeMagnitude)
		confSum += c.Confidence
	}
	if len(changes) > 0 {
		trend.AvgChangeMagnitude = round3(magSum / float64(len(changes)))
		trend.AvgConfidence = round3(confSum / float64(len(changes)))
	}

	emerging := trend.ChangeDistribution[TypeEmerging]
	declining := trend.ChangeDistribution[TypeDeclining]

	switch {
	case emerging > declining:
		trend.OverallDirection = DirectionExpanding
	case declining > emerging:
		trend.OverallDirection = DirectionContracting
	default:
		trend.OverallDirection = DirectionStable
	}

	trend.UpdateNecessity = a.necessity(emerging, declining, trend.AvgChangeMagnitude, newIssueCount)
	trend.Summary = summary(trend)

	return trend
}

func (a *Aggregator) necessity(emerging, declining int, meanMagnitude float64, newIssues int) string {
	switch {
	case emerging >= a.cfg.HighEmerging || newIssues >= a.cfg.HighNewIssues || meanMagnitude > a.cfg.HighMagnitude:
		return NecessityHigh
	case emerging >= a.cfg.MediumEmerging || declining >= a.cfg.MediumDeclining || meanMagnitude > a.cfg.MediumMagnitude:
		return NecessityMedium
	default:
		return NecessityLow
	}
}

func summary(t OverallTrend) string {
	var b strings.Builder
	fmt.Fprintf(&b, "overall direction %s; ", t.OverallDirection)
	fmt.Fprintf(&b, "emerging %d, ongoing %d, maturing %d, declining %d",
		t.ChangeDistribution[TypeEmerging],
		t.ChangeDistribution[TypeOngoing],
		t.ChangeDistribution[TypeMaturing],
		t.ChangeDistribution[TypeDeclining])
	if t.NewIssueCount > 0 {
		fmt.Fprintf(&b, "; %d new issue candidates", t.NewIssueCount)
	}
	return b.String()
}
