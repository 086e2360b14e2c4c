// Package store persists completed analysis runs so past reports can
// be compared across assessment cycles. The pipeline itself never
// touches the store; callers save reports after a run completes.
package store

import (
	"context"
	"time"
)

// Store is the interface for persisting and querying analysis runs.
type Store interface {
	Close() error

	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, company string, limit int) ([]RunSummary, error)
	Recommendations(ctx context.Context, runID string) ([]Recommendation, error)
}

// Run is one stored analysis run. ReportJSON carries the full report
// for retrieval; the scalar columns exist for listing and filtering.
type Run struct {
	ID               string
	Company          string
	GeneratedAt      time.Time
	ArticleCount     int
	OverallDirection string
	UpdateNecessity  string
	ReportJSON       []byte
	Recommendations  []Recommendation
}

// RunSummary is the listing view of a run.
type RunSummary struct {
	ID               string
	Company          string
	GeneratedAt      time.Time
	OverallDirection string
	UpdateNecessity  string
	Recommendations  int
}

// Recommendation is the stored, queryable form of one recommendation.
type Recommendation struct {
	ID         string
	RunID      string
	Subject    string
	Type       string
	Action     string
	Confidence float64
}
