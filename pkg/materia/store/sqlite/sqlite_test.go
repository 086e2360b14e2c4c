package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/esglens/materia/pkg/materia/internalerr"
	"github.com/esglens/materia/pkg/materia/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	generated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	run := store.Run{
		ID:               "01RUN",
		Company:          "삼성전자",
		GeneratedAt:      generated,
		ArticleCount:     120,
		OverallDirection: "expanding",
		UpdateNecessity:  "high",
		ReportJSON:       []byte(`{"run_id":"01RUN"}`),
		Recommendations: []store.Recommendation{
			{ID: "r1", RunID: "01RUN", Subject: "기후변화 대응", Type: "priority_review", Action: "review", Confidence: 0.8},
			{ID: "r2", RunID: "01RUN", Subject: "생물다양성", Type: "new_issue", Action: "add", Confidence: 0.9},
		},
	}

	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := s.GetRun(ctx, "01RUN")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Company != run.Company || got.ArticleCount != run.ArticleCount {
		t.Errorf("scalar fields lost: %+v", got)
	}
	if !got.GeneratedAt.Equal(generated) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, generated)
	}
	if string(got.ReportJSON) != string(run.ReportJSON) {
		t.Errorf("report JSON lost: %s", got.ReportJSON)
	}
	if len(got.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(got.Recommendations))
	}
	if got.Recommendations[0].Subject != "생물다양성" {
		t.Errorf("first rec = %s, want the highest-confidence one", got.Recommendations[0].Subject)
	}
}

func TestSaveRunUpsert(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run := store.Run{
		ID: "01RUN", Company: "삼성전자", GeneratedAt: time.Now().UTC(),
		Recommendations: []store.Recommendation{
			{ID: "r1", RunID: "01RUN", Subject: "a", Type: "new_issue", Confidence: 0.5},
		},
	}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	run.ArticleCount = 99
	run.Recommendations = []store.Recommendation{
		{ID: "r2", RunID: "01RUN", Subject: "b", Type: "new_issue", Confidence: 0.6},
	}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("second SaveRun: %v", err)
	}

	got, err := s.GetRun(ctx, "01RUN")
	if err != nil {
		t.Fatal(err)
	}
	if got.ArticleCount != 99 {
		t.Errorf("ArticleCount = %d, want updated value", got.ArticleCount)
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0].ID != "r2" {
		t.Errorf("recommendations not replaced: %+v", got.Recommendations)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListRunsCompanyFilter(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	runs := []store.Run{
		{ID: "r1", Company: "삼성전자", GeneratedAt: base},
		{ID: "r2", Company: "삼성전자", GeneratedAt: base.Add(time.Hour)},
		{ID: "r3", Company: "현대차", GeneratedAt: base.Add(2 * time.Hour)},
	}
	for _, r := range runs {
		if err := s.SaveRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListRuns(ctx, "삼성전자", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d runs, want 2", len(got))
	}
	if got[0].ID != "r2" {
		t.Errorf("first run = %s, want the newest", got[0].ID)
	}

	all, err := s.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered list = %d runs, want 3", len(all))
	}
}
