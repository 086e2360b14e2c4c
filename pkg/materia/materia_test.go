package materia

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/esglens/materia/pkg/materia/change"
	"github.com/esglens/materia/pkg/materia/config"
	"github.com/esglens/materia/pkg/materia/internalerr"
	"github.com/esglens/materia/pkg/materia/news"
	"github.com/esglens/materia/pkg/materia/standards"
)

func testAssessment() news.Assessment {
	return news.Assessment{
		Company: "삼성전자",
		Year:    2025,
		Topics: []news.Topic{
			{Name: "기후변화 대응", Priority: 1, SASBCode: "E-GHG"},
			{Name: "안전보건", Priority: 2},
			{Name: "공급망 관리", Priority: 3},
			{Name: "인재 육성", Priority: 4},
			{Name: "지배구조", Priority: 5},
		},
	}
}

func testEngine() *Engine {
	return New(Options{
		Keywords: &config.KeywordDict{
			Topics: map[string][]string{
				"기후변화 대응": {"탄소중립", "온실가스", "재생에너지"},
				"안전보건":    {"산업재해", "중대재해"},
				"공급망 관리":  {"협력사", "공급망"},
			},
		},
		Standards: standards.NewTable([]standards.Mapping{
			{Code: "S-SAFETY", Category: "S", Topics: []string{"안전보건"}},
		}),
	})
}

func climateArticles(now time.Time, n int) []news.Article {
	var out []news.Article
	for i := 0; i < n; i++ {
		sentiment := news.SentimentNeutral
		if i%3 == 0 {
			sentiment = news.SentimentPositive
		}
		out = append(out, news.Article{
			URL:         "https://news.example/climate/" + string(rune('a'+i%26)),
			Title:       "삼성전자 탄소중립 로드맵 발표 " + string(rune('가'+i)),
			Description: "재생에너지 전환과 온실가스 감축 계획이 공개되었다",
			Source:      "example",
			PublishedAt: now.AddDate(0, 0, -(i % 20)),
			Sentiment:   sentiment,
		})
	}
	return out
}

func TestRunNoArticles(t *testing.T) {
	e := testEngine()

	_, err := e.Run(context.Background(), Input{Assessment: testAssessment()})
	if !errors.Is(err, internalerr.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestRunNoTopics(t *testing.T) {
	e := testEngine()

	in := Input{
		Assessment: news.Assessment{Company: "x"},
		Articles:   []news.Article{{Title: "기사"}},
	}
	_, err := e.Run(context.Background(), in)
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestRunAllArticlesMalformed(t *testing.T) {
	e := testEngine()

	in := Input{
		Assessment: testAssessment(),
		Articles:   []news.Article{{URL: "https://x"}, {URL: "https://y"}},
	}
	_, err := e.Run(context.Background(), in)
	if !errors.Is(err, internalerr.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestRunSkipsMalformedArticles(t *testing.T) {
	e := testEngine()
	now := time.Now()

	articles := append(climateArticles(now, 5), news.Article{URL: "https://empty"})
	report, err := e.Run(context.Background(), Input{
		Assessment: testAssessment(),
		Articles:   articles,
		Now:        now,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Skipped) != 1 {
		t.Errorf("skipped = %d, want 1", len(report.Skipped))
	}
	if report.ArticleCount != 6 {
		t.Errorf("article count = %d, want raw input size 6", report.ArticleCount)
	}
}

func TestRunFullPipeline(t *testing.T) {
	e := testEngine()
	now := time.Now()

	report, err := e.Run(context.Background(), Input{
		Assessment: testAssessment(),
		Articles:   climateArticles(now, 40),
		Now:        now,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.RunID == "" {
		t.Error("RunID must be set")
	}
	if report.Company != "삼성전자" {
		t.Errorf("company = %s", report.Company)
	}
	if len(report.TopicChanges) != 5 {
		t.Fatalf("topic changes = %d, want one per topic", len(report.TopicChanges))
	}
	if report.DedupedCount > report.ArticleCount {
		t.Error("dedup must not grow the batch")
	}

	climate := report.TopicChanges[0]
	if climate.TopicName != "기후변화 대응" {
		t.Fatalf("changes must keep assessment order, got %s first", climate.TopicName)
	}
	// Heavy, keyword-dense coverage: the top-ranked topic must not be
	// written off as declining for lack of news.
	if climate.ChangeType == change.TypeDeclining {
		t.Errorf("climate topic classified declining despite heavy coverage: %+v", climate)
	}
	if climate.Confidence <= 0.5 {
		t.Errorf("climate confidence = %v, want > 0.5", climate.Confidence)
	}
	if climate.SASBCode != "E-GHG" || climate.SASBAlignment != "assessment" {
		t.Errorf("assessment-supplied SASB code must win: %+v", climate)
	}
	if climate.MentionRank != 1 {
		t.Errorf("mention rank = %d, want 1 for the most-covered topic", climate.MentionRank)
	}

	// Uncovered topics degrade instead of failing.
	safety := report.TopicChanges[1]
	if safety.MentionCount == 0 {
		if safety.ChangeType != change.TypeDeclining || safety.ChangeMagnitude != -1.0 {
			t.Errorf("uncovered topic should degrade to declining/-1.0: %+v", safety)
		}
		if safety.SASBCode != "S-SAFETY" {
			t.Errorf("table lookup should fill SASB code: %+v", safety)
		}
	}

	if report.OverallTrend.ChangeDistribution == nil {
		t.Error("overall trend missing change distribution")
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected at least one recommendation from a shifting landscape")
	}
	for _, r := range report.Recommendations {
		if r.ID == "" || r.Subject == "" || r.Action == "" {
			t.Errorf("incomplete recommendation: %+v", r)
		}
	}

	seen := make(map[string]struct{})
	for _, r := range report.Recommendations {
		if _, dup := seen[r.Subject]; dup {
			t.Errorf("duplicate recommendation subject %q", r.Subject)
		}
		seen[r.Subject] = struct{}{}
	}

	for i := 1; i < len(report.UpdatePriorities); i++ {
		if report.UpdatePriorities[i-1].PriorityScore < report.UpdatePriorities[i].PriorityScore {
			t.Error("update priorities must be ordered by descending score")
		}
	}
}

func TestRunContextCancelled(t *testing.T) {
	e := testEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, Input{
		Assessment: testAssessment(),
		Articles:   climateArticles(time.Now(), 10),
	})
	if err == nil {
		t.Error("cancelled context should abort the run")
	}
}

func TestRunConcurrent(t *testing.T) {
	e := testEngine()
	now := time.Now()
	in := Input{Assessment: testAssessment(), Articles: climateArticles(now, 10), Now: now}

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := e.Run(context.Background(), in)
			ids[w] = report.RunID
			errs[w] = err
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, workers)
	for w := 0; w < workers; w++ {
		if errs[w] != nil {
			t.Fatalf("worker %d: %v", w, errs[w])
		}
		if _, dup := seen[ids[w]]; dup {
			t.Errorf("duplicate run ID %s", ids[w])
		}
		seen[ids[w]] = struct{}{}
	}
}

func TestNewPartialScoringConfig(t *testing.T) {
	e := New(Options{
		Scoring: config.ScoringConfig{TitleWeight: 7.0},
		Keywords: &config.KeywordDict{
			Topics: map[string][]string{"기후변화 대응": {"탄소중립", "온실가스"}},
		},
	})
	now := time.Now()

	report, err := e.Run(context.Background(), Input{
		Assessment: testAssessment(),
		Articles:   climateArticles(now, 10),
		Now:        now,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Unset fields fall back to defaults, so keyword-dense recent
	// coverage must still score; only the named weight is overridden.
	climate := report.TopicChanges[0]
	if climate.MentionCount == 0 {
		t.Fatalf("climate topic found no relevant articles: %+v", climate)
	}
	if climate.ChangeType == change.TypeDeclining {
		t.Errorf("climate topic declining despite heavy coverage: %+v", climate)
	}
}

func TestRunDeterministicIDsDiffer(t *testing.T) {
	e := testEngine()
	now := time.Now()
	in := Input{Assessment: testAssessment(), Articles: climateArticles(now, 5), Now: now}

	first, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if first.RunID == second.RunID {
		t.Error("run IDs must be unique across runs")
	}
}
