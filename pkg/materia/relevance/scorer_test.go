package relevance

import (
	"testing"
	"time"

	"github.com/esglens/materia/pkg/materia/ingest"
	"github.com/esglens/materia/pkg/materia/news"
)

func newTestScorer() *Scorer {
	return NewScorer(DefaultWeights(), ingest.NewNormalizer(nil))
}

func TestScoreEmptyKeywords(t *testing.T) {
	s := newTestScorer()
	art := news.Article{Title: "탄소중립 목표 발표", Description: "내용"}

	if got := s.Score(art, nil, "", time.Now()); got != 0 {
		t.Errorf("empty keywords: got %v, want 0", got)
	}
}

func TestScoreEmptyArticle(t *testing.T) {
	s := newTestScorer()

	if got := s.Score(news.Article{}, []string{"탄소중립"}, "", time.Now()); got != 0 {
		t.Errorf("empty article: got %v, want 0", got)
	}
}

func TestScoreNonNegative(t *testing.T) {
	s := newTestScorer()
	art := news.Article{
		Title:       "무관한 기사 제목",
		Description: "아무 관련 없는 내용",
		Sentiment:   news.SentimentNegative,
	}

	if got := s.Score(art, []string{"탄소중립"}, "", time.Now()); got < 0 {
		t.Errorf("score must be non-negative, got %v", got)
	}
}

func TestScoreTitleOutweighsBody(t *testing.T) {
	s := newTestScorer()
	now := time.Now()
	kws := []string{"탄소중립"}

	inTitle := news.Article{Title: "탄소중립 선언", Description: "기타 내용 정리"}
	inBody := news.Article{Title: "기업 발표 소식", Description: "탄소중립 선언 관련"}

	if s.Score(inTitle, kws, "", now) <= s.Score(inBody, kws, "", now) {
		t.Error("title match should score higher than body match")
	}
}

func TestScoreRecencyBoost(t *testing.T) {
	s := newTestScorer()
	now := time.Now()
	kws := []string{"탄소중립"}

	recent := news.Article{Title: "탄소중립 발표", PublishedAt: now.AddDate(0, 0, -5)}
	old := news.Article{Title: "탄소중립 발표", PublishedAt: now.AddDate(0, -3, 0)}

	if s.Score(recent, kws, "", now) <= s.Score(old, kws, "", now) {
		t.Error("recent article should score higher than old one")
	}
}

func TestScoreCompanyBonus(t *testing.T) {
	s := newTestScorer()
	now := time.Now()
	kws := []string{"탄소중립"}

	withCompany := news.Article{Title: "삼성전자 탄소중립 발표"}
	without := news.Article{Title: "어느 기업 탄소중립 발표"}

	if s.Score(withCompany, kws, "삼성전자", now) <= s.Score(without, kws, "삼성전자", now) {
		t.Error("company mention should add a bonus")
	}
}

func TestScoreSentimentMultiplier(t *testing.T) {
	s := newTestScorer()
	now := time.Now()
	kws := []string{"탄소중립"}

	base := news.Article{Title: "탄소중립 발표", Sentiment: news.SentimentNeutral}
	pos := base
	pos.Sentiment = news.SentimentPositive
	neg := base
	neg.Sentiment = news.SentimentNegative

	neutral := s.Score(base, kws, "", now)
	if s.Score(pos, kws, "", now) <= neutral {
		t.Error("positive sentiment should boost the score")
	}
	if s.Score(neg, kws, "", now) >= neutral {
		t.Error("negative sentiment should dampen the score")
	}
}

func TestHasBoundaryMatch(t *testing.T) {
	cases := []struct {
		haystack, needle string
		want             bool
	}{
		{"carbon neutral plan", "carbon", true},
		{"decarbonization push", "carbon", false},
		{"탄소중립 선언", "탄소중립", true},
		{"탈탄소중립화 추진", "탄소중립", false},
		{"plan: carbon!", "carbon", true},
		{"nothing here", "carbon", false},
	}
	for _, c := range cases {
		if got := hasBoundaryMatch(c.haystack, c.needle); got != c.want {
			t.Errorf("hasBoundaryMatch(%q, %q) = %v, want %v", c.haystack, c.needle, got, c.want)
		}
	}
}

func TestMatchedKeywordsPreservesOrder(t *testing.T) {
	s := newTestScorer()
	art := news.Article{Title: "기후변화 대응과 탄소중립 목표"}

	got := s.MatchedKeywords(art, []string{"탄소중립", "기후변화", "재생에너지"})
	want := []string{"탄소중립", "기후변화"}
	if len(got) != len(want) {
		t.Fatalf("matched = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("matched[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
