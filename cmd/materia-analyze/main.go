// Command materia-analyze runs one materiality analysis: it loads a
// prior assessment, a batch of classified articles and the scoring
// configuration, runs the pipeline and prints the report as JSON.
// With --db the report is also persisted for later comparison.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/esglens/materia/internal/feed"
	"github.com/esglens/materia/pkg/materia"
	"github.com/esglens/materia/pkg/materia/config"
	"github.com/esglens/materia/pkg/materia/news"
	"github.com/esglens/materia/pkg/materia/store"
	"github.com/esglens/materia/pkg/materia/store/sqlite"
)

func main() {
	var (
		assessmentPath = flag.String("assessment", "", "Prior assessment YAML (required)")
		articlesPath   = flag.String("articles", "", "Articles JSONL file")
		feedURLs       = flag.String("feeds", "", "Comma-separated RSS feed URLs (alternative to --articles)")
		scoringPath    = flag.String("config", "", "Scoring config YAML (optional)")
		keywordsPath   = flag.String("keywords", "", "Topic/company keyword dictionary YAML (optional)")
		stoplistPath   = flag.String("stoplist", "", "Stopword list YAML (optional)")
		mappingPath    = flag.String("sasb", "", "SASB mapping table YAML (optional)")
		dbPath         = flag.String("db", "", "SQLite database to persist the run (optional)")
	)
	flag.Parse()

	if *assessmentPath == "" {
		log.Fatal("--assessment required")
	}
	if *articlesPath == "" && *feedURLs == "" {
		log.Fatal("--articles or --feeds required")
	}

	ctx := context.Background()

	loader := config.Loader{
		ScoringPath:  *scoringPath,
		KeywordsPath: *keywordsPath,
		StoplistPath: *stoplistPath,
		MappingPath:  *mappingPath,
	}
	components, err := loader.Load()
	if err != nil {
		log.Fatalf("load configs: %v", err)
	}

	assessment, err := config.LoadAssessment(*assessmentPath)
	if err != nil {
		log.Fatalf("load assessment: %v", err)
	}

	var articles []news.Article
	if *articlesPath != "" {
		articles, err = feed.LoadJSONL(*articlesPath)
		if err != nil {
			log.Fatalf("load articles: %v", err)
		}
	}
	if *feedURLs != "" {
		fetched, err := feed.FetchFeeds(strings.Split(*feedURLs, ","))
		if err != nil {
			log.Fatalf("fetch feeds: %v", err)
		}
		articles = append(articles, fetched...)
	}

	engine := materia.New(materia.Options{
		Scoring:   components.Scoring,
		Keywords:  components.Keywords,
		Stopwords: components.Stopwords,
		Standards: components.Standards,
	})

	report, err := engine.Run(ctx, materia.Input{
		Assessment: assessment,
		Articles:   articles,
	})
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))

	if *dbPath != "" {
		if err := persist(ctx, *dbPath, report, out); err != nil {
			log.Fatalf("persist run: %v", err)
		}
		fmt.Fprintf(os.Stderr, "run %s saved to %s\n", report.RunID, *dbPath)
	}
}

func persist(ctx context.Context, path string, report materia.Report, reportJSON []byte) error {
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	run := store.Run{
		ID:               report.RunID,
		Company:          report.Company,
		GeneratedAt:      report.GeneratedAt,
		ArticleCount:     report.ArticleCount,
		OverallDirection: report.OverallTrend.OverallDirection,
		UpdateNecessity:  report.OverallTrend.UpdateNecessity,
		ReportJSON:       reportJSON,
	}
	for _, rec := range report.Recommendations {
		run.Recommendations = append(run.Recommendations, store.Recommendation{
			ID:         rec.ID,
			RunID:      report.RunID,
			Subject:    rec.Subject,
			Type:       rec.Type,
			Action:     rec.Action,
			Confidence: rec.Confidence,
		})
	}

	return db.SaveRun(ctx, run)
}
