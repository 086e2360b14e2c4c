// Package feed loads pre-fetched, pre-classified articles from local
// files or RSS feeds for the analysis CLIs. It is not the live news
// search collaborator; sentiment labels must already be present (RSS
// items default to neutral).
package feed

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/esglens/materia/pkg/materia/news"
)

// LoadJSONL loads articles from a JSONL file, one article per line.
// Malformed lines are skipped with a warning so one bad record does
// not lose the batch.
func LoadJSONL(path string) ([]news.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var articles []news.Article
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var art news.Article
		if err := json.Unmarshal([]byte(line), &art); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		articles = append(articles, art)
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("no valid articles found in %s", path)
	}

	return articles, nil
}
