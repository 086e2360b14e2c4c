package feed

import (
	"log"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/esglens/materia/pkg/materia/news"
)

// FetchFeeds downloads and parses RSS/Atom feeds into articles. Feeds
// that fail to parse are logged and skipped. Items carry no sentiment
// labels, so they default to neutral with zero confidence.
func FetchFeeds(urls []string) ([]news.Article, error) {
	parser := gofeed.NewParser()
	var articles []news.Article
	ok := 0

	for _, url := range urls {
		f, err := parser.ParseURL(url)
		if err != nil {
			log.Printf("Error parsing feed %s: %v", url, err)
			continue
		}
		for _, item := range f.Items {
			articles = append(articles, fromItem(item, f.Title))
		}
		ok++
		log.Printf("Loaded %d items from %s", len(f.Items), url)
	}

	log.Printf("Processed feeds: %d/%d ok", ok, len(urls))
	return articles, nil
}

func fromItem(item *gofeed.Item, source string) news.Article {
	published := time.Time{}
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	return news.Article{
		URL:         item.Link,
		Title:       item.Title,
		Description: item.Description,
		Content:     item.Content,
		Source:      source,
		PublishedAt: published,
		Sentiment:   news.SentimentNeutral,
	}
}
