package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// similarTopicBorrow is how many keywords a topic borrows from another
// topic whose name overlaps with its own.
const similarTopicBorrow = 8

// topicNameSimilarity is the name-token Jaccard above which two topics
// are considered similar enough to share keywords.
const topicNameSimilarity = 0.5

// KeywordDict is the static topic and company keyword dictionary. It
// is loaded once at startup and never mutated afterwards.
type KeywordDict struct {
	Topics    map[string][]string `yaml:"topics"`
	Companies map[string][]string `yaml:"companies"`
}

// LoadKeywordDict reads the dictionary from a YAML file.
func LoadKeywordDict(path string) (*KeywordDict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword dictionary: %w", err)
	}

	var dict KeywordDict
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parse keyword dictionary: %w", err)
	}

	return &dict, nil
}

// TopicKeywords assembles the keyword set used to score a topic:
// the topic's own dictionary entry, the company-specific list, a
// bounded borrow from similarly named topics, and the tokens of the
// topic name itself. The result is deduplicated and sorted.
func (d *KeywordDict) TopicKeywords(topicName, companyName string) []string {
	var keywords []string

	if d != nil {
		keywords = append(keywords, d.Topics[topicName]...)

		if companyName != "" {
			keywords = append(keywords, d.Companies[companyName]...)
		}

		for other, kws := range d.Topics {
			if other == topicName {
				continue
			}
			if nameSimilarity(topicName, other) > topicNameSimilarity {
				n := similarTopicBorrow
				if n > len(kws) {
					n = len(kws)
				}
				keywords = append(keywords, kws[:n]...)
			}
		}
	}

	for _, word := range strings.Fields(topicName) {
		if len([]rune(word)) > 1 {
			keywords = append(keywords, word)
		}
	}

	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if len([]rune(kw)) <= 1 {
			continue
		}
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	sort.Strings(out)

	return out
}

// TopicNames returns the dictionary's topic names in sorted order.
func (d *KeywordDict) TopicNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Topics))
	for name := range d.Topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// nameSimilarity is the Jaccard overlap of the space-separated name
// tokens.
func nameSimilarity(a, b string) float64 {
	as := strings.Fields(strings.ToLower(a))
	bs := strings.Fields(strings.ToLower(b))
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}

	aSet := make(map[string]struct{}, len(as))
	for _, w := range as {
		aSet[w] = struct{}{}
	}
	bSet := make(map[string]struct{}, len(bs))
	for _, w := range bs {
		bSet[w] = struct{}{}
	}

	intersection := 0
	for w := range aSet {
		if _, ok := bSet[w]; ok {
			intersection++
		}
	}
	union := len(aSet) + len(bSet) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Stoplist is the stopword list configuration.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file.
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stoplist: %w", err)
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("parse stoplist: %w", err)
	}

	return &sl, nil
}
