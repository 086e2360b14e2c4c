package ingest

import (
	"strings"

	"github.com/esglens/materia/pkg/materia/news"
)

// DefaultDedupThreshold is the similarity above which two articles are
// treated as the same story.
const DefaultDedupThreshold = 0.6

// Deduplicator merges near-duplicate articles by comparing each
// incoming article against every accepted representative. The first
// article of a similarity cluster survives, carrying the union of the
// cluster's matched keywords and the cluster size as its mention count.
type Deduplicator struct {
	norm      *Normalizer
	threshold float64
}

// NewDeduplicator creates a deduplicator. A threshold <= 0 falls back
// to DefaultDedupThreshold.
func NewDeduplicator(norm *Normalizer, threshold float64) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultDedupThreshold
	}
	return &Deduplicator{norm: norm, threshold: threshold}
}

// Dedupe collapses near-duplicates in input order. O(n^2) in the
// article count; callers with very large batches should split and
// re-dedupe the representatives.
func (d *Deduplicator) Dedupe(articles []news.Article) []news.Article {
	reps := make([]news.Article, 0, len(articles))
	texts := make([]string, 0, len(articles))

	for _, art := range articles {
		text := d.norm.Normalize(comparisonText(art))
		merged := false

		for i := range reps {
			if d.norm.similarityNormalized(texts[i], text) >= d.threshold {
				reps[i].MatchedKeywords = unionKeywords(reps[i].MatchedKeywords, art.MatchedKeywords)
				reps[i].MentionCount++
				merged = true
				break
			}
		}

		if !merged {
			if art.MentionCount == 0 {
				art.MentionCount = 1
			}
			reps = append(reps, art)
			texts = append(texts, text)
		}
	}

	return reps
}

// comparisonText doubles the title so it outweighs the body in the
// similarity comparison.
func comparisonText(a news.Article) string {
	return a.Title + " " + a.Title + " " + a.Description + " " + a.Content
}

// similarityNormalized is Similarity for inputs that are already
// normalized, so representatives are not re-normalized on every pass.
func (n *Normalizer) similarityNormalized(na, nb string) float64 {
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}

	ta := tokenSet(na)
	tb := tokenSet(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection

	jaccard := 0.0
	if union > 0 {
		jaccard = float64(intersection) / float64(union)
	}

	minLen := len(ta)
	maxLen := len(tb)
	if minLen > maxLen {
		minLen, maxLen = maxLen, minLen
	}

	score := jaccardWeight*jaccard +
		commonWeight*float64(intersection)/float64(minLen) +
		lengthWeight*float64(minLen)/float64(maxLen)
	return round3(score)
}

func unionKeywords(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, kw := range a {
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	for _, kw := range b {
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	return out
}
