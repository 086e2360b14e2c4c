package ingest

import "math"

// Similarity weights for the blended token-overlap score.
// Jaccard dominates; the common-token ratio rewards one text being
// contained in the other; the length ratio penalizes size mismatch.
const (
	jaccardWeight = 0.5
	commonWeight  = 0.4
	lengthWeight  = 0.1
)

// Similarity computes a symmetric token-overlap similarity in [0,1]
// between two texts. Both inputs are normalized first. Identical
// normalized texts score 1.0; an empty token set on either side scores 0.
func (n *Normalizer) Similarity(a, b string) float64 {
	na := n.Normalize(a)
	nb := n.Normalize(b)

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

	common := float64(intersection) / float64(minLen)
	length := float64(minLen) / float64(maxLen)

	score := jaccardWeight*jaccard + commonWeight*common + lengthWeight*length
	return round3(score)
}

func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	start := -1
	for i, r := range normalized {
		if r == ' ' {
			if start >= 0 {
				set[normalized[start:i]] = struct{}{}
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		set[normalized[start:]] = struct{}{}
	}
	return set
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
