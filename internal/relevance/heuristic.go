package relevance

import (
	"strings"

	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

// Tunable weights for the local keyword-overlap scorer. One consistent
// policy for the whole engine; the exact numbers are not load-bearing.
const (
	scoreBase    = 0.3
	scoreSpan    = 0.7
	minTermLen   = 3
	maxScoreText = 4000
)

// HeuristicScore estimates how relevant text is to query without any AI
// call: the fraction of query terms present in the text, mapped onto
// [scoreBase, scoreBase+scoreSpan].
func HeuristicScore(query, text string) float64 {
	terms := queryTerms(query)
	if len(terms) == 0 || text == "" {
		return crawl.DefaultRelevance
	}

	lower := strings.ToLower(text)
	if len(lower) > maxScoreText {
		lower = lower[:maxScoreText]
	}

	hits := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return scoreBase + scoreSpan*float64(hits)/float64(len(terms))
}

func queryTerms(query string) []string {
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if len(f) >= minTermLen {
			terms = append(terms, f)
		}
	}
	return terms
}
