package search

import (
	"github.com/taskledger/taskledger/internal/domain"
)

// fuzzyMatcher scores each selected field by token similarity: every query
// token is paired with its most similar field token (normalized Levenshtein),
// and the field score is the mean of those best pairings. Misspellings,
// transpositions, and dropped characters degrade the score smoothly instead
// of dropping the match; strong partial matches stay above 0.7.
func (e *Engine) fuzzyMatcher(query string, fields []string) func(*domain.Task) (float64, []string, error) {
	queryTokens := tokenize(e.folder.String(query))

	return func(task *domain.Task) (float64, []string, error) {
		if len(queryTokens) == 0 {
			return 0, nil, nil
		}
		best := 0.0
		var matched []string
		for _, field := range fields {
			fieldTokens := tokenize(e.folder.String(fieldValue(task, field)))
			score := fuzzyScore(queryTokens, fieldTokens)
			if score < fuzzyThreshold {
				continue
			}
			matched = append(matched, field)
			if score > best {
				best = score
			}
		}
		if best == 0 {
			return 0, nil, nil
		}
		return best, matched, nil
	}
}

// fuzzyScore computes the mean best-pair similarity of query tokens against
// field tokens.
func fuzzyScore(queryTokens, fieldTokens []string) float64 {
	if len(queryTokens) == 0 || len(fieldTokens) == 0 {
		return 0
	}
	total := 0.0
	for _, qt := range queryTokens {
		best := 0.0
		for _, ft := range fieldTokens {
			if s := similarity(qt, ft); s > best {
				best = s
			}
		}
		total += best
	}
	return total / float64(len(queryTokens))
}

// similarity is 1 - normalized Levenshtein distance, in [0, 1].
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes the edit distance between two rune slices using two
// rolling rows.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			m := prev[j] + 1
			if curr[j-1]+1 < m {
				m = curr[j-1] + 1
			}
			if prev[j-1]+cost < m {
				m = prev[j-1] + cost
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
