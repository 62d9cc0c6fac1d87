package search

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/taskledger/taskledger/internal/domain"
)

// invertedIndex maps case-folded tokens to the ids of tasks containing them.
// It is rebuilt lazily whenever the store generation it was built from no
// longer matches.
type invertedIndex struct {
	mu     sync.Mutex
	tokens map[string][]string
	gen    uint64
	built  bool
}

func newInvertedIndex() *invertedIndex {
	return &invertedIndex{}
}

// candidatesFor returns the ids of tasks that could contain the query as a
// substring, by scanning the vocabulary rather than the tasks: a task
// qualifies when, for every query token, some of its tokens contains that
// token. Returns nil (meaning "no candidate pruning") for queries the index
// cannot answer soundly, such as an empty token list.
func (ix *invertedIndex) candidatesFor(folder cases.Caser, tasks []*domain.Task, gen uint64, query string) map[string]struct{} {
	queryTokens := tokenize(folder.String(query))
	if len(queryTokens) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if !ix.built || ix.gen != gen {
		ix.rebuild(folder, tasks, gen)
	}

	var result map[string]struct{}
	for _, qt := range queryTokens {
		ids := make(map[string]struct{})
		for token, taskIDs := range ix.tokens {
			if !strings.Contains(token, qt) {
				continue
			}
			for _, id := range taskIDs {
				ids[id] = struct{}{}
			}
		}
		if result == nil {
			result = ids
			continue
		}
		for id := range result {
			if _, ok := ids[id]; !ok {
				delete(result, id)
			}
		}
	}
	return result
}

// rebuild reindexes every task. Caller holds ix.mu.
func (ix *invertedIndex) rebuild(folder cases.Caser, tasks []*domain.Task, gen uint64) {
	ix.tokens = make(map[string][]string)
	for _, task := range tasks {
		seen := make(map[string]struct{})
		for _, field := range searchableFields {
			for _, token := range tokenize(folder.String(fieldValue(task, field))) {
				if _, dup := seen[token]; dup {
					continue
				}
				seen[token] = struct{}{}
				ix.tokens[token] = append(ix.tokens[token], task.ID)
			}
		}
	}
	ix.gen = gen
	ix.built = true
}

// exactCandidates consults the index for exact-mode pruning.
func (e *Engine) exactCandidates(tasks []*domain.Task, query string) map[string]struct{} {
	return e.index.candidatesFor(e.folder, tasks, e.store.Generation(), query)
}

// tokenize splits text into alphanumeric runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
