// Package search provides read-only queries over the task store: exact,
// regex, fuzzy, and boolean modes with field restriction and structured
// filters. Exact lookups consult a lazily built inverted token index that is
// rebuilt whenever the store's generation moves.
package search

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/ctxutil"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/ledger"
)

// Type selects the matching mode.
type Type string

const (
	// TypeExact is a case-folded substring match.
	TypeExact Type = "exact"

	// TypeRegex compiles the query as a regular expression.
	TypeRegex Type = "regex"

	// TypeFuzzy tolerates typos, transpositions, and dropped characters.
	TypeFuzzy Type = "fuzzy"

	// TypeBoolean splits the query into AND/OR terms.
	TypeBoolean Type = "boolean"
)

// ValidTypes returns the supported search types.
func ValidTypes() []Type {
	return []Type{TypeExact, TypeRegex, TypeFuzzy, TypeBoolean}
}

// searchableFields are the task fields a query can match against.
var searchableFields = []string{"title", "description", "tags", "category", "assignee"} //nolint:gochecknoglobals // fixed field vocabulary

// regexDefaultFields scope an unrestricted regex search to the free-text
// fields; structured fields still match under an explicit restriction.
var regexDefaultFields = []string{"title", "description"} //nolint:gochecknoglobals // fixed field vocabulary

// fuzzyThreshold is the minimum fuzzy score included in results.
const fuzzyThreshold = 0.5

// Filters narrow the candidate set before matching. All set filters must
// hold; the due-date range is inclusive on both ends.
type Filters struct {
	Status          *constants.TaskStatus   `json:"status,omitempty"`
	Priority        *constants.TaskPriority `json:"priority,omitempty"`
	Tags            []string                `json:"tags,omitempty"`
	Assignee        string                  `json:"assignee,omitempty"`
	Category        string                  `json:"category,omitempty"`
	DueAfter        *time.Time              `json:"due_after,omitempty"`
	DueBefore       *time.Time              `json:"due_before,omitempty"`
	IncludeArchived bool                    `json:"include_archived,omitempty"`
}

// Request is one search invocation.
type Request struct {
	// Query is the search text or pattern. Required except when only
	// filters are wanted, in which case an empty exact query matches all.
	Query string `json:"query"`

	// Type selects the matching mode; empty defaults to exact.
	Type Type `json:"type,omitempty"`

	// Fields restricts which task fields are matched; empty means all
	// searchable fields, except regex, which defaults to title and
	// description.
	Fields []string `json:"fields,omitempty"`

	// Filters narrow the candidate set before matching.
	Filters Filters `json:"filters,omitempty"`
}

// Match is one scored result.
type Match struct {
	Task *domain.Task `json:"task"`

	// Score is in (0, 1]; exact and regex hits score 1.0, fuzzy and boolean
	// scores reflect match quality.
	Score float64 `json:"score"`

	// MatchedFields lists the fields the query matched in.
	MatchedFields []string `json:"matched_fields,omitempty"`
}

// Engine executes searches over a store. It never mutates tasks.
type Engine struct {
	store  *ledger.Store
	folder cases.Caser

	index *invertedIndex
}

// NewEngine builds a search engine over the store.
func NewEngine(store *ledger.Store) *Engine {
	return &Engine{
		store:  store,
		folder: cases.Fold(),
		index:  newInvertedIndex(),
	}
}

// Search runs the request and returns matches sorted by descending score,
// with insertion order as the tiebreaker.
func (e *Engine) Search(ctx context.Context, req Request) ([]Match, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	fields, err := resolveFields(req.Fields)
	if err != nil {
		return nil, err
	}
	searchType := req.Type
	if searchType == "" {
		searchType = TypeExact
	}

	tasks, err := e.store.All(ctx)
	if err != nil {
		return nil, err
	}

	var matcher func(task *domain.Task) (float64, []string, error)
	switch searchType {
	case TypeExact:
		candidates := e.exactCandidates(tasks, req.Query)
		matcher = e.exactMatcher(req.Query, fields, candidates)
	case TypeRegex:
		re, reErr := regexp.Compile(req.Query)
		if reErr != nil {
			return nil, ledgererrors.Wrap(ledgererrors.ErrInvalidRegex, reErr.Error())
		}
		if len(req.Fields) == 0 {
			fields = regexDefaultFields
		}
		matcher = regexMatcher(re, fields)
	case TypeFuzzy:
		matcher = e.fuzzyMatcher(req.Query, fields)
	case TypeBoolean:
		matcher = e.booleanMatcher(req.Query, fields)
	default:
		return nil, ledgererrors.Wrapf(ledgererrors.ErrUnknownSearchType, "%q", searchType)
	}

	var matches []Match
	for _, task := range tasks {
		if !matchesFilters(task, req.Filters) {
			continue
		}
		score, matched, err := matcher(task)
		if err != nil {
			return nil, err
		}
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{Task: task, Score: score, MatchedFields: matched})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// resolveFields validates a field restriction, defaulting to all fields.
func resolveFields(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return searchableFields, nil
	}
	out := make([]string, 0, len(requested))
	for _, field := range requested {
		name := strings.ToLower(strings.TrimSpace(field))
		valid := false
		for _, known := range searchableFields {
			if name == known {
				valid = true
				break
			}
		}
		if !valid {
			return nil, ledgererrors.NewValidationError("fields", field, searchableFields)
		}
		out = append(out, name)
	}
	return out, nil
}

// fieldValue extracts the searchable text of a field.
func fieldValue(task *domain.Task, field string) string {
	switch field {
	case "title":
		return task.Title
	case "description":
		return task.Description
	case "tags":
		return strings.Join(task.Tags, " ")
	case "category":
		return task.Category
	case "assignee":
		return task.Assignee
	default:
		return ""
	}
}

// exactMatcher matches the case-folded query as a substring. An empty query
// matches everything, so filter-only searches work. When a candidate set is
// available from the index, tasks outside it are skipped without scanning.
func (e *Engine) exactMatcher(query string, fields []string, candidates map[string]struct{}) func(*domain.Task) (float64, []string, error) {
	folded := e.folder.String(query)
	return func(task *domain.Task) (float64, []string, error) {
		if folded == "" {
			return 1.0, nil, nil
		}
		if candidates != nil {
			if _, ok := candidates[task.ID]; !ok {
				return 0, nil, nil
			}
		}
		var matched []string
		for _, field := range fields {
			if strings.Contains(e.folder.String(fieldValue(task, field)), folded) {
				matched = append(matched, field)
			}
		}
		if len(matched) == 0 {
			return 0, nil, nil
		}
		return 1.0, matched, nil
	}
}

// regexMatcher matches the compiled pattern over the selected fields.
func regexMatcher(re *regexp.Regexp, fields []string) func(*domain.Task) (float64, []string, error) {
	return func(task *domain.Task) (float64, []string, error) {
		var matched []string
		for _, field := range fields {
			if re.MatchString(fieldValue(task, field)) {
				matched = append(matched, field)
			}
		}
		if len(matched) == 0 {
			return 0, nil, nil
		}
		return 1.0, matched, nil
	}
}

// booleanMatcher splits the query into OR groups of AND terms. A task matches
// when every term of at least one group is a case-folded substring of some
// selected field. The score is the matched group's term count over the
// largest group, so more specific matches rank higher.
func (e *Engine) booleanMatcher(query string, fields []string) func(*domain.Task) (float64, []string, error) {
	groups := parseBooleanQuery(query)
	maxTerms := 0
	for _, group := range groups {
		if len(group) > maxTerms {
			maxTerms = len(group)
		}
	}

	return func(task *domain.Task) (float64, []string, error) {
		if len(groups) == 0 {
			return 0, nil, nil
		}
		text := make(map[string]string, len(fields))
		for _, field := range fields {
			text[field] = e.folder.String(fieldValue(task, field))
		}

		best := 0
		fieldSet := map[string]struct{}{}
		for _, group := range groups {
			matchedAll := true
			groupFields := map[string]struct{}{}
			for _, term := range group {
				found := false
				for field, value := range text {
					if strings.Contains(value, e.folder.String(term)) {
						groupFields[field] = struct{}{}
						found = true
					}
				}
				if !found {
					matchedAll = false
					break
				}
			}
			if matchedAll && len(group) > best {
				best = len(group)
				fieldSet = groupFields
			}
		}
		if best == 0 {
			return 0, nil, nil
		}
		var matched []string
		for _, field := range fields {
			if _, ok := fieldSet[field]; ok {
				matched = append(matched, field)
			}
		}
		return float64(best) / float64(maxTerms), matched, nil
	}
}

// parseBooleanQuery splits a query on OR into groups and on AND (or plain
// whitespace) into terms.
func parseBooleanQuery(query string) [][]string {
	var groups [][]string
	for _, clause := range splitKeyword(query, "OR") {
		var terms []string
		for _, part := range splitKeyword(clause, "AND") {
			for _, term := range strings.Fields(part) {
				terms = append(terms, term)
			}
		}
		if len(terms) > 0 {
			groups = append(groups, terms)
		}
	}
	return groups
}

// splitKeyword splits on a standalone uppercase keyword.
func splitKeyword(s, keyword string) []string {
	var out []string
	current := make([]string, 0, 4)
	for _, word := range strings.Fields(s) {
		if word == keyword {
			out = append(out, strings.Join(current, " "))
			current = current[:0]
			continue
		}
		current = append(current, word)
	}
	out = append(out, strings.Join(current, " "))
	return out
}

// matchesFilters applies the structured filters.
func matchesFilters(task *domain.Task, f Filters) bool {
	if task.Archived && !f.IncludeArchived {
		return false
	}
	if f.Status != nil && task.Status != *f.Status {
		return false
	}
	if f.Priority != nil && task.Priority != *f.Priority {
		return false
	}
	for _, tag := range f.Tags {
		if !task.HasTag(tag) {
			return false
		}
	}
	if f.Assignee != "" && task.Assignee != f.Assignee {
		return false
	}
	if f.Category != "" && task.Category != f.Category {
		return false
	}
	if f.DueAfter != nil || f.DueBefore != nil {
		if task.DueDate == nil {
			return false
		}
		if f.DueAfter != nil && task.DueDate.Before(*f.DueAfter) {
			return false
		}
		if f.DueBefore != nil && task.DueDate.After(*f.DueBefore) {
			return false
		}
	}
	return true
}
