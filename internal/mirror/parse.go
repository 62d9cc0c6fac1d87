package mirror

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
)

// Entry is one task as written in the mirror file.
type Entry struct {
	// ID is the task id from the checkbox line.
	ID string `json:"id"`

	// Title is the text after "<id>: ".
	Title string `json:"title"`

	// Status is derived from the containing section; a checked box in any
	// section reads as completed, since ticking a checkbox is the natural way
	// humans complete a task in the file.
	Status constants.TaskStatus `json:"status"`

	// Description is the concatenated "> " lines under the item.
	Description string `json:"description,omitempty"`

	// Line is the 1-based line number of the checkbox line, for warnings.
	Line int `json:"line"`
}

// ParseResult is the outcome of reading a mirror document.
type ParseResult struct {
	// Entries are the well-formed task items, in file order.
	Entries []Entry `json:"entries"`

	// Warnings describe skipped malformed lines. A malformed line never
	// aborts the parse.
	Warnings []string `json:"warnings,omitempty"`
}

// itemRegex matches checkbox task lines: "- [ ] <id>: <title>" or "- [x] ...".
var itemRegex = regexp.MustCompile(`^-\s\[([ xX])\]\s([0-9a-fA-F-]{36}):\s(.+)$`)

// sectionStatuses maps section headers back to statuses.
var sectionStatuses = map[string]constants.TaskStatus{ //nolint:gochecknoglobals // fixed parse vocabulary
	"pending":     constants.TaskStatusPending,
	"in progress": constants.TaskStatusInProgress,
	"completed":   constants.TaskStatusCompleted,
	"blocked":     constants.TaskStatusBlocked,
}

// Parse reads a mirror document. The grammar is line-based: `## <Section>`
// headers set the current status, checkbox lines declare tasks, and `> `
// lines extend the description of the item above them. Anything else that
// looks like it was meant to be an item is skipped with a warning.
func Parse(content string) *ParseResult {
	result := &ParseResult{}
	var current constants.TaskStatus
	var open *Entry

	flush := func() {
		if open != nil {
			result.Entries = append(result.Entries, *open)
			open = nil
		}
	}

	for i, raw := range strings.Split(content, "\n") {
		lineNo := i + 1
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "# "):
			continue

		case strings.HasPrefix(trimmed, "## "):
			flush()
			name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")))
			status, ok := sectionStatuses[name]
			if !ok {
				current = ""
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d: unknown section %q, items below it are skipped", lineNo, name))
				continue
			}
			current = status

		case strings.HasPrefix(trimmed, "> "):
			if open == nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d: description line without a task item", lineNo))
				continue
			}
			text := strings.TrimPrefix(trimmed, "> ")
			if open.Description != "" {
				open.Description += "\n"
			}
			open.Description += text

		case strings.HasPrefix(trimmed, "- "):
			flush()
			if current == "" {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d: task item outside a known section", lineNo))
				continue
			}
			m := itemRegex.FindStringSubmatch(trimmed)
			if m == nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d: malformed task item %q", lineNo, trimmed))
				continue
			}
			id := strings.ToLower(m[2])
			if err := domain.ValidateID(id); err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d: invalid task id %q", lineNo, m[2]))
				continue
			}
			status := current
			if m[1] == "x" || m[1] == "X" {
				status = constants.TaskStatusCompleted
			}
			open = &Entry{
				ID:     id,
				Title:  strings.TrimSpace(m[3]),
				Status: status,
				Line:   lineNo,
			}

		default:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("line %d: unrecognized content %q", lineNo, trimmed))
		}
	}
	flush()
	return result
}
