// Package mirror keeps the human-editable markdown mirror (TASKS.md) in sync
// with the ledger. A Renderer regenerates the file deterministically from
// ledger state, a Parser reads human edits back, and the Engine detects and
// resolves divergence between the two using content fingerprints.
package mirror

import (
	"fmt"
	"strings"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
)

// sectionOrder fixes the section sequence so rendering is deterministic.
var sectionOrder = []constants.TaskStatus{ //nolint:gochecknoglobals // fixed render order
	constants.TaskStatusPending,
	constants.TaskStatusInProgress,
	constants.TaskStatusCompleted,
	constants.TaskStatusBlocked,
}

// sectionTitles maps statuses to their mirror section headers.
var sectionTitles = map[constants.TaskStatus]string{ //nolint:gochecknoglobals // fixed render vocabulary
	constants.TaskStatusPending:    "Pending",
	constants.TaskStatusInProgress: "In Progress",
	constants.TaskStatusCompleted:  "Completed",
	constants.TaskStatusBlocked:    "Blocked",
}

// Render produces the mirror document for the given tasks: one `## <Section>`
// per status in fixed order, checkbox items `- [ ] <id>: <title>` (checked for
// completed tasks), and `> `-quoted description lines. Archived tasks are
// omitted. Same tasks in, same bytes out.
func Render(tasks []*domain.Task) string {
	var b strings.Builder
	b.WriteString("# Tasks\n")

	for _, status := range sectionOrder {
		b.WriteString("\n## ")
		b.WriteString(sectionTitles[status])
		b.WriteString("\n\n")

		for _, task := range tasks {
			if task.Archived || task.Status != status {
				continue
			}
			box := "[ ]"
			if status == constants.TaskStatusCompleted {
				box = "[x]"
			}
			fmt.Fprintf(&b, "- %s %s: %s\n", box, task.ID, task.Title)
			for _, line := range descriptionLines(task.Description) {
				b.WriteString("  > ")
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// descriptionLines splits a description for quoted rendering, dropping a
// trailing newline so round-trips stay stable.
func descriptionLines(description string) []string {
	if description == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(description, "\n"), "\n")
}
