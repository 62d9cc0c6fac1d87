// Package template provides reusable task templates and recurrence rules.
// Templates are YAML files under .taskledger/templates/ that expand into
// create requests; recurrence rules compute the next spawn time for
// recurring templates.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/ledger"
)

// varPattern matches {{variable}} placeholders for template expansion.
//
//nolint:gochecknoglobals // immutable compiled regex shared across expansions
var varPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Template is a reusable task definition loaded from a YAML file.
type Template struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	Title       string              `yaml:"title"`
	Body        string              `yaml:"body,omitempty"`
	Priority    string              `yaml:"priority,omitempty"`
	Status      string              `yaml:"status,omitempty"`
	Tags        []string            `yaml:"tags,omitempty"`
	Category    string              `yaml:"category,omitempty"`
	Assignee    string              `yaml:"assignee,omitempty"`
	Checklist   []string            `yaml:"checklist,omitempty"`
	Subtasks    []string            `yaml:"subtasks,omitempty"`
	Variables   map[string]Variable `yaml:"variables,omitempty"`
	Recurrence  string              `yaml:"recurrence,omitempty"`
}

// Variable is a named placeholder a template caller may supply.
type Variable struct {
	Description string `yaml:"description,omitempty"`
	Default     string `yaml:"default,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
}

// Validate checks structural correctness of a loaded template.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ledgererrors.NewValidationReason("name", t.Name, "template name is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return ledgererrors.NewValidationReason("title", t.Title, "template title is required")
	}
	if t.Status != "" && !constants.TaskStatus(t.Status).IsValid() {
		return ledgererrors.NewValidationError("status", t.Status, statusNames())
	}
	if t.Priority != "" && !constants.TaskPriority(t.Priority).IsValid() {
		return ledgererrors.NewValidationError("priority", t.Priority, priorityNames())
	}
	if t.Recurrence != "" {
		if _, err := ParseRecurrence(t.Recurrence); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy safe for mutation by callers.
func (t *Template) Clone() *Template {
	out := *t
	out.Tags = append([]string(nil), t.Tags...)
	out.Checklist = append([]string(nil), t.Checklist...)
	out.Subtasks = append([]string(nil), t.Subtasks...)
	if t.Variables != nil {
		out.Variables = make(map[string]Variable, len(t.Variables))
		for name, v := range t.Variables {
			out.Variables[name] = v
		}
	}
	return &out
}

// Overrides carries per-spawn customizations applied on top of a template.
type Overrides struct {
	Title    string
	Priority string
	Assignee string
	Tags     []string
	Actor    string
	// Values fills {{variable}} placeholders in the title and body.
	Values map[string]string
}

// Instantiate expands a template into a create request. Variable
// placeholders in the title and body are filled from defaults and the
// supplied values; missing required variables fail.
func (t *Template) Instantiate(ov Overrides) (ledger.CreateRequest, error) {
	merged := make(map[string]string, len(t.Variables))
	for name, v := range t.Variables {
		if v.Default != "" {
			merged[name] = v.Default
		}
	}
	for name, value := range ov.Values {
		merged[name] = value
	}
	for name, v := range t.Variables {
		if v.Required && merged[name] == "" {
			return ledger.CreateRequest{}, ledgererrors.NewValidationReason(
				"variables", name, fmt.Sprintf("required variable %q not provided", name))
		}
	}

	req := ledger.CreateRequest{
		Title:       expandString(t.Title, merged),
		Description: expandString(t.Body, merged),
		Status:      constants.TaskStatus(t.Status),
		Priority:    constants.TaskPriority(t.Priority),
		Tags:        append([]string(nil), t.Tags...),
		Category:    t.Category,
		Assignee:    t.Assignee,
		Actor:       ov.Actor,
	}
	for _, item := range t.Checklist {
		req.Checklist = append(req.Checklist, domain.ChecklistItem{Text: expandString(item, merged)})
	}
	for _, st := range t.Subtasks {
		req.Subtasks = append(req.Subtasks, domain.Subtask{Title: expandString(st, merged)})
	}

	if ov.Title != "" {
		req.Title = ov.Title
	}
	if ov.Priority != "" {
		req.Priority = constants.TaskPriority(ov.Priority)
	}
	if ov.Assignee != "" {
		req.Assignee = ov.Assignee
	}
	if len(ov.Tags) > 0 {
		req.Tags = append(req.Tags, ov.Tags...)
	}
	return req, nil
}

// expandString substitutes {{name}} placeholders; unknown names stay intact
// so typos surface in the created task instead of vanishing silently.
func expandString(s string, values map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := varPattern.FindStringSubmatch(match)[1]
		if value, ok := values[name]; ok && value != "" {
			return value
		}
		return match
	})
}

func statusNames() []string {
	statuses := constants.ValidTaskStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}

func priorityNames() []string {
	priorities := constants.ValidTaskPriorities()
	names := make([]string, len(priorities))
	for i, p := range priorities {
		names[i] = string(p)
	}
	return names
}
