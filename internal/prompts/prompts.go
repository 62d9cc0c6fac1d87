// Package prompts renders natural-language text from task snapshots.
// All templates are stored as text/template files and embedded at compile time.
package prompts

import (
	"bytes"
	"fmt"

	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// Render executes a prompt template with the provided data and returns the result.
// The data type should match the expected type for the given prompt ID.
//
// Example:
//
//	data := prompts.NewTaskSummaryData(task)
//	text, err := prompts.Render(prompts.TaskSummary, data)
func Render(id PromptID, data any) (string, error) {
	tmpl, err := globalRegistry.get(id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", ledgererrors.Wrapf(err, "executing prompt %s", id)
	}

	return buf.String(), nil
}

// MustRender executes a prompt template and panics on error.
// Use this only when template execution should never fail.
func MustRender(id PromptID, data any) string {
	result, err := Render(id, data)
	if err != nil {
		panic(fmt.Sprintf("prompts.MustRender(%s): %v", id, err))
	}
	return result
}

// List returns all registered prompt IDs.
func List() []PromptID {
	return globalRegistry.list()
}

// Exists checks if a prompt ID is registered.
func Exists(id PromptID) bool {
	_, err := globalRegistry.get(id)
	return err == nil
}

// GetTemplate returns the raw template source for a prompt ID.
// Useful for debugging and documentation generation.
func GetTemplate(id PromptID) (string, error) {
	return globalRegistry.getSource(id)
}
