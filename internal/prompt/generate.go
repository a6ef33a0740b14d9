// Package prompt builds assistant prompts whose answers can be fed straight
// back into the YAML importer.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/nissyi-gh/remind/internal/model"
	"github.com/nissyi-gh/remind/internal/query"
)

const yamlFormat = `Reply with a single YAML code block in the format below and nothing else.

` + "```yaml" + `
tasks:
  - title: "Task title"
    description: "What needs to be done"
    deadline: "YYYY-MM-DD"
` + "```" + `

Fields:
- title: (required) short task title
- description: (optional) details
- deadline: (required) due date in YYYY-MM-DD format, no earlier than today`

// GenerateNew returns a prompt for planning new tasks from scratch.
func GenerateNew(today time.Time) string {
	return fmt.Sprintf(`You are a planning assistant.
Break the user's goal into concrete tasks, each with its own deadline.
Today is %s.

%s
`, model.FormatDate(today), yamlFormat)
}

// GenerateFromTask returns a prompt for splitting an existing task into
// smaller tasks that finish before it is due.
func GenerateFromTask(task query.TaskView, today time.Time) string {
	var sb strings.Builder

	sb.WriteString("You are a planning assistant.\n")
	sb.WriteString("Split the task below into smaller tasks that can each be finished by its deadline.\n")
	sb.WriteString(fmt.Sprintf("Today is %s.\n\n", model.FormatDate(today)))

	sb.WriteString("## Task\n")
	sb.WriteString(fmt.Sprintf("- Title: %s\n", task.Title))
	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("- Description: %s\n", task.Description))
	}
	sb.WriteString(fmt.Sprintf("- Deadline: %s (%s)\n", task.Deadline, task.Countdown.Text))
	if task.Countdown.Status.Pressing() {
		sb.WriteString("\nThe deadline is close, keep the list short.\n")
	}

	sb.WriteString("\n")
	sb.WriteString(yamlFormat)
	sb.WriteString("\n")

	return sb.String()
}
