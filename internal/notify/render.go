package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/nissyi-gh/remind/internal/query"
)

//go:embed templates/reminder.html
var templateFS embed.FS

var htmlTemplate = template.Must(template.ParseFS(templateFS, "templates/reminder.html"))

// Group is one owner's share of the digest.
type Group struct {
	Owner string
	Name  string
	Tasks []query.TaskView
}

// Digest is a rendered reminder message.
type Digest struct {
	Subject string
	Text    string
	HTML    string
}

// GroupByOwner splits tasks per owner, keeping the order in which owners
// first appear and the order of tasks within each owner. names maps an
// owner id to its display name; nil leaves ids as they are.
func GroupByOwner(tasks []query.TaskView, defaultOwner string, names func(string) string) []Group {
	var groups []Group
	index := map[string]int{}
	for _, t := range tasks {
		owner := t.OwnerOr(defaultOwner)
		i, ok := index[owner]
		if !ok {
			name := owner
			if names != nil {
				name = names(owner)
			}
			i = len(groups)
			index[owner] = i
			groups = append(groups, Group{Owner: owner, Name: name})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}

// Renderer turns a pending-task feed into a Digest.
type Renderer struct {
	DefaultOwner string
	Names        func(string) string
	Now          func() time.Time
}

// Render builds the subject, plain-text and HTML bodies for tasks.
func (r Renderer) Render(tasks []query.TaskView) (Digest, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	groups := GroupByOwner(tasks, r.DefaultOwner, r.Names)

	var buf bytes.Buffer
	data := struct {
		Total  int
		Groups []Group
		Year   int
	}{len(tasks), groups, now().Year()}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return Digest{}, fmt.Errorf("render html: %w", err)
	}

	return Digest{
		Subject: fmt.Sprintf("Task reminder - %d pending tasks", len(tasks)),
		Text:    renderText(len(tasks), groups),
		HTML:    buf.String(),
	}, nil
}

// Text renders only the plain-text body.
func (r Renderer) Text(tasks []query.TaskView) string {
	return renderText(len(tasks), GroupByOwner(tasks, r.DefaultOwner, r.Names))
}

func renderText(total int, groups []Group) string {
	var sb strings.Builder

	sb.WriteString("Task reminder - pending tasks by owner\n")
	sb.WriteString(fmt.Sprintf("%d pending tasks, %d owners\n", total, len(groups)))
	sb.WriteString(strings.Repeat("=", 50) + "\n")

	for _, g := range groups {
		sb.WriteString(fmt.Sprintf("\n[%s] (%d tasks)\n", g.Name, len(g.Tasks)))
		sb.WriteString(strings.Repeat("-", 50) + "\n")
		for _, t := range g.Tasks {
			sb.WriteString(fmt.Sprintf("Title: %s\n", t.Title))
			if t.Description != "" {
				sb.WriteString(fmt.Sprintf("Description: %s\n", t.Description))
			}
			sb.WriteString(fmt.Sprintf("Deadline: %s\n", t.Deadline))
			sb.WriteString(fmt.Sprintf("Status: %s\n", t.Countdown.Text))
			sb.WriteString(strings.Repeat("-", 30) + "\n")
		}
	}

	sb.WriteString("\n" + strings.Repeat("=", 50) + "\n")
	sb.WriteString("This is an automated message, please do not reply.\n")
	return sb.String()
}
