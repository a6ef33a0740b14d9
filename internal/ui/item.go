package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nissyi-gh/remind/internal/countdown"
	"github.com/nissyi-gh/remind/internal/query"
)

var (
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	urgentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	normalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
)

// statusStyleFor picks the countdown color for a task.
func statusStyleFor(v query.TaskView) lipgloss.Style {
	if v.Completed || v.Countdown.Unknown() {
		return statusStyle
	}
	return styleFor(v.Countdown.Status)
}

func styleFor(s countdown.Status) lipgloss.Style {
	switch s {
	case countdown.StatusOverdue:
		return overdueStyle
	case countdown.StatusUrgent:
		return urgentStyle
	default:
		return normalStyle
	}
}

// TaskItem wraps query.TaskView to satisfy the list.DefaultItem interface.
type TaskItem struct {
	View query.TaskView
}

func (i TaskItem) Title() string {
	check := "[ ]"
	title := i.View.Title
	if i.View.Completed {
		check = "[x]"
		title = doneStyle.Render(title)
	}
	return fmt.Sprintf("%s %s  %s", check, title, statusStyleFor(i.View).Render(i.View.Countdown.Text))
}

func (i TaskItem) Description() string {
	return ""
}

func (i TaskItem) FilterValue() string {
	return i.View.Title
}
