// Package ui is the interactive terminal front end.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nissyi-gh/remind/internal/notify"
	"github.com/nissyi-gh/remind/internal/prompt"
	"github.com/nissyi-gh/remind/internal/query"
)

type appState int

const (
	stateList appState = iota
	stateAddTitle
	stateAddDeadline
	stateAddDesc
	stateConfirm
)

var (
	appStyle     = lipgloss.NewStyle().Padding(1, 2)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	detailStyle  = lipgloss.NewStyle().
			Padding(1, 2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241"))
	descBoxStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241"))
)

// Store is the mutating half of the task store.
type Store interface {
	Add(ctx context.Context, title, description, deadline, owner string) (string, error)
	Delete(ctx context.Context, id string) (bool, error)
	Toggle(ctx context.Context, id string) (bool, error)
}

// Feed supplies the sorted task list.
type Feed interface {
	TasksWithCountdown(ctx context.Context, owner string) ([]query.TaskView, error)
}

type extraKeyMap struct {
	Add     key.Binding
	Toggle  key.Binding
	Delete  key.Binding
	Copy    key.Binding
	Prompt  key.Binding
	Pending key.Binding
	Refresh key.Binding
}

func newExtraKeyMap() extraKeyMap {
	return extraKeyMap{
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a/n", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", "x"),
			key.WithHelp("enter/x", "toggle"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy digest"),
		),
		Prompt: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "copy plan prompt"),
		),
		Pending: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "pending only"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

func (k extraKeyMap) bindings() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.Copy, k.Prompt, k.Pending, k.Refresh}
}

// Options configures the TUI.
type Options struct {
	// Owner restricts the list to one owner. Empty shows every task.
	Owner    string
	Renderer notify.Renderer
	// Copy writes text to the clipboard. Nil uses the system clipboard.
	Copy func(string) error
	Now  func() time.Time
}

// Model is the top-level BubbleTea model for the remind TUI.
type Model struct {
	state       appState
	list        list.Model
	input       textinput.Model
	deadline    deadlineInput
	descInput   textarea.Model
	store       Store
	feed        Feed
	opts        Options
	keys        extraKeyMap
	pendingOnly bool
	draftTitle  string
	draftDate   string
	err         error
	notice      string
	width       int
	height      int
}

type tasksLoadedMsg []query.TaskView
type errMsg struct{ error }

// NewModel creates a new TUI model.
func NewModel(s Store, feed Feed, opts Options) Model {
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ti := textinput.New()
	ti.Placeholder = "Task title..."
	ti.CharLimit = 256

	keys := newExtraKeyMap()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	l := list.New(nil, delegate, 0, 0)
	l.Title = "remind"
	if opts.Owner != "" {
		l.Title = "remind · " + opts.Owner
	}
	l.Styles.Title = titleStyle
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("task", "tasks")
	l.AdditionalShortHelpKeys = keys.bindings
	l.AdditionalFullHelpKeys = keys.bindings

	ta := textarea.New()
	ta.Placeholder = "Task description..."
	ta.CharLimit = 4096

	return Model{
		state:     stateList,
		list:      l,
		input:     ti,
		deadline:  newDeadlineInput(opts.Now),
		descInput: ta,
		store:     s,
		feed:      feed,
		opts:      opts,
		keys:      keys,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadTasks
}

func (m Model) loadTasks() tea.Msg {
	views, err := m.feed.TasksWithCountdown(context.Background(), m.opts.Owner)
	if err != nil {
		return errMsg{err}
	}
	if m.pendingOnly {
		pending := views[:0]
		for _, v := range views {
			if !v.Completed {
				pending = append(pending, v)
			}
		}
		views = pending
	}
	return tasksLoadedMsg(views)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := appStyle.GetFrameSize()
		contentWidth := msg.Width - h
		leftWidth := contentWidth * 60 / 100
		rightWidth := contentWidth - leftWidth
		m.list.SetSize(leftWidth, msg.Height-v)
		m.descInput.SetWidth(rightWidth - 6)
		m.descInput.SetHeight(msg.Height - v - 10)
		return m, nil

	case tasksLoadedMsg:
		items := make([]list.Item, len(msg))
		for i, v := range msg {
			items[i] = TaskItem{View: v}
		}
		cmd := m.list.SetItems(items)
		m.err = nil
		return m, cmd

	case errMsg:
		m.err = msg.error
		return m, nil
	}

	switch m.state {
	case stateList:
		return m.updateList(msg)
	case stateAddTitle:
		return m.updateAddTitle(msg)
	case stateAddDeadline:
		return m.updateAddDeadline(msg)
	case stateAddDesc:
		return m.updateAddDesc(msg)
	case stateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m Model) selected() (query.TaskView, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	return item.View, ok
}

// pendingViews returns the listed tasks that are not completed.
func (m Model) pendingViews() []query.TaskView {
	var out []query.TaskView
	for _, it := range m.list.Items() {
		if ti, ok := it.(TaskItem); ok && !ti.View.Completed {
			out = append(out, ti.View)
		}
	}
	return out
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		m.notice = ""
		switch keyMsg.String() {
		case "a", "n":
			m.state = stateAddTitle
			m.err = nil
			m.input.Reset()
			cmd := m.input.Focus()
			return m, cmd
		case "enter", "x":
			if v, ok := m.selected(); ok {
				if _, err := m.store.Toggle(context.Background(), v.ID); err != nil {
					m.err = err
					return m, nil
				}
				return m, m.loadTasks
			}
		case "d":
			if _, ok := m.selected(); ok {
				m.state = stateConfirm
				return m, nil
			}
		case "c":
			pending := m.pendingViews()
			if len(pending) == 0 {
				m.notice = "nothing pending to copy"
				return m, nil
			}
			if err := m.opts.Copy(m.opts.Renderer.Text(pending)); err != nil {
				m.err = fmt.Errorf("copy digest: %w", err)
				return m, nil
			}
			m.notice = fmt.Sprintf("copied digest of %d pending tasks", len(pending))
			return m, nil
		case "p":
			text := prompt.GenerateNew(m.opts.Now())
			if v, ok := m.selected(); ok {
				text = prompt.GenerateFromTask(v, m.opts.Now())
			}
			if err := m.opts.Copy(text); err != nil {
				m.err = fmt.Errorf("copy prompt: %w", err)
				return m, nil
			}
			m.notice = "copied planning prompt"
			return m, nil
		case "f":
			m.pendingOnly = !m.pendingOnly
			return m, m.loadTasks
		case "r":
			return m, m.loadTasks
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAddTitle(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			title := strings.TrimSpace(m.input.Value())
			if title == "" {
				m.state = stateList
				return m, nil
			}
			m.draftTitle = title
			m.state = stateAddDeadline
			m.deadline = newDeadlineInput(m.opts.Now)
			cmd := m.deadline.Focus()
			return m, cmd
		case "esc":
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateAddDeadline(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			val, err := m.deadline.Value()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.draftDate = val
			m.state = stateAddDesc
			m.descInput.Reset()
			cmd := m.descInput.Focus()
			return m, cmd
		case "esc":
			m.state = stateList
			m.err = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.deadline, cmd = m.deadline.Update(msg)
	return m, cmd
}

func (m Model) updateAddDesc(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			desc := strings.TrimSpace(m.descInput.Value())
			if _, err := m.store.Add(context.Background(), m.draftTitle, desc, m.draftDate, m.opts.Owner); err != nil {
				m.err = err
			}
			m.descInput.Blur()
			m.state = stateList
			return m, m.loadTasks
		case "ctrl+c":
			m.descInput.Blur()
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.descInput, cmd = m.descInput.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y":
			if v, ok := m.selected(); ok {
				if _, err := m.store.Delete(context.Background(), v.ID); err != nil {
					m.err = err
				}
			}
			m.state = stateList
			return m, m.loadTasks
		case "n", "esc":
			m.state = stateList
			return m, nil
		}
	}
	return m, nil
}

func (m Model) renderDetail() string {
	v, ok := m.selected()
	if !ok {
		return statusStyle.Render("no tasks")
	}
	descContent := statusStyle.Render("(no description)")
	if v.Description != "" {
		descContent = v.Description
	}
	desc := descBoxStyle.Render(descContent)

	state := "pending"
	if v.Completed {
		state = "completed"
	}
	return fmt.Sprintf("%s\n\n%s\n\ndeadline:   %s\ncountdown:  %s\nstatus:     %s\nowner:      %s\ncreated_at: %s",
		titleStyle.Render(v.Title),
		desc,
		v.Deadline,
		statusStyleFor(v).Render(v.Countdown.Text),
		state,
		v.OwnerOr("-"),
		v.CreatedAt,
	)
}

func (m Model) View() string {
	var footer string
	if m.err != nil {
		footer = "\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n"
	} else if m.notice != "" {
		footer = "\n" + noticeStyle.Render(m.notice) + "\n"
	}

	switch m.state {
	case stateAddTitle:
		return appStyle.Render(
			titleStyle.Render("New Task") + "\n\n" +
				m.input.View() + "\n\n" +
				statusStyle.Render("enter: next • esc: cancel") +
				footer,
		)
	case stateAddDeadline:
		return appStyle.Render(
			titleStyle.Render("Deadline for "+m.draftTitle) + "\n\n" +
				m.deadline.View() + "\n\n" +
				statusStyle.Render("tab/→: next field • +/-: shift a day • t: today • enter: next • esc: cancel") +
				footer,
		)
	case stateAddDesc:
		return appStyle.Render(
			titleStyle.Render("Description for "+m.draftTitle) + "\n\n" +
				m.descInput.View() + "\n\n" +
				statusStyle.Render("esc: save • ctrl+c: cancel") +
				footer,
		)
	case stateConfirm:
		v, _ := m.selected()
		return appStyle.Render(
			confirmStyle.Render("Delete Task?") + "\n\n" +
				"  " + v.Title + "\n\n" +
				statusStyle.Render("y: delete • n/esc: cancel") +
				footer,
		)
	default:
		h, v := appStyle.GetFrameSize()
		contentWidth := m.width - h
		contentHeight := m.height - v
		leftWidth := contentWidth * 60 / 100
		rightWidth := contentWidth - leftWidth

		rightPane := detailStyle.
			Width(rightWidth).
			Height(contentHeight).
			Render(m.renderDetail())
		content := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), rightPane)
		return appStyle.Render(content + footer)
	}
}

// Run starts the TUI in the alternate screen and blocks until it exits.
func Run(s Store, feed Feed, opts Options) error {
	p := tea.NewProgram(NewModel(s, feed, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
