package notify

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissyi-gh/remind/internal/config"
	"github.com/nissyi-gh/remind/internal/countdown"
	"github.com/nissyi-gh/remind/internal/model"
	"github.com/nissyi-gh/remind/internal/query"
)

func strPtr(s string) *string { return &s }

func sampleTasks() []query.TaskView {
	return []query.TaskView{
		{
			Task:      model.Task{ID: "1", Title: "File taxes", Description: "before noon", Deadline: "2026-10-16", Owner: strPtr("alice")},
			Countdown: countdown.Countdown{Days: -1, Status: countdown.StatusOverdue, Text: "overdue by 1 days"},
		},
		{
			Task:      model.Task{ID: "2", Title: "Buy <milk>", Deadline: "2026-10-17", Owner: strPtr("bob")},
			Countdown: countdown.Countdown{Days: 0, Status: countdown.StatusUrgent, Text: "due today"},
		},
		{
			Task:      model.Task{ID: "3", Title: "Plan trip", Deadline: "2026-11-30"},
			Countdown: countdown.Countdown{Days: 44, Status: countdown.StatusNormal, Text: "44 days remaining"},
		},
		{
			Task:      model.Task{ID: "4", Title: "Dentist", Deadline: "2026-10-19", Owner: strPtr("alice")},
			Countdown: countdown.Countdown{Days: 2, Status: countdown.StatusUrgent, Text: "2 days remaining"},
		},
	}
}

func testRenderer() Renderer {
	names := map[string]string{"alice": "Alice"}
	return Renderer{
		DefaultOwner: "default",
		Names: func(owner string) string {
			if n, ok := names[owner]; ok {
				return n
			}
			return owner
		},
		Now: func() time.Time { return time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC) },
	}
}

func TestGroupByOwner(t *testing.T) {
	groups := GroupByOwner(sampleTasks(), "default", nil)

	require.Len(t, groups, 3)
	assert.Equal(t, "alice", groups[0].Owner)
	assert.Equal(t, "bob", groups[1].Owner)
	assert.Equal(t, "default", groups[2].Owner)
	require.Len(t, groups[0].Tasks, 2)
	assert.Equal(t, "1", groups[0].Tasks[0].ID)
	assert.Equal(t, "4", groups[0].Tasks[1].ID)
}

func TestRenderText(t *testing.T) {
	d, err := testRenderer().Render(sampleTasks())
	require.NoError(t, err)

	assert.Equal(t, "Task reminder - 4 pending tasks", d.Subject)
	assert.Contains(t, d.Text, "4 pending tasks, 3 owners")
	assert.Contains(t, d.Text, "[Alice] (2 tasks)")
	assert.Contains(t, d.Text, "[bob] (1 tasks)")
	assert.Contains(t, d.Text, "Status: overdue by 1 days")
	assert.Contains(t, d.Text, "Description: before noon")
	assert.Less(t, strings.Index(d.Text, "File taxes"), strings.Index(d.Text, "Dentist"))
	assert.Less(t, strings.Index(d.Text, "Dentist"), strings.Index(d.Text, "Buy <milk>"))
}

func TestRenderHTML(t *testing.T) {
	d, err := testRenderer().Render(sampleTasks())
	require.NoError(t, err)

	assert.Contains(t, d.HTML, `class="task-item overdue"`)
	assert.Contains(t, d.HTML, `class="countdown urgent"`)
	assert.Contains(t, d.HTML, "Buy &lt;milk&gt;")
	assert.NotContains(t, d.HTML, "Buy <milk>")
	assert.Contains(t, d.HTML, "Alice (2 tasks)")
	assert.Contains(t, d.HTML, "&copy; 2026")
}

func TestMailerBuildMessage(t *testing.T) {
	m := NewMailer(config.Email{
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		Sender:     "bot@example.com",
		Recipients: []string{"a@example.com", "b@example.com"},
	}, testRenderer(), log.New(io.Discard))

	d, err := m.renderer.Render(sampleTasks())
	require.NoError(t, err)
	msg, err := m.buildMessage(d)
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, rcpts)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Task reminder - 4 pending tasks")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/html")
}

func TestMailerRejectsBadSender(t *testing.T) {
	m := NewMailer(config.Email{Sender: "not an address", Recipients: []string{"a@example.com"}}, testRenderer(), log.New(io.Discard))
	_, err := m.buildMessage(Digest{Subject: "s"})
	assert.Error(t, err)
}

func TestMailerEmpty(t *testing.T) {
	m := NewMailer(config.Email{}, testRenderer(), log.New(io.Discard))
	assert.ErrorIs(t, m.Send(context.Background(), nil), ErrNoTasks)
}

func TestLogNotifier(t *testing.T) {
	var out, logs bytes.Buffer
	n := NewLogNotifier(testRenderer(), &out, log.New(&logs))

	require.NoError(t, n.Send(context.Background(), sampleTasks()))
	assert.Contains(t, out.String(), "[Alice] (2 tasks)")
	assert.Contains(t, logs.String(), "email not configured, writing digest")
	assert.NotContains(t, logs.String(), "[Alice]")

	assert.ErrorIs(t, n.Send(context.Background(), nil), ErrNoTasks)
}
