// Package notify renders the pending-task digest and delivers it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/wneessen/go-mail"

	"github.com/nissyi-gh/remind/internal/config"
	"github.com/nissyi-gh/remind/internal/query"
)

// ErrNoTasks is returned when asked to send an empty digest.
var ErrNoTasks = errors.New("no tasks to send")

// Notifier delivers a digest of pending tasks. Failed sends are not retried.
type Notifier interface {
	Send(ctx context.Context, tasks []query.TaskView) error
}

// Mailer sends the digest as a multipart text/HTML email over SMTP.
type Mailer struct {
	cfg      config.Email
	renderer Renderer
	logger   *log.Logger
}

// NewMailer creates a Mailer for the given SMTP settings.
func NewMailer(cfg config.Email, renderer Renderer, logger *log.Logger) *Mailer {
	return &Mailer{cfg: cfg, renderer: renderer, logger: logger}
}

func (m *Mailer) buildMessage(d Digest) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.cfg.Recipients...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(d.Subject)
	msg.SetBodyString(mail.TypeTextPlain, d.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, d.HTML)
	return msg, nil
}

// clientOptions selects implicit TLS on port 465 and mandatory STARTTLS
// on every other port.
func (m *Mailer) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(m.cfg.SMTPPort)}
	if m.cfg.SMTPPort == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if m.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Sender),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}

// Send renders tasks and delivers them to every configured recipient.
func (m *Mailer) Send(ctx context.Context, tasks []query.TaskView) error {
	if len(tasks) == 0 {
		return ErrNoTasks
	}
	d, err := m.renderer.Render(tasks)
	if err != nil {
		return err
	}
	msg, err := m.buildMessage(d)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(m.cfg.SMTPServer, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	m.logger.Info("reminder email sent", "recipients", len(m.cfg.Recipients), "tasks", len(tasks))
	return nil
}

// LogNotifier writes the text digest to out instead of sending it. It
// stands in for the Mailer when no SMTP server is configured.
type LogNotifier struct {
	renderer Renderer
	out      io.Writer
	logger   *log.Logger
}

// NewLogNotifier creates a LogNotifier writing digests to out.
func NewLogNotifier(renderer Renderer, out io.Writer, logger *log.Logger) *LogNotifier {
	return &LogNotifier{renderer: renderer, out: out, logger: logger}
}

// Send writes the digest for tasks.
func (n *LogNotifier) Send(_ context.Context, tasks []query.TaskView) error {
	if len(tasks) == 0 {
		return ErrNoTasks
	}
	n.logger.Info("email not configured, writing digest", "tasks", len(tasks))
	if _, err := io.WriteString(n.out, n.renderer.Text(tasks)); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	return nil
}
