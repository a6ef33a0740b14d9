package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nissyi-gh/remind/internal/countdown"
	"github.com/nissyi-gh/remind/internal/model"
)

const (
	partYear = iota
	partMonth
	partDay
)

var errNoDay = errors.New("day is required")

// deadlineInput edits a deadline as year, month and day parts and previews
// the countdown the task would get. Blank year and month mean the current
// ones. "+" and "-" move the deadline by a day, "t" resets it to today.
type deadlineInput struct {
	parts  [3]textinput.Model
	active int
	now    func() time.Time
}

func newDeadlineInput(now func() time.Time) deadlineInput {
	d := deadlineInput{now: now}
	for i, p := range []struct {
		placeholder string
		width       int
	}{{"YYYY", 4}, {"MM", 2}, {"DD", 2}} {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = p.placeholder
		ti.CharLimit = p.width
		ti.Width = p.width
		d.parts[i] = ti
	}
	return d
}

// Focus activates the year part.
func (d *deadlineInput) Focus() tea.Cmd {
	return d.activate(partYear)
}

func (d *deadlineInput) activate(idx int) tea.Cmd {
	d.active = idx
	var cmd tea.Cmd
	for i := range d.parts {
		if i == idx {
			cmd = d.parts[i].Focus()
		} else {
			d.parts[i].Blur()
		}
	}
	return cmd
}

// SetValue fills the parts from a possibly partial "YYYY-MM-DD" string.
func (d *deadlineInput) SetValue(date string) {
	fields := strings.SplitN(date, "-", 3)
	for i := range d.parts {
		v := ""
		if i < len(fields) {
			v = fields[i]
		}
		d.parts[i].SetValue(v)
	}
}

// SetDate fills every part from t.
func (d *deadlineInput) SetDate(t time.Time) {
	d.SetValue(model.FormatDate(t))
}

// Value returns the deadline as "YYYY-MM-DD".
func (d deadlineInput) Value() (string, error) {
	now := d.now()
	year := strings.TrimSpace(d.parts[partYear].Value())
	month := strings.TrimSpace(d.parts[partMonth].Value())
	day := strings.TrimSpace(d.parts[partDay].Value())

	if day == "" {
		return "", errNoDay
	}
	if year == "" {
		year = fmt.Sprintf("%04d", now.Year())
	}
	if month == "" {
		month = fmt.Sprintf("%02d", int(now.Month()))
	}
	if len(year) != 4 {
		return "", errors.New("year must have four digits")
	}

	date := year + "-" + zeroPad(month) + "-" + zeroPad(day)
	if _, err := model.ParseDate(date); err != nil {
		return "", fmt.Errorf("invalid date: %s", date)
	}
	return date, nil
}

// Date is Value parsed.
func (d deadlineInput) Date() (time.Time, error) {
	v, err := d.Value()
	if err != nil {
		return time.Time{}, err
	}
	return model.ParseDate(v)
}

// shift moves the deadline by days, starting from today when the parts do
// not hold a valid date yet.
func (d *deadlineInput) shift(days int) {
	base, err := d.Date()
	if err != nil {
		base = model.DateOf(d.now())
	}
	d.SetDate(base.AddDate(0, 0, days))
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func digitsOnly(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (d deadlineInput) Update(msg tea.Msg) (deadlineInput, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		d.parts[d.active], cmd = d.parts[d.active].Update(msg)
		return d, cmd
	}

	switch keyMsg.String() {
	case "+", "=":
		d.shift(1)
		return d, nil
	case "-":
		d.shift(-1)
		return d, nil
	case "t":
		d.SetDate(d.now())
		return d, nil
	case "tab", "right":
		if d.active < partDay {
			return d, d.activate(d.active + 1)
		}
		return d, nil
	case "shift+tab", "left":
		if d.active > partYear {
			return d, d.activate(d.active - 1)
		}
		return d, nil
	}

	if keyMsg.Type == tea.KeyRunes && !digitsOnly(keyMsg.Runes) {
		return d, nil
	}
	var cmd tea.Cmd
	d.parts[d.active], cmd = d.parts[d.active].Update(msg)
	return d, cmd
}

// preview describes the countdown the current value would produce.
func (d deadlineInput) preview() string {
	v, err := d.Value()
	if err != nil {
		if errors.Is(err, errNoDay) {
			return statusStyle.Render("enter a day, or press t for today")
		}
		return errorStyle.Render(err.Error())
	}
	c := countdown.Compute(v, d.now())
	return v + "  " + styleFor(c.Status).Render(c.Text)
}

func (d deadlineInput) View() string {
	return d.parts[partYear].View() + " / " +
		d.parts[partMonth].View() + " / " +
		d.parts[partDay].View() + "\n\n" +
		d.preview()
}
