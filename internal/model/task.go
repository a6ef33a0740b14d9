package model

import "time"

// DateLayout is the textual format of every calendar date stored on a task.
const DateLayout = "2006-01-02"

// Task represents a single reminder task as persisted by the store.
type Task struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Deadline    string  `json:"deadline"`
	CreatedAt   string  `json:"created_at"`
	Completed   bool    `json:"completed"`
	Owner       *string `json:"owner,omitempty"`
}

// HasOwner reports whether the task carries an owner. Records written before
// owners existed do not.
func (t Task) HasOwner() bool {
	return t.Owner != nil
}

// OwnerOr returns the task owner, or fallback for legacy records.
func (t Task) OwnerOr(fallback string) string {
	if t.Owner == nil {
		return fallback
	}
	return *t.Owner
}

// ParseDate parses a YYYY-MM-DD date. The result is midnight UTC so that
// differences between two parsed dates are always whole days.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DateOf truncates t to its calendar date, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders the calendar date of t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
