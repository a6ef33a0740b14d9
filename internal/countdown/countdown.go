// Package countdown classifies a deadline relative to the current date.
package countdown

import (
	"fmt"
	"time"

	"github.com/nissyi-gh/remind/internal/model"
)

// Status is the urgency class of a deadline.
type Status string

const (
	StatusOverdue Status = "overdue"
	StatusUrgent  Status = "urgent"
	StatusNormal  Status = "normal"
)

// UrgentWindow is the number of days ahead, inclusive, that still count as urgent.
const UrgentWindow = 3

const unknownText = "unknown"

// Pressing reports whether the status needs attention (urgent or overdue).
func (s Status) Pressing() bool {
	return s == StatusUrgent || s == StatusOverdue
}

// Countdown is the derived, never persisted view of a deadline.
type Countdown struct {
	Days   int    `json:"days"`
	Status Status `json:"status"`
	Text   string `json:"text"`
}

// Unknown reports whether c is the fallback produced for an unparseable
// deadline. Its zero Days must not be read as "due today".
func (c Countdown) Unknown() bool {
	return c.Text == unknownText
}

// Compute returns the countdown from today to deadline. Both are reduced to
// calendar dates first. A malformed deadline yields the unknown fallback.
func Compute(deadline string, today time.Time) Countdown {
	due, err := model.ParseDate(deadline)
	if err != nil {
		return Countdown{Days: 0, Status: StatusNormal, Text: unknownText}
	}
	days := int(model.DateOf(due).Sub(model.DateOf(today)).Hours() / 24)

	switch {
	case days < 0:
		return Countdown{Days: days, Status: StatusOverdue, Text: fmt.Sprintf("overdue by %d days", -days)}
	case days == 0:
		return Countdown{Days: 0, Status: StatusUrgent, Text: "due today"}
	case days <= UrgentWindow:
		return Countdown{Days: days, Status: StatusUrgent, Text: fmt.Sprintf("%d days remaining", days)}
	default:
		return Countdown{Days: days, Status: StatusNormal, Text: fmt.Sprintf("%d days remaining", days)}
	}
}
