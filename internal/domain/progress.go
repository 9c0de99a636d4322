package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date wire format.
const DateLayout = "2006-01-02"

// Status is the ordered outcome of a progress entry: Regression < Stable < Progress.
type Status string

const (
	StatusRegression Status = "Regression"
	StatusStable     Status = "Stable"
	StatusProgress   Status = "Progress"
)

// Statuses in ascending order.
var Statuses = []Status{StatusRegression, StatusStable, StatusProgress}

// Rank maps the status onto 1..3 for trend plotting.
func (s Status) Rank() (int, error) {
	switch s {
	case StatusRegression:
		return 1, nil
	case StatusStable:
		return 2, nil
	case StatusProgress:
		return 3, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
}

// ParseStatus validates s against the three-member enum.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, err := st.Rank(); err != nil {
		return "", err
	}
	return st, nil
}

// ProgressEntry maps the progress table. Rows are append-only.
type ProgressEntry struct {
	ID         int64     `db:"id"`
	Date       time.Time `db:"date"`
	ChildName  string    `db:"child_name"`
	Discipline string    `db:"discipline"`
	GoalArea   string    `db:"goal_area"`
	Status     Status    `db:"status"`
	Notes      string    `db:"notes"`
	MediaPath  string    `db:"media_path"` // "" when no file was attached
}
