package ledger

import "time"

// Window is a half-open time range [From, To). A zero bound is unbounded.
type Window struct {
	From time.Time
	To   time.Time
}

// AllTime returns the unbounded window.
func AllTime() Window {
	return Window{}
}

// CurrentMonth returns the calendar month containing today, in loc.
func CurrentMonth(today time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	d := today.In(loc)
	from := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, loc)
	return Window{From: from, To: from.AddDate(0, 1, 0)}
}

// Contains reports whether t falls inside w.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// IsAllTime reports whether w has no bounds.
func (w Window) IsAllTime() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// sameMonth compares the calendar month and year of a and b in loc.
func sameMonth(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.Month() == b.Month()
}
