package domain

import "github.com/jonboulle/clockwork"

// clock is the package-level source of "today" so tests can freeze the date via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used by Today. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// dateLayout is the ISO calendar date used by feature validity bounds.
const dateLayout = "2006-01-02"

// Today returns the current UTC date of c as YYYY-MM-DD. A nil clock uses the
// package clock.
func Today(c clockwork.Clock) string {
	if c == nil {
		c = clock
	}
	return c.Now().UTC().Format(dateLayout)
}
