package drill

import "time"

// Clock supplies the current time. time.Now carries a monotonic reading,
// so durations between samples are immune to wall-clock changes.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// SessionClock tracks the session and question deadlines.
type SessionClock struct {
	SessionStart     time.Time
	SessionDeadline  time.Time
	QuestionStart    time.Time
	QuestionDeadline time.Time
}

// StartSession fixes the session window.
func (c *SessionClock) StartSession(now time.Time, length time.Duration) {
	c.SessionStart = now
	c.SessionDeadline = now.Add(length)
}

// StartQuestion fixes the question window using the budget at draw time.
func (c *SessionClock) StartQuestion(now time.Time, budget time.Duration) {
	c.QuestionStart = now
	c.QuestionDeadline = now.Add(budget)
}

// SessionExpired reports whether the session deadline has been reached.
func (c *SessionClock) SessionExpired(now time.Time) bool {
	return !now.Before(c.SessionDeadline)
}

// QuestionExpired reports whether the question deadline has been reached.
func (c *SessionClock) QuestionExpired(now time.Time) bool {
	return !now.Before(c.QuestionDeadline)
}

// SessionRemaining returns time left in the session, never negative.
func (c *SessionClock) SessionRemaining(now time.Time) time.Duration {
	return nonNegative(c.SessionDeadline.Sub(now))
}

// QuestionRemaining returns time left for the current question, never negative.
func (c *SessionClock) QuestionRemaining(now time.Time) time.Duration {
	return nonNegative(c.QuestionDeadline.Sub(now))
}

// QuestionElapsed returns how long the current question has been shown.
func (c *SessionClock) QuestionElapsed(now time.Time) time.Duration {
	return nonNegative(now.Sub(c.QuestionStart))
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
