package service

import "time"

// Clock supplies the current time. The web layer captures it exactly once
// per request cycle and threads the instant through every reconciler and
// classifier call, so a single response never sees two different nows.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Notifier delivers outbound messages. Delivery is fire and forget: callers
// log failures and never let them block a task mutation.
type Notifier interface {
	Send(text string) error
}
