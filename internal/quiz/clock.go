package quiz

import "time"

// Clock supplies the current instant so the session manager's time
// arithmetic can be driven by a fake in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func NewClock() Clock { return realClock{} }
