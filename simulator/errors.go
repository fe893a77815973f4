package simulator

import "fmt"

// SimError is a custom error type for simulation errors
type SimError struct {
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("simulation error: %s", e.Message)
}

// ErrInvalidConfig creates an error for invalid configuration
func ErrInvalidConfig(msg string) error {
	return SimError{Message: fmt.Sprintf("invalid config: %s", msg)}
}

// OrderingError reports an event scheduled or popped before the engine
// clock. This always indicates a bug in event generation, never a
// recoverable runtime condition.
type OrderingError struct {
	EventTime float64
	Clock     float64
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("temporal ordering violation: event at t=%.6f is before clock t=%.6f",
		e.EventTime, e.Clock)
}

// EmptyQueueError reports an advance attempt with no events remaining.
// BeginDay always reschedules itself, so a self-sustaining run can never
// hit this.
type EmptyQueueError struct {
	Clock float64
}

func (e *EmptyQueueError) Error() string {
	return fmt.Sprintf("event queue empty at t=%.6f: simulation cannot self-sustain", e.Clock)
}

// DivergenceError reports a backlog that exceeded the configured bound at
// end of day. The policy parameters cannot keep up with demand and the
// replication is aborted rather than continuing with meaningless
// statistics.
type DivergenceError struct {
	Time         float64
	BacklogCount int
	Limit        int
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("backlog diverged at t=%.3f: %d backlogged orders exceed limit %d",
		e.Time, e.BacklogCount, e.Limit)
}
