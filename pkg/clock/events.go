// Package clock models the external 24-PPQN musical clock and transport
// events that drive the time base, plus the tempo estimator the control
// thread runs over successive pulse timestamps.
//
// Event shapes are grounded on the teacher's MIDI realtime event family
// (ClockEvent/StartEvent/StopEvent/ContinueEvent) but carry a wall-clock
// microsecond timestamp rather than a sample offset, since the
// clock-input context timestamps pulses before they reach the control
// thread (spec.md §2, §3.2).
package clock

import "fmt"

// EventType distinguishes the two SPSC rings' payloads (spec.md §3.2):
// clockQueue carries Pulse only, eventQueue carries the transport types.
type EventType uint8

const (
	EventTypePulse EventType = iota
	EventTypeStart
	EventTypeStop
	EventTypeContinue
)

// Event is any value carried on the clock or transport rings.
type Event interface {
	Type() EventType
	String() string
}

// Pulse is a single timestamped 24-PPQN clock tick. TimestampMicros is a
// monotonic microsecond clock reading taken in the clock-input context at
// the moment the pulse arrived.
type Pulse struct {
	TimestampMicros uint32
}

func (Pulse) Type() EventType { return EventTypePulse }
func (p Pulse) String() string {
	return fmt.Sprintf("Pulse{t=%dus}", p.TimestampMicros)
}

// Start requests a transport reset: the time base's counters and
// tickInBeat return to zero (spec.md §3.1, §6 item 2).
type Start struct{}

func (Start) Type() EventType   { return EventTypeStart }
func (Start) String() string    { return "Start" }

// Stop sets the time base's transport state to Stopped without resetting
// any counter.
type Stop struct{}

func (Stop) Type() EventType { return EventTypeStop }
func (Stop) String() string  { return "Stop" }

// Continue resumes the transport without resetting any counter.
type Continue struct{}

func (Continue) Type() EventType { return EventTypeContinue }
func (Continue) String() string  { return "Continue" }
