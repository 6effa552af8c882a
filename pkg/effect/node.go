// Package effect defines the narrow behavioral boundary every audio
// effect in the pedal implements (spec.md §4.2), the fixed-ID registry
// that maps an ID to a node for command dispatch (spec.md §4.8), and the
// Command value the input layer emits (spec.md §3.4).
//
// Per spec.md §9 ("inheritance -> interface + tagged variants"), the
// source's virtual update() hierarchy collapses to one interface; effect
// identity is a small enum rather than a class hierarchy.
package effect

import "github.com/levon-m/microloop/pkg/audioblock"

// ID names one of the fixed effect slots plus the FUNC modifier key
// (spec.md §3.4).
type ID uint8

const (
	Choke ID = iota
	Freeze
	Stutter
	FuncModifier
)

func (id ID) String() string {
	switch id {
	case Choke:
		return "Choke"
	case Freeze:
		return "Freeze"
	case Stutter:
		return "Stutter"
	case FuncModifier:
		return "FuncModifier"
	default:
		return "Unknown"
	}
}

// Node is the single behavioral boundary every effect implements.
// Enable/Disable/Toggle/IsEnabled are callable from any thread via
// lock-free primitives; Update is called once per block by the audio
// interrupt and must complete well under one block period, never
// allocate outside the block allocator, and never block.
type Node interface {
	Enable()
	Disable()
	Toggle()
	IsEnabled() bool
	Name() string
	// Update runs this node's per-block audio processing against bus,
	// whose In ports have been populated by the graph driver.
	Update(bus *audioblock.Bus)
}

// Parameterized is implemented by nodes with control-thread-settable
// parameters (spec.md §4.2, optional extension of Node).
type Parameterized interface {
	SetParameter(index uint8, value float32)
	GetParameter(index uint8) float32
}
