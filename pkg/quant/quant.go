// Package quant provides the quantization vocabulary shared by every
// effect controller: the four subdivisions, their exact sample
// durations, and the process-wide current grid setting (spec.md §4.6).
package quant

import "sync/atomic"

// Subdivision names one of the four quantization grid units.
type Subdivision uint8

const (
	Thirtysecond Subdivision = iota // 1/32
	Sixteenth                       // 1/16
	Eighth                           // 1/8
	Quarter                          // 1/4
)

func (s Subdivision) String() string {
	switch s {
	case Thirtysecond:
		return "1/32"
	case Sixteenth:
		return "1/16"
	case Eighth:
		return "1/8"
	case Quarter:
		return "1/4"
	default:
		return "?"
	}
}

// Duration returns the exact sample length of subdivision s given the
// current tempo's samplesPerBeat (spec.md §4.6). No rounding is applied
// here — only absolute scheduled sample positions are block-rounded, by
// timebase.TimeBase, to prevent subdivision chains from drifting off the
// grid.
func Duration(samplesPerBeat uint32, s Subdivision) uint64 {
	spb := uint64(samplesPerBeat)
	switch s {
	case Thirtysecond:
		return spb / 8
	case Sixteenth:
		return spb / 4
	case Eighth:
		return spb / 2
	case Quarter:
		return spb
	default:
		return spb / 4
	}
}

// Grid is the process-wide subdivision setting (spec.md §4.6: "a
// process-wide setting... changeable by an encoder"), stored atomically
// since the input context's encoder handler and every effect controller
// on the control thread both touch it.
type Grid struct {
	value atomic.Uint32
}

// NewGrid creates a Grid defaulted to 1/16, spec.md's stated default.
func NewGrid() *Grid {
	g := &Grid{}
	g.value.Store(uint32(Sixteenth))
	return g
}

func (g *Grid) Get() Subdivision {
	return Subdivision(g.value.Load())
}

func (g *Grid) Set(s Subdivision) {
	g.value.Store(uint32(s))
}

// Next cycles to the next coarser subdivision (1/32 -> 1/16 -> 1/8 ->
// 1/4 -> 1/32), the direction an encoder's clockwise turn selects.
func (g *Grid) Next() Subdivision {
	s := (g.Get() + 1) % 4
	g.Set(s)
	return s
}

// Prev cycles to the next finer subdivision.
func (g *Grid) Prev() Subdivision {
	s := (g.Get() + 3) % 4
	g.Set(s)
	return s
}

var global = NewGrid()

// Global returns the process-wide grid singleton.
func Global() *Grid { return global }
