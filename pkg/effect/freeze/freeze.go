// Package freeze implements the Freeze effect node (spec.md §4.4): a
// stereo circular-buffer looper. Disabled, it passes audio through while
// continuously recording into the circular buffer; enabled, it ignores
// input and loops the buffer from the readPos latched at the moment it
// was enabled.
//
// Grounded on original_source's audio_freeze.h (circular buffer
// write/read, enable-latches-readPos, zero-copy passthrough) plus
// spec.md §4.4's addition of schedulable onset/release sharing Choke's
// block-window check.
package freeze

import (
	"sync/atomic"

	"github.com/levon-m/microloop/pkg/audioblock"
)

// BufferMS is the circular capture window (spec.md §3.5: "compile-time
// length — e.g. 3ms default"), matching original_source's default.
const BufferMS = 3

// BufferSamples is BufferMS at the fixed 44.1kHz sample rate.
const BufferSamples = BufferMS * 44100 / 1000

// Mode mirrors choke.Mode (Free or Quantized), duplicated here rather
// than shared to keep each effect package import-independent of its
// siblings, matching the teacher's per-effect-file structure.
type Mode uint32

const (
	Free Mode = iota
	Quantized
)

// Node is the Freeze effect (spec.md §3.5, §4.4).
type Node struct {
	enabled atomic.Bool

	bufferL  [BufferSamples]int16
	bufferR  [BufferSamples]int16
	writePos int
	readPos  int

	onsetAtSample   atomic.Uint64
	releaseAtSample atomic.Uint64

	lengthMode atomic.Uint32
	onsetMode  atomic.Uint32

	alloc       audioblock.Allocator
	sampleClock func() uint64
}

// New creates a Freeze node starting disabled (passthrough).
func New(alloc audioblock.Allocator, sampleClock func() uint64) *Node {
	return &Node{alloc: alloc, sampleClock: sampleClock}
}

func (n *Node) Name() string { return "Freeze" }

// Enable freezes: latch readPos to the current writePos, then loop
// (spec.md §4.4, audio_freeze.h's enable()).
func (n *Node) Enable() {
	n.readPos = n.writePos
	n.enabled.Store(true)
}

// Disable resumes passthrough-and-record.
func (n *Node) Disable() { n.enabled.Store(false) }

func (n *Node) Toggle() {
	if n.IsEnabled() {
		n.Disable()
	} else {
		n.Enable()
	}
}

func (n *Node) IsEnabled() bool { return n.enabled.Load() }

func (n *Node) ScheduleOnset(absoluteSample uint64)   { n.onsetAtSample.Store(absoluteSample) }
func (n *Node) CancelScheduledOnset()                 { n.onsetAtSample.Store(0) }
func (n *Node) OnsetPending() bool                    { return n.onsetAtSample.Load() != 0 }
func (n *Node) ScheduleRelease(absoluteSample uint64) { n.releaseAtSample.Store(absoluteSample) }
func (n *Node) CancelScheduledRelease()               { n.releaseAtSample.Store(0) }

func (n *Node) SetLengthMode(m Mode) { n.lengthMode.Store(uint32(m)) }
func (n *Node) LengthMode() Mode     { return Mode(n.lengthMode.Load()) }
func (n *Node) SetOnsetMode(m Mode)  { n.onsetMode.Store(uint32(m)) }
func (n *Node) OnsetMode() Mode      { return Mode(n.onsetMode.Load()) }

// Update runs one block of Freeze processing (spec.md §4.4).
func (n *Node) Update(bus *audioblock.Bus) {
	pos := n.sampleClock()
	blockEnd := pos + audioblock.Samples

	if onset := n.onsetAtSample.Load(); onset != 0 && onset >= pos && onset < blockEnd {
		// "On a scheduled onset firing, readPos is set to the current
		// writePos before the enabled flag flips" (spec.md §4.4).
		n.readPos = n.writePos
		n.enabled.Store(true)
		n.onsetAtSample.Store(0)
	}
	if release := n.releaseAtSample.Load(); release != 0 && release >= pos && release < blockEnd {
		n.enabled.Store(false)
		n.releaseAtSample.Store(0)
	}

	if n.IsEnabled() {
		n.updateFrozen(bus)
	} else {
		n.updatePassthrough(bus)
	}
}

func (n *Node) updatePassthrough(bus *audioblock.Bus) {
	left := bus.ReceiveWritable(audioblock.PortLeft)
	right := bus.ReceiveWritable(audioblock.PortRight)
	if left == nil || right == nil {
		return
	}
	for i := 0; i < audioblock.Samples; i++ {
		n.bufferL[n.writePos] = left.Data[i]
		n.bufferR[n.writePos] = right.Data[i]
		n.writePos++
		if n.writePos >= BufferSamples {
			n.writePos = 0
		}
	}
	bus.Transmit(left, audioblock.PortLeft)
	bus.Transmit(right, audioblock.PortRight)
}

func (n *Node) updateFrozen(bus *audioblock.Bus) {
	// Discard input to avoid allocator starvation (spec.md §3.3), even
	// though frozen mode ignores it. Must release what it receives.
	bus.Release(bus.ReceiveReadOnly(audioblock.PortLeft))
	bus.Release(bus.ReceiveReadOnly(audioblock.PortRight))

	outL := n.alloc.Allocate()
	outR := n.alloc.Allocate()
	if outL == nil || outR == nil {
		// spec.md §7: degrade silently rather than crash.
		if outL != nil {
			bus.Release(outL)
		}
		if outR != nil {
			bus.Release(outR)
		}
		return
	}
	for i := 0; i < audioblock.Samples; i++ {
		outL.Data[i] = n.bufferL[n.readPos]
		outR.Data[i] = n.bufferR[n.readPos]
		n.readPos++
		if n.readPos >= BufferSamples {
			n.readPos = 0
		}
	}
	bus.Transmit(outL, audioblock.PortLeft)
	bus.Transmit(outR, audioblock.PortRight)
}
