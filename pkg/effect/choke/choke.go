// Package choke implements the Choke effect node (spec.md §4.3): a
// smoothly crossfaded stereo mute, gain-ramped over a fixed 132-sample
// (~3ms @ 44.1kHz) window, with independently schedulable onset and
// release for the quantized-scheduling protocol (pkg/control).
//
// Grounded on original_source's audio_choke.h: same ISR structure
// (check scheduled events, receive/ramp/transmit/release per channel),
// same "enabled == muted" polarity (spec.md §9 keeps this, documented
// rather than inverted), gain ramp adapted into ramp.GainRamp.
package choke

import (
	"sync/atomic"

	"github.com/levon-m/microloop/pkg/audioblock"
	"github.com/levon-m/microloop/pkg/ramp"
)

// FadeSamples is the fixed crossfade window (spec.md §4.3: ~3ms @
// 44.1kHz), distinct from the original's 441-sample/10ms figure — this
// value follows spec.md's chosen number.
const FadeSamples = 132

// Mode selects Free or Quantized handling for onset or length.
type Mode uint32

const (
	Free Mode = iota
	Quantized
)

// Node is the Choke effect (spec.md §3.5, §4.3). currentGain/targetGain
// are touched only by the audio thread inside Update; every other field
// is shared with the control thread and therefore atomic.
type Node struct {
	isEnabled atomic.Bool // true == muted (spec.md §9 polarity)

	ramp *ramp.GainRamp // audio-thread only

	onsetAtSample   atomic.Uint64
	releaseAtSample atomic.Uint64

	lengthMode atomic.Uint32
	onsetMode  atomic.Uint32

	alloc audioblock.Allocator
	// sampleClock reports the current absolute sample position so Update
	// can test scheduled fields against [pos, pos+blockSize).
	sampleClock func() uint64
}

// New creates a Choke node starting unmuted, Free/Free.
func New(alloc audioblock.Allocator, sampleClock func() uint64) *Node {
	return &Node{
		ramp:        ramp.NewGainRamp(1.0),
		alloc:       alloc,
		sampleClock: sampleClock,
	}
}

func (n *Node) Name() string { return "Choke" }

// Enable mutes: ramp toward 0, report enabled (spec.md §9: enable ⇒ mute).
func (n *Node) Enable() {
	n.ramp.SetTarget(0.0)
	n.isEnabled.Store(true)
}

// Disable unmutes: ramp toward 1, report disabled.
func (n *Node) Disable() {
	n.ramp.SetTarget(1.0)
	n.isEnabled.Store(false)
}

func (n *Node) Toggle() {
	if n.IsEnabled() {
		n.Disable()
	} else {
		n.Enable()
	}
}

func (n *Node) IsEnabled() bool { return n.isEnabled.Load() }

// ScheduleOnset arms an absolute-sample auto-enable (spec.md §4.3).
func (n *Node) ScheduleOnset(absoluteSample uint64) { n.onsetAtSample.Store(absoluteSample) }

// CancelScheduledOnset clears a pending onset.
func (n *Node) CancelScheduledOnset() { n.onsetAtSample.Store(0) }

// OnsetPending reports whether an onset is currently armed.
func (n *Node) OnsetPending() bool { return n.onsetAtSample.Load() != 0 }

// ScheduleRelease arms an absolute-sample auto-disable.
func (n *Node) ScheduleRelease(absoluteSample uint64) { n.releaseAtSample.Store(absoluteSample) }

// CancelScheduledRelease clears a pending release.
func (n *Node) CancelScheduledRelease() { n.releaseAtSample.Store(0) }

func (n *Node) SetLengthMode(m Mode) { n.lengthMode.Store(uint32(m)) }
func (n *Node) LengthMode() Mode     { return Mode(n.lengthMode.Load()) }
func (n *Node) SetOnsetMode(m Mode)  { n.onsetMode.Store(uint32(m)) }
func (n *Node) OnsetMode() Mode      { return Mode(n.onsetMode.Load()) }

// Update runs one block of Choke processing (spec.md §4.3 ISR
// description): test scheduled onset/release against the current block
// window, then ramp both channels toward the current target.
func (n *Node) Update(bus *audioblock.Bus) {
	pos := n.sampleClock()
	blockEnd := pos + audioblock.Samples

	if onset := n.onsetAtSample.Load(); onset != 0 && onset >= pos && onset < blockEnd {
		n.ramp.SetTarget(0.0)
		n.isEnabled.Store(true)
		n.onsetAtSample.Store(0)
	}
	if release := n.releaseAtSample.Load(); release != 0 && release >= pos && release < blockEnd {
		n.ramp.SetTarget(1.0)
		n.isEnabled.Store(false)
		n.releaseAtSample.Store(0)
	}

	// Fixed full-scale slope: a complete 0<->1 swing takes exactly
	// FadeSamples samples, and Step's [0,1] clamp stops it at the target.
	var inc float64
	switch {
	case n.ramp.Target < n.ramp.Current:
		inc = -1.0 / FadeSamples
	case n.ramp.Target > n.ramp.Current:
		inc = 1.0 / FadeSamples
	}

	left := bus.ReceiveWritable(audioblock.PortLeft)
	right := bus.ReceiveWritable(audioblock.PortRight)

	// Both channels share one ramp position: each sample index i gets
	// exactly one gain value, applied identically to left and right
	// (spec.md §4.3 "applied to both channels" — a single advance per
	// sample index, not per channel).
	for i := 0; i < audioblock.Samples; i++ {
		gain := n.ramp.Step(inc)
		if left != nil {
			left.Data[i] = saturate(float64(left.Data[i]) * gain)
		}
		if right != nil {
			right.Data[i] = saturate(float64(right.Data[i]) * gain)
		}
	}

	if left != nil {
		bus.Transmit(left, audioblock.PortLeft)
	}
	if right != nil {
		bus.Transmit(right, audioblock.PortRight)
	}
}

// saturate clamps a gain-scaled sample back into the int16 range
// (grounded on audio_choke.h's applyGainRamp saturating conversion).
func saturate(sample float64) int16 {
	if sample > 32767 {
		return 32767
	}
	if sample < -32768 {
		return -32768
	}
	return int16(sample)
}
