// Package stutter implements the Stutter effect node (spec.md §4.5):
// an 8-state one-shot capture/playback looper with a non-circular
// capture buffer sized for one bar at the minimum supported tempo.
//
// Grounded on original_source's src/dsp/StutterAudio.cpp (state machine
// transitions, buffer-full override, per-state audio routing) and
// AudioStutter.h (state names, scheduled-field shape); every transition
// of spec.md §4.5 is carried here.
package stutter

import (
	"sync/atomic"

	"github.com/levon-m/microloop/internal/oops"
	"github.com/levon-m/microloop/pkg/audioblock"
)

// MinTempoBPM is the slowest tempo the capture buffer must accommodate
// for a full bar (spec.md §4.5: "minimum supported tempo (≈70 BPM)").
const MinTempoBPM = 70

// BufferSamples sizes the non-circular capture buffer for one 4/4 bar
// at MinTempoBPM: (60/MinTempoBPM seconds/beat) * sampleRate samples/beat,
// times 4 beats/bar. Grounded on StutterAudio.h's
// STUTTER_BUFFER_SAMPLES formula.
const BufferSamples = int((60.0 / MinTempoBPM) * 44100.0 * 4.0)

// State names one of the 8 Stutter states (spec.md §3.5, §4.5).
type State uint8

const (
	IdleNoLoop State = iota
	IdleWithLoop
	WaitCaptureStart
	Capturing
	WaitCaptureEnd
	WaitPlaybackOnset
	Playing
	WaitPlaybackLength
)

func (s State) String() string {
	switch s {
	case IdleNoLoop:
		return "IdleNoLoop"
	case IdleWithLoop:
		return "IdleWithLoop"
	case WaitCaptureStart:
		return "WaitCaptureStart"
	case Capturing:
		return "Capturing"
	case WaitCaptureEnd:
		return "WaitCaptureEnd"
	case WaitPlaybackOnset:
		return "WaitPlaybackOnset"
	case Playing:
		return "Playing"
	case WaitPlaybackLength:
		return "WaitPlaybackLength"
	default:
		return "Unknown"
	}
}

// Mode selects Free or Quantized handling, independently per transition
// kind (onset, length, capture-start, capture-end).
type Mode uint32

const (
	Free Mode = iota
	Quantized
)

// Node is the Stutter effect. State transitions happen either from the
// control thread (the *Start/*Schedule*/cancel* methods) or from the
// audio thread inside Update (scheduled-field firing, buffer-full
// override) — state itself is therefore atomic even though in practice
// only one side mutates it within any given window, matching the
// source's single-state-field design generalized to Go's race detector
// expectations.
type Node struct {
	state atomic.Uint32 // State

	bufferL [BufferSamples]int16
	bufferR [BufferSamples]int16

	writePos      int
	readPos       int
	captureLength int

	captureStartAtSample   atomic.Uint64
	captureEndAtSample     atomic.Uint64
	playbackOnsetAtSample  atomic.Uint64
	playbackLengthAtSample atomic.Uint64

	stutterHeld atomic.Bool

	onsetMode        atomic.Uint32
	lengthMode       atomic.Uint32
	captureStartMode atomic.Uint32
	captureEndMode   atomic.Uint32

	alloc       audioblock.Allocator
	sampleClock func() uint64
}

// New creates a Stutter node in IdleNoLoop.
func New(alloc audioblock.Allocator, sampleClock func() uint64) *Node {
	return &Node{alloc: alloc, sampleClock: sampleClock}
}

func (n *Node) Name() string { return "Stutter" }

func (n *Node) State() State { return State(n.state.Load()) }

// Enable starts playback from the beginning of the captured loop
// (spec.md §4.2's generic enable, specialized the way AudioStutter.cpp
// does it for the non-quantized onset path).
func (n *Node) Enable() {
	n.readPos = 0
	n.state.Store(uint32(Playing))
}

// Disable clears any loop and returns to IdleNoLoop.
func (n *Node) Disable() {
	n.state.Store(uint32(IdleNoLoop))
	n.captureLength = 0
	n.writePos = 0
	n.readPos = 0
}

func (n *Node) Toggle() {
	if n.IsEnabled() {
		n.Disable()
	} else {
		n.Enable()
	}
}

// IsEnabled reports true for any non-idle state (spec.md §3.5 invariant:
// "state != Idle* iff the effect reports enabled").
func (n *Node) IsEnabled() bool {
	s := n.State()
	return s != IdleNoLoop && s != IdleWithLoop
}

func (n *Node) SetStutterHeld(held bool) { n.stutterHeld.Store(held) }

func (n *Node) SetOnsetMode(m Mode)        { n.onsetMode.Store(uint32(m)) }
func (n *Node) OnsetMode() Mode            { return Mode(n.onsetMode.Load()) }
func (n *Node) SetLengthMode(m Mode)       { n.lengthMode.Store(uint32(m)) }
func (n *Node) LengthMode() Mode           { return Mode(n.lengthMode.Load()) }
func (n *Node) SetCaptureStartMode(m Mode) { n.captureStartMode.Store(uint32(m)) }
func (n *Node) CaptureStartMode() Mode     { return Mode(n.captureStartMode.Load()) }
func (n *Node) SetCaptureEndMode(m Mode)   { n.captureEndMode.Store(uint32(m)) }
func (n *Node) CaptureEndMode() Mode       { return Mode(n.captureEndMode.Load()) }

// CaptureLength returns the latched loop length in samples (0 = none).
func (n *Node) CaptureLength() int { return n.captureLength }

// CaptureData returns the captured loop's left/right samples, grounded
// on StutterAudio's getBufferL/getBufferR/getCaptureLength accessors
// (PresetController.cpp's executeSave reads through exactly these three
// calls). Only valid to call from the control thread while the node is
// idle; the returned slices alias the node's internal buffers and must
// not be retained past the call.
func (n *Node) CaptureData() (left, right []int16, length int) {
	return n.bufferL[:n.captureLength], n.bufferR[:n.captureLength], n.captureLength
}

// LoadCapture installs a previously-saved loop and transitions to
// IdleWithLoop, grounded on PresetController.cpp's executeLoad (which
// calls setCaptureLength then setStateWithLoop after a successful SD
// read). Only valid to call from the control thread while idle. A loop
// longer than BufferSamples is rejected outright, leaving the current
// buffer untouched, rather than silently truncated (spec.md §4.10, §6).
func (n *Node) LoadCapture(left, right []int16) error {
	length := len(left)
	if len(right) < length {
		length = len(right)
	}
	if length > BufferSamples {
		return oops.ErrPresetBadLength
	}
	copy(n.bufferL[:length], left[:length])
	copy(n.bufferR[:length], right[:length])
	n.captureLength = length
	n.writePos = length
	n.readPos = 0
	n.state.Store(uint32(IdleWithLoop))
	return nil
}

// StartCapture begins capture immediately (Free onset).
func (n *Node) StartCapture() {
	n.writePos = 0
	n.captureLength = 0
	n.state.Store(uint32(Capturing))
}

// ScheduleCaptureStart arms a quantized capture start and enters
// WaitCaptureStart.
func (n *Node) ScheduleCaptureStart(sample uint64) {
	n.captureStartAtSample.Store(sample)
	n.state.Store(uint32(WaitCaptureStart))
}

// CancelCaptureStart clears the wait-for-start schedule and returns to
// IdleNoLoop (spec.md §4.5).
func (n *Node) CancelCaptureStart() {
	n.captureStartAtSample.Store(0)
	n.state.Store(uint32(IdleNoLoop))
}

// EndCapture ends capture immediately: latches captureLength, and goes
// to Playing if stutterHeld else IdleWithLoop (or IdleNoLoop if nothing
// was written).
func (n *Node) EndCapture(stutterHeld bool) {
	if n.writePos > 0 {
		n.captureLength = n.writePos
		if stutterHeld {
			n.readPos = 0
			n.state.Store(uint32(Playing))
		} else {
			n.state.Store(uint32(IdleWithLoop))
		}
	} else {
		n.state.Store(uint32(IdleNoLoop))
	}
}

// ScheduleCaptureEnd arms a quantized capture end. stutterHeld is
// latched now so the later scheduled-fire transition goes to the right
// state. Only transitions state to WaitCaptureEnd if currently
// Capturing — if still WaitCaptureStart, the state is left alone so the
// start fires first (spec.md §4.5 invariant: capture-end may be
// pre-armed while still WaitCaptureStart).
func (n *Node) ScheduleCaptureEnd(sample uint64, stutterHeld bool) {
	n.captureEndAtSample.Store(sample)
	n.stutterHeld.Store(stutterHeld)
	if n.State() == Capturing {
		n.state.Store(uint32(WaitCaptureEnd))
	}
}

// StartPlayback starts playback immediately from the beginning.
func (n *Node) StartPlayback() {
	n.readPos = 0
	n.state.Store(uint32(Playing))
}

// SchedulePlaybackOnset arms a quantized playback start.
func (n *Node) SchedulePlaybackOnset(sample uint64) {
	n.playbackOnsetAtSample.Store(sample)
	n.state.Store(uint32(WaitPlaybackOnset))
}

// StopPlayback stops playback immediately, returning to IdleWithLoop.
func (n *Node) StopPlayback() {
	n.state.Store(uint32(IdleWithLoop))
}

// SchedulePlaybackLength arms a quantized playback stop. Only
// transitions to WaitPlaybackLength if currently Playing.
func (n *Node) SchedulePlaybackLength(sample uint64) {
	n.playbackLengthAtSample.Store(sample)
	if n.State() == Playing {
		n.state.Store(uint32(WaitPlaybackLength))
	}
}

// Update runs one block of Stutter processing: scheduled-transition
// checks, buffer-full override, then state-dependent audio routing
// (spec.md §4.5, grounded on StutterAudio.cpp's update()).
func (n *Node) Update(bus *audioblock.Bus) {
	pos := n.sampleClock()
	blockEnd := pos + audioblock.Samples

	if s := n.captureStartAtSample.Load(); s != 0 && s >= pos && s < blockEnd {
		n.writePos = 0
		n.captureLength = 0
		n.state.Store(uint32(Capturing))
		n.captureStartAtSample.Store(0)
	}

	if s := n.captureEndAtSample.Load(); s != 0 && s >= pos && s < blockEnd {
		if n.writePos > 0 {
			n.captureLength = n.writePos
			if n.stutterHeld.Load() {
				n.readPos = 0
				n.state.Store(uint32(Playing))
			} else {
				n.state.Store(uint32(IdleWithLoop))
			}
		} else {
			n.state.Store(uint32(IdleNoLoop))
		}
		n.captureEndAtSample.Store(0)
	}

	if s := n.playbackOnsetAtSample.Load(); s != 0 && s >= pos && s < blockEnd {
		n.readPos = 0
		n.state.Store(uint32(Playing))
		n.playbackOnsetAtSample.Store(0)
	}

	if s := n.playbackLengthAtSample.Load(); s != 0 && s >= pos && s < blockEnd {
		n.state.Store(uint32(IdleWithLoop))
		n.playbackLengthAtSample.Store(0)
	}

	switch n.State() {
	case IdleNoLoop, IdleWithLoop, WaitCaptureStart, WaitPlaybackOnset:
		n.passthrough(bus)
	case Capturing, WaitCaptureEnd:
		n.capture(bus)
	case Playing, WaitPlaybackLength:
		n.play(bus)
	}
}

func (n *Node) passthrough(bus *audioblock.Bus) {
	left := bus.ReceiveWritable(audioblock.PortLeft)
	right := bus.ReceiveWritable(audioblock.PortRight)
	if left != nil {
		bus.Transmit(left, audioblock.PortLeft)
	}
	if right != nil {
		bus.Transmit(right, audioblock.PortRight)
	}
}

func (n *Node) capture(bus *audioblock.Bus) {
	left := bus.ReceiveWritable(audioblock.PortLeft)
	right := bus.ReceiveWritable(audioblock.PortRight)
	if left == nil || right == nil {
		return
	}
	for i := 0; i < audioblock.Samples && n.writePos < BufferSamples; i++ {
		n.bufferL[n.writePos] = left.Data[i]
		n.bufferR[n.writePos] = right.Data[i]
		n.writePos++
	}

	// Buffer-full override (spec.md §4.5): force capture-end immediately,
	// independent of scheduling, cancelling any armed captureEndAtSample.
	if n.writePos >= BufferSamples {
		n.captureLength = n.writePos
		if n.stutterHeld.Load() {
			n.readPos = 0
			n.state.Store(uint32(Playing))
		} else {
			n.state.Store(uint32(IdleWithLoop))
		}
		n.captureEndAtSample.Store(0)
	}

	bus.Transmit(left, audioblock.PortLeft)
	bus.Transmit(right, audioblock.PortRight)
}

func (n *Node) play(bus *audioblock.Bus) {
	// Playing discards its input but must still drain and release it
	// (spec.md §3.3) to avoid starving the allocator.
	bus.Release(bus.ReceiveReadOnly(audioblock.PortLeft))
	bus.Release(bus.ReceiveReadOnly(audioblock.PortRight))

	outL := n.alloc.Allocate()
	outR := n.alloc.Allocate()
	if outL == nil || outR == nil {
		if outL != nil {
			bus.Release(outL)
		}
		if outR != nil {
			bus.Release(outR)
		}
		return
	}

	length := n.captureLength
	if length <= 0 {
		length = 1 // guard against a degenerate zero-length loop
	}
	for i := 0; i < audioblock.Samples; i++ {
		outL.Data[i] = n.bufferL[n.readPos]
		outR.Data[i] = n.bufferR[n.readPos]
		n.readPos++
		if n.readPos >= length {
			n.readPos = 0
		}
	}
	bus.Transmit(outL, audioblock.PortLeft)
	bus.Transmit(outR, audioblock.PortRight)
}
