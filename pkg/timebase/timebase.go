// Package timebase is the sole authority for sample time, musical time,
// and the conversion between them. Every quantization decision in the
// pedal reads it.
//
// One TimeBase instance exists for the lifetime of the process
// (timebase.Global); it is created before any audio or control context
// starts and is never destroyed. samplePosition is written only by the
// audio interrupt (TimeBase.IncrementSamples); tickInBeat/beatNumber/
// samplesPerBeat/transportState are written only by the control thread.
// All fields are read from every context.
package timebase

import (
	"sync/atomic"
)

// TransportState mirrors spec.md §3.1.
type TransportState uint32

const (
	Stopped TransportState = iota
	Playing
	Recording
)

// Tempo bounds from spec.md §3.1: samplesPerBeat in [8000, 100000]
// (approximately 30-300 BPM).
const (
	MinSamplesPerBeat = 8000
	MaxSamplesPerBeat = 100000

	// DefaultSamplesPerBeat is 120 BPM at 44.1kHz (22050 samples/beat).
	DefaultSamplesPerBeat = 22050

	// TicksPerBeat is the 24-PPQN resolution of the external clock.
	TicksPerBeat = 24

	// BlockSize is the fixed audio block length in samples per channel
	// (spec.md §6 item 1).
	BlockSize = 128

	// GraceSamples is the 16-sample tolerance that collapses "just
	// missed a boundary" into "fire now" (spec.md §4.1).
	GraceSamples = 16

	// SampleRate is the fixed audio sample rate in Hz.
	SampleRate = 44100
)

// TimeBase fuses an audio-interrupt sample counter with an externally
// supplied musical clock into a quantized coordinate system.
type TimeBase struct {
	samplePosition atomic.Uint64 // written by audio interrupt only

	beatNumber     atomic.Uint32 // written by control thread only
	tickInBeat     atomic.Uint32 // written by control thread only
	samplesPerBeat atomic.Uint32 // written by control thread; read everywhere
	transportState atomic.Uint32
	beatFlag       atomic.Bool // release/acquire test-and-clear
}

// New creates a TimeBase at its power-on defaults: stopped, 120 BPM.
func New() *TimeBase {
	tb := &TimeBase{}
	tb.samplesPerBeat.Store(DefaultSamplesPerBeat)
	return tb
}

var global = New()

// Global returns the process-wide TimeBase singleton.
func Global() *TimeBase { return global }

// IncrementSamples advances samplePosition by n. Called from the audio
// interrupt once per processed block (n == BlockSize in normal
// operation). Must never be called concurrently with itself.
func (tb *TimeBase) IncrementSamples(n uint64) {
	tb.samplePosition.Add(n)
}

// SamplePosition is an atomic read of the monotonic sample counter. It
// never decreases except across a Start, which resets it to zero.
func (tb *TimeBase) SamplePosition() uint64 {
	return tb.samplePosition.Load()
}

// IncrementTick advances tickInBeat on each received musical clock pulse.
// When it reaches TicksPerBeat it wraps to 0, beatNumber increments, and
// beatFlag is set for display/LED consumers.
func (tb *TimeBase) IncrementTick() {
	t := tb.tickInBeat.Add(1)
	if t >= TicksPerBeat {
		tb.tickInBeat.Store(0)
		tb.beatNumber.Add(1)
		tb.beatFlag.Store(true)
	}
}

// TickInBeat returns the current position within the beat, 0..23.
func (tb *TimeBase) TickInBeat() uint32 {
	return tb.tickInBeat.Load()
}

// BeatNumber returns the count of musical beats since the last reset.
func (tb *TimeBase) BeatNumber() uint32 {
	return tb.beatNumber.Load()
}

// SyncToMusicalClock updates the tempo estimate from a (low-pass
// filtered) tick period in microseconds, per spec.md §4.1:
//
//	samplesPerBeat = tickPeriodMicros * 24 * sampleRate / 1_000_000
//
// Values that would put samplesPerBeat outside [MinSamplesPerBeat,
// MaxSamplesPerBeat] are silently rejected (spec.md §7); the last good
// value persists. Returns whether the update was applied.
func (tb *TimeBase) SyncToMusicalClock(tickPeriodMicros float64) bool {
	spb := tickPeriodMicros * TicksPerBeat * SampleRate / 1_000_000.0
	if spb < MinSamplesPerBeat || spb > MaxSamplesPerBeat {
		return false
	}
	tb.samplesPerBeat.Store(uint32(spb + 0.5))
	return true
}

// SamplesPerBeat returns the current tempo estimate in samples/beat.
func (tb *TimeBase) SamplesPerBeat() uint32 {
	return tb.samplesPerBeat.Load()
}

// SamplesToNextBeat returns samplesPerBeat - (samplePosition mod
// samplesPerBeat), or 0 if within GraceSamples past a beat boundary.
func (tb *TimeBase) SamplesToNextBeat() uint64 {
	spb := uint64(tb.SamplesPerBeat())
	pos := tb.SamplePosition()
	rem := pos % spb
	if rem <= GraceSamples {
		return 0
	}
	return spb - rem
}

// SamplesToNextSubdivision returns the distance, in samples, to the next
// boundary of subdivisionSamples anchored to the *current beat* (not to
// sample 0), so that non-integer divisions of samplesPerBeat never
// accumulate drift across beats. Falls through to the next beat when
// already past the last subdivision within this beat. The raw distance
// is rounded up to the next BlockSize multiple and subjected to the same
// GraceSamples rule as SamplesToNextBeat.
func (tb *TimeBase) SamplesToNextSubdivision(subdivisionSamples uint64) uint64 {
	if subdivisionSamples == 0 {
		return 0
	}
	spb := uint64(tb.SamplesPerBeat())
	pos := tb.SamplePosition()
	sampleWithinBeat := pos % spb

	idx := sampleWithinBeat / subdivisionSamples
	nextBoundary := (idx + 1) * subdivisionSamples
	var distance uint64
	if nextBoundary <= spb {
		distance = nextBoundary - sampleWithinBeat
	} else {
		// past the last subdivision in this beat: fall through to the
		// next beat's boundary.
		distance = spb - sampleWithinBeat
	}

	if distance <= GraceSamples {
		return 0
	}
	return roundUpToBlock(distance)
}

func roundUpToBlock(samples uint64) uint64 {
	rem := samples % BlockSize
	if rem == 0 {
		return samples
	}
	return samples + (BlockSize - rem)
}

// PollBeatFlag atomically tests and clears the beat-crossing flag.
// Consumers (display, LEDs) call this once per tick to drive
// beat-synchronous visual indicators.
func (tb *TimeBase) PollBeatFlag() bool {
	return tb.beatFlag.CompareAndSwap(true, false)
}

// TransportStateValue returns the current transport state.
func (tb *TimeBase) TransportStateValue() TransportState {
	return TransportState(tb.transportState.Load())
}

// Start resets counters (samplePosition, beatNumber, tickInBeat) to zero
// and sets the transport state to Playing, per spec.md §3.1.
func (tb *TimeBase) Start() {
	tb.samplePosition.Store(0)
	tb.beatNumber.Store(0)
	tb.tickInBeat.Store(0)
	tb.beatFlag.Store(false)
	tb.transportState.Store(uint32(Playing))
}

// Stop sets the transport state to Stopped and leaves every counter at
// its current value. It does not gate IncrementSamples or
// IncrementTick: samples and ticks that keep arriving while stopped
// still advance the counters.
func (tb *TimeBase) Stop() {
	tb.transportState.Store(uint32(Stopped))
}

// Continue resumes the transport without resetting any counter.
func (tb *TimeBase) Continue() {
	tb.transportState.Store(uint32(Playing))
}
