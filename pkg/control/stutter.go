package control

import (
	"github.com/levon-m/microloop/pkg/effect/stutter"
	"github.com/levon-m/microloop/pkg/quant"
	"github.com/levon-m/microloop/pkg/timebase"
)

// StutterController drives the Stutter effect's controller-side half of
// the quantized-scheduling protocol across its eight states (spec.md
// §4.7), plus the FUNC+STUTTER combo-order detection recovered from
// original_source's StutterController.h ("Handles FUNC+STUTTER button
// order detection") — the distillation states only "FUNC held + press"
// without tracking which button landed first; the original tracks edge
// order so a FUNC-then-STUTTER chord (deliberate re-record) is
// distinguishable from a STUTTER-then-FUNC roll (accidental chord while
// already playing).
type StutterController struct {
	Effect *stutter.Node
	Time   *timebase.TimeBase
	Grid   *quant.Grid

	funcHeld        bool
	stutterHeld     bool
	funcPressedFirst bool // true if FUNC was already held when STUTTER was pressed
}

func NewStutterController(effect *stutter.Node, tb *timebase.TimeBase, grid *quant.Grid) *StutterController {
	return &StutterController{Effect: effect, Time: tb, Grid: grid}
}

// OnFuncPress/OnFuncRelease track the FUNC modifier's edge for combo
// detection; FuncModifier never touches the effect directly (spec.md
// §3.4 models it as its own ID).
func (c *StutterController) OnFuncPress() { c.funcHeld = true }
func (c *StutterController) OnFuncRelease() {
	c.funcHeld = false
	c.funcPressedFirst = false
}

func (c *StutterController) samplesToGridBoundary() uint64 {
	return c.Time.SamplesToNextSubdivision(quant.Duration(c.Time.SamplesPerBeat(), c.Grid.Get()))
}

// OnStutterPress handles the STUTTER button's press edge. Combo order:
// if FUNC was already held, this is a forced re-record regardless of
// current state (FUNC-then-STUTTER = "start a fresh capture now"),
// matching the original's re-record chord. Otherwise behavior depends on
// state, following spec.md §4.7's capture-start / onset policy table.
func (c *StutterController) OnStutterPress() {
	c.stutterHeld = true
	if c.funcHeld {
		c.funcPressedFirst = true
		c.forceRecapture()
		return
	}

	switch c.Effect.State() {
	case stutter.IdleNoLoop:
		c.startCapture()
	case stutter.IdleWithLoop:
		c.startPlayback()
	default:
		// Mid-capture or mid-playback STUTTER press while already held is
		// a no-op; the effect is already tracking stutterHeld via the
		// state machine's own scheduled transitions.
	}
}

func (c *StutterController) forceRecapture() {
	if c.Effect.CaptureStartMode() == stutter.Free {
		c.Effect.StartCapture()
		return
	}
	c.Effect.ScheduleCaptureStart(c.Time.SamplePosition() + c.samplesToGridBoundary())
}

func (c *StutterController) startCapture() {
	if c.Effect.CaptureStartMode() == stutter.Free {
		c.Effect.StartCapture()
		return
	}
	c.Effect.ScheduleCaptureStart(c.Time.SamplePosition() + c.samplesToGridBoundary())
}

func (c *StutterController) startPlayback() {
	if c.Effect.OnsetMode() == stutter.Free {
		c.Effect.StartPlayback()
		if c.Effect.LengthMode() == stutter.Quantized {
			c.Effect.SchedulePlaybackLength(c.Time.SamplePosition() + quant.Duration(c.Time.SamplesPerBeat(), c.Grid.Get()))
		}
		return
	}
	onsetSample := c.Time.SamplePosition() + c.samplesToGridBoundary()
	c.Effect.SchedulePlaybackOnset(onsetSample)
	if c.Effect.LengthMode() == stutter.Quantized {
		c.Effect.SchedulePlaybackLength(onsetSample + quant.Duration(c.Time.SamplesPerBeat(), c.Grid.Get()))
	}
}

// OnStutterRelease handles the release edge. Per spec.md §4.7: while
// WaitCaptureStart or WaitPlaybackOnset, release does NOT cancel — the
// boundary is left to fire (user intent is "do it on the grid no matter
// when I let go"). Capturing/WaitCaptureEnd end capture per
// captureEndMode; Playing/WaitPlaybackLength stop playback per
// lengthMode. Per §8 scenario 4, a STUTTER release with FUNC still held
// latches captureLength and goes straight to Playing instead of
// IdleWithLoop, so a later bare STUTTER press finds Playing (a no-op)
// rather than starting playback a second time.
func (c *StutterController) OnStutterRelease() {
	c.stutterHeld = false
	c.funcPressedFirst = false

	switch c.Effect.State() {
	case stutter.WaitCaptureStart, stutter.WaitPlaybackOnset:
		// let the scheduled boundary fire; nothing to do here.
	case stutter.Capturing:
		if c.Effect.CaptureEndMode() == stutter.Free {
			c.Effect.EndCapture(c.funcHeld)
		} else {
			c.Effect.ScheduleCaptureEnd(c.Time.SamplePosition()+c.samplesToGridBoundary(), c.funcHeld)
		}
	case stutter.WaitCaptureEnd:
		// already armed; nothing further to do on release.
	case stutter.Playing:
		if c.Effect.LengthMode() == stutter.Free {
			c.Effect.StopPlayback()
		} else {
			c.Effect.SchedulePlaybackLength(c.Time.SamplePosition() + c.samplesToGridBoundary())
		}
	case stutter.WaitPlaybackLength:
		// already armed.
	}
}
