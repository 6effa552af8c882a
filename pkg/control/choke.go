// Package control implements the quantized-scheduling protocol
// (spec.md §4.7): the per-effect controllers that translate a button
// edge plus an effect's onset/length mode into the right sequence of
// scheduling primitives against its effect node.
package control

import (
	"github.com/levon-m/microloop/pkg/effect/choke"
	"github.com/levon-m/microloop/pkg/quant"
	"github.com/levon-m/microloop/pkg/timebase"
)

// LookaheadSamples compensates for an expected transient-to-click lag on
// quantized onsets (spec.md §4.7). Grounded on choke_controller.cpp's
// EffectQuantization::getLookaheadOffset(); spec.md leaves the exact
// value an Open Question (§9), decided here as 0 (no lookahead) since no
// concrete figure survived the distillation — see DESIGN.md.
const LookaheadSamples = 0

// ChokeController translates button press/release events into the
// quantized-scheduling policy table of spec.md §4.7, grounded on
// choke_controller.cpp's handleButtonPress/handleButtonRelease.
type ChokeController struct {
	Effect *choke.Node
	Time   *timebase.TimeBase
	Grid   *quant.Grid
}

// NewChokeController wires a controller to its effect node, the shared
// time base, and the process-wide quantization grid.
func NewChokeController(effect *choke.Node, tb *timebase.TimeBase, grid *quant.Grid) *ChokeController {
	return &ChokeController{Effect: effect, Time: tb, Grid: grid}
}

// OnPress applies the press half of the policy table (spec.md §4.7).
func (c *ChokeController) OnPress() {
	if c.Effect.OnsetMode() == choke.Free {
		c.Effect.Enable()
		if c.Effect.LengthMode() == choke.Quantized {
			dur := quant.Duration(c.Time.SamplesPerBeat(), c.Grid.Get())
			c.Effect.ScheduleRelease(c.Time.SamplePosition() + dur)
		}
		return
	}

	// Quantized onset: schedule for next boundary minus lookahead.
	samplesToNext := c.Time.SamplesToNextSubdivision(quant.Duration(c.Time.SamplesPerBeat(), c.Grid.Get()))
	var adjusted uint64
	if samplesToNext > LookaheadSamples {
		adjusted = samplesToNext - LookaheadSamples
	}
	onsetSample := c.Time.SamplePosition() + adjusted
	c.Effect.ScheduleOnset(onsetSample)

	if c.Effect.LengthMode() == choke.Quantized {
		dur := quant.Duration(c.Time.SamplesPerBeat(), c.Grid.Get())
		c.Effect.ScheduleRelease(onsetSample + dur)
	}
}

// OnRelease applies the release half of the policy table.
func (c *ChokeController) OnRelease() {
	if c.Effect.LengthMode() == choke.Quantized {
		// Auto-releases via the scheduled field; ignore the button.
		return
	}
	if c.Effect.OnsetMode() == choke.Quantized && c.Effect.OnsetPending() {
		c.Effect.CancelScheduledOnset()
		return
	}
	c.Effect.Disable()
}
