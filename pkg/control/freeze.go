package control

import (
	"github.com/levon-m/microloop/pkg/effect/freeze"
	"github.com/levon-m/microloop/pkg/quant"
	"github.com/levon-m/microloop/pkg/timebase"
)

// FreezeController implements the identical policy-table shape as
// ChokeController (spec.md §4.7: "Policy table for Choke and Freeze
// (identical shape)"), grounded on FreezeController.cpp.
type FreezeController struct {
	Effect *freeze.Node
	Time   *timebase.TimeBase
	Grid   *quant.Grid
}

func NewFreezeController(effect *freeze.Node, tb *timebase.TimeBase, grid *quant.Grid) *FreezeController {
	return &FreezeController{Effect: effect, Time: tb, Grid: grid}
}

func (c *FreezeController) OnPress() {
	if c.Effect.OnsetMode() == freeze.Free {
		c.Effect.Enable()
		if c.Effect.LengthMode() == freeze.Quantized {
			dur := quant.Duration(c.Time.SamplesPerBeat(), c.Grid.Get())
			c.Effect.ScheduleRelease(c.Time.SamplePosition() + dur)
		}
		return
	}

	samplesToNext := c.Time.SamplesToNextSubdivision(quant.Duration(c.Time.SamplesPerBeat(), c.Grid.Get()))
	var adjusted uint64
	if samplesToNext > LookaheadSamples {
		adjusted = samplesToNext - LookaheadSamples
	}
	onsetSample := c.Time.SamplePosition() + adjusted
	c.Effect.ScheduleOnset(onsetSample)

	if c.Effect.LengthMode() == freeze.Quantized {
		dur := quant.Duration(c.Time.SamplesPerBeat(), c.Grid.Get())
		c.Effect.ScheduleRelease(onsetSample + dur)
	}
}

func (c *FreezeController) OnRelease() {
	if c.Effect.LengthMode() == freeze.Quantized {
		return
	}
	if c.Effect.OnsetMode() == freeze.Quantized && c.Effect.OnsetPending() {
		c.Effect.CancelScheduledOnset()
		return
	}
	c.Effect.Disable()
}
