// Package preset implements four-slot save/load/delete of the Stutter
// capture buffer (spec.md §4.10, §6 item 5), grounded on
// PresetController.cpp/h: FUNC+press saves or deletes, a bare press
// loads and selects, a new capture deselects the current preset, and
// the selected slot's LED blinks in time with the beat.
//
// The original suspends its cooperative thread scheduler around
// blocking SD I/O so no other thread observes a half-written buffer
// (TeensyThreads' threads.stop()/threads.start()). Go has no
// equivalent global suspend, and doesn't need one: Save/Load/Delete run
// on their own goroutine, the capture buffer is only read or written by
// the control thread while Stutter is idle, and the audio thread never
// touches it outside Capturing/Playing — so there is no shared-state
// window to protect. See DESIGN.md.
package preset

import (
	"sync"
	"time"

	"github.com/levon-m/microloop/pkg/effect/stutter"
)

// FuncGraceMS is how long a FUNC release still counts as "held", to
// absorb cross-input-bus timing jitter between the FUNC key and a
// preset button (grounded on PresetController.h's FUNC_GRACE_MS).
const FuncGraceMS = 100 * time.Millisecond

// Controller manages the four preset slots against one Stutter node.
type Controller struct {
	stutter *stutter.Node
	storage Storage

	mu       sync.Mutex
	exists   [4]bool
	selected int // 0 = none, 1-4 = slot
	busy     bool

	funcHeld        bool
	funcReleasedAt  time.Time

	// OnResult, if set, is called after an async Save/Load/Delete
	// completes (control thread should drain this to update logging/
	// display state). Never called from the audio thread.
	OnResult func(op string, slot int, err error)
}

// NewController wires a Controller to its Stutter node and backing
// Storage.
func NewController(stutterNode *stutter.Node, storage Storage) *Controller {
	return &Controller{stutter: stutterNode, storage: storage}
}

// Begin scans storage for existing preset data (PresetController::begin).
func (c *Controller) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < 4; i++ {
		c.exists[i] = c.storage.Exists(i + 1)
	}
}

// PresetExists reports whether slot has saved data.
func (c *Controller) PresetExists(slot int) bool {
	if slot < 1 || slot > 4 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exists[slot-1]
}

// SelectedPreset returns the currently selected slot, or 0 for none.
func (c *Controller) SelectedPreset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// HandleFuncPress marks FUNC held.
func (c *Controller) HandleFuncPress() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcHeld = true
}

// HandleFuncRelease marks FUNC released and starts the grace window.
func (c *Controller) HandleFuncRelease() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcHeld = false
	c.funcReleasedAt = time.Now()
}

func (c *Controller) isFuncEffectivelyHeld() bool {
	if c.funcHeld {
		return true
	}
	return time.Since(c.funcReleasedAt) < FuncGraceMS
}

func (c *Controller) isStutterIdle() bool {
	s := c.stutter.State()
	return s == stutter.IdleNoLoop || s == stutter.IdleWithLoop
}

// HandleButtonPress dispatches save/delete/load per PresetController.cpp's
// handleButtonPress: FUNC+written=delete, FUNC+empty=save (only with a
// captured loop), bare+written=load-and-select, bare+empty=no-op. All
// actions require Stutter to be idle and no operation already in
// flight.
func (c *Controller) HandleButtonPress(slot int) {
	if slot < 1 || slot > 4 {
		return
	}
	if !c.isStutterIdle() {
		return
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return
	}
	slotHasData := c.exists[slot-1]
	funcHeld := c.isFuncEffectivelyHeld()
	c.mu.Unlock()

	if funcHeld {
		if slotHasData {
			c.executeDelete(slot)
		} else if c.stutter.State() == stutter.IdleWithLoop {
			c.executeSave(slot)
		}
		return
	}
	if slotHasData {
		c.executeLoad(slot)
	}
}

// HandleButtonRelease is currently a no-op (PresetController.cpp takes
// no action on release).
func (c *Controller) HandleButtonRelease(slot int) {}

// OnCaptureComplete deselects the current preset: a fresh capture is
// scratch work, not tied to any slot (PresetController.cpp's
// onCaptureComplete).
func (c *Controller) OnCaptureComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = 0
}

func (c *Controller) executeSave(slot int) {
	left, right, length := c.stutter.CaptureData()
	if length == 0 {
		return
	}
	dataL := append([]int16(nil), left...)
	dataR := append([]int16(nil), right...)

	c.mu.Lock()
	c.busy = true
	c.mu.Unlock()

	go func() {
		err := c.storage.Save(slot, dataL, dataR)

		c.mu.Lock()
		c.busy = false
		if err == nil {
			c.exists[slot-1] = true
			c.selected = slot
		}
		c.mu.Unlock()

		if c.OnResult != nil {
			c.OnResult("save", slot, err)
		}
	}()
}

func (c *Controller) executeLoad(slot int) {
	c.mu.Lock()
	c.busy = true
	c.mu.Unlock()

	go func() {
		left, right, err := c.storage.Load(slot)
		if err == nil {
			err = c.stutter.LoadCapture(left, right)
		}

		c.mu.Lock()
		c.busy = false
		if err == nil {
			c.selected = slot
		}
		c.mu.Unlock()

		if c.OnResult != nil {
			c.OnResult("load", slot, err)
		}
	}()
}

func (c *Controller) executeDelete(slot int) {
	c.mu.Lock()
	c.busy = true
	c.mu.Unlock()

	go func() {
		err := c.storage.Delete(slot)

		c.mu.Lock()
		c.busy = false
		if err == nil {
			c.exists[slot-1] = false
			if c.selected == slot {
				c.selected = 0
			}
		}
		c.mu.Unlock()

		if c.OnResult != nil {
			c.OnResult("delete", slot, err)
		}
	}()
}

// LEDOn reports whether slot's LED should be lit this tick, given the
// current beat-LED phase (PresetController.cpp's updateLEDs): off when
// empty, beat-synced blink when selected, solid when written but not
// selected.
func (c *Controller) LEDOn(slot int, beatLedOn bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot < 1 || slot > 4 || !c.exists[slot-1] {
		return false
	}
	if c.selected == slot {
		return beatLedOn
	}
	return true
}
