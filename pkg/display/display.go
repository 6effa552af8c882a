// Package display implements the priority-ordered view selector and LED
// feedback surface of spec.md §4.9, grounded on original_source's
// DisplayManager (singleton, priority-based: last activated effect plus
// a fixed effect-priority order, menu overlay, idle fallback) adapted
// from a singleton-plus-global-mutation C++ class into an explicit Go
// struct the control thread owns and calls once per tick.
package display

import (
	"github.com/levon-m/microloop/pkg/effect"
	"github.com/levon-m/microloop/pkg/ramp"
)

// View names what the display is currently showing (spec.md §4.9).
type View uint8

const (
	ViewIdle View = iota
	ViewChoke
	ViewFreeze
	ViewStutter
	ViewMenu
)

func (v View) String() string {
	switch v {
	case ViewChoke:
		return "Choke"
	case ViewFreeze:
		return "Freeze"
	case ViewStutter:
		return "Stutter"
	case ViewMenu:
		return "Menu"
	default:
		return "Idle"
	}
}

// MenuData is the menu overlay content (spec.md §4.9), grounded on
// display_manager.h's MenuDisplayData.
type MenuData struct {
	Title string
	Lines [4]string
}

// LEDColor is a plain RGB triple; the teacher's NeoKey hardware drives
// color + brightness per key, spec.md §4.9 generalizes the original's
// boolean on/off LED to color+intensity.
type LEDColor struct {
	R, G, B uint8
}

// LEDState is the last value pushed to a given key via SetLED.
type LEDState struct {
	Color     LEDColor
	Intensity float64
}

// Manager selects which view the display shows and tracks per-key LED
// state. Grounded on DisplayManager.cpp's updateDisplay priority chain:
// Choke > Freeze > Stutter > Menu > Idle (spec.md §4.9), with "any
// non-idle" standing in for the original's plain isEnabled() check on
// Stutter since Stutter's IsEnabled() already reports non-idle state.
type Manager struct {
	registry *effect.Registry

	menuShowing bool
	menu        MenuData

	leds map[uint8]LEDState
}

// New wires a Manager to the shared effect registry.
func New(registry *effect.Registry) *Manager {
	return &Manager{registry: registry, leds: make(map[uint8]LEDState)}
}

// CurrentView applies the priority chain of spec.md §4.9 and returns
// what should be on screen right now.
func (m *Manager) CurrentView() View {
	if node := m.registry.Get(effect.Choke); node != nil && node.IsEnabled() {
		return ViewChoke
	}
	if node := m.registry.Get(effect.Freeze); node != nil && node.IsEnabled() {
		return ViewFreeze
	}
	if node := m.registry.Get(effect.Stutter); node != nil && node.IsEnabled() {
		return ViewStutter
	}
	if m.menuShowing {
		return ViewMenu
	}
	return ViewIdle
}

// ShowMenu raises the menu overlay, which still yields to any active
// effect per CurrentView's priority chain.
func (m *Manager) ShowMenu(data MenuData) {
	m.menuShowing = true
	m.menu = data
}

// HideMenu lowers the menu overlay.
func (m *Manager) HideMenu() {
	m.menuShowing = false
}

// MenuShowing reports whether the menu overlay is currently raised.
func (m *Manager) MenuShowing() bool {
	return m.menuShowing
}

// CurrentMenu returns the active menu content (valid only while
// MenuShowing is true).
func (m *Manager) CurrentMenu() MenuData {
	return m.menu
}

// SetLED pushes a color and intensity for the given key. Generalizes
// NeokeyIO::setLED(EffectID, bool) to full color + a continuous
// intensity, since spec.md §4.7/§4.11 calls for a gamma-ramped fade
// during wait states rather than a flat on/off.
func (m *Manager) SetLED(key uint8, color LEDColor, intensity float64) {
	m.leds[key] = LEDState{Color: color, Intensity: intensity}
}

// LED returns the last state pushed for key.
func (m *Manager) LED(key uint8) LEDState {
	return m.leds[key]
}

// WaitStateIntensity computes the gamma-4.0 LED fade used while an
// effect is armed and waiting for a quantized boundary (spec.md §4.7,
// §4.11): intensity climbs toward 1 as samplesRemaining falls to 0.
func WaitStateIntensity(samplesRemaining, armWindow uint64) float64 {
	return ramp.GammaRamp(samplesRemaining, armWindow)
}
