package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levon-m/microloop/pkg/audioblock"
	"github.com/levon-m/microloop/pkg/effect"
)

type fakeNode struct {
	id      effect.ID
	enabled bool
}

func (n *fakeNode) Enable()                { n.enabled = true }
func (n *fakeNode) Disable()               { n.enabled = false }
func (n *fakeNode) Toggle()                { n.enabled = !n.enabled }
func (n *fakeNode) IsEnabled() bool        { return n.enabled }
func (n *fakeNode) Name() string           { return n.id.String() }
func (n *fakeNode) Update(*audioblock.Bus) {}

func newDisplayRig() (*Manager, *fakeNode, *fakeNode, *fakeNode) {
	reg := effect.NewRegistry()
	choke := &fakeNode{id: effect.Choke}
	freeze := &fakeNode{id: effect.Freeze}
	stutter := &fakeNode{id: effect.Stutter}
	_ = reg.Register(effect.Choke, choke)
	_ = reg.Register(effect.Freeze, freeze)
	_ = reg.Register(effect.Stutter, stutter)
	return New(reg), choke, freeze, stutter
}

func TestDisplayDefaultsToIdle(t *testing.T) {
	m, _, _, _ := newDisplayRig()
	assert.Equal(t, ViewIdle, m.CurrentView())
}

func TestDisplayChokeTakesPriorityOverEverything(t *testing.T) {
	m, choke, freeze, stutter := newDisplayRig()
	choke.Enable()
	freeze.Enable()
	stutter.Enable()
	assert.Equal(t, ViewChoke, m.CurrentView())
}

func TestDisplayFreezeTakesPriorityOverStutterAndMenu(t *testing.T) {
	m, _, freeze, stutter := newDisplayRig()
	freeze.Enable()
	stutter.Enable()
	m.ShowMenu(MenuData{Title: "quant"})
	assert.Equal(t, ViewFreeze, m.CurrentView())
}

func TestDisplayStutterTakesPriorityOverMenu(t *testing.T) {
	m, _, _, stutter := newDisplayRig()
	stutter.Enable()
	m.ShowMenu(MenuData{Title: "quant"})
	assert.Equal(t, ViewStutter, m.CurrentView())
}

func TestDisplayMenuShowsWhenNoEffectActive(t *testing.T) {
	m, _, _, _ := newDisplayRig()
	m.ShowMenu(MenuData{Title: "quant"})
	require.True(t, m.MenuShowing())
	assert.Equal(t, ViewMenu, m.CurrentView())

	m.HideMenu()
	assert.Equal(t, ViewIdle, m.CurrentView())
}

func TestDisplaySetLEDRecordsColorAndIntensity(t *testing.T) {
	m, _, _, _ := newDisplayRig()
	m.SetLED(0, LEDColor{R: 255}, 0.5)
	state := m.LED(0)
	assert.Equal(t, uint8(255), state.Color.R)
	assert.Equal(t, 0.5, state.Intensity)
}

func TestWaitStateIntensityClimbsTowardBoundary(t *testing.T) {
	far := WaitStateIntensity(1000, 132)
	near := WaitStateIntensity(10, 132)
	assert.Equal(t, 0.0, far)
	assert.Greater(t, near, far)
	assert.LessOrEqual(t, near, 1.0)
}
