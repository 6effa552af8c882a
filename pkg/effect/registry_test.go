package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levon-m/microloop/pkg/audioblock"
)

type fakeNode struct {
	id      ID
	enabled bool
	params  map[uint8]float32
}

func newFakeNode(id ID) *fakeNode {
	return &fakeNode{id: id, params: map[uint8]float32{}}
}

func (n *fakeNode) Enable()            { n.enabled = true }
func (n *fakeNode) Disable()           { n.enabled = false }
func (n *fakeNode) Toggle()            { n.enabled = !n.enabled }
func (n *fakeNode) IsEnabled() bool    { return n.enabled }
func (n *fakeNode) Name() string       { return n.id.String() }
func (n *fakeNode) Update(*audioblock.Bus) {}
func (n *fakeNode) SetParameter(i uint8, v float32) { n.params[i] = v }
func (n *fakeNode) GetParameter(i uint8) float32    { return n.params[i] }

func TestRegistryRegisterAndExecute(t *testing.T) {
	r := NewRegistry()
	choke := newFakeNode(Choke)
	require.NoError(t, r.Register(Choke, choke))

	assert.True(t, r.Execute(Command{Type: EnableEffect, TargetEffect: Choke}))
	assert.True(t, choke.IsEnabled())

	assert.True(t, r.Execute(Command{Type: DisableEffect, TargetEffect: Choke}))
	assert.False(t, choke.IsEnabled())

	assert.True(t, r.Execute(Command{Type: ToggleEffect, TargetEffect: Choke}))
	assert.True(t, choke.IsEnabled())
}

func TestRegistryRejectsDuplicateAndNil(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Choke, newFakeNode(Choke)))
	assert.Error(t, r.Register(Choke, newFakeNode(Choke)))
	assert.Error(t, r.Register(Freeze, nil))
}

func TestRegistryFullAtMaxEffects(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < MaxEffects; i++ {
		require.NoError(t, r.Register(ID(i), newFakeNode(ID(i))))
	}
	assert.Error(t, r.Register(ID(MaxEffects), newFakeNode(ID(MaxEffects))))
}

func TestRegistryExecuteUnknownTarget(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Execute(Command{Type: EnableEffect, TargetEffect: Stutter}))
}

func TestRegistryEnabledMask(t *testing.T) {
	r := NewRegistry()
	choke := newFakeNode(Choke)
	freeze := newFakeNode(Freeze)
	require.NoError(t, r.Register(Choke, choke))
	require.NoError(t, r.Register(Freeze, freeze))

	choke.Enable()
	mask := r.EnabledMask()
	assert.Equal(t, uint32(1<<uint(Choke)), mask)

	freeze.Enable()
	mask = r.EnabledMask()
	assert.Equal(t, uint32(1<<uint(Choke)|1<<uint(Freeze)), mask)
}

func TestRegistrySetParameter(t *testing.T) {
	r := NewRegistry()
	choke := newFakeNode(Choke)
	require.NoError(t, r.Register(Choke, choke))

	ok := r.Execute(Command{Type: SetParameter, TargetEffect: Choke, Param1: 3, Value: 0.5})
	require.True(t, ok)
	assert.Equal(t, float32(0.5), choke.GetParameter(3))
}
