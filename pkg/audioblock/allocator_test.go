package audioblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAllocatorAllocateRelease(t *testing.T) {
	p := NewPoolAllocator(2)
	require.Equal(t, 2, p.Available())

	b1 := p.Allocate()
	require.NotNil(t, b1)
	assert.Equal(t, 1, p.Available())

	b2 := p.Allocate()
	require.NotNil(t, b2)
	assert.Equal(t, 0, p.Available())

	b3 := p.Allocate()
	assert.Nil(t, b3, "pool must return nil rather than allocate/crash when exhausted")

	p.Release(b1)
	assert.Equal(t, 1, p.Available())
	p.Release(b2)
	assert.Equal(t, 2, p.Available())
}

func TestPoolAllocatorRetainDefersRelease(t *testing.T) {
	p := NewPoolAllocator(1)
	b := p.Allocate()
	p.Retain(b) // refcount now 2
	p.Release(b)
	assert.Equal(t, 0, p.Available(), "block must not return to pool while still retained")
	p.Release(b)
	assert.Equal(t, 1, p.Available())
}

func TestPoolAllocatorZeroesOnAllocate(t *testing.T) {
	p := NewPoolAllocator(1)
	b := p.Allocate()
	b.Data[0] = 1234
	p.Release(b)
	b2 := p.Allocate()
	assert.Equal(t, int16(0), b2.Data[0])
}

func TestBusResetClearsPorts(t *testing.T) {
	p := NewPoolAllocator(2)
	bus := &Bus{Alloc: p}
	bus.In[0] = p.Allocate()
	bus.Transmit(p.Allocate(), PortLeft)
	bus.Reset()
	assert.Nil(t, bus.In[0])
	assert.Nil(t, bus.Out[0])
}
