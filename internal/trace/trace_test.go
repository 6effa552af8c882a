package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferRecordAndDumpPreservesOrder(t *testing.T) {
	b := NewBuffer()
	b.Record("first")
	b.Record("second %d", 2)

	entries := b.Dump()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Message)
	assert.Equal(t, "second 2", entries[1].Message)
}

func TestBufferWrapsAtCapacity(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < Capacity+10; i++ {
		b.Record("entry %d", i)
	}

	entries := b.Dump()
	require.Len(t, entries, Capacity)
	assert.Equal(t, "entry 10", entries[0].Message)
	assert.Equal(t, "entry 265", entries[Capacity-1].Message)
}

func TestBufferClearEmpties(t *testing.T) {
	b := NewBuffer()
	b.Record("x")
	b.Clear()
	assert.Empty(t, b.Dump())
}
