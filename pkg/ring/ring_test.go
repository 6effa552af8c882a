package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewPanicsOnNonPowerOfTwo(t *testing.T) {
	assert.Panics(t, func() { New[int](3) })
	assert.Panics(t, func() { New[int](0) })
	assert.NotPanics(t, func() { New[int](4) })
}

func TestPushPopOrder(t *testing.T) {
	r := New[int](4)
	require.True(t, r.Push(1))
	require.True(t, r.Push(2))
	require.True(t, r.Push(3))

	v, ok := r.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = r.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestPushFailsWhenFull(t *testing.T) {
	r := New[int](2)
	require.True(t, r.Push(1))
	require.True(t, r.Push(2))
	assert.False(t, r.Push(3))
	assert.Equal(t, uint64(1), r.Dropped())
}

func TestPopFailsWhenEmpty(t *testing.T) {
	r := New[int](2)
	_, ok := r.Pop()
	assert.False(t, ok)
}

func TestDrain(t *testing.T) {
	r := New[int](8)
	for i := 0; i < 5; i++ {
		r.Push(i)
	}
	var got []int
	n := r.Drain(func(v int) { got = append(got, v) })
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 0, r.Len())
}

// TestConcurrentProducerConsumerPreservesOrder is the concurrency
// property from spec.md §8: no push/pop sequence can corrupt either
// index, and the consumer observes values in the producer's push order.
func TestConcurrentProducerConsumerPreservesOrder(t *testing.T) {
	const n = 200000
	r := New[int](1024)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for !r.Push(i) {
				// ring momentarily full, retry
			}
		}
	}()

	var got []int
	go func() {
		defer wg.Done()
		for len(got) < n {
			if v, ok := r.Pop(); ok {
				got = append(got, v)
			}
		}
	}()

	wg.Wait()
	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestRapidPushPopNeverCorruptsIndices(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cap := 1 << rapid.IntRange(1, 6).Draw(t, "capBits")
		r := New[int](cap)

		var model []int
		ops := rapid.SliceOfN(rapid.IntRange(0, 1), 1, 200).Draw(t, "ops")
		next := 0
		for _, op := range ops {
			if op == 0 {
				if r.Push(next) {
					model = append(model, next)
				}
				next++
			} else {
				v, ok := r.Pop()
				if len(model) == 0 {
					assert.False(t, ok)
					continue
				}
				assert.True(t, ok)
				assert.Equal(t, model[0], v)
				model = model[1:]
			}
		}
	})
}
