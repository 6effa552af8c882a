package timebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Property 1: after n/BlockSize block increments, samplePosition == n.
func TestSamplePositionExactAfterBlocks(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		blocks := rapid.IntRange(0, 10000).Draw(t, "blocks")
		tb := New()
		for i := 0; i < blocks; i++ {
			tb.IncrementSamples(BlockSize)
		}
		assert.Equal(t, uint64(blocks*BlockSize), tb.SamplePosition())
	})
}

// Property 2 & 3: tickInBeat stays in [0,23]; after k ticks, beatNumber
// increases by floor(k/24) and tickInBeat == k mod 24.
func TestTickWrapsAndCountsBeats(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := rapid.IntRange(0, 5000).Draw(t, "ticks")
		tb := New()
		for i := 0; i < k; i++ {
			tb.IncrementTick()
			require.Less(t, tb.TickInBeat(), uint32(TicksPerBeat))
		}
		assert.Equal(t, uint32(k/TicksPerBeat), tb.BeatNumber())
		assert.Equal(t, uint32(k%TicksPerBeat), tb.TickInBeat())
	})
}

func TestSyncToMusicalClockRejectsOutOfRange(t *testing.T) {
	tb := New()
	before := tb.SamplesPerBeat()

	// A period that would push samplesPerBeat far outside range.
	assert.False(t, tb.SyncToMusicalClock(0))
	assert.Equal(t, before, tb.SamplesPerBeat())

	assert.False(t, tb.SyncToMusicalClock(1e9))
	assert.Equal(t, before, tb.SamplesPerBeat())
}

func TestSyncToMusicalClockAccepts120BPM(t *testing.T) {
	tb := New()
	// 120 BPM: quarter note = 500000us, tick period = 500000/24 us.
	tickPeriod := 500000.0 / 24.0
	ok := tb.SyncToMusicalClock(tickPeriod)
	require.True(t, ok)
	assert.InDelta(t, 22050, tb.SamplesPerBeat(), 1)
}

// Property 4: SamplesToNextBeat <= samplesPerBeat, and equals 0 only
// within the grace window.
func TestSamplesToNextBeatBound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tb := New()
		spb := rapid.Uint32Range(MinSamplesPerBeat, MaxSamplesPerBeat).Draw(t, "spb")
		tb.samplesPerBeat.Store(spb)
		pos := rapid.Uint64Range(0, uint64(spb)*4).Draw(t, "pos")
		tb.samplePosition.Store(pos)

		d := tb.SamplesToNextBeat()
		assert.LessOrEqual(t, d, uint64(spb))
		if d == 0 {
			rem := pos % uint64(spb)
			assert.LessOrEqual(t, rem, uint64(GraceSamples))
		}
	})
}

// Property 5: SamplesToNextSubdivision(d) <= d, modulo grace/rounding.
func TestSamplesToNextSubdivisionBound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tb := New()
		spb := rapid.Uint32Range(MinSamplesPerBeat, MaxSamplesPerBeat).Draw(t, "spb")
		tb.samplesPerBeat.Store(spb)
		sub := rapid.Uint64Range(1, uint64(spb)).Draw(t, "sub")
		pos := rapid.Uint64Range(0, uint64(spb)*4).Draw(t, "pos")
		tb.samplePosition.Store(pos)

		d := tb.SamplesToNextSubdivision(sub)
		// Bounded by one subdivision plus one block of rounding slack.
		assert.LessOrEqual(t, d, sub+BlockSize)
	})
}

func TestPollBeatFlagTestAndClear(t *testing.T) {
	tb := New()
	assert.False(t, tb.PollBeatFlag())
	for i := 0; i < TicksPerBeat; i++ {
		tb.IncrementTick()
	}
	assert.True(t, tb.PollBeatFlag())
	assert.False(t, tb.PollBeatFlag())
}

func TestStartResetsCounters(t *testing.T) {
	tb := New()
	tb.IncrementSamples(5000)
	for i := 0; i < 30; i++ {
		tb.IncrementTick()
	}
	tb.Start()
	assert.Equal(t, uint64(0), tb.SamplePosition())
	assert.Equal(t, uint32(0), tb.BeatNumber())
	assert.Equal(t, uint32(0), tb.TickInBeat())
	assert.Equal(t, Playing, tb.TransportStateValue())
}

func TestStopFreezesCounters(t *testing.T) {
	tb := New()
	tb.IncrementSamples(1000)
	tb.Stop()
	assert.Equal(t, Stopped, tb.TransportStateValue())
	assert.Equal(t, uint64(1000), tb.SamplePosition())
}

func TestSubdivisionAnchoredToCurrentBeatAvoidsDrift(t *testing.T) {
	tb := New()
	tb.samplesPerBeat.Store(22050) // 120 BPM
	// 1/16 note = 22050/4 = 5512.5, non-integer -> exercises the anchor.
	sixteenth := uint64(22050) / 4

	tb.samplePosition.Store(0)
	d0 := tb.SamplesToNextSubdivision(sixteenth)
	assert.Greater(t, d0, uint64(0))

	// Near the end of the beat: must fall through to the next beat's
	// boundary, not walk off the end. That boundary is 1 sample ahead,
	// inside the grace window, so the answer is "fire now".
	tb.samplePosition.Store(22049)
	d1 := tb.SamplesToNextSubdivision(sixteenth)
	assert.Equal(t, uint64(0), d1)
}
