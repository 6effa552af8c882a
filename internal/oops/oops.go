// Package oops defines the sentinel errors used on the control path
// (spec.md §7): narrow error kinds, no panics. Audio-interrupt code
// never returns or allocates errors; it degrades silently instead. Ring
// overruns are counted by pkg/ring's Ring.Dropped.
package oops

import "errors"

var (
	// ErrTempoOutOfRange names a tempo outside the clock's supported
	// range (spec.md §4.1). TimeBase.SyncToMusicalClock reports that case
	// with a false result, not with this error.
	ErrTempoOutOfRange = errors.New("tempo out of range")

	// ErrPresetBadLength is returned when a preset file's declared sample
	// length doesn't fit its buffer or its recorded length is zero.
	ErrPresetBadLength = errors.New("preset has invalid sample length")

	// ErrRegistryDuplicate is returned registering two nodes under the
	// same effect ID.
	ErrRegistryDuplicate = errors.New("effect already registered under this id")

	// ErrRegistryFull is returned registering past the registry's fixed
	// capacity (spec.md §4.8, 8 slots).
	ErrRegistryFull = errors.New("effect registry is full")
)
