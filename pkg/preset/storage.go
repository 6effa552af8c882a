package preset

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/levon-m/microloop/internal/oops"
	"github.com/levon-m/microloop/pkg/effect/stutter"
)

// Storage persists a single stutter loop per slot. Grounded on
// SdCardStorage's saveSync/loadSync/deleteSync/presetExists, adapted
// from a raw SD block API to a filesystem-backed one (spec.md has no
// SD card; a local file is the direct substitute).
type Storage interface {
	Save(slot int, left, right []int16) error
	Load(slot int) (left, right []int16, err error)
	Delete(slot int) error
	Exists(slot int) bool
}

// FileStorage implements Storage against plain files, one per slot,
// using the exact wire format of SdCardStorage.h: a little-endian int32
// sample count, then int16 left samples, then int16 right samples.
type FileStorage struct {
	paths [4]string
}

// NewFileStorage wires a FileStorage to four slot file paths (from
// internal/config's PresetPaths).
func NewFileStorage(paths [4]string) *FileStorage {
	return &FileStorage{paths: paths}
}

func (f *FileStorage) path(slot int) (string, error) {
	if slot < 1 || slot > 4 {
		return "", fmt.Errorf("preset: slot %d out of range", slot)
	}
	return f.paths[slot-1], nil
}

// Save writes left/right to slot's file, truncating any existing content
// first (spec.md §6 item 5 file format). The write is not atomic: a
// failure part-way leaves a partially written file.
func (f *FileStorage) Save(slot int, left, right []int16) error {
	path, err := f.path(slot)
	if err != nil {
		return err
	}
	if len(left) == 0 || len(left) != len(right) {
		return oops.ErrPresetBadLength
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := binary.Write(file, binary.LittleEndian, int32(len(left))); err != nil {
		return err
	}
	if err := binary.Write(file, binary.LittleEndian, left); err != nil {
		return err
	}
	return binary.Write(file, binary.LittleEndian, right)
}

// Load reads slot's file back into left/right. A stored length beyond
// the Stutter buffer's capacity is rejected before any allocation
// happens (spec.md §4.10, §6): such a file could only come from a
// different build's buffer sizing, not a slot this process wrote.
func (f *FileStorage) Load(slot int) (left, right []int16, err error) {
	path, err := f.path(slot)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var length int32
	if err := binary.Read(file, binary.LittleEndian, &length); err != nil {
		return nil, nil, err
	}
	if length <= 0 || length > stutter.BufferSamples {
		return nil, nil, oops.ErrPresetBadLength
	}

	left = make([]int16, length)
	right = make([]int16, length)
	if err := binary.Read(file, binary.LittleEndian, left); err != nil {
		return nil, nil, err
	}
	if err := binary.Read(file, binary.LittleEndian, right); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// Delete removes slot's file. A missing file is not an error — deleting
// an already-empty slot is a no-op, matching presetExists()==false after
// either path.
func (f *FileStorage) Delete(slot int) error {
	path, err := f.path(slot)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether slot has a readable, non-empty file.
func (f *FileStorage) Exists(slot int) bool {
	path, err := f.path(slot)
	if err != nil {
		return false
	}
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	var length int32
	if err := binary.Read(file, binary.LittleEndian, &length); err != nil {
		return false
	}
	return length > 0
}
