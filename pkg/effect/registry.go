package effect

import (
	"fmt"

	"github.com/levon-m/microloop/internal/oops"
)

// MaxEffects bounds the registry array (spec.md §4.8): a live-performance
// rig realistically needs 3-5 slots, 8 is generous headroom with trivial
// linear-search cost.
const MaxEffects = 8

type entry struct {
	id   ID
	node Node
}

// Registry maps effect ID to node pointer. Populated once before any
// audio or input context starts (Register), then read-only for the rest
// of the process lifetime (spec.md §4.8, §5 "Shared resources").
type Registry struct {
	entries [MaxEffects]entry
	count   int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a node under id. Returns an error if the registry is
// full or id is already registered — both are fatal startup
// misconfigurations per spec.md §7, never a runtime condition.
func (r *Registry) Register(id ID, node Node) error {
	if node == nil {
		return fmt.Errorf("effect: nil node for %s", id)
	}
	for i := 0; i < r.count; i++ {
		if r.entries[i].id == id {
			return fmt.Errorf("effect: %s: %w", id, oops.ErrRegistryDuplicate)
		}
	}
	if r.count >= MaxEffects {
		return fmt.Errorf("effect: %w (max %d)", oops.ErrRegistryFull, MaxEffects)
	}
	r.entries[r.count] = entry{id: id, node: node}
	r.count++
	return nil
}

// Get returns the node registered under id, or nil if none.
func (r *Registry) Get(id ID) Node {
	for i := 0; i < r.count; i++ {
		if r.entries[i].id == id {
			return r.entries[i].node
		}
	}
	return nil
}

// Execute dispatches cmd to its target effect. Returns false if the
// target is not registered or the command type is unrecognized — an
// expected, non-fatal condition during normal operation.
func (r *Registry) Execute(cmd Command) bool {
	node := r.Get(cmd.TargetEffect)
	if node == nil {
		return false
	}
	switch cmd.Type {
	case EnableEffect:
		node.Enable()
	case DisableEffect:
		node.Disable()
	case ToggleEffect:
		node.Toggle()
	case SetParameter:
		p, ok := node.(Parameterized)
		if !ok {
			return false
		}
		p.SetParameter(cmd.Param1, cmd.Value)
	default:
		return false
	}
	return true
}

// EnabledMask returns a bitmask where bit N is set if the effect
// registered under ID N reports IsEnabled() == true (spec.md §4.8 query
// API).
func (r *Registry) EnabledMask() uint32 {
	var mask uint32
	for i := 0; i < r.count; i++ {
		if r.entries[i].node.IsEnabled() {
			mask |= 1 << uint(r.entries[i].id)
		}
	}
	return mask
}

// Count returns the number of registered effects.
func (r *Registry) Count() int { return r.count }

// All returns the registered IDs in registration order, for display/
// debug iteration.
func (r *Registry) All() []ID {
	ids := make([]ID, r.count)
	for i := 0; i < r.count; i++ {
		ids[i] = r.entries[i].id
	}
	return ids
}
