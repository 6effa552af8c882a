package audioblock

// Bus binds one node's two input ports and two output ports for a single
// block callback. The graph driver (the timekeeper tap described in
// spec.md §2 item 3) populates In[] before calling a node's Update, and
// reads Out[] afterwards to feed the next node in the chain. Grounded on
// the teacher's process.Context (pre-allocated Input/Output slices,
// zero-allocation PassThrough/Clear), adapted from float32 VST buffers to
// the spec's reference-counted int16 Block pairs.
type Bus struct {
	Alloc Allocator

	In  [2]*Block // left, right input blocks for this callback
	Out [2]*Block // left, right output blocks this node produced
}

// ReceiveWritable returns the input block on the given port for
// in-place modification (e.g. Choke's gain ramp). The caller becomes
// responsible for transmitting and releasing it.
func (b *Bus) ReceiveWritable(p Port) *Block {
	return b.In[p]
}

// ReceiveReadOnly returns the input block without implying the caller
// will mutate it. Used by effects (e.g. Stutter while Playing) that must
// still drain and release their input to avoid allocator starvation
// even though they discard the data (spec.md §3.3).
func (b *Bus) ReceiveReadOnly(p Port) *Block {
	return b.In[p]
}

// Transmit publishes a block as this node's output on the given port.
func (b *Bus) Transmit(blk *Block, p Port) {
	b.Out[p] = blk
}

// Release returns a block to the allocator. Safe to call with nil.
func (b *Bus) Release(blk *Block) {
	if blk != nil {
		b.Alloc.Release(blk)
	}
}

// Reset clears In/Out for the next callback; the graph driver calls this
// between nodes in the chain.
func (b *Bus) Reset() {
	b.In[0], b.In[1] = nil, nil
	b.Out[0], b.Out[1] = nil, nil
}
