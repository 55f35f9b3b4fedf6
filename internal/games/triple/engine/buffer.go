package engine

// Buffer is the fixed-capacity holding area. It stores references only; the
// cards stay in their layers.
type Buffer struct {
	capacity int
	refs     []Ref
}

// NewBuffer creates an empty buffer with the given capacity.
func NewBuffer(capacity int) Buffer {
	return Buffer{capacity: capacity, refs: make([]Ref, 0, capacity)}
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int { return b.capacity }

// Len returns the number of held references.
func (b *Buffer) Len() int { return len(b.refs) }

// Full reports whether the buffer is at capacity.
func (b *Buffer) Full() bool { return len(b.refs) >= b.capacity }

// Empty reports whether the buffer holds nothing.
func (b *Buffer) Empty() bool { return len(b.refs) == 0 }

// Refs returns a copy of the held references in insertion order.
func (b *Buffer) Refs() []Ref {
	return append([]Ref(nil), b.refs...)
}

// At returns the reference in the given slot.
func (b *Buffer) At(slot int) (Ref, bool) {
	if slot < 0 || slot >= len(b.refs) {
		return Ref{}, false
	}
	return b.refs[slot], true
}

// push appends ref and returns its slot, or -1 when full.
func (b *Buffer) push(ref Ref) int {
	if b.Full() {
		return -1
	}
	b.refs = append(b.refs, ref)
	return len(b.refs) - 1
}

func (b *Buffer) removeAt(slot int) (Ref, bool) {
	ref, ok := b.At(slot)
	if !ok {
		return Ref{}, false
	}
	b.refs = append(b.refs[:slot], b.refs[slot+1:]...)
	return ref, true
}

// removeSlots drops the given slots, preserving the order of the rest.
func (b *Buffer) removeSlots(slots []int) {
	drop := make(map[int]bool, len(slots))
	for _, s := range slots {
		drop[s] = true
	}
	kept := b.refs[:0]
	for i, ref := range b.refs {
		if !drop[i] {
			kept = append(kept, ref)
		}
	}
	b.refs = kept
}

func (b *Buffer) clear() []Ref {
	out := b.Refs()
	b.refs = b.refs[:0]
	return out
}
