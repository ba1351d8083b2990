// Package ids hands out dense, globally-unique mutant identifiers across
// a run of the instrumenter.
package ids

import "sync"

// Allocator is the process-wide monotonic ID counter, modelled as a
// field of the driver rather than a true global so tests can reset it
// deterministically. Reserve and Peek are each individually safe for
// concurrent use, but a single translation unit's rewrite pass makes
// many of them in sequence (one Reserve per surviving site), and that
// whole sequence must not interleave with another TU's: Lock/Unlock
// give a caller a second, coarser mutex to hold across a TU's entire
// Reserve sequence so its global ID range stays dense and contiguous.
type Allocator struct {
	mu   sync.Mutex
	next int32

	seqMu sync.Mutex
}

// Lock acquires the allocator's sequencing lock. A caller processing
// one translation unit must hold it from before that TU's first
// Reserve/Peek call until after its last, so that a concurrently
// running TU's own Reserve calls cannot land in between.
func (a *Allocator) Lock() { a.seqMu.Lock() }

// Unlock releases the sequencing lock acquired by Lock.
func (a *Allocator) Unlock() { a.seqMu.Unlock() }

// NewAllocator returns an Allocator starting at global ID 0.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Reserve allocates count consecutive global IDs and returns the first
// one. The returned value becomes a TU's firstMutationIdInFile when
// count is the TU's total surviving-variant count across all of its
// sites. Reserve(0) is valid and returns the counter's current position
// without advancing it, matching "when a TU yields zero mutations, no
// prelude is inserted" — the TU still needs a firstMutationIdInFile for
// the manifest, it's just never referenced by generated code.
func (a *Allocator) Reserve(count int) int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	first := a.next
	a.next += int32(count)
	return first
}

// Peek reports the next ID that would be handed out, without reserving
// it. Useful for tests asserting ID density across several TUs.
func (a *Allocator) Peek() int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}
