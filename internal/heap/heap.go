// Package heap implements the reference-counted, cycle-collecting
// object store described in spec.md §4.1. Every heap value embeds a
// Header; the Heap owns the intrusive live list and runs the
// synchronous trial-deletion collector.
package heap

// Allocator mirrors the embedding host's raw alloc/free contract
// (spec.md §6). Go's own runtime owns actual object storage (freeing a
// Go struct once nothing references it is Go's job, not ours); this
// interface exists so the heap's liveBytes accounting — which drives
// the GC thresholds in §4.1 — goes through an injected seam the same
// way the reference implementation's does, and so an embedder can
// observe/limit it.
type Allocator interface {
	Alloc(size int) error
	Free(size int)
}

// DefaultAllocator performs no real (de)allocation; Go's GC already
// owns the backing memory. It exists so Heap always has a non-nil
// Allocator without every embedder needing to supply one.
type DefaultAllocator struct{}

func (DefaultAllocator) Alloc(size int) error { return nil }
func (DefaultAllocator) Free(size int)        {}

// Object is implemented by every heap-allocated value: built-in types,
// user-defined type instances, and Type objects themselves (a Type is
// itself a heap value, per spec.md §3).
type Object interface {
	// GcHeader returns the value's embedded Header.
	GcHeader() *Header
	// VisitRefs invokes visit once for each outgoing owning reference
	// held directly by this value (not including its type pointer,
	// which the collector visits uniformly for every object). Types
	// with no outgoing references (numbers, Null, empty strings) may
	// implement this as a no-op.
	VisitRefs(visit func(Object))
	// Destroy releases any resources the value owns. Called exactly
	// once, by the cycle collector, never at the moment the last
	// handle is dropped (spec.md §3 Lifecycle).
	Destroy() error
}

// Header is the fixed per-value header (spec.md §3 Value): intrusive
// list membership, a back-pointer to the value's type, the nominal
// allocation size, a reference count, and a mark bit used only during
// collection.
type Header struct {
	next, prev *Header
	owner      Object
	typ        Object
	size       int
	refcount   int
	mark       bool
}

// Type returns the header's type back-pointer. Every value has one;
// the bootstrap "type of Type" object points at itself.
func (h *Header) Type() Object { return h.typ }

// RefCount returns the current reference count.
func (h *Header) RefCount() int { return h.refcount }

// Heap owns every live value via an intrusive doubly-linked list
// anchored at a sentinel node (spec.md §4.1).
type Heap struct {
	allocator Allocator
	sentinel  Header // sentinel.next/.prev form the circular live list
	liveCount int

	liveBytes      int
	lastCycleBytes int
}

// New creates an empty Heap backed by alloc. A nil alloc uses
// DefaultAllocator.
func New(alloc Allocator) *Heap {
	if alloc == nil {
		alloc = DefaultAllocator{}
	}
	h := &Heap{allocator: alloc}
	h.sentinel.next = &h.sentinel
	h.sentinel.prev = &h.sentinel
	return h
}

// LiveBytes reports the heap's current notion of allocated bytes,
// used to decide when to run a collection cycle.
func (h *Heap) LiveBytes() int { return h.liveBytes }

// Register links a freshly constructed value into the live list and
// initialises its header (spec.md §4.1 Allocation). size is a nominal
// accounting cost, not a literal byte count, since Go already owns the
// underlying storage.
func (h *Heap) Register(owner Object, typ Object, size int) {
	hdr := owner.GcHeader()
	hdr.owner = owner
	hdr.typ = typ
	hdr.size = size
	hdr.refcount = 0
	hdr.mark = false
	h.allocator.Alloc(size)
	h.liveBytes += size
	h.liveCount++
	h.linkLive(hdr)
}

func (h *Heap) linkLive(n *Header) {
	n.next = h.sentinel.next
	n.prev = &h.sentinel
	h.sentinel.next.prev = n
	h.sentinel.next = n
}

func (h *Heap) unlink(n *Header) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.next = nil
	n.prev = nil
}

// IncRef bumps o's reference count. Called when o is stored into an
// owning slot (array element, map entry, attribute, option payload) or
// pinned by the runtime for the whole process. VM locals, globals and
// operand-stack entries do not call it and hold uncounted references.
func (h *Heap) IncRef(o Object) {
	if o == nil {
		return
	}
	o.GcHeader().refcount++
}

// DecRef drops o's reference count. It never frees o itself — per
// spec.md §3 Lifecycle, reclamation happens only inside a collection
// cycle, even for acyclic garbage that has just hit zero.
func (h *Heap) DecRef(o Object) {
	if o == nil {
		return
	}
	hdr := o.GcHeader()
	if hdr.refcount > 0 {
		hdr.refcount--
	}
}

// visitAll invokes visit for o's type pointer and every reference
// VisitRefs reports — the collector always includes the type edge
// (spec.md §4.1 visitor protocol), per-type VisitRefs implementations
// do not need to repeat it.
func visitAll(o Object, visit func(Object)) {
	if t := o.GcHeader().typ; t != nil {
		visit(t)
	}
	o.VisitRefs(visit)
}

// MaybeCollect runs a collection cycle if the live-byte count exceeds
// the threshold in §4.1 (seed threshold on the first cycle, else 8x
// the previous cycle's ending size).
func (h *Heap) MaybeCollect(seedThreshold, growthFactor int) error {
	threshold := seedThreshold
	if h.lastCycleBytes > 0 {
		threshold = h.lastCycleBytes * growthFactor
	}
	if h.liveBytes <= threshold {
		return nil
	}
	return h.Collect()
}

// Collect runs one full trial-deletion cycle over the live list
// (spec.md §4.1): decrement, rescue, finalise, reclaim.
func (h *Heap) Collect() error {
	snapshot := h.liveSnapshot()

	// Phase 1: decrement every outgoing edge from every currently-live
	// value; anything whose count reaches zero as a result becomes a
	// scratch candidate.
	zero := make(map[*Header]bool)
	for _, n := range snapshot {
		n.mark = true
		visitAll(n.owner, func(ref Object) {
			rh := ref.GcHeader()
			if rh.refcount > 0 {
				rh.refcount--
				if rh.refcount == 0 {
					zero[rh] = true
				}
			}
		})
	}

	scratch := make(map[*Header]bool, len(zero))
	for n := range zero {
		h.unlink(n)
		scratch[n] = true
	}

	// Phase 2: re-walk the surviving live list, re-incrementing every
	// outgoing edge; anything that was a scratch candidate and comes
	// back above zero is rescued.
	for _, n := range h.liveSnapshot() {
		n.mark = false
		visitAll(n.owner, func(ref Object) {
			rh := ref.GcHeader()
			rh.refcount++
			if scratch[rh] && rh.refcount > 0 {
				delete(scratch, rh)
				rh.mark = false
				h.linkLive(rh)
			}
		})
	}

	// Phase 3: finalise the condemned subgraph's counts so they
	// reflect only in-cycle edges.
	for n := range scratch {
		visitAll(n.owner, func(ref Object) {
			ref.GcHeader().refcount++
		})
	}

	// Phase 4: reclaim. destroy is attempted for every condemned value
	// even if an earlier one failed.
	var firstErr error
	for n := range scratch {
		if err := n.owner.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
		h.allocator.Free(n.size)
		h.liveBytes -= n.size
		h.liveCount--
	}

	h.lastCycleBytes = h.liveBytes
	return firstErr
}

func (h *Heap) liveSnapshot() []*Header {
	out := make([]*Header, 0, h.liveCount)
	for n := h.sentinel.next; n != &h.sentinel; n = n.next {
		out = append(out, n)
	}
	return out
}
