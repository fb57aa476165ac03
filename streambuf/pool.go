package streambuf

import "sync"

// maxCapacities and maxPerCapacity bound the process-wide pool per the
// specification: at most 4 distinct capacities are remembered, at most 2
// idle buffers per capacity. A Get for an unseen capacity always allocates
// a fresh buffer; registering that capacity drops the least-recently-used
// capacity, with any idle buffers it held, once 4 are already tracked.
const (
	maxCapacities  = 4
	maxPerCapacity = 2
)

// entry tracks the idle buffers for one capacity plus its position in the
// LRU ordering (most-recently-used capacity is pool.order[0]).
type entry struct {
	capacity int
	idle     []*Buffer
}

// Pool is the size-keyed LRU buffer cache the specification calls for. The
// reference design keeps this thread-local; Go has no idiomatic per-
// goroutine storage, so Pool is instead a package-level singleton guarded
// by a mutex -- the single-writer nature of one tape session (spec.md §5)
// means contention never actually happens in practice; the lock exists
// only to make the shared variant safe if a process ever drives more than
// one drive concurrently from separate goroutines.
type Pool struct {
	mu      sync.Mutex
	entries []*entry // ordered most-recently-used first
}

// Global is the process-wide pool every tapestream ReadStream and
// WriteStream draws from.
var Global = &Pool{}

// Get returns an idle buffer of the given capacity if one is cached, or
// allocates a fresh one. The returned buffer is always Reset.
func (p *Pool) Get(capacity int) *Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, e := range p.entries {
		if e.capacity != capacity {
			continue
		}
		p.touch(i)
		if len(e.idle) > 0 {
			buf := e.idle[len(e.idle)-1]
			e.idle = e.idle[:len(e.idle)-1]
			buf.Reset()
			return buf
		}
		return newRaw(capacity)
	}

	// Unseen capacity: allocate fresh and register the capacity slot,
	// evicting the least-recently-used one if we're already at the cap.
	buf := newRaw(capacity)
	p.register(capacity)
	return buf
}

// Put returns buf to the pool for reuse. If its capacity already holds
// maxPerCapacity idle buffers, buf is simply dropped (left for the
// garbage collector) rather than growing the cache unbounded.
func (p *Pool) Put(buf *Buffer) {
	if buf == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	capacity := buf.Cap()
	for i, e := range p.entries {
		if e.capacity != capacity {
			continue
		}
		p.touch(i)
		if len(e.idle) < maxPerCapacity {
			e.idle = append(e.idle, buf)
		}
		return
	}
	p.register(capacity)
	p.entries[0].idle = append(p.entries[0].idle, buf)
}

// touch moves the entry at index i to the front of the LRU order.
func (p *Pool) touch(i int) {
	e := p.entries[i]
	copy(p.entries[1:i+1], p.entries[:i])
	p.entries[0] = e
}

// register inserts a new, empty entry for capacity at the front of the
// LRU order, evicting the least-recently-used entry first if the pool is
// already tracking maxCapacities distinct sizes.
func (p *Pool) register(capacity int) {
	if len(p.entries) >= maxCapacities {
		p.entries = p.entries[:maxCapacities-1]
	}
	fresh := &entry{capacity: capacity}
	p.entries = append([]*entry{fresh}, p.entries...)
}
