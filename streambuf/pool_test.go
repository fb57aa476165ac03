package streambuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_ReusesBufferOfSameCapacity(t *testing.T) {
	p := &Pool{}
	a := p.Get(128)
	a.FillFrom(nil, 0) // no-op, just touching the buffer
	p.Put(a)

	b := p.Get(128)
	assert.Same(t, a, b, "a returned buffer should be reused rather than reallocated")
}

func TestPool_BoundsIdlePerCapacity(t *testing.T) {
	p := &Pool{}
	bufs := make([]*Buffer, 3)
	for i := range bufs {
		bufs[i] = p.Get(64)
	}
	for _, b := range bufs {
		p.Put(b)
	}
	assert.LessOrEqual(t, len(p.entries[0].idle), maxPerCapacity)
}

func TestPool_BoundsDistinctCapacities(t *testing.T) {
	p := &Pool{}
	for _, capacity := range []int{16, 32, 64, 128, 256} {
		buf := p.Get(capacity)
		p.Put(buf)
	}
	assert.LessOrEqual(t, len(p.entries), maxCapacities)
}

func TestPool_UncachedCapacityAllocatesFresh(t *testing.T) {
	p := &Pool{}
	buf := p.Get(17)
	assert.Equal(t, 17, buf.Cap())
}
