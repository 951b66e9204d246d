package fiberflow

import (
	"github.com/kestrelflow/fiberflow/pool"
)

// canarySize is the width of the guard region written at the low end of a
// Stack's buffer. Go doesn't let a goroutine mmap its own stack with a
// trailing unmapped guard page the way a native makecontext stack would, so
// a canary pattern is the portable stand-in: CheckCanary reports corruption
// instead of the kernel trapping a real overrun.
const canarySize = 32

var canaryPattern = [canarySize]byte{0xFB} // remaining bytes zero; good enough as a tamper marker

// Stack is a pooled buffer standing in for a fiber's native execution
// stack. fiberflow's fibers run as goroutines rather than switching a real
// CPU stack, so Stack no longer holds executable machine state — it exists
// so a Fiber still has a concrete, poolable, size-bounded resource to
// acquire and release, with pooling and canary-guard behavior.
type Stack struct {
	buf []byte
}

// newStack allocates a Stack of size bytes plus its canary region.
func newStack(size uint) *Stack {
	s := &Stack{buf: make([]byte, int(size)+canarySize)}
	copy(s.buf[:canarySize], canaryPattern[:])
	return s
}

// CheckCanary reports whether the guard region is intact. A corrupted
// canary indicates something wrote past where fiber-local data was meant
// to stay confined to buf[canarySize:].
func (s *Stack) CheckCanary() bool {
	for i := 0; i < canarySize; i++ {
		if s.buf[i] != canaryPattern[i] {
			return false
		}
	}
	return true
}

// reset restores the canary and zeroes the usable region before the Stack
// goes back into a pool, so a reused Stack never leaks a prior fiber's
// data and CheckCanary is meaningful for the next occupant too.
func (s *Stack) reset() {
	for i := canarySize; i < len(s.buf); i++ {
		s.buf[i] = 0
	}
	copy(s.buf[:canarySize], canaryPattern[:])
}

// stackPool wraps a pool.Pool so Get/Put work in terms of *Stack rather
// than interface{}.
type stackPool struct {
	p    pool.Pool
	size uint
}

func newStackPool(cfg Config) *stackPool {
	newFn := func() interface{} { return newStack(cfg.StackSize) }
	var p pool.Pool
	if cfg.MaxStacks > 0 {
		p = pool.NewFixed(cfg.MaxStacks, newFn)
	} else {
		p = pool.NewDynamic(newFn)
	}
	return &stackPool{p: p, size: cfg.StackSize}
}

func (sp *stackPool) Get() *Stack {
	s := sp.p.Get().(*Stack)
	if uint(len(s.buf)) != sp.size+canarySize {
		// a fixed pool was built before StackSize changed; reallocate
		// rather than hand back a mismatched buffer.
		return newStack(sp.size)
	}
	return s
}

func (sp *stackPool) Put(s *Stack) {
	s.reset()
	sp.p.Put(s)
}
