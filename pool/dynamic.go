package pool

import "sync"

// NewDynamic returns a dynamic-size stack pool: it grows and shrinks freely,
// via sync.Pool, so the garbage collector can reclaim idle stacks under
// memory pressure. This is the default pool used by FiberScheduler.
func NewDynamic(newFn func() interface{}) Pool {
	return &sync.Pool{New: newFn}
}
