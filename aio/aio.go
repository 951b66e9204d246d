// Package aio is a reference implementation of fiberflow's AIO backend
// contract: asynchronous file I/O exposed as futures instead of blocking
// calls, so a fiber can Await an in-flight read or write instead of
// parking an OS thread on it.
//
// It works in proactor mode, the same shape as gaio's watcher (see
// socket515-gaio in the retrieved examples): a caller submits an
// operation and gets back a handle to its eventual completion, rather
// than being told when the descriptor is merely ready (reactor mode).
// Completion here is carried by a *fiberflow.Future[int] instead of a
// gaio-style OpResult channel, so it composes directly with Await, Then,
// and the rest of fiberflow's combinators.
package aio

import (
	"os"

	"github.com/kestrelflow/fiberflow"
)

// Backend submits async I/O operations against open files and reports
// their completion via futures.
type Backend interface {
	// Read schedules a read of len(buf) bytes from f at the file's
	// current offset into buf, returning a future that resolves to the
	// number of bytes read.
	Read(f *os.File, buf []byte) *fiberflow.Future[int]

	// Write schedules a write of buf to f, returning a future that
	// resolves to the number of bytes written.
	Write(f *os.File, buf []byte) *fiberflow.Future[int]

	// Close stops accepting new operations. Operations already submitted
	// still complete; Close does not cancel them.
	Close()
}

type op struct {
	run    func() (int, error)
	result *fiberflow.Promise[int]
}

// pool is a bounded goroutine pool performing blocking *os.File I/O on
// behalf of CreateContext's caller. Each worker pulls ops off a shared
// channel and runs them to completion, resolving each op's promise —
// this is the concession proactor-mode AIO makes in portable Go: there's
// no true kernel-level async file I/O exposed to a Go program, so the
// "proactor" here is backed by threads blocked in the OS, not io_uring
// or IOCP submission queues.
type pool struct {
	ops    chan op
	closed chan struct{}
}

// CreateContext starts an AIO backend with workers goroutines servicing
// submitted operations. A workers value <= 0 is treated as 1.
func CreateContext(workers int) Backend {
	if workers <= 0 {
		workers = 1
	}
	p := &pool{
		ops:    make(chan op, workers*4),
		closed: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go p.loop()
	}
	return p
}

func (p *pool) loop() {
	for {
		select {
		case o := <-p.ops:
			n, err := o.run()
			if err != nil {
				o.result.Reject(err)
				continue
			}
			o.result.Resolve(n)
		case <-p.closed:
			return
		}
	}
}

func (p *pool) submit(run func() (int, error)) *fiberflow.Future[int] {
	promise, future := fiberflow.NewPromise[int]()
	select {
	case p.ops <- op{run: run, result: promise}:
	case <-p.closed:
		promise.Reject(fiberflow.ErrChannelClosed)
	}
	return future
}

func (p *pool) Read(f *os.File, buf []byte) *fiberflow.Future[int] {
	return p.submit(func() (int, error) { return f.Read(buf) })
}

func (p *pool) Write(f *os.File, buf []byte) *fiberflow.Future[int] {
	return p.submit(func() (int, error) { return f.Write(buf) })
}

func (p *pool) Close() {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
}
