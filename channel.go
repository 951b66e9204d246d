package fiberflow

import (
	"sync"

	"github.com/kestrelflow/fiberflow/metrics"
)

// item is a value in flight through a Channel: the future the producer
// handed to Send, paired with the promise returned to that producer so it
// can observe backpressure clearing (queue depth once the item is
// admitted, or rejection on close).
type item[T any] struct {
	innerFuture *Future[T]
	sendPromise *Promise[uint]
}

// ChannelOption configures a Channel at construction time.
type ChannelOption func(*channelOptions)

type channelOptions struct {
	metrics metrics.Provider
}

// WithChannelMetrics attaches a metrics.Provider the channel reports its
// queue depth to.
func WithChannelMetrics(p metrics.Provider) ChannelOption {
	return func(co *channelOptions) {
		if p != nil {
			co.metrics = p
		}
	}
}

// Channel is a bounded FIFO that pairs producers and consumers of
// futures — in fiberflow's domain, the values handed between fibers are
// themselves Futures, so a slow or not-yet-settled producer can still
// enqueue its place in line and let the receiver observe the eventual
// value once it arrives. A capacity of 0 makes it a rendezvous channel:
// Send only completes once a Receive is already parked waiting for it,
// and vice versa.
//
// Channel is safe for concurrent use from multiple fibers, including
// fibers on different schedulers.
type Channel[T any] struct {
	mu       sync.Mutex
	capacity uint

	queue []*item[T]    // in-flight items, length <= capacity
	sendq []*item[T]    // producers parked because queue is full
	recvq []*Promise[T] // receivers parked because queue is empty

	closedSend bool
	closedRecv bool

	queueDepth metrics.UpDownCounter
}

// NewChannel returns a Channel with the given buffer capacity.
func NewChannel[T any](capacity uint, opts ...ChannelOption) *Channel[T] {
	co := channelOptions{metrics: metrics.Noop}
	for _, o := range opts {
		if o != nil {
			o(&co)
		}
	}
	return &Channel[T]{
		capacity:   capacity,
		queueDepth: co.metrics.UpDownCounter("fiberflow.channel.queue_depth", metrics.WithUnit("1")),
	}
}

// pairing is one outcome of a pairLocked pass, to be applied once the
// channel lock is released.
type pairing[T any] struct {
	innerFuture *Future[T]
	recvPromise *Promise[T]
}

// promotion moves a parked sender's item into the queue, to be applied
// once the channel lock is released.
type promotion struct {
	sendPromise *Promise[uint]
	newLen      uint
}

// pairLocked runs the pairing step: while both queue and recvq are
// non-empty, it pops the head of each and records that the popped item's
// inner future should be chained into the popped receiver's promise. Each
// pop also tries to promote one parked sender from sendq into the freed
// queue slot. On a rendezvous channel (capacity 0) parked senders are
// paired with parked receivers directly. Must be called with c.mu held; returns
// work to perform after unlocking so listener/promise callbacks never run
// under the channel lock.
func (c *Channel[T]) pairLocked() ([]pairing[T], []promotion) {
	var pairs []pairing[T]
	var promotions []promotion

	for len(c.queue) > 0 && len(c.recvq) > 0 {
		it := c.queue[0]
		c.queue = c.queue[1:]
		c.queueDepth.Add(-1)

		p := c.recvq[0]
		c.recvq = c.recvq[1:]

		pairs = append(pairs, pairing[T]{innerFuture: it.innerFuture, recvPromise: p})

		if len(c.sendq) > 0 && uint(len(c.queue)) < c.capacity {
			promoted := c.sendq[0]
			c.sendq = c.sendq[1:]
			c.queue = append(c.queue, promoted)
			c.queueDepth.Add(1)
			promotions = append(promotions, promotion{sendPromise: promoted.sendPromise, newLen: uint(len(c.queue))})
		}
	}

	for c.capacity == 0 && len(c.sendq) > 0 && len(c.recvq) > 0 {
		it := c.sendq[0]
		c.sendq = c.sendq[1:]
		p := c.recvq[0]
		c.recvq = c.recvq[1:]
		pairs = append(pairs, pairing[T]{innerFuture: it.innerFuture, recvPromise: p})
		promotions = append(promotions, promotion{sendPromise: it.sendPromise, newLen: 0})
	}
	return pairs, promotions
}

func (c *Channel[T]) settle(pairs []pairing[T], promotions []promotion) {
	for _, p := range pairs {
		Chain(p.innerFuture, p.recvPromise.Future())
	}
	for _, p := range promotions {
		p.sendPromise.Resolve(p.newLen)
	}
}

// SendAsync hands future to the channel — the value a receiver eventually
// sees is future's own eventual value, not future itself, so an unresolved
// future may be sent and resolved later. It returns the send_promise: a
// future that resolves with the post-push queue length once future is
// admitted to the queue, or stays pending until backpressure clears if the
// channel was already full. It rejects immediately with ErrChannelClosed
// if either half of the channel has already been closed.
func (c *Channel[T]) SendAsync(future *Future[T]) *Future[uint] {
	c.mu.Lock()
	if c.closedSend || c.closedRecv {
		c.mu.Unlock()
		return NewRejected[uint](ErrChannelClosed)
	}

	p, f := NewPromise[uint]()
	it := &item[T]{innerFuture: future, sendPromise: p}

	var admittedLen uint
	admitted := false
	if len(c.sendq) == 0 && uint(len(c.queue)) < c.capacity {
		c.queue = append(c.queue, it)
		c.queueDepth.Add(1)
		admittedLen = uint(len(c.queue))
		admitted = true
	} else {
		c.sendq = append(c.sendq, it)
	}

	pairs, promotions := c.pairLocked()
	c.mu.Unlock()

	if admitted {
		p.Resolve(admittedLen)
	}
	c.settle(pairs, promotions)
	return f
}

// ReceiveAsync returns a future for the next value the channel can offer.
// Its value is chained from whichever sent future is paired with this
// receive — if that future isn't resolved yet, the returned future stays
// pending until it is. It rejects with ErrChannelClosed once the channel
// is closed and nothing already in flight can still reach this receiver.
func (c *Channel[T]) ReceiveAsync() *Future[T] {
	c.mu.Lock()

	if c.closedRecv {
		c.mu.Unlock()
		return NewRejected[T](ErrChannelClosed)
	}
	if c.closedSend && uint(len(c.queue)+len(c.sendq)) <= uint(len(c.recvq)) {
		c.mu.Unlock()
		return NewRejected[T](ErrChannelClosed)
	}

	p, f := NewPromise[T]()
	c.recvq = append(c.recvq, p)

	pairs, promotions := c.pairLocked()
	c.mu.Unlock()

	c.settle(pairs, promotions)
	return f
}

// Send hands future to the channel and suspends fb (via Await) until it's
// admitted to the queue, returning the post-push queue length, or rejects
// if the channel turns out to be closed.
func (c *Channel[T]) Send(fb *Fiber, future *Future[T]) (uint, error) {
	return Await(fb, c.SendAsync(future))
}

// Receive suspends fb (via Await) until the channel can offer a value, or
// rejects once the channel is closed and drained.
func (c *Channel[T]) Receive(fb *Fiber) (T, error) {
	return Await(fb, c.ReceiveAsync())
}

// CloseSend closes the producer half: no further Send calls will be
// accepted. Any recvq entry beyond what the items already in queue and
// sendq can still fulfill is rejected immediately, since nothing will ever
// arrive to pair with it; the rest keep waiting for those items to settle
// or be drained normally.
func (c *Channel[T]) CloseSend() {
	c.mu.Lock()
	if c.closedSend {
		c.mu.Unlock()
		return
	}
	c.closedSend = true

	supply := len(c.queue) + len(c.sendq)
	var excess []*Promise[T]
	if len(c.recvq) > supply {
		excess = append(excess, c.recvq[supply:]...)
		c.recvq = c.recvq[:supply]
	}
	c.mu.Unlock()

	for _, p := range excess {
		p.Reject(ErrChannelClosed)
	}
}

// CloseReceive closes the consumer half: no further value will ever be
// delivered, so every item still queued or parked is drained and every
// pending promise — sender and receiver alike — is rejected with
// ErrChannelClosed.
func (c *Channel[T]) CloseReceive() {
	c.mu.Lock()
	if c.closedRecv {
		c.mu.Unlock()
		return
	}
	c.closedRecv = true

	queue := c.queue
	c.queueDepth.Add(-int64(len(queue)))
	c.queue = nil
	sendq := c.sendq
	c.sendq = nil
	recvq := c.recvq
	c.recvq = nil
	c.mu.Unlock()

	for _, it := range queue {
		it.sendPromise.Reject(ErrChannelClosed)
	}
	for _, it := range sendq {
		it.sendPromise.Reject(ErrChannelClosed)
	}
	for _, p := range recvq {
		p.Reject(ErrChannelClosed)
	}
}

// Close closes both halves of the channel.
func (c *Channel[T]) Close() {
	c.CloseSend()
	c.CloseReceive()
}

// CanSend reports whether a Send could still succeed (neither half has
// been closed yet).
func (c *Channel[T]) CanSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closedSend && !c.closedRecv
}

// CanReceive reports whether a Receive could still resolve with a value —
// either something is already in flight, or the send side is still open
// and might offer something later.
func (c *Channel[T]) CanReceive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closedRecv {
		return false
	}
	return len(c.queue) > 0 || len(c.sendq) > 0 || !c.closedSend
}
