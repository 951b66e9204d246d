package pool

type fixed struct {
	available chan interface{}
	all       chan interface{}
	buf       chan interface{}
	newFn     func() interface{}
}

// NewFixed returns a stack pool capped at capacity live stacks. p.all holds
// one token per stack created so far; once capacity stacks have been
// allocated, Get blocks until one is returned with Put, bounding the memory
// a fixed-pool FiberScheduler can commit to concurrently live fibers. With
// a capacity of 0 nothing is ever created, so Get blocks until a Put.
func NewFixed(capacity uint, newFn func() interface{}) Pool {
	return &fixed{
		available: make(chan interface{}, capacity),
		all:       make(chan interface{}, capacity),
		buf:       make(chan interface{}, 1024),
		newFn:     newFn,
	}
}

func (p *fixed) Get() interface{} {
	select {
	case el := <-p.available:
		return el

	case el := <-p.buf:
		return el

	default:
		var el interface{}

		select {
		case p.all <- struct{}{}:
			el = p.newFn()
		default:
			select {
			case el = <-p.available:
			case el = <-p.buf:
			}
		}
		return el
	}
}

func (p *fixed) Put(el interface{}) {
	select {
	case p.available <- el:
	case p.buf <- el:
	default:
	}
}
