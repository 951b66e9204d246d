package fiberflow

import (
	"fmt"

	"github.com/kestrelflow/fiberflow/metrics"
)

// Option configures a FiberScheduler. Use NewScheduler(opts...) to build one.
type Option func(*configOptions)

// internal builder state for options assembly.
type configOptions struct {
	cfg          Config
	poolSelected poolType
}

type poolType int

const (
	poolUnspecified poolType = iota
	poolDynamic
	poolFixed
)

// WithFixedStackPool caps the scheduler to at most n concurrently live fiber
// stacks (n must be > 0); Get blocks further stack allocation until a fiber
// finishes and its stack is returned to the pool.
func WithFixedStackPool(n uint) Option {
	return func(co *configOptions) {
		if co.poolSelected != poolUnspecified && co.poolSelected != poolFixed {
			panic("conflicting pool options: WithFixedStackPool and WithDynamicStackPool both specified")
		}
		if n == 0 {
			panic("WithFixedStackPool requires n > 0")
		}
		co.poolSelected = poolFixed
		co.cfg.MaxStacks = n
	}
}

// WithDynamicStackPool selects a dynamic stack pool (the default when no
// pool option is given): stacks are allocated on demand and may be reclaimed
// by the garbage collector under memory pressure.
func WithDynamicStackPool() Option {
	return func(co *configOptions) {
		if co.poolSelected != poolUnspecified && co.poolSelected != poolDynamic {
			panic("conflicting pool options: WithFixedStackPool and WithDynamicStackPool both specified")
		}
		co.poolSelected = poolDynamic
		co.cfg.MaxStacks = 0
	}
}

// WithStackSize sets the stack buffer size used for every fiber on the
// scheduler; there is no per-fiber size.
func WithStackSize(size uint) Option {
	return func(co *configOptions) { co.cfg.StackSize = size }
}

// WithDispatchBudget bounds how many fibers one Dispatch call runs before
// yielding back to the host event loop.
func WithDispatchBudget(n uint) Option {
	return func(co *configOptions) { co.cfg.DispatchBudget = n }
}

// WithMetrics attaches a metrics.Provider the scheduler reports fiber
// counts, context switches, and ready-queue depth to. Channels do not use
// it; they take their own provider through WithChannelMetrics.
func WithMetrics(p metrics.Provider) Option {
	return func(co *configOptions) {
		if p != nil {
			co.cfg.Metrics = p
		}
	}
}

// build assembles and validates the Config from accumulated options.
func build(opts []Option) Config {
	co := configOptions{cfg: defaultConfig(), poolSelected: poolUnspecified}
	for _, opt := range opts {
		if opt == nil {
			panic("nil fiberflow option")
		}
		opt(&co)
	}

	if co.poolSelected == poolUnspecified {
		co.poolSelected = poolDynamic
		co.cfg.MaxStacks = 0
	}

	if err := validateConfig(&co.cfg); err != nil {
		panic(fmt.Errorf("invalid fiberflow config: %w", err))
	}

	return co.cfg
}
