package fiberflow

import (
	"github.com/kestrelflow/fiberflow/metrics"
)

// Config holds FiberScheduler configuration.
type Config struct {
	// MaxStacks caps the number of concurrently live fiber stacks.
	// Zero (default) means the stack pool is dynamic (sync.Pool-backed,
	// grows and shrinks with demand).
	MaxStacks uint

	// StackSize is the size, in bytes, of every fiber's stack buffer on the
	// scheduler. Default: 64KiB. NewFiber takes no per-fiber size, so a
	// single fiber cannot ask for a different one.
	StackSize uint

	// DispatchBudget bounds how many fibers a single Dispatch call will run
	// before returning control to the host event loop, even if the ready
	// queue is not yet empty. Zero (default) means drain the whole ready
	// queue in one Dispatch call.
	DispatchBudget uint

	// Metrics receives scheduler instrumentation; channels take their own
	// provider through WithChannelMetrics. Default: a no-op
	// provider, so instrumentation is zero-cost unless configured.
	Metrics metrics.Provider
}

// defaultConfig centralizes default values for Config.
// Applied by both NewScheduler (options builder base) and internal callers
// that need a zero-value-safe Config.
func defaultConfig() Config {
	return Config{
		MaxStacks:      0, // dynamic stack pool
		StackSize:      64 * 1024,
		DispatchBudget: 0, // drain the whole ready queue per Dispatch
		Metrics:        metrics.Noop,
	}
}

// validateConfig performs lightweight invariant checks.
func validateConfig(cfg *Config) error {
	if cfg.StackSize == 0 {
		return ErrInvalidConfig
	}
	return nil
}
