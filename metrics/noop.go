package metrics

// NoopProvider is the Provider NewScheduler and NewChannel fall back to
// when the caller doesn't pass WithMetrics/WithChannelMetrics:
// fiberflow's scheduling and channel hot paths still call Add/Record on
// every dispatch and send, so the default has to be cheap enough that
// running without a metrics backend costs nothing but the interface call.
// All methods are safe for concurrent use and perform no work.
type NoopProvider struct{}

// Noop is a ready-made NoopProvider, for call sites that just need a
// Provider value without constructing one.
var Noop Provider = NoopProvider{}

// NewNoopProvider constructs a Provider that discards all metrics.
func NewNoopProvider() NoopProvider { return NoopProvider{} }

func (NoopProvider) Counter(_ string, _ ...InstrumentOption) Counter {
	return noopCounter{}
}

func (NoopProvider) UpDownCounter(_ string, _ ...InstrumentOption) UpDownCounter {
	return noopUpDownCounter{}
}

func (NoopProvider) Histogram(_ string, _ ...InstrumentOption) Histogram {
	return noopHistogram{}
}

type noopCounter struct{}

func (noopCounter) Add(_ int64) {}

type noopUpDownCounter struct{}

func (noopUpDownCounter) Add(_ int64) {}

type noopHistogram struct{}

func (noopHistogram) Record(_ float64) {}
